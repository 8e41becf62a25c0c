// dspftool is a CLI utility for inspecting and converting GRASS display files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/OSGeo/grass-dspf/internal/config"
	"github.com/OSGeo/grass-dspf/internal/logger"
)

// errUsage is returned when a command is called with the wrong arguments.
// The usage text has already been printed.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Setup(cfg.Logging.Level, logFileConfig(cfg.Logging), true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	t := &tool{
		cfg:      cfg,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		log:      logger.Named("dspftool"),
		progress: terminalWidth(os.Stderr),
	}
	if err := t.run(args[0], args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// logFileConfig returns an empty FileConfig when file logging is off.
func logFileConfig(l config.LoggingConfig) logger.FileConfig {
	if l.LogFile == "" {
		return logger.FileConfig{}
	}
	return logger.DefaultFileConfig(l.LogFile).Merge(logger.FileConfig{
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	})
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `dspftool - GRASS display file utility

Usage:
  dspftool [global options] <command> [options]

Commands:
  info <file>                       Show header information
  dump [-all] [-v] [-n N] <file>    List cubes and their polygons
  verify <file>                     Decode every cube and fingerprint the data
  upgrade [-order O] <in> <out>     Rewrite a file as the current version
  export [-o out.glb] [-t 0,2] <file>
                                    Export the isosurfaces as binary glTF
  pack [-o out.dspz] <file>         Compress a file with zstd
  unpack [-o out.dspf] <file.dspz>  Restore a packed file
  config [path]                     Write the default configuration

Global options:
  -config <path>        Config file (default ./dspftool.yaml or user config dir)
  -debug                Enable debug logging
  -log-file <path>      Also log to a rotating file
  -byte-order <order>   Header byte order: little or big
  -buffer-limit <n>     Largest data section read into memory (0 always streams)
  -level <n>            zstd level for pack

Examples:
  dspftool info elev.dspf
  dspftool dump -n 20 elev.dspf
  dspftool export -o elev.glb -t 1 elev.dspf
  dspftool pack elev.dspf`)
}
