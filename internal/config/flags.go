package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
	flagByteOrder   = flag.String("byte-order", "", "Header byte order: little or big")
	flagBufferLimit = flag.Int64("buffer-limit", -1, "Largest data section read into memory (0 always streams)")
	flagLevel       = flag.Int("level", 0, "zstd level for pack")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagByteOrder != "" {
		cfg.Codec.ByteOrder = *flagByteOrder
	}
	if *flagBufferLimit >= 0 {
		cfg.Codec.BufferLimit = *flagBufferLimit
	}
	if *flagLevel > 0 {
		cfg.Pack.Level = *flagLevel
	}
}
