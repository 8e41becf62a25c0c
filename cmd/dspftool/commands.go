package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/OSGeo/grass-dspf/internal/config"
	"github.com/OSGeo/grass-dspf/pkg/dspf"
	"github.com/OSGeo/grass-dspf/pkg/math"
	"github.com/OSGeo/grass-dspf/pkg/mesh"
	"github.com/OSGeo/grass-dspf/pkg/pack"
)

type tool struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
	// progress is the terminal width for progress bars; zero disables them.
	progress int
}

func (t *tool) run(command string, args []string) error {
	switch command {
	case "info":
		return t.cmdInfo(args)
	case "dump", "ls":
		return t.cmdDump(args)
	case "verify":
		return t.cmdVerify(args)
	case "upgrade":
		return t.cmdUpgrade(args)
	case "export":
		return t.cmdExport(args)
	case "pack":
		return t.cmdPack(args)
	case "unpack":
		return t.cmdUnpack(args)
	case "config":
		return t.cmdConfig(args)
	case "help", "-h", "--help":
		printUsage(t.stdout)
		return nil
	default:
		fmt.Fprintf(t.stderr, "Unknown command: %s\n", command)
		printUsage(t.stderr)
		return errUsage
	}
}

// flagSet returns a flag set that reports errors instead of exiting.
func (t *tool) flagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(t.stderr)
	fs.Usage = func() {
		fmt.Fprintf(t.stderr, "Usage: dspftool %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

func (t *tool) parse(fs *flag.FlagSet, args []string, minArgs int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < minArgs {
		fs.Usage()
		return errUsage
	}
	return nil
}

// options returns the codec options for the configured byte order.
func (t *tool) options(order string) ([]dspf.Option, error) {
	codec := t.cfg.Codec
	if order != "" {
		codec.ByteOrder = order
	}
	bo, err := codec.Order()
	if err != nil {
		return nil, err
	}
	return []dspf.Option{
		dspf.WithByteOrder(bo),
		dspf.WithBufferLimit(codec.BufferLimit),
		dspf.WithLogger(t.log.Named("dspf")),
	}, nil
}

func (t *tool) open(path string) (*dspf.File, error) {
	opts, err := t.options("")
	if err != nil {
		return nil, err
	}
	return dspf.Open(path, opts...)
}

func (t *tool) cmdInfo(args []string) error {
	fs := t.flagSet("info", "<file>")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)

	f, err := t.open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	h := f.Header

	fmt.Fprintf(t.stdout, "File:       %s\n", path)
	fmt.Fprintf(t.stdout, "Version:    %s\n", h.Version)
	fmt.Fprintf(t.stdout, "Grid:       %d x %d x %d (%d cubes)\n", h.XDim, h.YDim, h.ZDim, h.CubeCount())
	fmt.Fprintf(t.stdout, "Range:      %g .. %g\n", h.Min, h.Max)
	fmt.Fprintf(t.stdout, "Lighting:   %s\n", h.LightModel)
	fmt.Fprintf(t.stdout, "Lookup:     %d\n", h.LookupOffset)
	fmt.Fprintf(t.stdout, "Data:       offset %d, %d bytes\n", h.DataOffset, st.Size()-h.DataOffset)
	fmt.Fprintf(t.stdout, "Thresholds: %d\n", len(h.Thresholds))
	for i, v := range h.Thresholds {
		fmt.Fprintf(t.stdout, "  [%3d] %g\n", i, v)
	}
	return nil
}

func (t *tool) cmdDump(args []string) error {
	fs := t.flagSet("dump", "[-all] [-v] [-n N] <file>")
	all := fs.Bool("all", false, "Include empty cubes")
	verbose := fs.Bool("v", false, "Print polygon bytes")
	limit := fs.Int("n", 0, "Limit output to N cubes (0 = all)")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}

	f, err := t.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	h := f.Header
	out := bufio.NewWriter(t.stdout)
	defer out.Flush()

	errLimit := errors.New("limit reached")
	shown := 0
	err = f.Cubes(func(i int, c *dspf.Cube) error {
		if c.IsEmpty() && !*all {
			return nil
		}
		x, y, z := h.CubeCoords(i)
		fmt.Fprintf(out, "cube %d (%d,%d,%d): %d thresholds, %d polygons\n",
			i, x, y, z, len(c.Thresholds), c.PolygonCount())
		for _, e := range c.Thresholds {
			value := "?"
			if int(e.Index) < len(h.Thresholds) {
				value = strconv.FormatFloat(float64(h.Thresholds[e.Index]), 'g', -1, 32)
			}
			fmt.Fprintf(out, "  threshold %d (%s): %d polygons\n", e.Index, value, len(e.Polygons))
			if !*verbose {
				continue
			}
			for _, p := range e.Polygons {
				fmt.Fprintf(out, "    v %v %v %v  n %v", p.Vertices[0], p.Vertices[1], p.Vertices[2], p.Normals[0])
				if h.LightModel != dspf.LightFlat {
					fmt.Fprintf(out, " %v %v", p.Normals[1], p.Normals[2])
				}
				fmt.Fprintln(out)
			}
		}
		shown++
		if *limit > 0 && shown >= *limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return err
	}
	return nil
}

// verifyStats summarizes a full decode of a display file.
type verifyStats struct {
	Cubes    int
	Empty    int
	Polygons int
	Sum      uint64
	Size     int64
}

func (t *tool) verify(path string) (verifyStats, error) {
	var st verifyStats

	f, err := t.open(path)
	if err != nil {
		return st, err
	}
	defer f.Close()

	total := f.Header.CubeCount()
	bar := newProgress(t.stderr, t.progress, "verifying", total)
	err = f.Cubes(func(i int, c *dspf.Cube) error {
		st.Cubes++
		if c.IsEmpty() {
			st.Empty++
		}
		st.Polygons += c.PolygonCount()
		bar.update(st.Cubes)
		return nil
	})
	bar.done()
	if err != nil {
		return st, fmt.Errorf("cube %d: %w", st.Cubes, err)
	}
	if st.Cubes != total {
		return st, fmt.Errorf("%w: data ends after %d of %d cubes", dspf.ErrCorrupt, st.Cubes, total)
	}

	raw, err := os.Open(path)
	if err != nil {
		return st, err
	}
	defer raw.Close()
	if _, err := raw.Seek(f.Header.DataOffset, io.SeekStart); err != nil {
		return st, err
	}
	h := xxhash.New()
	if st.Size, err = io.Copy(h, raw); err != nil {
		return st, err
	}
	st.Sum = h.Sum64()
	return st, nil
}

func (t *tool) cmdVerify(args []string) error {
	fs := t.flagSet("verify", "<file>")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}

	st, err := t.verify(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Cubes:     %d (%d empty, %d with geometry)\n", st.Cubes, st.Empty, st.Cubes-st.Empty)
	fmt.Fprintf(t.stdout, "Polygons:  %d\n", st.Polygons)
	fmt.Fprintf(t.stdout, "Data:      %d bytes, xxhash64 %016x\n", st.Size, st.Sum)
	return nil
}

func (t *tool) cmdUpgrade(args []string) error {
	fs := t.flagSet("upgrade", "[-order little|big] <in> <out>")
	order := fs.String("order", "", "Byte order of the output header (default: configured order)")
	if err := t.parse(fs, args, 2); err != nil {
		return err
	}

	in, err := t.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	if in.Header.Version == dspf.VersionCurrent {
		t.log.Warn("input already uses the current layout, rewriting", zap.String("path", fs.Arg(0)))
	}

	h := *in.Header
	h.Version = dspf.VersionCurrent
	h.Thresholds = append([]float32(nil), in.Header.Thresholds...)
	h.LookupOffset = 0

	opts, err := t.options(*order)
	if err != nil {
		return err
	}
	out, err := dspf.Create(fs.Arg(1), &h, opts...)
	if err != nil {
		return err
	}

	bar := newProgress(t.stderr, t.progress, "upgrading", h.CubeCount())
	err = in.Cubes(func(i int, c *dspf.Cube) error {
		bar.update(i + 1)
		return out.WriteNext(c)
	})
	bar.done()
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(t.stdout, "Upgraded: %s -> %s (%d cubes, %d data bytes)\n",
		fs.Arg(0), fs.Arg(1), out.Cubes(), out.Written())
	return nil
}

func (t *tool) cmdExport(args []string) error {
	fs := t.flagSet("export", "[-o out.glb] [-t 0,2] <file>")
	output := fs.String("o", "", "Output path (default: input with .glb extension)")
	only := fs.String("t", "", "Comma separated threshold indexes to export")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)

	ec := t.cfg.Export
	indexes := ec.Thresholds
	if *only != "" {
		var err error
		if indexes, err = parseIndexes(*only); err != nil {
			return err
		}
	}
	opts := mesh.Options{
		Origin:   math.Vec3{X: ec.Origin[0], Y: ec.Origin[1], Z: ec.Origin[2]},
		CellSize: math.Vec3{X: ec.CellSize[0], Y: ec.CellSize[1], Z: ec.CellSize[2]},
	}
	for _, i := range indexes {
		if i < 0 || i > dspf.MaxThresholdIndex {
			return fmt.Errorf("threshold index %d out of range 0-%d", i, dspf.MaxThresholdIndex)
		}
		opts.Thresholds = append(opts.Thresholds, uint8(i))
	}

	f, err := t.open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := mesh.Build(f.Header, f, opts)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst := *output
	if dst == "" {
		dst = strings.TrimSuffix(path, filepath.Ext(path)) + ".glb"
	}
	if err := mesh.WriteGLB(m, dst, name); err != nil {
		return err
	}
	t.log.Debug("mesh exported", zap.String("path", dst), zap.Int("surfaces", len(m.Surfaces)))
	fmt.Fprintf(t.stdout, "Exported: %s (%d surfaces, %d triangles)\n", dst, len(m.Surfaces), m.TriangleCount())
	return nil
}

func (t *tool) cmdPack(args []string) error {
	fs := t.flagSet("pack", "[-o out.dspz] <file>")
	output := fs.String("o", "", "Output path (default: input with .dspz appended)")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)

	// Refuse to pack something that is not a display file.
	f, err := t.open(path)
	if err != nil {
		return err
	}
	f.Close()

	dst := *output
	if dst == "" {
		dst = path + ".dspz"
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, written, err := writeFile(dst, func(w io.Writer) (pack.Info, error) {
		return pack.Compress(w, src, t.cfg.Pack.Level)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Packed: %s (%d -> %d bytes, xxhash64 %016x)\n", dst, info.Size, written, info.Sum)
	return nil
}

func (t *tool) cmdUnpack(args []string) error {
	fs := t.flagSet("unpack", "[-o out.dspf] <file.dspz>")
	output := fs.String("o", "", "Output path (default: input without .dspz)")
	if err := t.parse(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)

	dst := *output
	if dst == "" {
		dst = strings.TrimSuffix(path, ".dspz")
		if dst == path {
			dst = path + ".dspf"
		}
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, _, err := writeFile(dst, func(w io.Writer) (pack.Info, error) {
		return pack.Decompress(w, bufio.NewReader(src))
	})
	if err != nil {
		os.Remove(dst)
		return err
	}
	fmt.Fprintf(t.stdout, "Unpacked: %s (%d bytes)\n", dst, info.Size)
	return nil
}

func (t *tool) cmdConfig(args []string) error {
	fs := t.flagSet("config", "[path]")
	if err := t.parse(fs, args, 0); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		if err := t.cfg.SaveTo(fs.Arg(0)); err != nil {
			return err
		}
		fmt.Fprintf(t.stdout, "Wrote: %s\n", fs.Arg(0))
		return nil
	}
	path, err := t.cfg.Save()
	if err != nil {
		return err
	}
	fmt.Fprintf(t.stdout, "Wrote: %s\n", path)
	return nil
}

// writeFile creates path, runs fn against a buffered writer and returns the
// number of bytes written.
func writeFile(path string, fn func(w io.Writer) (pack.Info, error)) (pack.Info, int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return pack.Info{}, 0, err
	}
	cw := &countWriter{w: out}
	bw := bufio.NewWriter(cw)

	info, err := fn(bw)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return info, cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func parseIndexes(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold index %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
