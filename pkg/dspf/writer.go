package dspf

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Writer writes the data section of one display file, collapsing empty
// cubes into run markers. A Writer belongs to a single output stream.
type Writer struct {
	w    io.Writer
	lm   LightModel
	xdim int
	log  *zap.Logger

	pending int // empty cubes not yet covered by a run marker
	cubes   int
	written int64
	rec     []byte
	err     error
}

// NewWriter returns a Writer appending records to w, which must already be
// positioned at the data section. The lighting model and row length are
// taken from h.
func NewWriter(w io.Writer, h *Header, opts ...Option) *Writer {
	o := buildOptions(opts)
	return &Writer{
		w:    w,
		lm:   h.LightModel,
		xdim: int(h.XDim),
		log:  o.log,
	}
}

// WriteCube writes the cube found at column x of the current row.
//
// Empty cubes are counted and flushed as one run marker when the run reaches
// MaxRun or when x == XDim-2. The tracer visits columns 0..XDim-2, so that
// is the last cube of a row; the condition is kept byte-for-byte with
// existing display files even though it reads like an off-by-one.
//
// An encoding error leaves the stream untouched. A write error is sticky:
// the stream is unusable and every later call returns it.
func (w *Writer) WriteCube(c *Cube, x int) error {
	if w.err != nil {
		return w.err
	}

	if c.IsEmpty() {
		w.pending++
		w.cubes++
		if w.pending == MaxRun || x == w.xdim-2 {
			return w.flushRun()
		}
		return nil
	}

	rec, err := AppendCube(w.rec[:0], c, w.lm)
	if err != nil {
		return fmt.Errorf("cube %d: %w", w.cubes, err)
	}
	w.rec = rec
	if err := w.flushRun(); err != nil {
		return err
	}
	w.cubes++
	return w.write(rec)
}

// WriteNext writes c at the column that follows the previous cube, deriving
// x from the number of cubes written so far.
func (w *Writer) WriteNext(c *Cube) error {
	x := 0
	if row := w.xdim - 1; row > 0 {
		x = w.cubes % row
	}
	return w.WriteCube(c, x)
}

// Flush writes a run marker for any pending empty cubes. Call it once the
// last cube has been written.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.flushRun()
}

// Pending returns the number of empty cubes waiting for a run marker.
func (w *Writer) Pending() int {
	return w.pending
}

// Cubes returns the number of cubes accepted so far.
func (w *Writer) Cubes() int {
	return w.cubes
}

// Written returns the number of bytes written to the data section.
func (w *Writer) Written() int64 {
	return w.written
}

func (w *Writer) flushRun() error {
	if w.pending == 0 {
		return nil
	}
	n := w.pending
	w.pending = 0
	if err := w.write([]byte{runFlag | byte(n)}); err != nil {
		return err
	}
	w.log.Debug("dspf run flushed", zap.Int("empty", n), zap.Int("cubes", w.cubes))
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = fmt.Errorf("%w: data section at byte %d: %w", ErrShortWrite, w.written, err)
		return w.err
	}
	return nil
}
