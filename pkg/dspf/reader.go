package dspf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Reader decodes the data section of one display file.
//
// On the first read after construction, Rewind or Reset the Reader measures
// the data section and, when it fits the buffer limit, loads it into memory
// in a single read. Larger sections are read directly from the stream.
//
// A read returns io.EOF at the end of the data section or once every cube
// the header declares has been returned. Reading again after that fails with
// ErrStateMisuse until Rewind or Reset is called. Any other error is sticky:
// later reads return it until Rewind or Reset.
type Reader struct {
	rs    io.ReadSeeker
	hdr   *Header
	limit int64
	log   *zap.Logger

	started  bool
	buffered bool
	buf      []byte // whole data section in buffered mode
	pos      int
	br       *bufio.Reader
	scratch  []byte

	pending int // empty cubes left from the last run marker
	index   int // cubes returned since the data section start
	done    bool
	err     error
}

// NewReader returns a Reader over the data section described by h.
func NewReader(rs io.ReadSeeker, h *Header, opts ...Option) *Reader {
	o := buildOptions(opts)
	return &Reader{
		rs:    rs,
		hdr:   h,
		limit: o.bufferLimit,
		log:   o.log,
	}
}

// Header returns the header the Reader decodes against.
func (r *Reader) Header() *Header {
	return r.hdr
}

// Buffered reports whether the data section is being served from memory.
func (r *Reader) Buffered() bool {
	return r.buffered
}

// Index returns the number of cubes read since the data section start.
func (r *Reader) Index() int {
	return r.index
}

// Rewind returns to the start of the data section. The in-memory copy and
// any pending run are discarded.
func (r *Reader) Rewind() error {
	r.clear()
	if _, err := r.rs.Seek(r.hdr.DataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to data section: %w", err)
	}
	r.log.Debug("dspf reader rewound", zap.Int64("offset", r.hdr.DataOffset))
	return nil
}

// Reset switches the Reader to a new file, discarding all state.
func (r *Reader) Reset(rs io.ReadSeeker, h *Header) {
	r.clear()
	r.rs = rs
	r.hdr = h
}

func (r *Reader) clear() {
	r.started = false
	r.buffered = false
	r.buf = nil
	r.pos = 0
	r.pending = 0
	r.index = 0
	r.done = false
	r.err = nil
}

// ReadCube returns the next cube. Empty cubes have no thresholds.
func (r *Reader) ReadCube() (*Cube, error) {
	c := &Cube{}
	if _, err := r.ReadCubeInto(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadCubeInto decodes the next cube into c, reusing its storage, and
// returns its threshold count. Storage reuse means an empty cube read into a
// previously filled c has a zero-length, non-nil Thresholds slice.
func (r *Reader) ReadCubeInto(c *Cube) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.readCube(c)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return n, err
}

func (r *Reader) readCube(c *Cube) (int, error) {
	if r.done {
		return 0, fmt.Errorf("%w: read after end of data section, rewind first", ErrStateMisuse)
	}
	if total := r.hdr.CubeCount(); total > 0 && r.index >= total {
		r.done = true
		return 0, io.EOF
	}
	if !r.started {
		if err := r.start(); err != nil {
			return 0, err
		}
	}

	c.Thresholds = c.Thresholds[:0]
	if r.pending > 0 {
		r.pending--
		r.index++
		return 0, nil
	}

	tag, err := r.readByte()
	if err == io.EOF {
		r.done = true
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("reading cube %d: %w", r.index, err)
	}

	if tag&runFlag != 0 {
		run := int(tag &^ runFlag)
		if run == 0 {
			return 0, fmt.Errorf("%w: zero-length run marker at cube %d", ErrCorrupt, r.index)
		}
		r.pending = run - 1
		r.index++
		return 0, nil
	}

	n := int(tag)
	if n == 0 {
		r.index++
		return 0, nil
	}

	sizeBytes, err := r.readFull(2)
	if err != nil {
		return 0, fmt.Errorf("%w: cube %d size: %w", ErrShortRead, r.index, err)
	}
	size := int(binary.BigEndian.Uint16(sizeBytes))
	payload, err := r.readFull(size)
	if err != nil {
		return 0, fmt.Errorf("%w: cube %d payload of %d bytes: %w", ErrShortRead, r.index, size, err)
	}
	if err := decodePayload(c, n, payload, r.hdr.LightModel); err != nil {
		return 0, fmt.Errorf("cube %d: %w", r.index, err)
	}
	r.index++
	return n, nil
}

// start picks the read mode for the data section.
func (r *Reader) start() error {
	if !r.hdr.LightModel.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLightModel, r.hdr.LightModel)
	}
	off := r.hdr.DataOffset
	if r.limit > 0 {
		end, err := r.rs.Seek(0, io.SeekEnd)
		if err != nil {
			return fmt.Errorf("measuring data section: %w", err)
		}
		if size := end - off; size >= 0 && size <= r.limit {
			if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
				return fmt.Errorf("seeking to data section: %w", err)
			}
			buf := make([]byte, size)
			if _, err := io.ReadFull(r.rs, buf); err != nil {
				return fmt.Errorf("%w: buffering data section: %w", ErrShortRead, err)
			}
			r.buf = buf
			r.pos = 0
			r.buffered = true
			r.started = true
			r.log.Debug("dspf data section buffered", zap.Int64("bytes", size))
			return nil
		}
	}

	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to data section: %w", err)
	}
	if r.br == nil {
		r.br = bufio.NewReader(r.rs)
	} else {
		r.br.Reset(r.rs)
	}
	r.buffered = false
	r.started = true
	r.log.Debug("dspf data section streamed", zap.Int64("offset", off))
	return nil
}

func (r *Reader) readByte() (byte, error) {
	if r.buffered {
		if r.pos >= len(r.buf) {
			return 0, io.EOF
		}
		b := r.buf[r.pos]
		r.pos++
		return b, nil
	}
	return r.br.ReadByte()
}

// readFull returns the next n bytes. The slice is only valid until the next
// read.
func (r *Reader) readFull(n int) ([]byte, error) {
	if r.buffered {
		if len(r.buf)-r.pos < n {
			r.pos = len(r.buf)
			return nil, io.ErrUnexpectedEOF
		}
		p := r.buf[r.pos : r.pos+n]
		r.pos += n
		return p, nil
	}
	if cap(r.scratch) < n {
		r.scratch = make([]byte, n)
	}
	p := r.scratch[:n]
	if _, err := io.ReadFull(r.br, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return p, nil
}
