package dspf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// File is a display file opened for reading.
type File struct {
	Header *Header

	f *os.File
	r *Reader
}

// Open opens a display file and reads its header.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening display file: %w", err)
	}

	h, err := ReadHeader(bufio.NewReader(io.LimitReader(f, 1<<20)), opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.DataOffset < h.Size() {
		f.Close()
		return nil, fmt.Errorf("%w: data offset %d lies inside the %d byte header",
			ErrCorrupt, h.DataOffset, h.Size())
	}

	return &File{
		Header: h,
		f:      f,
		r:      NewReader(f, h, opts...),
	}, nil
}

// Reader returns the cube reader of the file.
func (f *File) Reader() *Reader {
	return f.r
}

// Cubes rewinds the file and calls fn for every cube in data section order.
// The cube passed to fn is reused between calls.
func (f *File) Cubes(fn func(i int, c *Cube) error) error {
	if err := f.r.Rewind(); err != nil {
		return err
	}
	var c Cube
	for {
		i := f.r.Index()
		if _, err := f.r.ReadCubeInto(&c); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := fn(i, &c); err != nil {
			return err
		}
	}
}

// Close closes the underlying file.
func (f *File) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// FileWriter is a display file opened for writing.
type FileWriter struct {
	*Writer
	Header *Header

	f  *os.File
	bw *bufio.Writer
}

// Create creates a display file, writes h and returns a writer positioned at
// the data section.
func Create(path string, h *Header, opts ...Option) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating display file: %w", err)
	}
	if err := WriteHeader(f, h, opts...); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	bw := bufio.NewWriter(f)
	return &FileWriter{
		Writer: NewWriter(bw, h, opts...),
		Header: h,
		f:      f,
		bw:     bw,
	}, nil
}

// Close flushes any pending run and buffered data, then closes the file.
func (w *FileWriter) Close() error {
	err := w.Writer.Flush()
	if err == nil {
		if ferr := w.bw.Flush(); ferr != nil {
			err = fmt.Errorf("%w: %w", ErrShortWrite, ferr)
		}
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}
