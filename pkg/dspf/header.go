package dspf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Magic strings of the supported header versions.
const (
	MagicCurrent = "dspf003.02"
	MagicLegacy  = "dspf003.01"
	magicLen     = len(MagicCurrent)
)

// offsetsSize covers the lookup and data offset fields at the end of the header.
const offsetsSize = 16

// Version identifies a header layout.
type Version int

// Header versions.
const (
	VersionCurrent Version = iota // dspf003.02
	VersionLegacy                 // dspf003.01, three extra unused floats
)

// ParseVersion resolves a magic string to a header version.
func ParseVersion(magic string) (Version, error) {
	switch magic {
	case MagicCurrent:
		return VersionCurrent, nil
	case MagicLegacy:
		return VersionLegacy, nil
	default:
		return 0, &FormatError{Expected: MagicCurrent, Found: magic}
	}
}

// Magic returns the magic string written for v.
func (v Version) Magic() string {
	if v == VersionLegacy {
		return MagicLegacy
	}
	return MagicCurrent
}

// String returns the magic string, or Unknown(n) for invalid versions.
func (v Version) String() string {
	switch v {
	case VersionCurrent, VersionLegacy:
		return v.Magic()
	default:
		return fmt.Sprintf("Unknown(%d)", int(v))
	}
}

// Header is the fixed preamble of a display file.
type Header struct {
	Version    Version
	XDim       int32
	YDim       int32
	ZDim       int32
	Min        float32
	Max        float32
	LightModel LightModel
	Thresholds []float32

	// LookupOffset is reserved for a random access table; zero when absent.
	LookupOffset int64
	// DataOffset is the file position of the first data record. Set by
	// WriteHeader and MarshalHeader.
	DataOffset int64
}

// Validate checks that every field fits the header layout.
func (h *Header) Validate() error {
	if h.Version != VersionCurrent && h.Version != VersionLegacy {
		return fmt.Errorf("%w: header version %d", ErrOutOfRange, int(h.Version))
	}
	if h.XDim < 0 || h.YDim < 0 || h.ZDim < 0 {
		return fmt.Errorf("%w: dimensions %dx%dx%d", ErrOutOfRange, h.XDim, h.YDim, h.ZDim)
	}
	if !h.LightModel.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLightModel, h.LightModel)
	}
	if len(h.Thresholds) > MaxThresholds {
		return fmt.Errorf("%w: %d thresholds (max %d)", ErrOverflow, len(h.Thresholds), MaxThresholds)
	}
	return nil
}

// RowLength returns the number of cubes in one row of the grid.
func (h *Header) RowLength() int {
	if h.XDim < 2 {
		return 0
	}
	return int(h.XDim) - 1
}

// CubeCount returns the number of cube cells between the grid samples,
// which is the number of cubes the tracer emits.
func (h *Header) CubeCount() int {
	if h.XDim < 2 || h.YDim < 2 || h.ZDim < 2 {
		return 0
	}
	return int(h.XDim-1) * int(h.YDim-1) * int(h.ZDim-1)
}

// CubeCoords converts a cube's position in the data section into grid cell
// coordinates. Cubes run along x first, then y, then z.
func (h *Header) CubeCoords(i int) (x, y, z int) {
	row := h.RowLength()
	if row == 0 || h.YDim < 2 {
		return 0, 0, 0
	}
	rows := int(h.YDim) - 1
	x = i % row
	y = (i / row) % rows
	z = i / (row * rows)
	return x, y, z
}

// Size returns the encoded header length in bytes.
func (h *Header) Size() int64 {
	n := int64(magicLen + 3*4 + 2*4 + 4 + 4 + 4*len(h.Thresholds) + offsetsSize)
	if h.Version == VersionLegacy {
		n += 3 * 4
	}
	return n
}

// WriteHeader writes h at the current position of ws. The offset fields are
// written as placeholders first and patched once the data section position
// is known; ws is left at the start of the data section and h.DataOffset is
// updated.
func WriteHeader(ws io.WriteSeeker, h *Header, opts ...Option) error {
	o := buildOptions(opts)
	if err := h.Validate(); err != nil {
		return err
	}

	fw := &fieldWriter{w: ws, order: o.order}
	encodeFields(fw, h)
	if fw.err != nil {
		return fw.err
	}

	patchPos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating offset fields: %w", err)
	}
	fw.write("offsets", [2]int64{})
	if fw.err != nil {
		return fw.err
	}
	dataOff, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locating data section: %w", err)
	}

	if _, err := ws.Seek(patchPos, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to offset fields: %w", err)
	}
	fw.write("offsets", [2]int64{h.LookupOffset, dataOff})
	if fw.err != nil {
		return fw.err
	}
	if _, err := ws.Seek(dataOff, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to data section: %w", err)
	}

	h.DataOffset = dataOff
	o.log.Debug("dspf header written")
	return nil
}

// MarshalHeader encodes h for a header placed at file offset 0 without
// seeking, for sinks that cannot seek. h.DataOffset is updated.
func MarshalHeader(h *Header, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	if err := h.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fw := &fieldWriter{w: &buf, order: o.order}
	encodeFields(fw, h)
	dataOff := int64(buf.Len()) + offsetsSize
	fw.write("offsets", [2]int64{h.LookupOffset, dataOff})
	if fw.err != nil {
		return nil, fw.err
	}

	h.DataOffset = dataOff
	return buf.Bytes(), nil
}

// PatchLookupOffset rewrites the lookup offset field of a header previously
// written to ws, then restores the position of ws.
func PatchLookupOffset(ws io.WriteSeeker, h *Header, off int64, opts ...Option) error {
	o := buildOptions(opts)
	if h.DataOffset < int64(offsetsSize) {
		return fmt.Errorf("%w: header has not been written", ErrStateMisuse)
	}

	cur, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := ws.Seek(h.DataOffset-offsetsSize, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to lookup offset: %w", err)
	}
	fw := &fieldWriter{w: ws, order: o.order}
	fw.write("lookup offset", off)
	if fw.err != nil {
		return fw.err
	}
	if _, err := ws.Seek(cur, io.SeekStart); err != nil {
		return err
	}

	h.LookupOffset = off
	return nil
}

// encodeFields writes everything up to, not including, the offset fields.
func encodeFields(fw *fieldWriter, h *Header) {
	fw.write("magic", []byte(h.Version.Magic()))
	fw.write("dimensions", [3]int32{h.XDim, h.YDim, h.ZDim})
	if h.Version == VersionLegacy {
		fw.write("legacy fields", [3]float32{})
	}
	fw.write("value range", [2]float32{h.Min, h.Max})
	fw.write("lighting model", int32(h.LightModel))
	fw.write("threshold count", int32(len(h.Thresholds)))
	if len(h.Thresholds) > 0 {
		fw.write("thresholds", h.Thresholds)
	}
}

// ReadHeader reads a header from r and leaves r positioned at the first
// byte after it.
func ReadHeader(r io.Reader, opts ...Option) (*Header, error) {
	o := buildOptions(opts)

	var magic [magicLen]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %w", ErrShortRead, err)
	}
	version, err := ParseVersion(string(magic[:]))
	if err != nil {
		return nil, err
	}

	h := &Header{Version: version}
	fr := &fieldReader{r: r, order: o.order}
	version.decoder()(fr, h)
	if fr.err != nil {
		return nil, fr.err
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	o.log.Debug("dspf header read")
	return h, nil
}

type headerDecoder func(fr *fieldReader, h *Header)

func (v Version) decoder() headerDecoder {
	if v == VersionLegacy {
		return decodeLegacy
	}
	return decodeCurrent
}

func decodeCurrent(fr *fieldReader, h *Header) {
	decodeDimensions(fr, h)
	decodeBody(fr, h)
}

func decodeLegacy(fr *fieldReader, h *Header) {
	decodeDimensions(fr, h)
	var unused [3]float32
	fr.read("legacy fields", &unused)
	decodeBody(fr, h)
}

func decodeDimensions(fr *fieldReader, h *Header) {
	fr.read("xdim", &h.XDim)
	fr.read("ydim", &h.YDim)
	fr.read("zdim", &h.ZDim)
}

func decodeBody(fr *fieldReader, h *Header) {
	fr.read("min", &h.Min)
	fr.read("max", &h.Max)
	fr.read("lighting model", &h.LightModel)

	var n int32
	fr.read("threshold count", &n)
	if fr.err != nil {
		return
	}
	if n < 0 || n > MaxThresholds {
		fr.err = fmt.Errorf("%w: threshold count %d", ErrOverflow, n)
		return
	}
	if n > 0 {
		h.Thresholds = make([]float32, n)
		fr.read("thresholds", h.Thresholds)
	}

	fr.read("lookup offset", &h.LookupOffset)
	fr.read("data offset", &h.DataOffset)
}

// fieldWriter keeps the first error so a header is written as one unit.
type fieldWriter struct {
	w     io.Writer
	order binary.ByteOrder
	err   error
}

func (f *fieldWriter) write(name string, v any) {
	if f.err != nil {
		return
	}
	if err := binary.Write(f.w, f.order, v); err != nil {
		f.err = fmt.Errorf("%w: writing %s: %w", ErrShortWrite, name, err)
	}
}

type fieldReader struct {
	r     io.Reader
	order binary.ByteOrder
	err   error
}

func (f *fieldReader) read(name string, v any) {
	if f.err != nil {
		return
	}
	if err := binary.Read(f.r, f.order, v); err != nil {
		f.err = fmt.Errorf("%w: reading %s: %w", ErrShortRead, name, err)
	}
}
