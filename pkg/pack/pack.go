// Package pack stores display files in a zstd compressed container that
// carries the length and xxhash64 of the raw bytes.
//
// Container layout (little-endian):
//
//	[4]  "DSPZ"
//	[1]  version
//	[8]  xxhash64 of the raw bytes
//	[8]  raw length
//	[..] zstd frame
package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
)

const (
	magic      = "DSPZ"
	version    = 1
	headerSize = 4 + 1 + 8 + 8
)

// DefaultLevel is the zstd level used when none is configured.
const DefaultLevel = 3

var (
	// ErrFormat indicates the input is not a pack container.
	ErrFormat = errors.New("not a dspf pack")
	// ErrChecksum indicates the unpacked bytes do not match the stored
	// length or hash.
	ErrChecksum = errors.New("pack checksum mismatch")
)

// Info describes a packed payload.
type Info struct {
	Version byte
	Sum     uint64
	Size    uint64
}

// Compress reads all of src and writes it to w as a pack container. level is
// a zstd level (1-22); zero selects DefaultLevel.
func Compress(w io.Writer, src io.Reader, level int) (Info, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return Info{}, fmt.Errorf("reading input: %w", err)
	}
	if level == 0 {
		level = DefaultLevel
	}

	info := Info{Version: version, Sum: xxhash.Sum64(raw), Size: uint64(len(raw))}
	if _, err := w.Write(encodeHeader(info)); err != nil {
		return Info{}, err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return Info{}, err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return Info{}, err
	}
	if err := enc.Close(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// Decompress unpacks the container read from r into w and verifies its
// length and checksum.
func Decompress(w io.Writer, r io.Reader) (Info, error) {
	info, err := ReadInfo(r)
	if err != nil {
		return Info{}, err
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return Info{}, err
	}
	defer dec.Close()

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(w, h), dec)
	if err != nil {
		return Info{}, fmt.Errorf("decompressing: %w", err)
	}
	if uint64(n) != info.Size {
		return Info{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrChecksum, info.Size, n)
	}
	if sum := h.Sum64(); sum != info.Sum {
		return Info{}, fmt.Errorf("%w: expected %016x, got %016x", ErrChecksum, info.Sum, sum)
	}
	return info, nil
}

// ReadInfo reads the container header from r.
func ReadInfo(r io.Reader) (Info, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Info{}, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		return Info{}, err
	}
	if string(hdr[:4]) != magic {
		return Info{}, fmt.Errorf("%w: bad magic %q", ErrFormat, hdr[:4])
	}
	info := Info{
		Version: hdr[4],
		Sum:     binary.LittleEndian.Uint64(hdr[5:13]),
		Size:    binary.LittleEndian.Uint64(hdr[13:21]),
	}
	if info.Version != version {
		return Info{}, fmt.Errorf("%w: unsupported version %d", ErrFormat, info.Version)
	}
	return info, nil
}

func encodeHeader(info Info) []byte {
	b := make([]byte, 0, headerSize)
	b = append(b, magic...)
	b = append(b, info.Version)
	b = binary.LittleEndian.AppendUint64(b, info.Sum)
	b = binary.LittleEndian.AppendUint64(b, info.Size)
	return b
}
