package pack

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

func sample() []byte {
	// Mostly run markers with a few literal records, like a sparse volume.
	var b []byte
	b = append(b, "dspf003.02"...)
	for i := 0; i < 5000; i++ {
		if i%97 == 0 {
			b = append(b, 1, 0, 14, 0, 1, byte(i), byte(i>>8), 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)
			continue
		}
		b = append(b, 0xFE)
	}
	return b
}

func TestCompressDecompress(t *testing.T) {
	raw := sample()
	for _, level := range []int{0, 1, 3, 19} {
		var packed bytes.Buffer
		info, err := Compress(&packed, bytes.NewReader(raw), level)
		if err != nil {
			t.Fatalf("level %d: Compress failed: %v", level, err)
		}
		if info.Size != uint64(len(raw)) || info.Sum != xxhash.Sum64(raw) {
			t.Errorf("level %d: unexpected info %+v", level, info)
		}
		if packed.Len() >= len(raw) {
			t.Errorf("level %d: expected compression, got %d >= %d", level, packed.Len(), len(raw))
		}

		var out bytes.Buffer
		got, err := Decompress(&out, bytes.NewReader(packed.Bytes()))
		if err != nil {
			t.Fatalf("level %d: Decompress failed: %v", level, err)
		}
		if diff := cmp.Diff(info, got); diff != "" {
			t.Errorf("level %d: info mismatch (-want +got):\n%s", level, diff)
		}
		if !bytes.Equal(raw, out.Bytes()) {
			t.Errorf("level %d: round trip mismatch", level)
		}
	}
}

func TestCompress_Empty(t *testing.T) {
	var packed bytes.Buffer
	if _, err := Compress(&packed, bytes.NewReader(nil), 0); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	var out bytes.Buffer
	info, err := Decompress(&out, &packed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if info.Size != 0 || out.Len() != 0 {
		t.Errorf("expected empty payload, got %d bytes", out.Len())
	}
}

func TestDecompress_ChecksumMismatch(t *testing.T) {
	var packed bytes.Buffer
	if _, err := Compress(&packed, bytes.NewReader(sample()), 0); err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	sum := append([]byte(nil), packed.Bytes()...)
	sum[5] ^= 0xFF
	if _, err := Decompress(&bytes.Buffer{}, bytes.NewReader(sum)); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum for bad hash, got %v", err)
	}

	size := append([]byte(nil), packed.Bytes()...)
	size[13]++
	if _, err := Decompress(&bytes.Buffer{}, bytes.NewReader(size)); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum for bad length, got %v", err)
	}
}

func TestReadInfo_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("DSPZ\x01")},
		{"magic", append([]byte("ZSTD\x01"), make([]byte, 16)...)},
		{"version", append([]byte("DSPZ\x09"), make([]byte, 16)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadInfo(bytes.NewReader(tt.data)); !errors.Is(err, ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}
		})
	}
}
