package dspf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeCube_Layout(t *testing.T) {
	c := testCube(LightFlat, []uint8{5, 9}, []int{1, 2})

	rec, err := EncodeCube(c, LightFlat)
	if err != nil {
		t.Fatalf("EncodeCube failed: %v", err)
	}

	if len(rec) != 3+40 {
		t.Fatalf("expected 43 bytes, got %d", len(rec))
	}
	header := []byte{2, 0, 40, 1, 2, 5, 9}
	if !bytes.Equal(rec[:7], header) {
		t.Errorf("expected header %v, got %v", header, rec[:7])
	}

	// First polygon: v1, v2, v3, n1.
	p := c.Thresholds[0].Polygons[0]
	var want []byte
	for _, v := range p.Vertices {
		want = append(want, v[:]...)
	}
	want = append(want, p.Normals[0][:]...)
	if !bytes.Equal(rec[7:19], want) {
		t.Errorf("expected first polygon %v, got %v", want, rec[7:19])
	}
}

func TestEncodeCube_GradientSize(t *testing.T) {
	c := testCube(LightGradient, []uint8{0, 1, 2}, []int{1, 0, 3})

	rec, err := EncodeCube(c, LightGradient)
	if err != nil {
		t.Fatalf("EncodeCube failed: %v", err)
	}

	payload := 2*3 + 4*18
	if len(rec) != 3+payload {
		t.Errorf("expected %d bytes, got %d", 3+payload, len(rec))
	}
	if size := int(rec[1])<<8 | int(rec[2]); size != payload {
		t.Errorf("expected size field %d, got %d", payload, size)
	}
}

func TestEncodeCube_Empty(t *testing.T) {
	rec, err := EncodeCube(&Cube{}, LightFlat)
	if err != nil {
		t.Fatalf("EncodeCube failed: %v", err)
	}
	if !bytes.Equal(rec, []byte{0}) {
		t.Errorf("expected [0], got %v", rec)
	}
}

func TestEncodeCube_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		cube  *Cube
		model LightModel
		want  error
	}{
		{"too many thresholds", &Cube{Thresholds: make([]ThresholdEntry, 128)}, LightFlat, ErrOverflow},
		{"too many polygons", testCube(LightFlat, []uint8{0}, []int{11}), LightFlat, ErrOverflow},
		{"index out of range", &Cube{Thresholds: []ThresholdEntry{{Index: 127}}}, LightFlat, ErrOverflow},
		{"unknown light model", testCube(LightFlat, []uint8{0}, []int{1}), LightModel(9), ErrInvalidLightModel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dst := []byte{0xAA}
			out, err := AppendCube(dst, tc.cube, tc.model)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !bytes.Equal(out, []byte{0xAA}) {
				t.Errorf("dst modified on error: %v", out)
			}
		})
	}
}

func TestEncodeCube_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		indexes []uint8
		npolys  []int
	}{
		{"single", []uint8{0}, []int{1}},
		{"two thresholds", []uint8{5, 9}, []int{1, 2}},
		{"zero polygon threshold", []uint8{1, 2, 3}, []int{0, 4, 10}},
		{"high index", []uint8{126}, []int{10}},
	}

	for _, lm := range []LightModel{LightFlat, LightGradient, LightGradientAlt} {
		for _, tc := range tests {
			t.Run(lm.String()+"/"+tc.name, func(t *testing.T) {
				c := testCube(lm, tc.indexes, tc.npolys)
				rec, err := EncodeCube(c, lm)
				if err != nil {
					t.Fatalf("EncodeCube failed: %v", err)
				}

				got, n, err := DecodeCube(rec, lm)
				if err != nil {
					t.Fatalf("DecodeCube failed: %v", err)
				}
				if n != len(rec) {
					t.Errorf("expected %d bytes consumed, got %d", len(rec), n)
				}
				if diff := cmp.Diff(c, got); diff != "" {
					t.Errorf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestEncodeCube_MaximumCube(t *testing.T) {
	for _, lm := range []LightModel{LightFlat, LightGradient} {
		t.Run(lm.String(), func(t *testing.T) {
			c := fullCube(lm)
			rec, err := EncodeCube(c, lm)
			if err != nil {
				t.Fatalf("EncodeCube failed: %v", err)
			}

			payload := 2*MaxThresholds + MaxThresholds*MaxPolygons*lm.PolygonSize()
			if payload > maxPayload {
				t.Fatalf("payload %d does not fit the size field", payload)
			}
			if len(rec) != 3+payload {
				t.Errorf("expected %d bytes, got %d", 3+payload, len(rec))
			}

			got, _, err := DecodeCube(rec, lm)
			if err != nil {
				t.Fatalf("DecodeCube failed: %v", err)
			}
			if diff := cmp.Diff(c, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeCube_Errors(t *testing.T) {
	valid, err := EncodeCube(testCube(LightFlat, []uint8{5, 9}, []int{1, 2}), LightFlat)
	if err != nil {
		t.Fatalf("EncodeCube failed: %v", err)
	}

	// Declares one threshold with 11 polygons.
	badCount := []byte{1, 0, 2, 11, 0}
	// Declares one polygon but carries none.
	badGeometry := []byte{1, 0, 2, 1, 0}

	tests := []struct {
		name string
		rec  []byte
		want error
	}{
		{"empty input", nil, ErrShortRead},
		{"run marker", []byte{0x85}, ErrCorrupt},
		{"truncated header", []byte{2, 0}, ErrShortRead},
		{"truncated payload", valid[:len(valid)-1], ErrShortRead},
		{"polygon count over limit", badCount, ErrCorrupt},
		{"geometry length mismatch", badGeometry, ErrCorrupt},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := DecodeCube(tc.rec, LightFlat); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDecodeCube_Empty(t *testing.T) {
	c, n, err := DecodeCube([]byte{0, 0xFF}, LightGradient)
	if err != nil {
		t.Fatalf("DecodeCube failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 byte consumed, got %d", n)
	}
	if !c.IsEmpty() {
		t.Errorf("expected empty cube, got %d thresholds", len(c.Thresholds))
	}
}
