package dspf

import (
	"encoding/binary"
	"fmt"
)

// DecodeCube decodes one literal cube record from the start of rec and
// returns the cube together with the number of bytes consumed. Run markers
// are rejected; they only have meaning inside a Reader.
func DecodeCube(rec []byte, lm LightModel) (*Cube, int, error) {
	if !lm.Valid() {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidLightModel, lm)
	}
	if len(rec) == 0 {
		return nil, 0, fmt.Errorf("%w: empty record", ErrShortRead)
	}
	if rec[0]&runFlag != 0 {
		return nil, 0, fmt.Errorf("%w: run marker 0x%02x where a cube record was expected", ErrCorrupt, rec[0])
	}

	n := int(rec[0])
	c := &Cube{}
	if n == 0 {
		return c, 1, nil
	}
	if len(rec) < cubeHeaderSize {
		return nil, 0, fmt.Errorf("%w: cube header needs %d bytes, have %d", ErrShortRead, cubeHeaderSize, len(rec))
	}
	size := int(binary.BigEndian.Uint16(rec[1:cubeHeaderSize]))
	end := cubeHeaderSize + size
	if len(rec) < end {
		return nil, 0, fmt.Errorf("%w: payload of %d bytes, have %d", ErrShortRead, size, len(rec)-cubeHeaderSize)
	}
	if err := decodePayload(c, n, rec[cubeHeaderSize:end], lm); err != nil {
		return nil, 0, err
	}
	return c, end, nil
}

// decodePayload fills c from the payload of a record with n thresholds.
// Polygon bytes are copied, so payload may be reused afterwards.
func decodePayload(c *Cube, n int, payload []byte, lm LightModel) error {
	if len(payload) < 2*n {
		return fmt.Errorf("%w: payload of %d bytes cannot hold %d threshold headers", ErrCorrupt, len(payload), n)
	}
	counts := payload[:n]
	indexes := payload[n : 2*n]
	geometry := payload[2*n:]

	total := 0
	for i, k := range counts {
		if k > MaxPolygons {
			return fmt.Errorf("%w: threshold %d declares %d polygons", ErrCorrupt, i, k)
		}
		total += int(k)
	}
	polySize := lm.PolygonSize()
	if len(geometry) != total*polySize {
		return fmt.Errorf("%w: %d geometry bytes for %d polygons of %d bytes",
			ErrCorrupt, len(geometry), total, polySize)
	}

	normals := lm.NormalsPerPolygon()
	if cap(c.Thresholds) < n {
		c.Thresholds = make([]ThresholdEntry, 0, n)
	}
	c.Thresholds = c.Thresholds[:0]

	off := 0
	for i := 0; i < n; i++ {
		e := ThresholdEntry{Index: indexes[i]}
		if counts[i] > 0 {
			e.Polygons = make([]Polygon, counts[i])
		}
		for j := range e.Polygons {
			p := &e.Polygons[j]
			for v := 0; v < 3; v++ {
				copy(p.Vertices[v][:], geometry[off:off+pointSize])
				off += pointSize
			}
			for k := 0; k < normals; k++ {
				copy(p.Normals[k][:], geometry[off:off+pointSize])
				off += pointSize
			}
		}
		c.Thresholds = append(c.Thresholds, e)
	}
	return nil
}
