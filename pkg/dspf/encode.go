package dspf

import (
	"encoding/binary"
	"fmt"
)

// EncodeCube returns the cube record for c. An empty cube encodes as the
// single byte 0; writers route empty cubes through run markers instead.
func EncodeCube(c *Cube, lm LightModel) ([]byte, error) {
	return AppendCube(nil, c, lm)
}

// AppendCube appends the cube record for c to dst. On error dst is returned
// unchanged.
func AppendCube(dst []byte, c *Cube, lm LightModel) ([]byte, error) {
	if !lm.Valid() {
		return dst, fmt.Errorf("%w: %d", ErrInvalidLightModel, lm)
	}
	if err := c.Validate(); err != nil {
		return dst, err
	}
	if c.IsEmpty() {
		return append(dst, 0), nil
	}

	n := len(c.Thresholds)
	size := payloadSize(c, lm)
	if size > maxPayload {
		return dst, fmt.Errorf("%w: payload of %d bytes (max %d)", ErrOverflow, size, maxPayload)
	}

	dst = append(dst, byte(n))
	dst = binary.BigEndian.AppendUint16(dst, uint16(size))
	for _, t := range c.Thresholds {
		dst = append(dst, byte(len(t.Polygons)))
	}
	for _, t := range c.Thresholds {
		dst = append(dst, t.Index)
	}

	normals := lm.NormalsPerPolygon()
	for _, t := range c.Thresholds {
		for i := range t.Polygons {
			p := &t.Polygons[i]
			for v := 0; v < 3; v++ {
				dst = append(dst, p.Vertices[v][:]...)
			}
			for k := 0; k < normals; k++ {
				dst = append(dst, p.Normals[k][:]...)
			}
		}
	}
	return dst, nil
}

// payloadSize is the record length after the 3-byte header.
func payloadSize(c *Cube, lm LightModel) int {
	return 2*len(c.Thresholds) + c.PolygonCount()*lm.PolygonSize()
}
