package dspf

import "fmt"

// LightModel selects how many normals each polygon carries.
type LightModel int32

// Lighting models.
const (
	LightFlat        LightModel = 1 // one normal per polygon
	LightGradient    LightModel = 2 // one normal per vertex
	LightGradientAlt LightModel = 3 // written by older tracers, stored like LightGradient
)

// Valid reports whether m is a known lighting model.
func (m LightModel) Valid() bool {
	return m >= LightFlat && m <= LightGradientAlt
}

// NormalsPerPolygon returns 1 for flat shading and 3 for gradient shading.
func (m LightModel) NormalsPerPolygon() int {
	if m == LightFlat {
		return 1
	}
	return 3
}

// PolygonSize returns the encoded size of one polygon in bytes.
func (m LightModel) PolygonSize() int {
	return (3 + m.NormalsPerPolygon()) * pointSize
}

// String returns a human-readable model name.
func (m LightModel) String() string {
	switch m {
	case LightFlat:
		return "flat"
	case LightGradient:
		return "gradient"
	case LightGradientAlt:
		return "gradient(3)"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(m))
	}
}

// Point is a position or normal inside the unit cube, quantized to 0..255
// per axis.
type Point [3]uint8

// NewPoint builds a Point from integer components, rejecting any component
// outside 0..255.
func NewPoint(x, y, z int) (Point, error) {
	for _, v := range [3]int{x, y, z} {
		if v < 0 || v > 255 {
			return Point{}, fmt.Errorf("%w: point component %d", ErrOutOfRange, v)
		}
	}
	return Point{uint8(x), uint8(y), uint8(z)}, nil
}

// Polygon is one triangle of the iso-surface. Flat shaded files keep only
// Normals[0]; the other two are zero after decoding.
type Polygon struct {
	Vertices [3]Point
	Normals  [3]Point
}

// ThresholdEntry holds the polygons one threshold produced inside a cube.
type ThresholdEntry struct {
	Index    uint8 // index into Header.Thresholds
	Polygons []Polygon
}

// Cube is the geometry of one grid cell. A cube without thresholds is empty.
type Cube struct {
	Thresholds []ThresholdEntry
}

// IsEmpty reports whether the cube carries no geometry.
func (c *Cube) IsEmpty() bool {
	return c == nil || len(c.Thresholds) == 0
}

// PolygonCount returns the number of polygons across all thresholds.
func (c *Cube) PolygonCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, t := range c.Thresholds {
		n += len(t.Polygons)
	}
	return n
}

// Validate checks the cube against the limits of the encoded fields.
func (c *Cube) Validate() error {
	if c == nil {
		return nil
	}
	if len(c.Thresholds) > MaxThresholds {
		return fmt.Errorf("%w: %d thresholds (max %d)", ErrOverflow, len(c.Thresholds), MaxThresholds)
	}
	for i, t := range c.Thresholds {
		if t.Index > MaxThresholdIndex {
			return fmt.Errorf("%w: threshold %d has table index %d (max %d)",
				ErrOverflow, i, t.Index, MaxThresholdIndex)
		}
		if len(t.Polygons) > MaxPolygons {
			return fmt.Errorf("%w: threshold %d has %d polygons (max %d)",
				ErrOverflow, i, len(t.Polygons), MaxPolygons)
		}
	}
	return nil
}
