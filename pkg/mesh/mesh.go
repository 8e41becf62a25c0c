// Package mesh turns the cube geometry of a display file into triangle
// meshes, one surface per threshold, and exports them as binary glTF.
package mesh

import (
	"fmt"
	"sort"

	"github.com/OSGeo/grass-dspf/pkg/dspf"
	"github.com/OSGeo/grass-dspf/pkg/math"
)

// CubeSource yields cubes in data section order. *dspf.File implements it.
type CubeSource interface {
	Cubes(fn func(i int, c *dspf.Cube) error) error
}

// Options controls placement and filtering.
type Options struct {
	// Origin is the world position of grid cell (0,0,0).
	Origin math.Vec3
	// CellSize is the world extent of one cell. Zero components mean 1.
	CellSize math.Vec3
	// Thresholds limits output to these table indexes. Empty means all.
	Thresholds []uint8
}

// Surface is the triangle list of one threshold. Every three consecutive
// positions form a triangle.
type Surface struct {
	Index     uint8
	Value     float32
	Positions [][3]float32
	Normals   [][3]float32
}

// TriangleCount returns the number of triangles in the surface.
func (s *Surface) TriangleCount() int {
	return len(s.Positions) / 3
}

// Mesh holds the surfaces of a display file ordered by threshold index.
type Mesh struct {
	Surfaces []*Surface
}

// TriangleCount returns the number of triangles across all surfaces.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Surfaces {
		n += s.TriangleCount()
	}
	return n
}

// Build walks every cube of src and collects its polygons into surfaces.
func Build(h *dspf.Header, src CubeSource, opts Options) (*Mesh, error) {
	size := opts.CellSize
	if size.X == 0 {
		size.X = 1
	}
	if size.Y == 0 {
		size.Y = 1
	}
	if size.Z == 0 {
		size.Z = 1
	}
	xf := math.GridToWorld(opts.Origin, size)
	nxf := xf.NormalMatrix()

	var keep map[uint8]bool
	if len(opts.Thresholds) > 0 {
		keep = make(map[uint8]bool, len(opts.Thresholds))
		for _, t := range opts.Thresholds {
			keep[t] = true
		}
	}

	flat := h.LightModel == dspf.LightFlat
	surfaces := make(map[uint8]*Surface)

	err := src.Cubes(func(i int, c *dspf.Cube) error {
		if c.IsEmpty() {
			return nil
		}
		x, y, z := h.CubeCoords(i)
		cell := math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}

		for _, t := range c.Thresholds {
			if keep != nil && !keep[t.Index] {
				continue
			}
			if int(t.Index) >= len(h.Thresholds) {
				return fmt.Errorf("cube %d references threshold %d of %d", i, t.Index, len(h.Thresholds))
			}
			s := surfaces[t.Index]
			if s == nil {
				s = &Surface{Index: t.Index, Value: h.Thresholds[t.Index]}
				surfaces[t.Index] = s
			}
			for _, p := range t.Polygons {
				var pos, dir [3]math.Vec3
				var ref math.Vec3
				for v := 0; v < 3; v++ {
					pos[v] = xf.TransformVec3(cell.Add(math.FromBytes(p.Vertices[v])))
					n := p.Normals[v]
					if flat {
						n = p.Normals[0]
					}
					dir[v] = nxf.TransformDirection(math.DirectionFromBytes(n)).Normalize()
					if ref == (math.Vec3{}) {
						ref = dir[v]
					}
				}
				for v := 0; v < 3; v++ {
					if dir[v] == (math.Vec3{}) {
						dir[v] = faceNormal(pos, ref)
					}
					s.Positions = append(s.Positions, pos[v].Array())
					s.Normals = append(s.Normals, dir[v].Array())
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m := &Mesh{Surfaces: make([]*Surface, 0, len(surfaces))}
	for _, s := range surfaces {
		m.Surfaces = append(m.Surfaces, s)
	}
	sort.Slice(m.Surfaces, func(i, j int) bool {
		return m.Surfaces[i].Index < m.Surfaces[j].Index
	})
	return m, nil
}

// faceNormal stands in for a vertex normal that decodes to no direction. It
// is flipped to agree with ref, the first usable normal of the polygon.
func faceNormal(pos [3]math.Vec3, ref math.Vec3) math.Vec3 {
	n := math.FaceNormal(pos[0], pos[1], pos[2])
	if n.Dot(ref) < 0 {
		return n.Scale(-1)
	}
	return n
}
