package mesh

import (
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrEmptyMesh is returned when there is no geometry to export.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Document builds a glTF document with one mesh primitive per surface. The
// material is double sided because marching cubes output has no consistent
// winding across cases.
func Document(m *Mesh, name string) (*gltf.Document, error) {
	if m.TriangleCount() == 0 {
		return nil, ErrEmptyMesh
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "dspftool"

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{0.8, 0.8, 0.8, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "surface",
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
		DoubleSided:          true,
	}}

	gm := &gltf.Mesh{Name: name}
	for _, s := range m.Surfaces {
		if s.TriangleCount() == 0 {
			continue
		}
		posAccessor := modeler.WritePosition(doc, s.Positions)
		normalAccessor := modeler.WriteNormal(doc, s.Normals)
		gm.Primitives = append(gm.Primitives, &gltf.Primitive{
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normalAccessor,
			},
			Material: gltf.Index(0),
			Extras:   map[string]any{"threshold": s.Value, "index": s.Index},
		})
	}

	doc.Meshes = []*gltf.Mesh{gm}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// Encode writes m to w as binary glTF.
func Encode(w io.Writer, m *Mesh, name string) error {
	doc, err := Document(m, name)
	if err != nil {
		return err
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glb: %w", err)
	}
	return nil
}

// WriteGLB saves m as a .glb file.
func WriteGLB(m *Mesh, path, name string) error {
	doc, err := Document(m, name)
	if err != nil {
		return err
	}
	return gltf.SaveBinary(doc, path)
}
