package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// LoadGLTF loads every triangle primitive of a glTF or GLB document into one mesh.
// Node transforms are not applied; primitives keep their mesh-local coordinates.
func LoadGLTF(filename string) (geometry.MeshData, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return geometry.MeshData{}, fmt.Errorf("failed to open gltf %s: %w", filename, err)
	}

	data := geometry.MeshData{Name: filepath.Base(filename)}
	var normalsMissing, uvsMissing bool

	for _, m := range doc.Meshes {
		for p, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			part, err := readPrimitive(doc, prim)
			if err != nil {
				return geometry.MeshData{}, fmt.Errorf("gltf %s mesh %q primitive %d: %w", filename, m.Name, p, err)
			}

			base := len(data.Positions)
			// A primitive without normals or uvs drops them for the whole mesh
			normalsMissing = normalsMissing || len(part.Normals) == 0
			uvsMissing = uvsMissing || len(part.UVs) == 0

			data.Positions = append(data.Positions, part.Positions...)
			data.Normals = append(data.Normals, part.Normals...)
			data.UVs = append(data.UVs, part.UVs...)
			for _, idx := range part.Indices {
				data.Indices = append(data.Indices, base+idx)
			}
		}
	}

	if len(data.Indices) == 0 {
		return geometry.MeshData{}, fmt.Errorf("%w: gltf %s has no triangle primitives", geometry.ErrInvalidMesh, filename)
	}
	if normalsMissing {
		data.Normals = nil
	}
	if uvsMissing {
		data.UVs = nil
	}
	return data, nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (geometry.MeshData, error) {
	var part geometry.MeshData

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return part, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return part, fmt.Errorf("read positions: %w", err)
	}
	part.Positions = make([]core.Vec3, len(positions))
	for i, p := range positions {
		part.Positions[i] = core.NewVec3(float64(p[0]), float64(p[1]), float64(p[2]))
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return part, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) == len(positions) {
			part.Normals = make([]core.Vec3, len(normals))
			for i, n := range normals {
				part.Normals[i] = core.NewVec3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
		}
	}

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return part, fmt.Errorf("read uvs: %w", err)
		}
		if len(uvs) == len(positions) {
			part.UVs = make([]core.Vec2, len(uvs))
			for i, uv := range uvs {
				// glTF puts v=0 at the top of the image
				part.UVs[i] = core.NewVec2(float64(uv[0]), 1-float64(uv[1]))
			}
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return part, fmt.Errorf("read indices: %w", err)
		}
		part.Indices = make([]int, 0, len(indices)-len(indices)%3)
		for _, idx := range indices[:len(indices)-len(indices)%3] {
			part.Indices = append(part.Indices, int(idx))
		}
	} else {
		// Unindexed: consecutive vertex triples
		n := len(positions) - len(positions)%3
		part.Indices = make([]int, n)
		for i := range part.Indices {
			part.Indices[i] = i
		}
	}

	return part, nil
}
