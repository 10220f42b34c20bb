package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fogleman/fauxgl"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// LoadMesh loads an OBJ, STL or PLY file into shared-vertex mesh data.
// Normals are kept only if every vertex has one; the same holds for texture coordinates.
func LoadMesh(filename string) (geometry.MeshData, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".obj", ".stl", ".ply":
	case ".gltf", ".glb":
		return LoadGLTF(filename)
	default:
		return geometry.MeshData{}, fmt.Errorf("mesh %s: unsupported format %q", filename, ext)
	}

	mesh, err := fauxgl.LoadMesh(filename)
	if err != nil {
		return geometry.MeshData{}, fmt.Errorf("failed to load mesh %s: %w", filename, err)
	}
	if len(mesh.Triangles) == 0 {
		return geometry.MeshData{}, fmt.Errorf("%w: %s has no triangles", geometry.ErrInvalidMesh, filename)
	}

	data := meshFromTriangles(mesh.Triangles)
	data.Name = filepath.Base(filename)
	return data, nil
}

// vertexKey identifies a fully specified vertex for deduplication
type vertexKey struct {
	position, normal, uv fauxgl.Vector
}

// meshFromTriangles welds fauxgl's triangle soup into indexed buffers
func meshFromTriangles(triangles []*fauxgl.Triangle) geometry.MeshData {
	hasNormals, hasUVs := true, false
	for _, t := range triangles {
		for _, v := range [3]fauxgl.Vertex{t.V1, t.V2, t.V3} {
			if v.Normal == (fauxgl.Vector{}) {
				hasNormals = false
			}
			if v.Texture != (fauxgl.Vector{}) {
				hasUVs = true
			}
		}
	}

	var data geometry.MeshData
	seen := make(map[vertexKey]int)
	data.Indices = make([]int, 0, len(triangles)*3)

	for _, t := range triangles {
		for _, v := range [3]fauxgl.Vertex{t.V1, t.V2, t.V3} {
			key := vertexKey{position: v.Position}
			if hasNormals {
				key.normal = v.Normal
			}
			if hasUVs {
				key.uv = v.Texture
			}

			index, ok := seen[key]
			if !ok {
				index = len(data.Positions)
				seen[key] = index
				data.Positions = append(data.Positions, toVec3(v.Position))
				if hasNormals {
					data.Normals = append(data.Normals, toVec3(v.Normal))
				}
				if hasUVs {
					data.UVs = append(data.UVs, core.NewVec2(v.Texture.X, v.Texture.Y))
				}
			}
			data.Indices = append(data.Indices, index)
		}
	}

	return data
}

func toVec3(v fauxgl.Vector) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
