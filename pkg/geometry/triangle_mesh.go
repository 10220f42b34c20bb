package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/texture"
)

// ErrInvalidMesh is returned when ingested mesh buffers are inconsistent
var ErrInvalidMesh = errors.New("invalid mesh")

// MeshData is an already-parsed triangle mesh: shared vertex buffers plus index triples.
// Normals and UVs are optional; when present they have one entry per position.
type MeshData struct {
	Name        string
	Positions   []core.Vec3
	Normals     []core.Vec3
	UVs         []core.Vec2
	Indices     []int // Three per triangle
	MaterialIDs []int // Optional, one per triangle, indexing the materials slice
}

// TriangleCount returns the number of index triples
func (d MeshData) TriangleCount() int {
	return len(d.Indices) / 3
}

// Validate checks buffer lengths, index ranges and material references
func (d MeshData) Validate(materialCount int) error {
	name := d.Name
	if name == "" {
		name = "unnamed"
	}

	if len(d.Positions) == 0 {
		return fmt.Errorf("%w: mesh %q has no positions", ErrInvalidMesh, name)
	}
	if len(d.Indices) == 0 || len(d.Indices)%3 != 0 {
		return fmt.Errorf("%w: mesh %q has %d indices, want a non-zero multiple of 3", ErrInvalidMesh, name, len(d.Indices))
	}
	if len(d.Normals) != 0 && len(d.Normals) != len(d.Positions) {
		return fmt.Errorf("%w: mesh %q has %d normals for %d positions", ErrInvalidMesh, name, len(d.Normals), len(d.Positions))
	}
	if len(d.UVs) != 0 && len(d.UVs) != len(d.Positions) {
		return fmt.Errorf("%w: mesh %q has %d uvs for %d positions", ErrInvalidMesh, name, len(d.UVs), len(d.Positions))
	}
	for i, p := range d.Positions {
		if !p.IsFinite() {
			return fmt.Errorf("%w: mesh %q position %d is not finite", ErrInvalidMesh, name, i)
		}
	}
	for i, idx := range d.Indices {
		if idx < 0 || idx >= len(d.Positions) {
			return fmt.Errorf("%w: mesh %q triangle %d references vertex %d of %d", ErrInvalidMesh, name, i/3, idx, len(d.Positions))
		}
	}

	if materialCount == 0 {
		return fmt.Errorf("%w: mesh %q has no materials", ErrInvalidMesh, name)
	}
	if len(d.MaterialIDs) != 0 {
		if len(d.MaterialIDs) != d.TriangleCount() {
			return fmt.Errorf("%w: mesh %q has %d material ids for %d triangles", ErrInvalidMesh, name, len(d.MaterialIDs), d.TriangleCount())
		}
		for i, id := range d.MaterialIDs {
			if id < 0 || id >= materialCount {
				return fmt.Errorf("%w: mesh %q triangle %d references material %d of %d", ErrInvalidMesh, name, i, id, materialCount)
			}
		}
	}

	return nil
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	NormalMap *texture.Image // Tangent-space normal map in linear [0,1] encoding; needs UVs
}

// TriangleMesh represents a collection of triangles with efficient ray intersection.
// It uses an internal BVH (Bounding Volume Hierarchy) for fast intersection tests.
type TriangleMesh struct {
	data      MeshData
	materials []material.Material
	normalMap *texture.Image
	triangles []Shape
	bvh       *BVH
	bbox      core.AABB
}

// NewTriangleMesh validates the mesh data and builds the mesh.
// Zero-area triangles are kept but never hit.
func NewTriangleMesh(data MeshData, materials []material.Material, opts TriangleMeshOptions) (*TriangleMesh, error) {
	if err := data.Validate(len(materials)); err != nil {
		return nil, err
	}
	for i, m := range materials {
		if m == nil {
			return nil, fmt.Errorf("%w: mesh %q material %d is nil", ErrInvalidMesh, data.Name, i)
		}
	}
	if opts.NormalMap != nil && len(data.UVs) == 0 {
		return nil, fmt.Errorf("%w: mesh %q has a normal map but no uvs", ErrInvalidMesh, data.Name)
	}

	mesh := &TriangleMesh{
		data:      data,
		materials: materials,
		normalMap: opts.NormalMap,
	}

	mesh.triangles = make([]Shape, data.TriangleCount())
	for i := range mesh.triangles {
		tri := &meshTriangle{mesh: mesh, index: i}
		v0, v1, v2 := tri.vertices()
		tri.bbox = core.NewAABBFromPoints(v0, v1, v2).Expand(1e-6)
		mesh.triangles[i] = tri
	}

	mesh.bvh = NewBVH(mesh.triangles)
	mesh.bbox = mesh.bvh.BoundingBox()

	return mesh, nil
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return tm.bvh.Hit(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// GetTriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.triangles)
}

// Name returns the mesh name from its data
func (tm *TriangleMesh) Name() string {
	return tm.data.Name
}

// meshTriangle references its vertices through the mesh buffers
type meshTriangle struct {
	mesh  *TriangleMesh
	index int
	bbox  core.AABB
}

func (t *meshTriangle) indices() (int, int, int) {
	idx := t.mesh.data.Indices[t.index*3 : t.index*3+3]
	return idx[0], idx[1], idx[2]
}

func (t *meshTriangle) vertices() (core.Vec3, core.Vec3, core.Vec3) {
	i0, i1, i2 := t.indices()
	p := t.mesh.data.Positions
	return p[i0], p[i1], p[i2]
}

func (t *meshTriangle) BoundingBox() core.AABB {
	return t.bbox
}

func (t *meshTriangle) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	v0, v1, v2 := t.vertices()
	tHit, b1, b2, ok := intersectTriangle(ray, v0, v1, v2, tMin, tMax)
	if !ok {
		return nil, false
	}
	b0 := 1 - b1 - b2

	faceNormal := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	if faceNormal.IsZero() || !faceNormal.IsFinite() {
		return nil, false
	}

	data := &t.mesh.data
	i0, i1, i2 := t.indices()

	hit := &material.HitRecord{
		T:        tHit,
		Point:    ray.At(tHit),
		UV:       core.NewVec2(b1, b2),
		Material: t.mesh.materialFor(t.index),
	}
	hit.SetFaceNormal(ray, faceNormal)

	if len(data.UVs) != 0 {
		uv0, uv1, uv2 := data.UVs[i0], data.UVs[i1], data.UVs[i2]
		hit.UV = uv0.Multiply(b0).Add(uv1.Multiply(b1)).Add(uv2.Multiply(b2))
	}

	shading := faceNormal
	if len(data.Normals) != 0 {
		n := data.Normals[i0].Multiply(b0).Add(data.Normals[i1].Multiply(b1)).Add(data.Normals[i2].Multiply(b2)).Normalize()
		// Degenerate vertex normals fall back to the face normal
		if !n.IsZero() && n.IsFinite() {
			shading = n
		}
	}

	if t.mesh.normalMap != nil {
		shading = t.applyNormalMap(shading, hit.UV, v0, v1, v2)
	}
	hit.SetShadingNormal(shading)

	return hit, true
}

// applyNormalMap perturbs n with the tangent-space normal map at uv.
// The tangent frame comes from the triangle's UV parameterization.
func (t *meshTriangle) applyNormalMap(n core.Vec3, uv core.Vec2, v0, v1, v2 core.Vec3) core.Vec3 {
	data := &t.mesh.data
	i0, i1, i2 := t.indices()
	uv0, uv1, uv2 := data.UVs[i0], data.UVs[i1], data.UVs[i2]

	du1, dv1 := uv1.X-uv0.X, uv1.Y-uv0.Y
	du2, dv2 := uv2.X-uv0.X, uv2.Y-uv0.Y
	det := du1*dv2 - du2*dv1
	if math.Abs(det) < 1e-12 {
		return n
	}

	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)
	tangent := e1.Multiply(dv2).Subtract(e2.Multiply(dv1)).Multiply(1 / det)
	bitangent := e2.Multiply(du1).Subtract(e1.Multiply(du2)).Multiply(1 / det)

	// Gram-Schmidt against the shading normal, keeping the UV handedness
	tangent = tangent.Subtract(n.Multiply(n.Dot(tangent))).Normalize()
	if tangent.IsZero() {
		return n
	}
	sign := 1.0
	if n.Cross(tangent).Dot(bitangent) < 0 {
		sign = -1.0
	}
	bitangentOrtho := n.Cross(tangent).Multiply(sign)

	c := t.mesh.normalMap.Sample(uv)
	local := core.NewVec3(2*c.X-1, 2*c.Y-1, 2*c.Z-1)
	perturbed := tangent.Multiply(local.X).Add(bitangentOrtho.Multiply(local.Y)).Add(n.Multiply(local.Z)).Normalize()
	if perturbed.IsZero() || !perturbed.IsFinite() {
		return n
	}
	return perturbed
}

func (tm *TriangleMesh) materialFor(triangle int) material.Material {
	if len(tm.data.MaterialIDs) != 0 {
		return tm.materials[tm.data.MaterialIDs[triangle]]
	}
	return tm.materials[0]
}
