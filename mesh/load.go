package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Load validates d and builds a mesh from it. Nothing is mutated on error.
// Face ids and vertex ids of the mesh equal the indexes in d.
func Load(d Descriptor) (*Mesh, error) {
	numVerts := len(d.Positions)

	if len(d.Normals) != 0 && len(d.Normals) != numVerts {
		return nil, malformed(-1, -1, "%d normals declared for %d vertices", len(d.Normals), numVerts)
	}
	if len(d.UVs) != 0 && len(d.UVs) != len(d.Faces) {
		return nil, malformed(-1, -1, "%d uv entries declared for %d faces", len(d.UVs), len(d.Faces))
	}
	if len(d.Materials) != 0 && len(d.Materials) != len(d.Faces) {
		return nil, malformed(-1, -1, "%d materials declared for %d faces", len(d.Materials), len(d.Faces))
	}
	for vi, p := range d.Positions {
		if !finite3(p) {
			return nil, malformed(-1, vi, "position is not finite")
		}
	}
	for vi, n := range d.Normals {
		if !finite3(n) {
			return nil, malformed(-1, vi, "normal is not finite")
		}
	}
	for fi, face := range d.Faces {
		if len(face) != 3 {
			return nil, malformed(fi, -1, "face has %d vertices, only triangles are supported", len(face))
		}
		for _, vi := range face {
			if vi < 0 || vi >= numVerts {
				return nil, malformed(fi, vi, "vertex index out of range, %d vertices declared", numVerts)
			}
		}
		if len(d.UVs) == 0 {
			continue
		}
		uvs := d.UVs[fi]
		if len(uvs) != 0 && len(uvs) != len(face) {
			return nil, malformed(fi, -1, "%d uv corners declared for %d vertices", len(uvs), len(face))
		}
		for _, uv := range uvs {
			if !finite2(uv) {
				return nil, malformed(fi, -1, "uv corner is not finite")
			}
		}
	}

	m := &Mesh{
		Vertices:     make([]Vertex, numVerts),
		Faces:        make([]Face, len(d.Faces)),
		Texture:      d.Texture,
		liveFaces:    len(d.Faces),
		liveVertices: numVerts,
	}
	for vi, p := range d.Positions {
		v := &m.Vertices[vi]
		v.Pos = p
		if len(d.Normals) != 0 {
			v.Normal = d.Normals[vi]
			v.HasNormal = true
		}
	}
	for fi, src := range d.Faces {
		f := &m.Faces[fi]
		copy(f.V[:], src)
		if len(d.UVs) != 0 && len(d.UVs[fi]) == 3 {
			copy(f.UV[:], d.UVs[fi])
			f.HasUV = true
		}
		if len(d.Materials) != 0 {
			f.Material = d.Materials[fi]
		}
		// faces are visited in ascending id, appends keep the sets sorted
		for _, vi := range uniqueCorners(f.V) {
			m.Vertices[vi].faces = append(m.Vertices[vi].faces, fi)
		}
	}
	m.UpdateAllBoundaries()
	return m, nil
}

// Export returns the live geometry with ids renumbered densely in ascending
// id order. Optional lists are only filled when the mesh carries them.
func (m *Mesh) Export() Descriptor {
	var (
		remap      = make([]int, len(m.Vertices))
		hasNormals = false
		hasUVs     = m.HasUV()
		hasMats    = false
		out        = Descriptor{Texture: m.Texture}
	)
	for vi := range m.Vertices {
		v := &m.Vertices[vi]
		remap[vi] = -1
		if v.Dead {
			continue
		}
		remap[vi] = len(out.Positions)
		out.Positions = append(out.Positions, v.Pos)
		hasNormals = hasNormals || v.HasNormal
	}
	if hasNormals {
		out.Normals = make([]mgl64.Vec3, 0, len(out.Positions))
		for vi := range m.Vertices {
			if !m.Vertices[vi].Dead {
				out.Normals = append(out.Normals, m.Vertices[vi].Normal)
			}
		}
	}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Dead {
			continue
		}
		hasMats = hasMats || f.Material != 0
		out.Faces = append(out.Faces, []int{remap[f.V[0]], remap[f.V[1]], remap[f.V[2]]})
		if hasUVs {
			var uvs []mgl64.Vec2
			if f.HasUV {
				uvs = []mgl64.Vec2{f.UV[0], f.UV[1], f.UV[2]}
			}
			out.UVs = append(out.UVs, uvs)
		}
	}
	if hasMats {
		out.Materials = make([]int, 0, len(out.Faces))
		for fi := range m.Faces {
			if !m.Faces[fi].Dead {
				out.Materials = append(out.Materials, m.Faces[fi].Material)
			}
		}
	}
	return out
}

// LiveFaces returns the ids of the live faces, ascending.
func (m *Mesh) LiveFaces() []int {
	out := make([]int, 0, m.liveFaces)
	for fi := range m.Faces {
		if !m.Faces[fi].Dead {
			out = append(out, fi)
		}
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite2(v mgl64.Vec2) bool {
	return finite(v[0]) && finite(v[1])
}

func finite3(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
