// Package mesh holds the arena indexed triangle mesh that a simplification job
// works on, the pre-clean pass and texture reattachment.
//
// Vertices and faces are dense slices addressed by stable integer ids. Removing
// a vertex or face only marks it dead, ids are renumbered once in Export.
package mesh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Texture is an opaque image handle plus the pixel dimensions used to
// interpret UV stretch. It is shared by pointer between input and output.
type Texture struct {
	Ref    any
	Width  int
	Height int
}

// PixelSize returns width and height, with 1 substituted for unknown values.
func (t *Texture) PixelSize() (float64, float64) {
	w, h := 1.0, 1.0
	if t != nil {
		if t.Width > 0 {
			w = float64(t.Width)
		}
		if t.Height > 0 {
			h = float64(t.Height)
		}
	}
	return w, h
}

// Descriptor is the caller facing mesh representation.
//
// UVs is aligned with Faces. An empty entry means the face has no texture
// coordinates, any other entry must have one UV per face corner.
// Normals and Materials are optional and when set are aligned with
// Positions and Faces respectively.
type Descriptor struct {
	Positions []mgl64.Vec3
	Faces     [][]int
	UVs       [][]mgl64.Vec2
	Normals   []mgl64.Vec3
	Materials []int
	Texture   *Texture
}

// Vertex

type Vertex struct {
	Pos       mgl64.Vec3
	Normal    mgl64.Vec3
	HasNormal bool
	Boundary  bool
	Dead      bool

	// incident live face ids, ascending
	faces []int
}

// Faces returns the ids of live faces referencing the vertex, ascending.
// The slice is owned by the mesh.
func (v *Vertex) Faces() []int {
	return v.faces
}

// Face

type Face struct {
	V        [3]int
	UV       [3]mgl64.Vec2
	HasUV    bool
	Material int
	Dead     bool
}

// Corner returns the corner index of vertex v in the face, or -1.
func (f *Face) Corner(v int) int {
	for i, id := range f.V {
		if id == v {
			return i
		}
	}
	return -1
}

// Has reports whether the face references vertex v.
func (f *Face) Has(v int) bool {
	return f.Corner(v) != -1
}

// Degenerate reports whether two or more corners reference the same vertex.
func (f *Face) Degenerate() bool {
	return f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2]
}

// Mesh

type Mesh struct {
	Vertices []Vertex
	Faces    []Face
	Texture  *Texture

	liveFaces    int
	liveVertices int
}

// FaceCount returns the number of live faces.
func (m *Mesh) FaceCount() int {
	return m.liveFaces
}

// VertexCount returns the number of live vertices.
func (m *Mesh) VertexCount() int {
	return m.liveVertices
}

// HasUV reports whether any live face carries texture coordinates.
func (m *Mesh) HasUV() bool {
	for i := range m.Faces {
		if !m.Faces[i].Dead && m.Faces[i].HasUV {
			return true
		}
	}
	return false
}

// Bounds returns the axis aligned box of the live vertices and its diagonal.
func (m *Mesh) Bounds() (min, max mgl64.Vec3, diagonal float64) {
	first := true
	for i := range m.Vertices {
		v := &m.Vertices[i]
		if v.Dead {
			continue
		}
		if first {
			min, max, first = v.Pos, v.Pos, false
			continue
		}
		for c := 0; c < 3; c++ {
			min[c] = math.Min(min[c], v.Pos[c])
			max[c] = math.Max(max[c], v.Pos[c])
		}
	}
	return min, max, max.Sub(min).Len()
}

// FaceNormal returns the unnormalized normal of face f, its length is twice the area.
func (m *Mesh) FaceNormal(f int) mgl64.Vec3 {
	face := &m.Faces[f]
	return triangleNormal(m.Vertices[face.V[0]].Pos, m.Vertices[face.V[1]].Pos, m.Vertices[face.V[2]].Pos)
}

// FaceArea returns the geometric area of face f.
func (m *Mesh) FaceArea(f int) float64 {
	return m.FaceNormal(f).Len() * 0.5
}

// Neighbors returns the live vertices sharing a live face with v, ascending.
func (m *Mesh) Neighbors(v int) []int {
	seen := make(map[int]bool)
	out := make([]int, 0, len(m.Vertices[v].faces)*2)
	for _, f := range m.Vertices[v].faces {
		for _, id := range m.Faces[f].V {
			if id != v && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Ints(out)
	return out
}

// EdgeFaces returns the live faces containing both a and b, ascending.
func (m *Mesh) EdgeFaces(a, b int) []int {
	var out []int
	for _, f := range m.Vertices[a].faces {
		if m.Faces[f].Has(b) {
			out = append(out, f)
		}
	}
	return out
}

// RemoveFace marks face f dead and drops it from the incident sets of its
// vertices. Boundary flags of the corners are refreshed.
func (m *Mesh) RemoveFace(f int) {
	face := &m.Faces[f]
	if face.Dead {
		return
	}
	face.Dead = true
	m.liveFaces--
	for _, v := range uniqueCorners(face.V) {
		m.Vertices[v].faces = removeSorted(m.Vertices[v].faces, f)
	}
	for _, v := range uniqueCorners(face.V) {
		m.UpdateBoundary(v)
	}
}

// ReplaceVertex rewrites every live face of from to reference to instead,
// moves the incident face ids over and kills from. Faces that end up
// degenerate are removed and returned, ascending.
func (m *Mesh) ReplaceVertex(from, to int) (removed []int) {
	if from == to {
		return nil
	}
	src := &m.Vertices[from]
	moved := src.faces
	src.faces = nil
	for _, f := range moved {
		face := &m.Faces[f]
		for c := range face.V {
			if face.V[c] == from {
				face.V[c] = to
			}
		}
		m.Vertices[to].faces = insertSorted(m.Vertices[to].faces, f)
	}
	m.KillVertex(from)
	for _, f := range moved {
		if m.Faces[f].Degenerate() {
			m.RemoveFace(f)
			removed = append(removed, f)
		}
	}
	return removed
}

// KillVertex tombstones vertex v. Callers make sure no live face references it.
func (m *Mesh) KillVertex(v int) {
	vert := &m.Vertices[v]
	if vert.Dead {
		return
	}
	vert.Dead = true
	vert.Boundary = false
	vert.faces = nil
	m.liveVertices--
}

// UpdateBoundary recomputes the boundary flag of v: a vertex is on the
// boundary when one of its edges has exactly one incident face.
func (m *Mesh) UpdateBoundary(v int) {
	vert := &m.Vertices[v]
	if vert.Dead {
		return
	}
	counts := make(map[int]int)
	for _, f := range vert.faces {
		for _, id := range m.Faces[f].V {
			if id != v {
				counts[id]++
			}
		}
	}
	vert.Boundary = false
	for _, n := range counts {
		if n == 1 {
			vert.Boundary = true
			return
		}
	}
}

// UpdateAllBoundaries refreshes the boundary flag of every live vertex.
func (m *Mesh) UpdateAllBoundaries() {
	for i := range m.Vertices {
		m.UpdateBoundary(i)
	}
}

func triangleNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

func uniqueCorners(v [3]int) []int {
	out := []int{v[0]}
	if v[1] != v[0] {
		out = append(out, v[1])
	}
	if v[2] != v[0] && v[2] != v[1] {
		out = append(out, v[2])
	}
	return out
}

func insertSorted(s []int, id int) []int {
	i := sort.SearchInts(s, id)
	if i < len(s) && s[i] == id {
		return s
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = id
	return s
}

func removeSorted(s []int, id int) []int {
	i := sort.SearchInts(s, id)
	if i < len(s) && s[i] == id {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
