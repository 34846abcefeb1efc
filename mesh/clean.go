package mesh

import (
	"math"
	"sort"
)

// DefaultMergeRatio is the merge distance as a fraction of the bounding box
// diagonal used when the caller does not provide one.
const DefaultMergeRatio = 1e-5

// areaTolerance is relative to the squared bounding box diagonal.
const areaTolerance = 1e-14

// CleanReport describes what a Clean pass removed.
type CleanReport struct {
	VerticesBefore int
	VerticesAfter  int
	FacesBefore    int
	FacesAfter     int

	VerticesMerged       int
	DuplicateFaces       int
	DegenerateFaces      int
	UnreferencedVertices int
}

// FacesRemoved returns the face count delta of the pass.
func (r CleanReport) FacesRemoved() int {
	return r.FacesBefore - r.FacesAfter
}

// VerticesRemoved returns the vertex count delta of the pass.
func (r CleanReport) VerticesRemoved() int {
	return r.VerticesBefore - r.VerticesAfter
}

// Empty reports whether the pass did not change anything.
func (r CleanReport) Empty() bool {
	return r.FacesRemoved() == 0 && r.VerticesRemoved() == 0
}

// MergeDistance derives a merge distance from the bounding box of m.
func MergeDistance(m *Mesh, ratio float64) float64 {
	_, _, diag := m.Bounds()
	return diag * ratio
}

// Clean repairs m in place: vertices closer than mergeDistance are unified,
// duplicate and zero area faces are dropped and vertices no face references
// are removed. It never fails, a fully removed mesh is reported as zero faces.
// Running it twice is the same as running it once.
func Clean(m *Mesh, mergeDistance float64) CleanReport {
	report := CleanReport{
		VerticesBefore: m.VertexCount(),
		FacesBefore:    m.FaceCount(),
	}
	_, _, diag := m.Bounds()

	if mergeDistance > 0 {
		report.VerticesMerged = mergeClose(m, mergeDistance)
	}
	report.DuplicateFaces = removeDuplicateFaces(m)
	report.DegenerateFaces = removeDegenerateFaces(m, areaTolerance*diag*diag)
	report.UnreferencedVertices = removeUnreferenced(m)
	m.UpdateAllBoundaries()

	report.VerticesAfter = m.VertexCount()
	report.FacesAfter = m.FaceCount()
	return report
}

type cell [3]int64

func cellOf(m *Mesh, v int, size float64) cell {
	p := m.Vertices[v].Pos
	return cell{
		int64(math.Floor(p[0] / size)),
		int64(math.Floor(p[1] / size)),
		int64(math.Floor(p[2] / size)),
	}
}

// mergeClose visits vertices in ascending id and merges each into the
// lowest id representative closer than dist. Merged vertices never become
// representatives, so merges do not chain: a within dist of b and b within
// dist of c does not pull c into a.
func mergeClose(m *Mesh, dist float64) int {
	var (
		grid   = make(map[cell][]int)
		merged = 0
		dist2  = dist * dist
	)
	for vi := range m.Vertices {
		if m.Vertices[vi].Dead {
			continue
		}
		c := cellOf(m, vi, dist)
		target := -1
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, rep := range grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if target != -1 && rep > target {
							break
						}
						d := m.Vertices[rep].Pos.Sub(m.Vertices[vi].Pos)
						if d.Dot(d) < dist2 {
							target = rep
							break
						}
					}
				}
			}
		}
		if target == -1 {
			grid[c] = append(grid[c], vi)
			continue
		}
		// Degenerate faces left behind are dropped by removeDegenerateFaces.
		moveFaces(m, vi, target)
		merged++
	}
	return merged
}

// moveFaces is ReplaceVertex without the degenerate face removal.
func moveFaces(m *Mesh, from, to int) {
	src := &m.Vertices[from]
	for _, f := range src.faces {
		face := &m.Faces[f]
		for c := range face.V {
			if face.V[c] == from {
				face.V[c] = to
			}
		}
		m.Vertices[to].faces = insertSorted(m.Vertices[to].faces, f)
	}
	src.faces = nil
	m.KillVertex(from)
}

func removeDuplicateFaces(m *Mesh) int {
	var (
		seen    = make(map[[3]int]bool)
		removed = 0
	)
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Dead || f.Degenerate() {
			continue
		}
		key := f.V
		sort.Ints(key[:])
		if seen[key] {
			m.RemoveFace(fi)
			removed++
			continue
		}
		seen[key] = true
	}
	return removed
}

func removeDegenerateFaces(m *Mesh, minArea float64) int {
	removed := 0
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Dead {
			continue
		}
		if f.Degenerate() || m.FaceArea(fi) <= minArea {
			m.RemoveFace(fi)
			removed++
		}
	}
	return removed
}

func removeUnreferenced(m *Mesh) int {
	removed := 0
	for vi := range m.Vertices {
		if !m.Vertices[vi].Dead && len(m.Vertices[vi].faces) == 0 {
			m.KillVertex(vi)
			removed++
		}
	}
	return removed
}
