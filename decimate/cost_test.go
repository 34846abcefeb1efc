package decimate

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/jonnenauha/obj-decimate/internal/meshtest"
	"github.com/jonnenauha/obj-decimate/mesh"
)

func loadGrid(t *testing.T, w, h int) *mesh.Mesh {
	m, err := mesh.Load(meshtest.Grid(w, h))
	require.NoError(t, err)
	return m
}

func TestUVArea(t *testing.T) {
	uv := [3]mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}}
	require.InDelta(t, 0.5, uvArea(uv, 1, 1), 1e-12)
	require.InDelta(t, 0.5*512*256, uvArea(uv, 512, 256), 1e-9)
	flipped := [3]mgl64.Vec2{{0, 0}, {0, 1}, {1, 0}}
	require.InDelta(t, -0.5, uvArea(flipped, 1, 1), 1e-12)
}

func TestUVFollowsEdgeWedge(t *testing.T) {
	// 3x3 vertex grid, 5 on the right border merges into the center 4
	m := loadGrid(t, 2, 2)
	d, err := New(m, Options{})
	require.NoError(t, err)
	_, ev, ok := d.evaluate(4, 5)
	require.True(t, ok)

	for _, f := range ev.moved {
		face := &m.Faces[f]
		c := face.Corner(5)
		if c == -1 {
			continue
		}
		uv := ev.uvAt(f, 0)
		// s = 0 puts vertex 5 onto vertex 4 and takes its UV
		require.InDelta(t, 0.5, uv[c][0], 1e-12)
		require.InDelta(t, 0.5, uv[c][1], 1e-12)
		uv = ev.uvAt(f, 1)
		require.InDelta(t, 1, uv[c][0], 1e-12)
	}
}

func TestBoundaryTerm(t *testing.T) {
	m := loadGrid(t, 2, 2)
	term := boundaryTerm(2)

	interior := &evaluation{m: m, a: 4, b: 4}
	require.Equal(t, 0.0, term(interior, &candidate{pos: mgl64.Vec3{3, 3, 0}}))

	// vertex 1 is on the bottom border, 4 is interior
	ev := &evaluation{m: m, a: 1, b: 4}
	require.InDelta(t, 0, term(ev, &candidate{pos: m.Vertices[1].Pos}), 1e-12)
	require.InDelta(t, 2*1.0, term(ev, &candidate{pos: m.Vertices[4].Pos}), 1e-12)
}

func TestPlanarTermDiscountsFlatRegions(t *testing.T) {
	m := loadGrid(t, 2, 2)
	d, err := New(m, Options{PlanarSimplification: true})
	require.NoError(t, err)
	c, ev, ok := d.evaluate(4, 5)
	require.True(t, ok)
	require.Less(t, planarTerm(ev, &c), 0.0)

	// fold the grid along x = 1
	m.Vertices[2].Pos[2] = 1
	m.Vertices[5].Pos[2] = 1
	m.Vertices[8].Pos[2] = 1
	c, ev, ok = d.evaluate(3, 4)
	require.True(t, ok)
	require.Equal(t, 0.0, planarTerm(ev, &c))
}

func TestQualityTermDefersSlivers(t *testing.T) {
	m := loadGrid(t, 2, 2)
	d, err := New(m, Options{})
	require.NoError(t, err)
	_, ev, ok := d.evaluate(4, 5)
	require.True(t, ok)

	term := qualityTerm(0.5)
	good := term(ev, &candidate{pos: m.Vertices[4].Pos})
	// pushed almost onto the 1 - 2 border, the lower faces become slivers
	bad := term(ev, &candidate{pos: mgl64.Vec3{1.5, 0.05, 0}})
	require.Equal(t, 0.0, good)
	require.Greater(t, bad, 0.0)
}

func TestTextureTermPenalizesStretch(t *testing.T) {
	m := loadGrid(t, 2, 2)
	d, err := New(m, Options{TextureWeight: 1})
	require.NoError(t, err)
	_, ev, ok := d.evaluate(4, 5)
	require.True(t, ok)
	term := d.cost.textureTerm(1)

	// keeping 4 in place only slides the UV of face 1, 2, 5 along its edge
	near := d.candidate(ev, m.Vertices[4].Pos)
	require.True(t, d.placeable(ev, near))
	require.InDelta(t, 0, term(ev, &near), 1e-9)

	// moving 4 onto 5 drags the UVs of every face around 4
	far := d.candidate(ev, m.Vertices[5].Pos)
	require.True(t, d.placeable(ev, far))
	require.Greater(t, term(ev, &far), 0.0)
}

func TestCollapseSumsQuadrics(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, err := mesh.Load(meshtest.Perturb(meshtest.Cube(4, 3), 0.02, seed))
		require.NoError(t, err)
		d, err := New(m, Options{OptimalPosition: true, TextureWeight: 1, PreserveNormal: true})
		require.NoError(t, err)
		d.fill()

		collapses := 0
		for d.queue.Len() > 0 && collapses < 40 {
			e := d.queue.pop()
			if d.stale(e) {
				continue
			}
			c, ev, ok := d.evaluate(e.a, e.b)
			if !ok {
				continue
			}
			qa, qb := d.Quadric(e.a), d.Quadric(e.b)
			d.collapse(ev, c)
			collapses++

			require.Equal(t, qa.Add(qb), d.Quadric(e.a), "seed %d collapse %d", seed, collapses)
			require.Equal(t, Quadric{}, d.Quadric(e.b))
			require.True(t, m.Vertices[e.b].Dead)
			checkIncidence(t, m)
		}
		require.Equal(t, 40, collapses)
	}
}

// checkIncidence verifies that incident face sets equal the live faces
// referencing each vertex and that live faces only reference live vertices.
func checkIncidence(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	refs := make(map[int][]int)
	for _, f := range m.LiveFaces() {
		for _, v := range m.Faces[f].V {
			require.False(t, m.Vertices[v].Dead, "face %d references dead vertex %d", f, v)
			if n := len(refs[v]); n == 0 || refs[v][n-1] != f {
				refs[v] = append(refs[v], f)
			}
		}
	}
	for v := range m.Vertices {
		if m.Vertices[v].Dead {
			continue
		}
		require.Equal(t, refs[v], nilIfEmpty(m.Vertices[v].Faces()), "vertex %d", v)
	}
}

func nilIfEmpty(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestRunKeepsIncidenceConsistent(t *testing.T) {
	m, err := mesh.Load(meshtest.Perturb(meshtest.Cube(4, 3), 0.02, 11))
	require.NoError(t, err)
	d, err := New(m, Options{TargetFaces: 20, OptimalPosition: true})
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Completed, res.Status)
	require.Equal(t, 20, res.Faces)
	checkIncidence(t, m)
	for v := range m.Vertices {
		require.False(t, m.Vertices[v].Dead && len(m.Vertices[v].Faces()) > 0)
	}
}
