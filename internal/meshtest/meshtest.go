// Package meshtest builds procedural meshes for tests.
package meshtest

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jonnenauha/obj-decimate/mesh"
)

// Texture is the handle attached to generated textured meshes.
var Texture = &mesh.Texture{Ref: "albedo.png", Width: 1024, Height: 1024}

// Cube returns a closed unit cube with every side split into n x n quads.
// Vertices are shared across sides. The texture is a tiles x tiles atlas and
// each side maps onto its own tile, so UV seams run along the cube edges.
// tiles must be at least 3.
func Cube(n, tiles int) mesh.Descriptor {
	var (
		d     = mesh.Descriptor{Texture: Texture}
		index = make(map[[3]int]int)
	)
	vertex := func(g [3]int) int {
		if id, ok := index[g]; ok {
			return id
		}
		id := len(d.Positions)
		index[g] = id
		d.Positions = append(d.Positions, mgl64.Vec3{
			float64(g[0])/float64(n) - 0.5,
			float64(g[1])/float64(n) - 0.5,
			float64(g[2])/float64(n) - 0.5,
		})
		return id
	}
	// fixed axis and its grid value, then the two running axes in winding order
	sides := []struct{ fixed, value, u, v int }{
		{2, n, 0, 1}, {2, 0, 1, 0},
		{0, n, 1, 2}, {0, 0, 2, 1},
		{1, n, 2, 0}, {1, 0, 0, 2},
	}
	for si, side := range sides {
		size := 1 / float64(tiles)
		tileU, tileV := float64(si%tiles)*size, float64(si/tiles)*size
		uv := func(i, j int) mgl64.Vec2 {
			return mgl64.Vec2{
				tileU + float64(i)/float64(n)*size,
				tileV + float64(j)/float64(n)*size,
			}
		}
		grid := func(i, j int) int {
			var g [3]int
			g[side.fixed] = side.value
			g[side.u] = i
			g[side.v] = j
			return vertex(g)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a, b, c, e := grid(i, j), grid(i+1, j), grid(i+1, j+1), grid(i, j+1)
				ua, ub, uc, ue := uv(i, j), uv(i+1, j), uv(i+1, j+1), uv(i, j+1)
				d.Faces = append(d.Faces, []int{a, b, c}, []int{a, c, e})
				d.UVs = append(d.UVs, []mgl64.Vec2{ua, ub, uc}, []mgl64.Vec2{ua, uc, ue})
			}
		}
	}
	return d
}

// Grid returns an open flat w x h quad grid in the xy plane, 2*w*h faces,
// with UVs spanning the unit square.
func Grid(w, h int) mesh.Descriptor {
	d := mesh.Descriptor{Texture: Texture}
	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			d.Positions = append(d.Positions, mgl64.Vec3{float64(x), float64(y), 0})
		}
	}
	id := func(x, y int) int { return y*(w+1) + x }
	uv := func(x, y int) mgl64.Vec2 { return mgl64.Vec2{float64(x) / float64(w), float64(y) / float64(h)} }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d.Faces = append(d.Faces,
				[]int{id(x, y), id(x+1, y), id(x+1, y+1)},
				[]int{id(x, y), id(x+1, y+1), id(x, y+1)})
			d.UVs = append(d.UVs,
				[]mgl64.Vec2{uv(x, y), uv(x+1, y), uv(x+1, y+1)},
				[]mgl64.Vec2{uv(x, y), uv(x+1, y+1), uv(x, y+1)})
		}
	}
	return d
}

// Tetrahedron returns the smallest closed mesh, 4 vertices and 4 outward faces.
func Tetrahedron() mesh.Descriptor {
	return mesh.Descriptor{
		Positions: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Faces:     [][]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
		UVs: [][]mgl64.Vec2{
			{{0, 0}, {0, 1}, {1, 0}},
			{{0, 0}, {1, 0}, {1, 1}},
			{{0, 0}, {1, 1}, {0, 1}},
			{{1, 0}, {0, 1}, {1, 1}},
		},
		Texture: Texture,
	}
}

// Perturb displaces every position by up to amount along each axis, seeded
// for reproducible tests.
func Perturb(d mesh.Descriptor, amount float64, seed int64) mesh.Descriptor {
	r := rand.New(rand.NewSource(seed))
	out := d
	out.Positions = make([]mgl64.Vec3, len(d.Positions))
	for i, p := range d.Positions {
		out.Positions[i] = p.Add(mgl64.Vec3{
			(r.Float64()*2 - 1) * amount,
			(r.Float64()*2 - 1) * amount,
			(r.Float64()*2 - 1) * amount,
		})
	}
	return out
}

// WithNormals sets per-vertex normals pointing away from the centroid.
func WithNormals(d mesh.Descriptor) mesh.Descriptor {
	var center mgl64.Vec3
	for _, p := range d.Positions {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(d.Positions)))
	out := d
	out.Normals = make([]mgl64.Vec3, len(d.Positions))
	for i, p := range d.Positions {
		n := p.Sub(center)
		if n.Len() == 0 {
			n = mgl64.Vec3{0, 0, 1}
		}
		out.Normals[i] = n.Normalize()
	}
	return out
}
