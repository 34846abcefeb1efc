package decimate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jonnenauha/obj-decimate/mesh"
)

const (
	// cosine above which two faces count as coplanar for the planar term
	planarCos = 0.9999
	// discount applied to flat regions, relative to the squared edge length
	planarDiscount = 1e-3
	// two UV corners closer than this are the same wedge
	uvEpsilon = 1e-9
	// minimum surviving triangle area, relative to the squared mesh diagonal
	minAreaRatio = 1e-14
)

// candidate is one possible placement of the collapsed vertex.
type candidate struct {
	pos    mgl64.Vec3
	s      float64 // position of pos projected on a->b, clamped to [0, 1]
	normal mgl64.Vec3
	cost   float64
}

// evaluation is the neighborhood of one edge collapse a -> b, shared by all
// candidates and cost terms.
type evaluation struct {
	m    *mesh.Mesh
	a, b int
	q    Quadric

	edgeFaces []int // faces containing a and b, removed by the collapse
	removed   int   // faces degenerating after the collapse
	moved     []int // surviving non degenerate faces of a or b

	before []mgl64.Vec3 // unnormalized normals of moved, before the collapse
	after  []mgl64.Vec3 // unnormalized normals of moved for the current candidate
	uvs    [][3]mgl64.Vec2
}

// term is one additive contribution to the cost of a candidate.
type term func(e *evaluation, c *candidate) float64

// costModel composes the enabled terms. New terms are appended in newCostModel.
type costModel struct {
	terms    []term
	optimal  bool
	diag     float64
	minArea2 float64
	pixel    float64 // world units per texture pixel, squared
	texW     float64
	texH     float64
}

func newCostModel(m *mesh.Mesh, opts Options) *costModel {
	_, _, diag := m.Bounds()
	if diag == 0 {
		diag = 1
	}
	w, h := m.Texture.PixelSize()
	cm := &costModel{
		optimal:  opts.OptimalPosition,
		diag:     diag,
		minArea2: 4 * (minAreaRatio * diag * diag) * (minAreaRatio * diag * diag),
		texW:     w,
		texH:     h,
		pixel:    diag * diag / (w * h),
	}
	cm.terms = append(cm.terms, geometricTerm)
	if opts.TextureWeight > 0 && m.HasUV() {
		cm.terms = append(cm.terms, cm.textureTerm(opts.TextureWeight))
	}
	if opts.PreserveBoundary && opts.BoundaryWeight > 0 {
		cm.terms = append(cm.terms, boundaryTerm(opts.BoundaryWeight))
	}
	if opts.PreserveNormal {
		cm.terms = append(cm.terms, normalTerm)
	}
	if opts.PlanarSimplification {
		cm.terms = append(cm.terms, planarTerm)
	}
	if opts.QualityThreshold > 0 {
		cm.terms = append(cm.terms, qualityTerm(opts.QualityThreshold))
	}
	return cm
}

func geometricTerm(e *evaluation, c *candidate) float64 {
	return e.q.Eval(c.pos)
}

// textureTerm penalizes the change of signed UV area, measured in pixels and
// converted back to squared world units. Flipped UV triangles count both areas.
func (cm *costModel) textureTerm(weight float64) term {
	return func(e *evaluation, c *candidate) float64 {
		sum := 0.0
		for i, f := range e.moved {
			face := &e.m.Faces[f]
			if !face.HasUV {
				continue
			}
			before := uvArea(face.UV, cm.texW, cm.texH)
			after := uvArea(e.uvs[i], cm.texW, cm.texH)
			sum += math.Abs(after - before)
		}
		return weight * sum * cm.pixel
	}
}

// boundaryTerm penalizes displacing boundary endpoints.
func boundaryTerm(weight float64) term {
	return func(e *evaluation, c *candidate) float64 {
		sum := 0.0
		for _, v := range []int{e.a, e.b} {
			if vert := &e.m.Vertices[v]; vert.Boundary {
				d := c.pos.Sub(vert.Pos)
				sum += d.Dot(d)
			}
		}
		return weight * sum
	}
}

// normalTerm penalizes the rotation of surviving faces, weighted by area, and
// the deviation of the new local normal from the averaged vertex normals.
func normalTerm(e *evaluation, c *candidate) float64 {
	var (
		sum   = 0.0
		area  = 0.0
		local mgl64.Vec3
	)
	for i := range e.moved {
		nb, na := e.before[i], e.after[i]
		la, lb := na.Len(), nb.Len()
		if la == 0 || lb == 0 {
			continue
		}
		sum += 0.5 * la * (1 - na.Dot(nb)/(la*lb))
		area += 0.5 * la
		local = local.Add(na)
	}
	va, vb := &e.m.Vertices[e.a], &e.m.Vertices[e.b]
	if va.HasNormal || vb.HasNormal {
		avg := va.Normal.Add(vb.Normal)
		if l, ll := avg.Len(), local.Len(); l > 0 && ll > 0 {
			sum += area * (1 - avg.Dot(local)/(l*ll))
		}
	}
	return sum
}

// planarTerm discounts collapses inside flat regions so they go first.
func planarTerm(e *evaluation, c *candidate) float64 {
	var avg mgl64.Vec3
	normals := make([]mgl64.Vec3, 0, len(e.before)+len(e.edgeFaces))
	for _, n := range e.before {
		if l := n.Len(); l > 0 {
			normals = append(normals, n.Mul(1/l))
		}
	}
	for _, f := range e.edgeFaces {
		if n := e.m.FaceNormal(f); n.Len() > 0 {
			normals = append(normals, n.Normalize())
		}
	}
	for _, n := range normals {
		avg = avg.Add(n)
	}
	l := avg.Len()
	if l == 0 || len(normals) == 0 {
		return 0
	}
	avg = avg.Mul(1 / l)
	for _, n := range normals {
		if n.Dot(avg) < planarCos {
			return 0
		}
	}
	d := e.m.Vertices[e.b].Pos.Sub(e.m.Vertices[e.a].Pos)
	return -planarDiscount * d.Dot(d)
}

// qualityTerm defers collapses producing faces of poorer shape than threshold.
// It never forbids a collapse.
func qualityTerm(threshold float64) term {
	return func(e *evaluation, c *candidate) float64 {
		worst := 1.0
		for _, f := range e.moved {
			if q := e.quality(f, c.pos); q < worst {
				worst = q
			}
		}
		if worst >= threshold {
			return 0
		}
		d := e.m.Vertices[e.b].Pos.Sub(e.m.Vertices[e.a].Pos)
		return (threshold - worst) / threshold * d.Dot(d)
	}
}

// Quality returns 4*sqrt(3)*area / (sum of squared edge lengths), 1 for an
// equilateral triangle and 0 for a degenerate one.
func Quality(a, b, c mgl64.Vec3) float64 {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	den := ab.Dot(ab) + bc.Dot(bc) + ca.Dot(ca)
	if den == 0 {
		return 0
	}
	area := 0.5 * ab.Cross(c.Sub(a)).Len()
	return 4 * math.Sqrt(3) * area / den
}

func (e *evaluation) corners(f int, pos mgl64.Vec3) (p [3]mgl64.Vec3) {
	face := &e.m.Faces[f]
	for i, v := range face.V {
		if v == e.a || v == e.b {
			p[i] = pos
		} else {
			p[i] = e.m.Vertices[v].Pos
		}
	}
	return p
}

func (e *evaluation) quality(f int, pos mgl64.Vec3) float64 {
	p := e.corners(f, pos)
	return Quality(p[0], p[1], p[2])
}

// uvArea returns the signed area of a UV triangle in pixels.
func uvArea(uv [3]mgl64.Vec2, w, h float64) float64 {
	e1 := uv[1].Sub(uv[0])
	e2 := uv[2].Sub(uv[0])
	return 0.5 * (e1[0]*e2[1] - e1[1]*e2[0]) * w * h
}

// uvAt returns the UV corners of moved face f once its a or b corner sits at
// parameter s along the edge. The corner follows the edge face sharing its
// wedge, a corner on another chart keeps its UV.
func (e *evaluation) uvAt(f int, s float64) [3]mgl64.Vec2 {
	face := &e.m.Faces[f]
	out := face.UV
	if !face.HasUV {
		return out
	}
	for i, v := range face.V {
		if v != e.a && v != e.b {
			continue
		}
		for _, g := range e.edgeFaces {
			edge := &e.m.Faces[g]
			if !edge.HasUV {
				continue
			}
			ca, cb := edge.Corner(e.a), edge.Corner(e.b)
			own := edge.UV[edge.Corner(v)]
			if own.Sub(face.UV[i]).Len() > uvEpsilon {
				continue
			}
			out[i] = edge.UV[ca].Add(edge.UV[cb].Sub(edge.UV[ca]).Mul(s))
			break
		}
	}
	return out
}
