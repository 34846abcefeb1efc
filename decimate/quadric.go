package decimate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quadric is the symmetric 4x4 plane distance matrix
//
//	| A2 AB AC AD |
//	| AB B2 BC BD |
//	| AC BC C2 CD |
//	| AD BD CD D2 |
//
// stored as its upper triangle. Quadrics of merged vertices add.
type Quadric struct {
	A2, AB, AC, AD float64
	B2, BC, BD     float64
	C2, CD         float64
	D2             float64
}

// singularity threshold for the 3x3 block, relative to its trace cubed
const detEpsilon = 1e-9

// PlaneQuadric returns the quadric of the plane n.p + d = 0, n must be unit length.
func PlaneQuadric(n mgl64.Vec3, d float64) Quadric {
	a, b, c := n[0], n[1], n[2]
	return Quadric{
		A2: a * a, AB: a * b, AC: a * c, AD: a * d,
		B2: b * b, BC: b * c, BD: b * d,
		C2: c * c, CD: c * d,
		D2: d * d,
	}
}

// FaceQuadric returns the plane quadric of triangle a, b, c. Zero area
// triangles have no plane and yield the zero quadric.
func FaceQuadric(a, b, c mgl64.Vec3) Quadric {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 {
		return Quadric{}
	}
	n = n.Mul(1 / l)
	return PlaneQuadric(n, -n.Dot(a))
}

func (q Quadric) Add(o Quadric) Quadric {
	return Quadric{
		A2: q.A2 + o.A2, AB: q.AB + o.AB, AC: q.AC + o.AC, AD: q.AD + o.AD,
		B2: q.B2 + o.B2, BC: q.BC + o.BC, BD: q.BD + o.BD,
		C2: q.C2 + o.C2, CD: q.CD + o.CD,
		D2: q.D2 + o.D2,
	}
}

func (q Quadric) Scale(s float64) Quadric {
	return Quadric{
		A2: q.A2 * s, AB: q.AB * s, AC: q.AC * s, AD: q.AD * s,
		B2: q.B2 * s, BC: q.BC * s, BD: q.BD * s,
		C2: q.C2 * s, CD: q.CD * s,
		D2: q.D2 * s,
	}
}

// Eval returns the quadratic form [p 1] Q [p 1]^T, the summed squared
// distance of p to the accumulated planes. Rounding noise below zero is clamped.
func (q Quadric) Eval(p mgl64.Vec3) float64 {
	x, y, z := p[0], p[1], p[2]
	e := q.A2*x*x + 2*q.AB*x*y + 2*q.AC*x*z + 2*q.AD*x +
		q.B2*y*y + 2*q.BC*y*z + 2*q.BD*y +
		q.C2*z*z + 2*q.CD*z +
		q.D2
	return math.Max(e, 0)
}

// Optimize returns the position minimizing the quadric. ok is false when the
// 3x3 block is singular or near singular.
func (q Quadric) Optimize() (p mgl64.Vec3, ok bool) {
	a := mgl64.Mat3{
		q.A2, q.AB, q.AC,
		q.AB, q.B2, q.BC,
		q.AC, q.BC, q.C2,
	}
	trace := q.A2 + q.B2 + q.C2
	if trace <= 0 {
		return p, false
	}
	det := a.Det()
	if math.Abs(det) <= detEpsilon*trace*trace*trace {
		return p, false
	}
	p = a.Inv().Mul3x1(mgl64.Vec3{-q.AD, -q.BD, -q.CD})
	if !finiteVec(p) {
		return mgl64.Vec3{}, false
	}
	return p, true
}

func finiteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
