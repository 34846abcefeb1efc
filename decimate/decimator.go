// Package decimate reduces the face count of a mesh by repeatedly collapsing
// the cheapest edge, with a quadric error cost extended by texture, boundary,
// normal, planarity and shape quality terms.
package decimate

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jonnenauha/obj-decimate/mesh"
)

// Status is the state of a Decimator.
type Status int

const (
	Ready Status = iota
	Running
	Completed
	TargetUnreachable
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case TargetUnreachable:
		return "TargetUnreachable"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether no further mutation happens in this state.
func (s Status) Terminal() bool {
	return s == Completed || s == TargetUnreachable
}

// Progress is reported while the loop runs.
type Progress struct {
	Collapses int
	Faces     int
	Target    int
	Initial   int
}

// Options configure one Decimator run.
type Options struct {
	TargetFaces int

	QualityThreshold float64
	TextureWeight    float64
	BoundaryWeight   float64

	PreserveBoundary     bool
	OptimalPosition      bool
	PreserveNormal       bool
	PlanarSimplification bool

	// Progress, when set, is called every ProgressInterval collapses and once
	// when the run ends.
	Progress         func(Progress)
	ProgressInterval int
}

const defaultProgressInterval = 256

// Result summarizes a finished run.
type Result struct {
	Status       Status
	InitialFaces int
	Target       int
	Faces        int
	Collapses    int
	// stale entries that were re-costed and pushed back instead of collapsed
	Reinserted int
}

// Decimator runs the edge collapse loop over one mesh. It is not safe for
// concurrent use, independent meshes can be decimated in parallel.
type Decimator struct {
	m        *mesh.Mesh
	opts     Options
	cost     *costModel
	quadrics []Quadric
	stamps   []uint32
	queue    edgeQueue
	status   Status

	initial    int
	collapses  int
	reinserted int
}

// New prepares a decimator for m. Vertex quadrics are accumulated from the
// current live faces.
func New(m *mesh.Mesh, opts Options) (*Decimator, error) {
	if opts.TargetFaces < 0 {
		return nil, &ConfigError{Option: "target_faces", Reason: fmt.Sprintf("must not be negative, given %d", opts.TargetFaces)}
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}
	d := &Decimator{
		m:        m,
		opts:     opts,
		cost:     newCostModel(m, opts),
		quadrics: make([]Quadric, len(m.Vertices)),
		stamps:   make([]uint32, len(m.Vertices)),
		initial:  m.FaceCount(),
	}
	for _, f := range m.LiveFaces() {
		face := &m.Faces[f]
		if face.Degenerate() {
			continue
		}
		q := FaceQuadric(m.Vertices[face.V[0]].Pos, m.Vertices[face.V[1]].Pos, m.Vertices[face.V[2]].Pos)
		for _, v := range face.V {
			d.quadrics[v] = d.quadrics[v].Add(q)
		}
	}
	return d, nil
}

// Status returns the current state.
func (d *Decimator) Status() Status {
	return d.status
}

// Quadric returns the accumulated quadric of vertex v.
func (d *Decimator) Quadric(v int) Quadric {
	return d.quadrics[v]
}

// Mesh returns the mesh being decimated.
func (d *Decimator) Mesh() *mesh.Mesh {
	return d.m
}

func (d *Decimator) result() Result {
	return Result{
		Status:       d.status,
		InitialFaces: d.initial,
		Target:       d.opts.TargetFaces,
		Faces:        d.m.FaceCount(),
		Collapses:    d.collapses,
		Reinserted:   d.reinserted,
	}
}

// Run collapses edges until the target face count is reached or nothing is
// collapsible anymore. ctx is checked between collapses, a cancelled run
// leaves the mesh valid but partially reduced.
func (d *Decimator) Run(ctx context.Context) (Result, error) {
	if d.status.Terminal() {
		return d.result(), nil
	}
	d.status = Running
	defer d.report()

	if d.m.FaceCount() <= d.opts.TargetFaces {
		d.status = Completed
		return d.result(), nil
	}

	d.fill()
	sinceFill := 0
	for {
		if d.queue.Len() == 0 {
			// Entries dropped as invalid may have become collapsible through
			// changes outside the ring they were re-costed from. Rebuild once
			// per round of progress before giving up.
			if sinceFill == 0 {
				d.status = TargetUnreachable
				return d.result(), nil
			}
			d.fill()
			sinceFill = 0
			continue
		}
		if err := ctx.Err(); err != nil {
			return d.result(), fmt.Errorf("decimation interrupted after %d collapses: %w", d.collapses, err)
		}

		e := d.queue.pop()
		if d.stale(e) {
			continue
		}
		c, ev, ok := d.evaluate(e.a, e.b)
		if !ok {
			continue
		}
		if c.cost != e.cost {
			d.reinserted++
			d.queue.push(d.entry(e.a, e.b, c.cost))
			continue
		}

		d.collapse(ev, c)
		sinceFill++
		if d.m.FaceCount() <= d.opts.TargetFaces {
			d.status = Completed
			return d.result(), nil
		}
		if d.collapses%d.opts.ProgressInterval == 0 {
			d.report()
		}
	}
}

func (d *Decimator) report() {
	if d.opts.Progress == nil {
		return
	}
	d.opts.Progress(Progress{
		Collapses: d.collapses,
		Faces:     d.m.FaceCount(),
		Target:    d.opts.TargetFaces,
		Initial:   d.initial,
	})
}

func (d *Decimator) entry(a, b int, cost float64) entry {
	return entry{cost: cost, a: a, b: b, stampA: d.stamps[a], stampB: d.stamps[b]}
}

func (d *Decimator) stale(e entry) bool {
	va, vb := &d.m.Vertices[e.a], &d.m.Vertices[e.b]
	return va.Dead || vb.Dead || d.stamps[e.a] != e.stampA || d.stamps[e.b] != e.stampB
}

// fill rebuilds the queue from every live edge.
func (d *Decimator) fill() {
	d.queue = d.queue[:0]
	for v := range d.m.Vertices {
		if d.m.Vertices[v].Dead {
			continue
		}
		for _, n := range d.m.Neighbors(v) {
			if n > v {
				d.pushEdge(v, n)
			}
		}
	}
}

func (d *Decimator) pushEdge(a, b int) {
	if a > b {
		a, b = b, a
	}
	if c, _, ok := d.evaluate(a, b); ok {
		d.queue.push(d.entry(a, b, c.cost))
	}
}

// evaluate checks that collapsing a, b is valid and returns its cheapest
// candidate. a < b, a survives.
func (d *Decimator) evaluate(a, b int) (candidate, *evaluation, bool) {
	m := d.m
	ev := &evaluation{m: m, a: a, b: b}
	ev.edgeFaces = m.EdgeFaces(a, b)
	if len(ev.edgeFaces) == 0 || len(ev.edgeFaces) > 2 {
		return candidate{}, nil, false
	}
	va, vb := &m.Vertices[a], &m.Vertices[b]
	// an interior edge between two boundary vertices would pinch the border
	if len(ev.edgeFaces) == 2 && va.Boundary && vb.Boundary {
		return candidate{}, nil, false
	}
	if !d.linkCondition(ev) {
		return candidate{}, nil, false
	}

	for _, f := range vb.Faces() {
		if degeneratesAfter(&m.Faces[f], a, b) {
			ev.removed++
		}
	}
	if m.FaceCount()-ev.removed < d.opts.TargetFaces {
		return candidate{}, nil, false
	}

	ev.moved = movedFaces(m, a, b)
	if hasDuplicateFace(m, ev.moved, a, b) {
		return candidate{}, nil, false
	}
	ev.before = make([]mgl64.Vec3, len(ev.moved))
	ev.after = make([]mgl64.Vec3, len(ev.moved))
	ev.uvs = make([][3]mgl64.Vec2, len(ev.moved))
	for i, f := range ev.moved {
		ev.before[i] = m.FaceNormal(f)
	}
	ev.q = d.quadrics[a].Add(d.quadrics[b])

	var (
		best  candidate
		found = false
	)
	for _, p := range d.positions(ev) {
		c := d.candidate(ev, p)
		if !d.placeable(ev, c) {
			continue
		}
		for _, t := range d.cost.terms {
			c.cost += t(ev, &c)
		}
		if !found || c.cost < best.cost {
			best, found = c, true
		}
	}
	if !found {
		return candidate{}, nil, false
	}
	// leave the buffers matching the winning candidate for collapse
	d.placeable(ev, best)
	return best, ev, true
}

// positions lists candidate placements in preference order.
func (d *Decimator) positions(ev *evaluation) []mgl64.Vec3 {
	pa, pb := d.m.Vertices[ev.a].Pos, d.m.Vertices[ev.b].Pos
	out := make([]mgl64.Vec3, 0, 4)
	if d.cost.optimal {
		if p, ok := ev.q.Optimize(); ok {
			out = append(out, p)
		}
	}
	return append(out, pa.Add(pb).Mul(0.5), pa, pb)
}

func (d *Decimator) candidate(ev *evaluation, p mgl64.Vec3) candidate {
	va, vb := &d.m.Vertices[ev.a], &d.m.Vertices[ev.b]
	c := candidate{pos: p, s: 0.5}
	edge := vb.Pos.Sub(va.Pos)
	if l2 := edge.Dot(edge); l2 > 0 {
		c.s = clamp01(p.Sub(va.Pos).Dot(edge) / l2)
	}
	switch {
	case va.HasNormal && vb.HasNormal:
		n := va.Normal.Mul(1 - c.s).Add(vb.Normal.Mul(c.s))
		if n.Len() > 0 {
			n = n.Normalize()
		} else {
			n = va.Normal
		}
		c.normal = n
	case va.HasNormal:
		c.normal = va.Normal
	case vb.HasNormal:
		c.normal = vb.Normal
	}
	return c
}

// placeable fills the after normals and UVs for c and rejects placements
// that flip or flatten a surviving face.
func (d *Decimator) placeable(ev *evaluation, c candidate) bool {
	for i, f := range ev.moved {
		p := ev.corners(f, c.pos)
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		if n.Dot(n) <= d.cost.minArea2 {
			return false
		}
		if ev.before[i].Dot(n) <= 0 {
			return false
		}
		ev.after[i] = n
		ev.uvs[i] = ev.uvAt(f, c.s)
	}
	return true
}

// linkCondition: the vertices adjacent to both a and b must be exactly the
// apexes of the faces on edge ab, otherwise the collapse is non manifold.
func (d *Decimator) linkCondition(ev *evaluation) bool {
	apex := make(map[int]bool, 2)
	for _, f := range ev.edgeFaces {
		for _, v := range d.m.Faces[f].V {
			if v != ev.a && v != ev.b {
				apex[v] = true
			}
		}
	}
	common := 0
	nb := d.m.Neighbors(ev.b)
	for _, v := range d.m.Neighbors(ev.a) {
		if v == ev.b {
			continue
		}
		if containsSorted(nb, v) {
			if !apex[v] {
				return false
			}
			common++
		}
	}
	return common == len(apex)
}

// collapse merges b into a at candidate c. ev must come from the evaluate
// call that produced c.
func (d *Decimator) collapse(ev *evaluation, c candidate) {
	m := d.m
	a, b := ev.a, ev.b

	for i, f := range ev.moved {
		m.Faces[f].UV = ev.uvs[i]
	}
	va := &m.Vertices[a]
	va.Pos = c.pos
	if va.HasNormal || m.Vertices[b].HasNormal {
		va.Normal = c.normal
		va.HasNormal = true
	}
	d.quadrics[a] = d.quadrics[a].Add(d.quadrics[b])
	d.quadrics[b] = Quadric{}

	m.ReplaceVertex(b, a)
	neighbors := m.Neighbors(a)
	m.UpdateBoundary(a)
	for _, n := range neighbors {
		m.UpdateBoundary(n)
	}

	d.stamps[a]++
	d.stamps[b]++
	d.collapses++

	for _, n := range neighbors {
		d.pushEdge(a, n)
	}
}

// degeneratesAfter reports whether face f collapses to a line when b merges into a.
func degeneratesAfter(f *mesh.Face, a, b int) bool {
	v := f.V
	for i := range v {
		if v[i] == b {
			v[i] = a
		}
	}
	return v[0] == v[1] || v[1] == v[2] || v[0] == v[2]
}

// movedFaces returns the faces of a or b that survive the collapse, ascending.
func movedFaces(m *mesh.Mesh, a, b int) []int {
	fa, fb := m.Vertices[a].Faces(), m.Vertices[b].Faces()
	out := make([]int, 0, len(fa)+len(fb))
	i, j := 0, 0
	for i < len(fa) || j < len(fb) {
		var f int
		switch {
		case j == len(fb) || (i < len(fa) && fa[i] < fb[j]):
			f = fa[i]
			i++
		case i == len(fa) || fb[j] < fa[i]:
			f = fb[j]
			j++
		default:
			f = fa[i]
			i++
			j++
		}
		face := &m.Faces[f]
		if face.Degenerate() || degeneratesAfter(face, a, b) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// hasDuplicateFace reports whether two surviving faces would reference the
// same vertices after b merges into a.
func hasDuplicateFace(m *mesh.Mesh, moved []int, a, b int) bool {
	seen := make(map[[3]int]bool, len(moved))
	for _, f := range moved {
		key := m.Faces[f].V
		for i := range key {
			if key[i] == b {
				key[i] = a
			}
		}
		sort3(&key)
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

func sort3(v *[3]int) {
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
	if v[1] > v[2] {
		v[1], v[2] = v[2], v[1]
	}
	if v[0] > v[1] {
		v[0], v[1] = v[1], v[0]
	}
}

func containsSorted(s []int, v int) bool {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s[mid] == v:
			return true
		case s[mid] < v:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
