package decimate

import "container/heap"

// entry is a cached edge cost. It goes stale when an endpoint was collapsed
// or moved since it was pushed, which the stamps detect on pop.
type entry struct {
	cost   float64
	a, b   int
	stampA uint32
	stampB uint32
}

// edgeQueue orders entries by ascending cost, ties by lowest edge id (a, b).
type edgeQueue []entry

func (q edgeQueue) Len() int { return len(q) }
func (q edgeQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].a != q[j].a {
		return q[i].a < q[j].a
	}
	return q[i].b < q[j].b
}
func (q edgeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *edgeQueue) Push(x interface{}) {
	*q = append(*q, x.(entry))
}

func (q *edgeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *edgeQueue) push(e entry) {
	heap.Push(q, e)
}

func (q *edgeQueue) pop() entry {
	return heap.Pop(q).(entry)
}
