package loop

import "container/heap"

// handleHeap is a container/heap.Interface over *Handle ordered by the
// spec's (when, id) lexicographic tie-break. Grounded on the timerHeap
// pattern used for scheduled work in joeycumines-go-utilpkg/eventloop.
type handleHeap []*Handle

func (q handleHeap) Len() int { return len(q) }

func (q handleHeap) Less(i, j int) bool { return q[i].less(q[j]) }

func (q handleHeap) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIndex = i
	q[j].heapIndex = j
}

func (q *handleHeap) Push(x any) {
	h := x.(*Handle)
	h.heapIndex = len(*q)
	*q = append(*q, h)
}

func (q *handleHeap) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.heapIndex = -1
	*q = old[:n-1]
	return h
}

var _ heap.Interface = (*handleHeap)(nil)
