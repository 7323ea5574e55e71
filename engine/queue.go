package engine

import "container/heap"

// iowaitHeap keeps blocked PCBs ordered by ascending ioReadyDeadline, ties
// broken by insertion order (seq). This generalizes the teacher eventloop
// package's container/heap-based timerHeap (wall-clock deadlines) to
// virtual-clock deadlines.
type iowaitHeap []*pcb

func (h iowaitHeap) Len() int { return len(h) }

func (h iowaitHeap) Less(i, j int) bool {
	if h[i].ioReadyDeadline != h[j].ioReadyDeadline {
		return h[i].ioReadyDeadline < h[j].ioReadyDeadline
	}
	return h[i].seq < h[j].seq
}

func (h iowaitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *iowaitHeap) Push(x any) {
	p := x.(*pcb)
	p.heapIndex = len(*h)
	*h = append(*h, p)
}

func (h *iowaitHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	p.heapIndex = -1
	*h = old[:n-1]
	return p
}

// peek returns the earliest-deadline pcb without removing it, or nil if
// iowait is empty.
func (h iowaitHeap) peek() *pcb {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// insert adds p to the heap, maintaining heap order.
func (h *iowaitHeap) insert(p *pcb) {
	heap.Push(h, p)
}

// removeHead pops and returns the earliest-deadline pcb. Caller must check
// peek() != nil first, or handle the nil return.
func (h *iowaitHeap) removeHead() *pcb {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*pcb)
}

// activeQueue is an insertion-ordered FIFO of runnable-from-the-engine's-
// perspective PCBs. Spec §3: "Order is insertion order; membership matters
// more than order because execution is strictly sequential." The engine
// never reads order from this structure for scheduling purposes — only the
// policy layer does, via the opaque handles it receives in callbacks.
type activeQueue struct {
	items []*pcb
}

func (q *activeQueue) append(p *pcb) {
	q.items = append(q.items, p)
}

func (q *activeQueue) remove(p *pcb) {
	for i, x := range q.items {
		if x == p {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}
