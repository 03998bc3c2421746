package sim

import (
	"container/heap"
	"sync"
)

// eventQueue orders events by time. Events due at the same time leave in
// the order they arrived. It is safe for concurrent use, since the monitor
// schedules ticks from its own goroutine.
type eventQueue struct {
	mu   sync.Mutex
	heap eventHeap
	seq  uint64
}

func (q *eventQueue) push(evt Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	heap.Push(&q.heap, queuedEvent{evt: evt, seq: q.seq})
	q.seq++
}

func (q *eventQueue) pop() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	return heap.Pop(&q.heap).(queuedEvent).evt
}

// peek returns the next event without removing it, or nil if there is none.
func (q *eventQueue) peek() Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) == 0 {
		return nil
	}

	return q.heap[0].evt
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.heap)
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if ti, tj := h[i].evt.Time(), h[j].evt.Time(); ti != tj {
		return ti < tj
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(queuedEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]

	return last
}
