package store

import "container/heap"

// EventHeap is the simulator's pending-event queue. Pop order is fully
// deterministic: earlier timestamps first, then the fixed per-type priority
// from EventTypePriority, then the monotonically assigned event id. The
// type priority settles same-tick collisions so station lifecycle changes
// land before shopper arrivals, arrivals before the tick that steps every
// agent, and snapshot saves after the tick so the captured state is
// post-step.
type EventHeap struct {
	events []Event
}

// NewEventHeap returns an empty, initialized heap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{}
	heap.Init(h)
	return h
}

func (h *EventHeap) Len() int { return len(h.events) }

// Less orders by timestamp, type priority, then event id. The id tie-break
// makes scheduling order the final arbiter between otherwise identical
// events.
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.Timestamp() != ej.Timestamp() {
		return ei.Timestamp() < ej.Timestamp()
	}
	if pi, pj := EventTypePriority[ei.Type()], EventTypePriority[ej.Type()]; pi != pj {
		return pi < pj
	}
	return ei.EventID() < ej.EventID()
}

func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

func (h *EventHeap) Push(x any) {
	h.events = append(h.events, x.(Event))
}

func (h *EventHeap) Pop() any {
	last := len(h.events) - 1
	e := h.events[last]
	h.events = h.events[:last]
	return e
}

// Schedule enqueues e for execution.
func (h *EventHeap) Schedule(e Event) {
	heap.Push(h, e)
}

// PopNext removes and returns the next pending event, or nil when the heap
// is empty.
func (h *EventHeap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(Event)
}

// Peek returns the next pending event without removing it, or nil when the
// heap is empty.
func (h *EventHeap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
