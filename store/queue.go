// Implements the CheckoutQueue, the per-station FIFO of customers waiting to
// be served. Admission order is service order; removal from any position
// preserves the relative order of the remainder.

package store

import (
	"fmt"
	"strings"
)

// CheckoutQueue is a FIFO queue of customer references. Keys are unique:
// a customer appears at most once per queue, and the agent side guarantees
// membership in at most one station's queue globally.
type CheckoutQueue struct {
	queue []QueueableAgent
}

// Enqueue adds an agent to the back of the queue. Duplicate admission is the
// caller's error and is rejected.
func (q *CheckoutQueue) Enqueue(a QueueableAgent) bool {
	if a == nil || q.Contains(a) {
		return false
	}
	q.queue = append(q.queue, a)
	return true
}

// Len returns the number of queued agents.
func (q *CheckoutQueue) Len() int {
	return len(q.queue)
}

// Peek returns the head of the queue without removing it, or nil when empty.
func (q *CheckoutQueue) Peek() QueueableAgent {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Dequeue removes and returns the head, or nil when empty.
func (q *CheckoutQueue) Dequeue() QueueableAgent {
	if len(q.queue) == 0 {
		return nil
	}
	head := q.queue[0]
	q.queue = q.queue[1:]
	return head
}

// Contains reports whether the agent is currently queued.
func (q *CheckoutQueue) Contains(a QueueableAgent) bool {
	return q.PositionOf(a) >= 0
}

// PositionOf returns the agent's position index (0 = head), or -1 when the
// agent is not queued.
func (q *CheckoutQueue) PositionOf(a QueueableAgent) int {
	for i, member := range q.queue {
		if member == a {
			return i
		}
	}
	return -1
}

// Remove deletes the agent from anywhere in the queue, preserving the
// relative order of the remainder. Returns false when the agent was not
// queued.
func (q *CheckoutQueue) Remove(a QueueableAgent) bool {
	idx := q.PositionOf(a)
	if idx < 0 {
		return false
	}
	rebuilt := make([]QueueableAgent, 0, len(q.queue)-1)
	rebuilt = append(rebuilt, q.queue[:idx]...)
	rebuilt = append(rebuilt, q.queue[idx+1:]...)
	q.queue = rebuilt
	return true
}

// Items returns the queue contents for iteration. The returned slice is the
// queue's internal storage -- callers may iterate over it but MUST NOT
// append to or reslice it.
func (q *CheckoutQueue) Items() []QueueableAgent {
	return q.queue
}

func (q *CheckoutQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, a := range q.queue {
		sb.WriteString(fmt.Sprint(a.ID()))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
