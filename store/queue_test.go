package store

import (
	"testing"
)

// queueProbe is the minimal QueueableAgent for queue-structure tests.
type queueProbe struct {
	id string
}

func (p *queueProbe) ID() string                            { return p.id }
func (p *queueProbe) BeginPayment(s ServiceStation)         {}
func (p *queueProbe) ReachedPayingState() bool              { return false }
func (p *queueProbe) PaymentGateOpen() bool                 { return false }
func (p *queueProbe) Pay(amount float64)                    {}
func (p *queueProbe) QueuePositionChanged(pos int, at Vec2) {}
func (p *queueProbe) TransactionCompleted(amount float64)   {}
func (p *queueProbe) StationClosed(s ServiceStation)        {}

func TestCheckoutQueue_FIFOOrder(t *testing.T) {
	q := &CheckoutQueue{}
	a, b, c := &queueProbe{id: "a"}, &queueProbe{id: "b"}, &queueProbe{id: "c"}

	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	if got := q.Dequeue(); got != a {
		t.Errorf("first dequeue = %v, want a", got.ID())
	}
	if got := q.Dequeue(); got != b {
		t.Errorf("second dequeue = %v, want b", got.ID())
	}
	if got := q.Dequeue(); got != c {
		t.Errorf("third dequeue = %v, want c", got.ID())
	}
	if q.Dequeue() != nil {
		t.Error("dequeue on empty queue should return nil")
	}
}

func TestCheckoutQueue_DuplicateAdmissionRejected(t *testing.T) {
	q := &CheckoutQueue{}
	a := &queueProbe{id: "a"}

	if !q.Enqueue(a) {
		t.Fatal("first enqueue should succeed")
	}
	if q.Enqueue(a) {
		t.Error("second enqueue of the same agent should be rejected")
	}
	if q.Len() != 1 {
		t.Errorf("queue length = %d, want 1", q.Len())
	}
}

func TestCheckoutQueue_RemovePreservesRelativeOrder(t *testing.T) {
	q := &CheckoutQueue{}
	a, b, c := &queueProbe{id: "a"}, &queueProbe{id: "b"}, &queueProbe{id: "c"}
	q.Enqueue(a)
	q.Enqueue(b)
	q.Enqueue(c)

	if !q.Remove(b) {
		t.Fatal("removing a queued agent should succeed")
	}
	if q.Remove(b) {
		t.Error("removing an absent agent should report false")
	}
	if got := q.PositionOf(a); got != 0 {
		t.Errorf("position of a = %d, want 0", got)
	}
	if got := q.PositionOf(c); got != 1 {
		t.Errorf("position of c = %d, want 1", got)
	}
}

func TestCheckoutQueue_PositionOfAbsentAgent(t *testing.T) {
	q := &CheckoutQueue{}
	a := &queueProbe{id: "a"}
	if got := q.PositionOf(a); got != -1 {
		t.Errorf("position of absent agent = %d, want -1", got)
	}
	if q.Contains(a) {
		t.Error("empty queue should not contain any agent")
	}
}
