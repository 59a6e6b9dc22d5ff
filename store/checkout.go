// Implements the CheckoutStation: the FIFO customer queue, the advisory
// approaching set, the belt, and the one-at-a-time service loop.
//
// Synchronization discipline: every queue/approaching mutation runs inside
// the station mutex so that nested mutation (joining the queue synchronously
// starts the service loop, which inspects the queue) always observes a
// consistent structure. Go mutexes are not re-entrant, so the lock is held
// across the mutation only; listener callbacks and agent signalling happen
// after release.

package store

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

type servicePhase int

const (
	phaseIdle servicePhase = iota
	phaseAwaitPaying
	phaseScanning
	phasePaymentDelay
	phaseSettle
)

// CheckoutStation owns one queue, one belt and one service loop. At most one
// "process next customer" task is admissible at a time, guarded by the
// isProcessing flag.
type CheckoutStation struct {
	id      string
	pos     Vec2
	cfg     StationConfig
	clock   Clock
	pricing Pricing

	mu          sync.Mutex
	open        bool
	staffed     bool
	queue       *CheckoutQueue
	approaching map[string]QueueableAgent

	current      QueueableAgent
	isProcessing bool
	phase        servicePhase
	phaseDeadline int64
	nextScanAt   int64

	belt *Belt

	listeners []StationListener

	// Stats recorded at transaction finalization.
	customersServed int
	totalSales      float64
}

// NewCheckoutStation creates an open, staffed station.
func NewCheckoutStation(id string, pos Vec2, cfg StationConfig, clock Clock, pricing Pricing) *CheckoutStation {
	return &CheckoutStation{
		id:          id,
		pos:         pos,
		cfg:         cfg,
		clock:       clock,
		pricing:     pricing,
		open:        true,
		staffed:     true,
		queue:       &CheckoutQueue{},
		approaching: make(map[string]QueueableAgent),
		belt:        NewBelt(cfg.BeltColumns, cfg.BeltRows),
	}
}

func (st *CheckoutStation) ID() string     { return st.id }
func (st *CheckoutStation) Position() Vec2 { return st.pos }

func (st *CheckoutStation) IsOpen() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.open
}

// IsStaffed reports whether a cashier is present. Scanning and service-loop
// progress pause while unstaffed.
func (st *CheckoutStation) IsStaffed() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.staffed
}

// SetStaffed toggles cashier presence. Staffing a station with a waiting
// queue is one of the re-entry sites for the service loop.
func (st *CheckoutStation) SetStaffed(staffed bool) {
	st.mu.Lock()
	st.staffed = staffed
	st.mu.Unlock()
	if staffed {
		st.CheckAndStartProcessing()
	}
}

// Subscribe registers a listener for this station's events.
func (st *CheckoutStation) Subscribe(l StationListener) {
	if l != nil {
		st.listeners = append(st.listeners, l)
	}
}

// Belt exposes the station's belt for inspection.
func (st *CheckoutStation) Belt() *Belt { return st.belt }

// CustomersServed returns the number of finalized transactions.
func (st *CheckoutStation) CustomersServed() int { return st.customersServed }

// TotalSales returns the revenue credited across finalized transactions.
func (st *CheckoutStation) TotalSales() float64 { return st.totalSales }

// CurrentCustomer returns the customer being served, or nil.
func (st *CheckoutStation) CurrentCustomer() QueueableAgent { return st.current }

// QueueLength returns queued plus approaching agents.
func (st *CheckoutStation) QueueLength() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.queue.Len() + len(st.approaching)
}

// QueuedCount returns formally admitted agents only.
func (st *CheckoutStation) QueuedCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.queue.Len()
}

// InQueue reports whether the agent is formally admitted.
func (st *CheckoutStation) InQueue(a QueueableAgent) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.queue.Contains(a)
}

// ReserveApproachingSpot claims an advisory queue-tail slot for an agent
// walking toward the queue. Set membership only, no ordering guarantee.
func (st *CheckoutStation) ReserveApproachingSpot(a QueueableAgent) {
	if a == nil {
		return
	}
	st.mu.Lock()
	if st.open && !st.queue.Contains(a) {
		st.approaching[a.ID()] = a
	}
	st.mu.Unlock()
}

// CancelApproachingSpot releases an advisory reservation. Safe to call when
// no reservation exists.
func (st *CheckoutStation) CancelApproachingSpot(a QueueableAgent) {
	if a == nil {
		return
	}
	st.mu.Lock()
	delete(st.approaching, a.ID())
	st.mu.Unlock()
}

// GetEndOfQueuePosition returns the standing point for the next joiner,
// spaced past both queued and approaching agents so that simultaneous
// approachers spread out rather than collide.
func (st *CheckoutStation) GetEndOfQueuePosition() Vec2 {
	st.mu.Lock()
	n := st.queue.Len() + len(st.approaching)
	st.mu.Unlock()
	return st.standingPoint(n)
}

func (st *CheckoutStation) standingPoint(index int) Vec2 {
	base := st.pos.Add(st.cfg.QueueDirection.Normalized())
	return base.Add(st.cfg.QueueDirection.Normalized().Scale(st.cfg.QueueSpacing * float64(index)))
}

// TryJoinQueue admits the agent at the tail of the FIFO iff not already
// present. On success the approaching reservation is released, positions are
// recomputed, and the service loop starts when the station is staffed and
// idle -- which can advance a sole joiner straight into payment before this
// call returns.
func (st *CheckoutStation) TryJoinQueue(a QueueableAgent) bool {
	if a == nil {
		return false
	}
	st.mu.Lock()
	if !st.open || !st.queue.Enqueue(a) {
		st.mu.Unlock()
		return false
	}
	delete(st.approaching, a.ID())
	st.mu.Unlock()

	logrus.Debugf("station %s: %s joined queue %s", st.id, a.ID(), st.queue)
	st.recomputePositions()
	for _, l := range st.listeners {
		l.QueueJoined(st.id, a.ID())
	}
	st.CheckAndStartProcessing()
	return true
}

// LeaveQueue removes the agent from anywhere in the queue, preserving the
// relative order of the remainder. Removing the customer currently being
// served abandons the transaction: the belt is cleared and the loop resets.
func (st *CheckoutStation) LeaveQueue(a QueueableAgent) {
	if a == nil {
		return
	}
	st.mu.Lock()
	removed := st.queue.Remove(a)
	abandoned := removed && st.current == a
	if abandoned {
		st.belt.Clear()
		st.current = nil
		st.isProcessing = false
		st.phase = phaseIdle
	}
	st.mu.Unlock()

	if !removed {
		return
	}
	if abandoned {
		logrus.Warnf("station %s: customer %s left mid-transaction, belt cleared", st.id, a.ID())
	}
	st.recomputePositions()
	for _, l := range st.listeners {
		l.QueueLeft(st.id, a.ID())
	}
	st.CheckAndStartProcessing()
}

// recomputePositions refreshes every queued agent's position index and
// standing point. Called after every queue mutation.
func (st *CheckoutStation) recomputePositions() {
	st.mu.Lock()
	members := append([]QueueableAgent{}, st.queue.Items()...)
	st.mu.Unlock()
	for i, a := range members {
		a.QueuePositionChanged(i, st.standingPoint(i))
	}
}

// CheckAndStartProcessing is the idempotent entry point of the service loop,
// callable from every site where admission preconditions may newly hold
// (join, leave, staffing change, restore). It is a no-op unless the station
// is open, staffed and idle with a non-empty queue. The QueueableAgent
// interface is the behavioral capability the head is required to carry.
func (st *CheckoutStation) CheckAndStartProcessing() {
	st.mu.Lock()
	if !st.open || !st.staffed || st.isProcessing || st.current != nil || st.queue.Len() == 0 {
		st.mu.Unlock()
		return
	}
	head := st.queue.Peek()
	st.isProcessing = true
	st.current = head
	st.phase = phaseAwaitPaying
	st.phaseDeadline = st.clock.Now() + st.cfg.AwaitPayingTimeout
	st.mu.Unlock()

	logrus.Debugf("station %s: serving %s", st.id, head.ID())
	for _, l := range st.listeners {
		l.TransactionStarted(st.id, head.ID())
	}
	head.BeginPayment(st)
}

// PlaceItemOnBelt appends one item instance to the unscanned grid; excess
// beyond capacity is rejected.
func (st *CheckoutStation) PlaceItemOnBelt(productID string, lockedPrice float64, priceLocked bool) bool {
	if st.belt.Place(productID, lockedPrice, priceLocked) == nil {
		logrus.Warnf("station %s: belt full, rejected %s", st.id, productID)
		return false
	}
	return true
}

// Update advances the service loop by one tick. Called by the simulator.
func (st *CheckoutStation) Update(now int64) {
	if !st.IsOpen() {
		return
	}
	switch st.phase {
	case phaseIdle:
		st.CheckAndStartProcessing()

	case phaseAwaitPaying:
		cur := st.current
		if cur == nil || !st.InQueue(cur) {
			st.abortService("customer vanished before paying")
			return
		}
		if cur.ReachedPayingState() || now >= st.phaseDeadline {
			st.phase = phaseScanning
			st.nextScanAt = now + st.cfg.ScanInterval
		}

	case phaseScanning:
		if !st.IsStaffed() {
			return // belt holds until the cashier returns
		}
		cur := st.current
		if cur == nil || !st.InQueue(cur) {
			st.abortService("customer vanished during scanning")
			return
		}
		if now >= st.nextScanAt && st.belt.UnscannedCount() > 0 {
			if it, price, ok := st.belt.ScanNext(st.pricing); ok {
				logrus.Debugf("station %s: scanned %s at %.2f (total %.2f)", st.id, it.ProductID, price, st.belt.RunningTotal())
				for _, l := range st.listeners {
					l.ItemScanned(st.id, it.ProductID, price)
					l.TotalUpdated(st.id, st.belt.RunningTotal())
				}
			}
			st.nextScanAt = now + st.cfg.ScanInterval
		}
		if st.belt.UnscannedCount() == 0 && cur.ReachedPayingState() && cur.PaymentGateOpen() {
			st.phase = phasePaymentDelay
			st.phaseDeadline = now + st.cfg.PaymentDelay
		}

	case phasePaymentDelay:
		if now >= st.phaseDeadline {
			st.finalizeTransaction(now)
		}

	case phaseSettle:
		if now >= st.phaseDeadline {
			st.mu.Lock()
			st.current = nil
			st.isProcessing = false
			st.phase = phaseIdle
			st.mu.Unlock()
			st.CheckAndStartProcessing()
		}
	}
}

// finalizeTransaction settles the head's transaction: credits exactly the
// running total, records stats, dequeues the head only if it is still the
// head and still the current customer, clears the belt and notifies
// completion.
func (st *CheckoutStation) finalizeTransaction(now int64) {
	cur := st.current
	if cur == nil {
		st.abortService("no current customer at finalization")
		return
	}
	amount := st.belt.RunningTotal()
	cur.Pay(amount)
	st.totalSales += amount
	st.customersServed++

	st.mu.Lock()
	// Defends against concurrent queue mutation between loop iterations.
	if st.queue.Peek() == cur && st.current == cur {
		st.queue.Dequeue()
	}
	st.belt.Clear()
	st.phase = phaseSettle
	st.phaseDeadline = now + st.cfg.SettleDelay
	st.mu.Unlock()

	logrus.Infof("[tick %07d] station %s: completed %s for %.2f", now, st.id, cur.ID(), amount)
	st.recomputePositions()
	for _, l := range st.listeners {
		l.QueueLeft(st.id, cur.ID())
		l.TransactionCompleted(st.id, cur.ID(), amount)
	}
	cur.TransactionCompleted(amount)
}

func (st *CheckoutStation) abortService(reason string) {
	st.mu.Lock()
	st.belt.Clear()
	st.current = nil
	st.isProcessing = false
	st.phase = phaseIdle
	st.mu.Unlock()
	logrus.Warnf("station %s: service aborted: %s", st.id, reason)
	st.CheckAndStartProcessing()
}

// Close shuts the station down. Every queued and approaching agent is
// notified so it can run stranding recovery; an in-flight transaction is
// abandoned and the belt cleared.
func (st *CheckoutStation) Close() {
	st.mu.Lock()
	if !st.open {
		st.mu.Unlock()
		return
	}
	st.open = false
	st.staffed = false
	members := append([]QueueableAgent{}, st.queue.Items()...)
	reserved := make([]QueueableAgent, 0, len(st.approaching))
	for _, a := range st.approaching {
		reserved = append(reserved, a)
	}
	sort.Slice(reserved, func(i, j int) bool { return reserved[i].ID() < reserved[j].ID() })
	st.queue = &CheckoutQueue{}
	st.approaching = make(map[string]QueueableAgent)
	st.belt.Clear()
	st.current = nil
	st.isProcessing = false
	st.phase = phaseIdle
	st.mu.Unlock()

	logrus.Infof("station %s: closed with %d queued, %d approaching", st.id, len(members), len(reserved))
	for _, a := range members {
		a.StationClosed(st)
	}
	for _, a := range reserved {
		a.StationClosed(st)
	}
}
