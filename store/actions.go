package store

// ActionGate is the animation/action collaborator. The state machine only
// ever triggers an action and polls its completion; playback itself is out
// of scope. Every wait on a gate is bounded by a timeout in the caller, so a
// gate that never completes degrades to forced progress rather than a stall.
type ActionGate interface {
	PlayPickupAction()
	IsPickupActionComplete() bool
	PlayPlacementAction()
	IsPlacementActionComplete() bool
	PlayPaymentAction()
	IsPaymentActionComplete() bool
	// ResetActionTriggers clears all in-flight actions. Called on every state
	// transition.
	ResetActionTriggers()
}

// Clock provides the current simulation time. The Simulator implements it;
// tests substitute a fake.
type Clock interface {
	Now() int64
}

// TimedActions is the simulation-grade ActionGate: each action completes a
// fixed number of ticks after it is played.
type TimedActions struct {
	clock Clock

	pickupDur    int64
	placementDur int64
	paymentDur   int64

	pickupAt    int64 // completion deadline, 0 = not playing
	placementAt int64
	paymentAt   int64
}

// NewTimedActions creates a TimedActions gate with per-action durations in
// ticks.
func NewTimedActions(clock Clock, pickupDur, placementDur, paymentDur int64) *TimedActions {
	return &TimedActions{
		clock:        clock,
		pickupDur:    pickupDur,
		placementDur: placementDur,
		paymentDur:   paymentDur,
	}
}

func (a *TimedActions) PlayPickupAction() {
	a.pickupAt = a.clock.Now() + a.pickupDur
}

func (a *TimedActions) IsPickupActionComplete() bool {
	return a.pickupAt != 0 && a.clock.Now() >= a.pickupAt
}

func (a *TimedActions) PlayPlacementAction() {
	a.placementAt = a.clock.Now() + a.placementDur
}

func (a *TimedActions) IsPlacementActionComplete() bool {
	return a.placementAt != 0 && a.clock.Now() >= a.placementAt
}

func (a *TimedActions) PlayPaymentAction() {
	a.paymentAt = a.clock.Now() + a.paymentDur
}

func (a *TimedActions) IsPaymentActionComplete() bool {
	return a.paymentAt != 0 && a.clock.Now() >= a.paymentAt
}

func (a *TimedActions) ResetActionTriggers() {
	a.pickupAt = 0
	a.placementAt = 0
	a.paymentAt = 0
}
