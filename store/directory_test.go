package store

import (
	"testing"
)

// staticLister exposes a fixed agent population to the directory.
type staticLister struct {
	customers []*CustomerAgent
}

func (l *staticLister) Customers() []*CustomerAgent { return l.customers }

func TestDirectory_FindShortestQueue_TieGoesToEarliestRegistered(t *testing.T) {
	w := newTestWorld(t)
	st1 := w.openStation("station_1", Vec2{X: 8, Y: 0})
	w.openStation("station_2", Vec2{X: 11, Y: 0})

	if got := w.dir.FindShortestQueue(); got == nil || got.ID() != "station_1" {
		t.Fatal("empty tie should resolve to the earliest registered station")
	}

	// One approaching agent makes station_1 longer.
	st1.ReserveApproachingSpot(&fakeShopper{id: "alice"})
	if got := w.dir.FindShortestQueue(); got == nil || got.ID() != "station_2" {
		t.Error("station with fewer queued+approaching agents should win")
	}
}

func TestDirectory_FindShortestQueue_NoOpenStations(t *testing.T) {
	w := newTestWorld(t)
	st := w.openStation("station_1", Vec2{X: 8, Y: 0})
	st.Close()

	if got := w.dir.FindShortestQueue(); got != nil {
		t.Errorf("closed stations must not be returned, got %s", got.ID())
	}
}

func TestDirectory_ClosedStationsPruned(t *testing.T) {
	w := newTestWorld(t)
	st1 := w.openStation("station_1", Vec2{X: 8, Y: 0})
	w.openStation("station_2", Vec2{X: 11, Y: 0})

	st1.Close()

	if got := len(w.dir.Stations()); got != 1 {
		t.Errorf("live stations = %d, want 1", got)
	}
	if w.dir.FindByID("station_1") != nil {
		t.Error("closed station should not resolve by id")
	}
	if w.dir.FindByID("station_2") == nil {
		t.Error("open station should resolve by id")
	}
}

func TestDirectory_FirstRegistration_RescuesWaitingShopper(t *testing.T) {
	w := newTestWorld(t)
	c := newTestCustomer(w, "alice", 20, []ListEntry{{ProductID: "milk", Quantity: 1}})
	c.list.Items[0].RecordPickup(1.50)
	c.ChangeState(StateShopping)
	w.dir.SetAgentLister(&staticLister{customers: []*CustomerAgent{c}})

	// No station open: alice sits in shopping, cart full.
	if c.State() != StateShopping {
		t.Fatalf("precondition failed, state = %s", c.State())
	}

	st := NewCheckoutStation("station_1", Vec2{X: 8, Y: 0}, DefaultStationConfig(), w, w.catalog)
	w.dir.Register(st)

	if c.State() != StateGoingToCashier {
		t.Errorf("state after first station registration = %s, want going_to_cashier", c.State())
	}
	if c.Station() == nil || c.Station().ID() != "station_1" {
		t.Error("rescued shopper should target the new station")
	}
}

func TestDirectory_Registration_RescuesDeadStationBinding(t *testing.T) {
	w := newTestWorld(t)
	st1 := w.openStation("station_1", Vec2{X: 8, Y: 0})
	c := newTestCustomer(w, "alice", 20, nil)
	w.dir.SetAgentLister(&staticLister{customers: []*CustomerAgent{c}})

	c.ChangeState(StateGoingToCashier)
	if c.Station() == nil {
		t.Fatal("precondition failed, no station bound")
	}

	// The station dies without notifying (simulates a missed callback); the
	// next registration sweep must still rescue the agent.
	st1.mu.Lock()
	st1.open = false
	st1.mu.Unlock()

	st2 := NewCheckoutStation("station_2", Vec2{X: 11, Y: 0}, DefaultStationConfig(), w, w.catalog)
	w.dir.Register(st2)

	if c.State() != StateGoingToCashier {
		t.Fatalf("state after rescue = %s, want going_to_cashier", c.State())
	}
	if c.Station() == nil || c.Station().ID() != "station_2" {
		t.Error("rescued shopper should be rebound to the live station")
	}
}
