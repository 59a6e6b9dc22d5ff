// Implements the CheckoutDirectory: the registry of checkout stations and
// the recovery path for agents stranded by station churn. The directory
// holds lookup references only; it never owns station lifetime.

package store

import "github.com/sirupsen/logrus"

// AgentLister exposes the live customer population to the directory so that
// station registration can rescue stranded agents. The Simulator implements
// it.
type AgentLister interface {
	Customers() []*CustomerAgent
}

// CheckoutDirectory resolves "shortest queue" and "find by id" queries over
// the registered stations, pruning dead references on every scan.
type CheckoutDirectory struct {
	stations []*CheckoutStation
	agents   AgentLister
}

// NewCheckoutDirectory creates an empty directory.
func NewCheckoutDirectory() *CheckoutDirectory {
	return &CheckoutDirectory{}
}

// SetAgentLister wires the live-agent source used by stranding rescue.
func (d *CheckoutDirectory) SetAgentLister(l AgentLister) {
	d.agents = l
}

// Register adds a station. When the first live station appears, all agents
// stuck waiting for one are pushed back into GoingToCashier.
func (d *CheckoutDirectory) Register(st *CheckoutStation) {
	if st == nil {
		return
	}
	d.prune()
	wasEmpty := len(d.stations) == 0
	d.stations = append(d.stations, st)
	logrus.Infof("directory: registered station %s (%d live)", st.ID(), len(d.stations))
	if wasEmpty && st.IsOpen() {
		d.rescueStranded()
	}
}

// Unregister drops a station from the registry. Closing the station (which
// notifies its own queue members) is the caller's responsibility.
func (d *CheckoutDirectory) Unregister(st *CheckoutStation) {
	for i, s := range d.stations {
		if s == st {
			d.stations = append(d.stations[:i], d.stations[i+1:]...)
			return
		}
	}
}

// prune removes closed stations.
func (d *CheckoutDirectory) prune() {
	live := d.stations[:0]
	for _, s := range d.stations {
		if s.IsOpen() {
			live = append(live, s)
		}
	}
	d.stations = live
}

// Stations returns the live stations in registration order.
func (d *CheckoutDirectory) Stations() []*CheckoutStation {
	d.prune()
	out := make([]*CheckoutStation, len(d.stations))
	copy(out, d.stations)
	return out
}

// FindShortestQueue returns the open station with the fewest queued plus
// approaching agents, or nil when none is open. Ties resolve to the earliest
// registered station, keeping runs deterministic.
func (d *CheckoutDirectory) FindShortestQueue() ServiceStation {
	d.prune()
	var best *CheckoutStation
	bestLen := 0
	for _, s := range d.stations {
		n := s.QueueLength()
		if best == nil || n < bestLen {
			best = s
			bestLen = n
		}
	}
	if best == nil {
		return nil
	}
	return best
}

// FindByID returns the live station with the given id, or nil.
func (d *CheckoutDirectory) FindByID(id string) *CheckoutStation {
	d.prune()
	for _, s := range d.stations {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// rescueStranded scans the live agents for ones stuck wanting a station:
// shopping with a non-empty cart and no target, or bound to a station that
// no longer exists. Each is pushed back into GoingToCashier.
func (d *CheckoutDirectory) rescueStranded() {
	if d.agents == nil {
		return
	}
	for _, c := range d.agents.Customers() {
		switch {
		case c.State() == StateShopping && c.List().HasCollectedAnything() && c.Station() == nil:
			logrus.Infof("directory: rescuing %s (shopping, cart full, no station)", c.ID())
			c.ChangeState(StateGoingToCashier)
		case c.State().IsCheckoutDirected() && (c.Station() == nil || !c.Station().IsOpen()):
			logrus.Infof("directory: rescuing %s (bound to dead station)", c.ID())
			c.ChangeState(StateGoingToCashier)
		}
	}
}
