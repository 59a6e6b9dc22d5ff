// store/simulator.go
package store

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the store floor,
// the live agent population and the event loop.
type Simulator struct {
	Clock   int64
	Horizon int64
	cfg     SimConfig

	Events      *EventHeap
	nextEventID uint64

	catalog    *Catalog
	shelves    map[string]*Shelf // keyed by product id
	shelfOrder []string

	dir        *CheckoutDirectory
	stations   map[string]*CheckoutStation // every station ever created, open or not
	stationSeq int

	customers     []*CustomerAgent
	customerIndex map[string]*CustomerAgent
	pendingGone   []*CustomerAgent

	Metrics *Metrics
	RNG     *PartitionedRNG

	transitionHook func(c *CustomerAgent, from, to CustomerState)
	extraListeners []StationListener

	tickScheduled bool
}

// NewSimulator builds a simulator over the given catalog: one shelf per
// product, cfg.Stations open stations, and an empty street.
func NewSimulator(cfg SimConfig, catalog *Catalog) *Simulator {
	s := &Simulator{
		Clock:         0,
		Horizon:       cfg.Horizon,
		cfg:           cfg,
		Events:        NewEventHeap(),
		catalog:       catalog,
		shelves:       make(map[string]*Shelf),
		dir:           NewCheckoutDirectory(),
		stations:      make(map[string]*CheckoutStation),
		customerIndex: make(map[string]*CustomerAgent),
		RNG:           NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
	}
	s.Metrics = NewMetrics(s)
	s.dir.SetAgentLister(s)

	for i, pid := range catalog.ProductIDs() {
		pos := cfg.Layout.ShelfOrigin.Add(Vec2{X: cfg.Layout.ShelfSpacing * float64(i)})
		p := catalog.Lookup(pid)
		s.shelves[pid] = NewShelf(fmt.Sprintf("shelf_%s", pid), pid, pos, p.Stock)
		s.shelfOrder = append(s.shelfOrder, pid)
	}
	for i := 0; i < cfg.Stations; i++ {
		s.OpenStation(fmt.Sprintf("station_%d", i+1))
	}
	return s
}

// Config returns the simulation configuration.
func (s *Simulator) Config() SimConfig { return s.cfg }

// Catalog returns the product catalog.
func (s *Simulator) Catalog() *Catalog { return s.catalog }

// newEventID generates the next event ID for deterministic tie-breaking.
func (s *Simulator) newEventID() uint64 {
	s.nextEventID++
	return s.nextEventID
}

func (s *Simulator) newBase(timestamp int64, t EventType) BaseEvent {
	return BaseEvent{timestamp: timestamp, eventID: s.newEventID(), eventType: t}
}

// SetTransitionHook installs a state-transition observer on every current and
// future customer agent.
func (s *Simulator) SetTransitionHook(fn func(c *CustomerAgent, from, to CustomerState)) {
	s.transitionHook = fn
	for _, c := range s.customers {
		c.SetTransitionHook(fn)
	}
}

// AddStationListener subscribes a listener to every current and future
// station.
func (s *Simulator) AddStationListener(l StationListener) {
	if l == nil {
		return
	}
	s.extraListeners = append(s.extraListeners, l)
	for _, st := range s.dir.Stations() {
		st.Subscribe(l)
	}
}

// Schedule pushes an event into the simulator's event heap.
func (s *Simulator) Schedule(ev Event) {
	s.Events.Schedule(ev)
}

// AddShopper schedules a shopper arrival.
func (s *Simulator) AddShopper(a ShopperArrival) {
	s.Schedule(&ShopperArrivalEvent{BaseEvent: s.newBase(a.ArrivalTime, EventTypeShopperArrival), Arrival: a})
}

// ScheduleStationOpen schedules a station to open mid-run.
func (s *Simulator) ScheduleStationOpen(stationID string, at int64) {
	s.Schedule(&StationOpenEvent{BaseEvent: s.newBase(at, EventTypeStationOpen), StationID: stationID})
}

// ScheduleStationClose schedules a station to be destroyed mid-run.
func (s *Simulator) ScheduleStationClose(stationID string, at int64) {
	s.Schedule(&StationCloseEvent{BaseEvent: s.newBase(at, EventTypeStationClose), StationID: stationID})
}

// ScheduleSnapshotSave schedules a mid-run snapshot capture to path.
func (s *Simulator) ScheduleSnapshotSave(path string, at int64) {
	s.Schedule(&SnapshotSaveEvent{BaseEvent: s.newBase(at, EventTypeSnapshotSave), Path: path})
}

// Run executes the event loop until the heap drains or the horizon passes.
func (s *Simulator) Run() {
	for s.Events.Len() > 0 {
		ev := s.Events.PopNext()
		if ev.Timestamp() > s.Horizon {
			break
		}
		if ev.Timestamp() < s.Clock {
			panic(fmt.Sprintf("clock went backwards: %d < %d", ev.Timestamp(), s.Clock))
		}
		s.Clock = ev.Timestamp()
		logrus.Debugf("[tick %07d] executing %T", s.Clock, ev)
		ev.Execute(s)
	}
	s.Metrics.SimEndedTime = min(s.Clock, s.Horizon)
	logrus.Infof("[tick %07d] simulation ended", s.Clock)
}

// stepTick advances every live agent and open station by one fixed tick.
func (s *Simulator) stepTick(now int64) {
	s.tickScheduled = false
	dt := s.cfg.TickInterval

	agents := append([]*CustomerAgent{}, s.customers...)
	for _, c := range agents {
		if !s.isDespawned(c) {
			c.Update(now, dt)
		}
	}
	for _, st := range s.dir.Stations() {
		st.Update(now)
	}
	s.flushDespawns()

	depth := 0
	for _, st := range s.dir.Stations() {
		depth += st.QueuedCount()
	}
	s.Metrics.ObserveQueueDepth(depth)

	if len(s.customers) > 0 {
		s.scheduleTick(now + dt)
	}
}

func (s *Simulator) scheduleTick(at int64) {
	if s.tickScheduled {
		return
	}
	s.tickScheduled = true
	s.Schedule(&TickEvent{BaseEvent: s.newBase(at, EventTypeTick)})
}

// ensureTickScheduled restarts the tick chain after a structural event when
// agents are alive but no tick is pending.
func (s *Simulator) ensureTickScheduled(now int64) {
	if len(s.customers) > 0 {
		s.scheduleTick(now + s.cfg.TickInterval)
	}
}

// spawnCustomer materializes a shopper at the street edge.
func (s *Simulator) spawnCustomer(a ShopperArrival) {
	if _, dup := s.customerIndex[a.Name]; dup {
		logrus.Warnf("duplicate shopper name %q, skipping arrival", a.Name)
		return
	}
	nav := NewWalker(s.cfg.Layout.SpawnPoint, s.cfg.Agent.WalkSpeed)
	actions := NewTimedActions(s, s.cfg.Agent.PickupActionDur, s.cfg.Agent.PlacementActionDur, s.cfg.Agent.PaymentActionDur)
	c := NewCustomerAgent(a.Name, a.Wallet, a.Items, s.cfg.Agent, s, nav, actions, s.catalog, BudgetPolicy{})
	s.attachCustomer(c)
	s.Metrics.CustomersEntered++
}

// attachCustomer registers an agent (spawned or restored) with the world.
func (s *Simulator) attachCustomer(c *CustomerAgent) {
	if s.transitionHook != nil {
		c.SetTransitionHook(s.transitionHook)
	}
	s.customers = append(s.customers, c)
	s.customerIndex[c.ID()] = c
}

func (s *Simulator) isDespawned(c *CustomerAgent) bool {
	for _, g := range s.pendingGone {
		if g == c {
			return true
		}
	}
	return false
}

func (s *Simulator) flushDespawns() {
	for _, c := range s.pendingGone {
		delete(s.customerIndex, c.ID())
		for i, live := range s.customers {
			if live == c {
				s.customers = append(s.customers[:i], s.customers[i+1:]...)
				break
			}
		}
		s.Metrics.CustomerDeparted(c.ID())
		logrus.Infof("[tick %07d] customer %s left the world", s.Clock, c.ID())
	}
	s.pendingGone = nil
}

// OpenStation creates, registers and subscribes a new open station. A no-op
// when a live station with the id already exists.
func (s *Simulator) OpenStation(id string) *CheckoutStation {
	if st := s.dir.FindByID(id); st != nil {
		return st
	}
	pos := s.cfg.Layout.StationOrigin.Add(Vec2{X: s.cfg.Layout.StationGap * float64(s.stationSeq)})
	s.stationSeq++
	st := NewCheckoutStation(id, pos, s.cfg.Station, s, s.catalog)
	st.Subscribe(s.Metrics)
	for _, l := range s.extraListeners {
		st.Subscribe(l)
	}
	s.stations[id] = st
	s.dir.Register(st)
	return st
}

// CloseStation destroys a live station, notifying its dependents.
func (s *Simulator) CloseStation(id string) {
	st := s.dir.FindByID(id)
	if st == nil {
		return
	}
	st.Close()
	s.dir.Unregister(st)
}

// --- Clock / World / AgentLister ---

func (s *Simulator) Now() int64 { return s.Clock }

func (s *Simulator) Directory() *CheckoutDirectory { return s.dir }

func (s *Simulator) Product(productID string) *Product { return s.catalog.Lookup(productID) }

func (s *Simulator) ShelfFor(productID string) *Shelf { return s.shelves[productID] }

func (s *Simulator) Entrance() Vec2 { return s.cfg.Layout.Entrance }

func (s *Simulator) ExitPoint() Vec2 { return s.cfg.Layout.ExitPoint }

func (s *Simulator) ExitSpread() float64 { return s.cfg.Layout.ExitSpread }

func (s *Simulator) AgentRand() *rand.Rand { return s.RNG.ForSubsystem(SubsystemAgents) }

func (s *Simulator) DespawnCustomer(c *CustomerAgent) {
	if c == nil || s.isDespawned(c) {
		return
	}
	s.pendingGone = append(s.pendingGone, c)
}

func (s *Simulator) Customers() []*CustomerAgent {
	out := make([]*CustomerAgent, len(s.customers))
	copy(out, s.customers)
	return out
}

// FindCustomer returns the live agent with the given name, or nil.
func (s *Simulator) FindCustomer(name string) *CustomerAgent {
	return s.customerIndex[name]
}
