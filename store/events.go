package store

import "github.com/sirupsen/logrus"

// EventType tags simulation events for deterministic heap ordering.
type EventType int

const (
	EventTypeShopperArrival EventType = iota
	EventTypeStationOpen
	EventTypeStationClose
	EventTypeRestoreRetry
	EventTypeTick
	EventTypeSnapshotSave
)

// EventTypePriority orders same-timestamp events: structural changes
// (station lifecycle) resolve before arrivals, arrivals before the tick that
// steps everyone.
var EventTypePriority = map[EventType]int{
	EventTypeStationOpen:    0,
	EventTypeStationClose:   1,
	EventTypeRestoreRetry:   2,
	EventTypeShopperArrival: 3,
	EventTypeTick:           4,
	EventTypeSnapshotSave:   5, // after the tick, so the saved state is post-step
}

// Event is a scheduled simulation occurrence.
type Event interface {
	Timestamp() int64
	EventID() uint64
	Type() EventType
	Execute(sim *Simulator)
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	timestamp int64
	eventID   uint64
	eventType EventType
}

func (e *BaseEvent) Timestamp() int64 { return e.timestamp }
func (e *BaseEvent) EventID() uint64  { return e.eventID }
func (e *BaseEvent) Type() EventType  { return e.eventType }

// ShopperArrival is the neutral description of a generated or scripted
// shopper: who arrives, when, with how much money and wanting what.
type ShopperArrival struct {
	Name        string
	ArrivalTime int64
	Wallet      float64
	Items       []ListEntry
}

// ShopperArrivalEvent spawns a customer agent at the street edge.
type ShopperArrivalEvent struct {
	BaseEvent
	Arrival ShopperArrival
}

func (e *ShopperArrivalEvent) Execute(sim *Simulator) {
	logrus.Infof("[tick %07d] << Arrival: %s", e.timestamp, e.Arrival.Name)
	sim.spawnCustomer(e.Arrival)
	sim.ensureTickScheduled(e.timestamp)
}

// TickEvent advances every live agent and station by one fixed tick, then
// reschedules itself while work remains.
type TickEvent struct {
	BaseEvent
}

func (e *TickEvent) Execute(sim *Simulator) {
	sim.stepTick(e.timestamp)
}

// StationOpenEvent registers and opens a new checkout station mid-run.
type StationOpenEvent struct {
	BaseEvent
	StationID string
}

func (e *StationOpenEvent) Execute(sim *Simulator) {
	logrus.Infof("[tick %07d] station %s opening", e.timestamp, e.StationID)
	sim.OpenStation(e.StationID)
	sim.ensureTickScheduled(e.timestamp)
}

// StationCloseEvent destroys a station mid-run, forcing dependent agents
// through stranding recovery.
type StationCloseEvent struct {
	BaseEvent
	StationID string
}

func (e *StationCloseEvent) Execute(sim *Simulator) {
	logrus.Infof("[tick %07d] station %s closing", e.timestamp, e.StationID)
	sim.CloseStation(e.StationID)
}

// SnapshotSaveEvent captures the world to a file mid-run.
type SnapshotSaveEvent struct {
	BaseEvent
	Path string
}

func (e *SnapshotSaveEvent) Execute(sim *Simulator) {
	if err := SaveSnapshotFile(e.Path, sim.CaptureSnapshot()); err != nil {
		logrus.Errorf("[tick %07d] snapshot save failed: %v", e.timestamp, err)
		return
	}
	logrus.Infof("[tick %07d] snapshot saved to %s", e.timestamp, e.Path)
}

// RestoreRetryEvent retries binding a restored agent to a station that was
// not yet registered when the snapshot was applied.
type RestoreRetryEvent struct {
	BaseEvent
	CustomerID string
	StationID  string
	Attempt    int
}

func (e *RestoreRetryEvent) Execute(sim *Simulator) {
	sim.retryRestoreBinding(e.CustomerID, e.StationID, e.Attempt, e.timestamp)
}
