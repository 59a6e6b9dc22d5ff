// Implements the persistence bridge: converting live agent/station state
// to and from a serializable snapshot, and driving ordered restoration with
// bounded retry when a referenced station does not exist yet.

package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
)

// ListItemSnapshot is the serializable form of one shopping-list item.
type ListItemSnapshot struct {
	ProductID   string  `json:"product_id"`
	Desired     int     `json:"desired"`
	Collected   int     `json:"collected"`
	LockedPrice float64 `json:"locked_price"`
	PriceLocked bool    `json:"price_locked"`
	Unavailable bool    `json:"unavailable"`
}

// AgentSnapshot is the serializable form of one customer agent.
type AgentSnapshot struct {
	Name            string             `json:"name"`
	Wallet          float64            `json:"wallet"`
	State           string             `json:"state"`
	StateTimer      int64              `json:"state_timer"`
	InQueue         bool               `json:"in_queue"`
	QueuePosition   int                `json:"queue_position"`
	StationID       string             `json:"station_id,omitempty"`
	TargetProductID string             `json:"target_product_id,omitempty"`
	Position        Vec2               `json:"position"`
	ExitAssigned    bool               `json:"exit_assigned"`
	ExitPosition    Vec2               `json:"exit_position"`
	List            []ListItemSnapshot `json:"list"`
}

// BeltItemSnapshot is the serializable form of one belt item.
type BeltItemSnapshot struct {
	ProductID   string  `json:"product_id"`
	LockedPrice float64 `json:"locked_price"`
	PriceLocked bool    `json:"price_locked"`
	Scanned     bool    `json:"scanned"`
}

// StationSnapshot is the serializable form of one checkout station.
type StationSnapshot struct {
	ID           string             `json:"id"`
	Open         bool               `json:"open"`
	Staffed      bool               `json:"staffed"`
	Queue        []string           `json:"queue"`
	Approaching  []string           `json:"approaching"`
	Current      string             `json:"current,omitempty"`
	Processing   bool               `json:"processing"`
	RunningTotal float64            `json:"running_total"`
	Belt         []BeltItemSnapshot `json:"belt"`
}

// WorldSnapshot captures the whole simulation at one instant.
type WorldSnapshot struct {
	Clock    int64             `json:"clock"`
	Seed     int64             `json:"seed"`
	Shelves  map[string]int    `json:"shelves,omitempty"` // remaining stock per product
	Agents   []AgentSnapshot   `json:"agents"`
	Stations []StationSnapshot `json:"stations"`
}

// Snapshot returns the agent's serializable state.
func (c *CustomerAgent) Snapshot() AgentSnapshot {
	snap := AgentSnapshot{
		Name:          c.name,
		Wallet:        c.wallet,
		State:         string(c.state),
		StateTimer:    c.stateTimer,
		InQueue:       c.inQueue,
		QueuePosition: c.queuePos,
		Position:      c.nav.Position(),
		ExitAssigned:  c.exitAssigned,
		ExitPosition:  c.exitPos,
	}
	if c.station != nil {
		snap.StationID = c.station.ID()
	}
	if c.targetShelf != nil {
		snap.TargetProductID = c.targetShelf.ProductID
	}
	for _, it := range c.list.Items {
		snap.List = append(snap.List, ListItemSnapshot{
			ProductID:   it.ProductID,
			Desired:     it.Desired,
			Collected:   it.Collected,
			LockedPrice: it.LockedPrice,
			PriceLocked: it.PriceLocked,
			Unavailable: it.Unavailable,
		})
	}
	return snap
}

// Snapshot returns the station's serializable state.
func (st *CheckoutStation) Snapshot() StationSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	snap := StationSnapshot{
		ID:           st.id,
		Open:         st.open,
		Staffed:      st.staffed,
		Processing:   st.isProcessing,
		RunningTotal: st.belt.RunningTotal(),
		Queue:        []string{},
		Approaching:  []string{},
	}
	for _, a := range st.queue.Items() {
		snap.Queue = append(snap.Queue, a.ID())
	}
	for id := range st.approaching {
		snap.Approaching = append(snap.Approaching, id)
	}
	if st.current != nil {
		snap.Current = st.current.ID()
	}
	for _, it := range st.belt.Unscanned() {
		snap.Belt = append(snap.Belt, BeltItemSnapshot{
			ProductID: it.ProductID, LockedPrice: it.LockedPrice, PriceLocked: it.PriceLocked,
		})
	}
	for _, it := range st.belt.ScannedItems() {
		snap.Belt = append(snap.Belt, BeltItemSnapshot{
			ProductID: it.ProductID, LockedPrice: it.LockedPrice, PriceLocked: it.PriceLocked, Scanned: true,
		})
	}
	return snap
}

// CaptureSnapshot freezes the whole simulation into a value-typed snapshot.
func (s *Simulator) CaptureSnapshot() *WorldSnapshot {
	ws := &WorldSnapshot{Clock: s.Clock, Seed: s.cfg.Seed, Shelves: make(map[string]int, len(s.shelves))}
	for pid, sh := range s.shelves {
		ws.Shelves[pid] = sh.Stock()
	}
	for _, st := range s.dir.Stations() {
		ws.Stations = append(ws.Stations, st.Snapshot())
	}
	for _, c := range s.customers {
		ws.Agents = append(ws.Agents, c.Snapshot())
	}
	return ws
}

// RestoreSnapshot rebuilds the world from a snapshot: stations first, then
// agents, then queue relinking. An agent referencing a station that is not
// yet registered is scheduled for bounded retry; exhaustion reverts it to
// Shopping rather than leaving it permanently stuck.
func (s *Simulator) RestoreSnapshot(ws *WorldSnapshot) error {
	if ws == nil {
		return fmt.Errorf("restore: nil snapshot")
	}
	s.Clock = ws.Clock

	for pid, stock := range ws.Shelves {
		if sh := s.shelves[pid]; sh != nil {
			sh.stock = stock
		}
	}
	for i := range ws.Stations {
		if err := s.restoreStation(&ws.Stations[i]); err != nil {
			return err
		}
	}
	for i := range ws.Agents {
		if err := s.restoreAgent(&ws.Agents[i]); err != nil {
			return err
		}
	}
	for i := range ws.Stations {
		s.relinkStationQueue(&ws.Stations[i])
	}
	for _, snap := range ws.Agents {
		if snap.StationID == "" {
			continue
		}
		c := s.customerIndex[snap.Name]
		if c == nil || c.station != nil {
			continue
		}
		// Referenced station absent: bounded retry before degrading.
		logrus.Warnf("restore: station %s not registered yet for %s, retrying", snap.StationID, snap.Name)
		s.Schedule(&RestoreRetryEvent{
			BaseEvent:  s.newBase(s.Clock+s.cfg.RestoreRetryDelay, EventTypeRestoreRetry),
			CustomerID: snap.Name,
			StationID:  snap.StationID,
			Attempt:    1,
		})
	}
	for _, st := range s.dir.Stations() {
		st.recomputePositions()
		st.CheckAndStartProcessing()
	}
	s.ensureTickScheduled(s.Clock)
	return nil
}

func (s *Simulator) restoreStation(snap *StationSnapshot) error {
	st := s.OpenStation(snap.ID)
	st.mu.Lock()
	st.open = snap.Open
	st.staffed = snap.Staffed
	st.belt.Clear()
	st.mu.Unlock()
	for _, bi := range snap.Belt {
		it := st.belt.Place(bi.ProductID, bi.LockedPrice, bi.PriceLocked)
		if it == nil {
			return fmt.Errorf("restore: belt overflow on station %s", snap.ID)
		}
		if bi.Scanned {
			st.belt.Scan(it, s.catalog)
		}
	}
	if diff := math.Abs(st.belt.RunningTotal() - snap.RunningTotal); diff > 1e-6 {
		logrus.Warnf("restore: station %s running total drifted by %.4f (retail prices changed since save)", snap.ID, diff)
	}
	return nil
}

func (s *Simulator) restoreAgent(snap *AgentSnapshot) error {
	if _, dup := s.customerIndex[snap.Name]; dup {
		return fmt.Errorf("restore: duplicate agent %q", snap.Name)
	}
	nav := NewWalker(s.cfg.Layout.SpawnPoint, s.cfg.Agent.WalkSpeed)
	nav.Teleport(snap.Position)
	actions := NewTimedActions(s, s.cfg.Agent.PickupActionDur, s.cfg.Agent.PlacementActionDur, s.cfg.Agent.PaymentActionDur)
	c := NewCustomerAgent(snap.Name, snap.Wallet, nil, s.cfg.Agent, s, nav, actions, s.catalog, BudgetPolicy{})

	c.list = &ShoppingList{}
	for _, li := range snap.List {
		c.list.Items = append(c.list.Items, &ShoppingListItem{
			ProductID:   li.ProductID,
			Desired:     li.Desired,
			Collected:   li.Collected,
			LockedPrice: li.LockedPrice,
			PriceLocked: li.PriceLocked,
			Unavailable: li.Unavailable,
		})
	}
	// State is restored directly; entry routines must not re-fire their side
	// effects during restoration.
	c.state = CustomerState(snap.State)
	c.stateTimer = snap.StateTimer
	c.queuePos = snap.QueuePosition
	c.exitAssigned = snap.ExitAssigned
	c.exitPos = snap.ExitPosition
	s.resumeRestoredAgent(c, snap)
	s.attachCustomer(c)
	return nil
}

// resumeRestoredAgent re-establishes the navigation and action side state a
// restored agent needs to keep moving.
func (s *Simulator) resumeRestoredAgent(c *CustomerAgent, snap *AgentSnapshot) {
	switch c.state {
	case StateStreetWalking, StateEntering:
		c.nav.SetDestination(s.Entrance())
	case StateGoingToShelf, StateTakingItem:
		if shelf := s.shelves[snap.TargetProductID]; shelf != nil {
			c.targetShelf = shelf
			for _, it := range c.list.Items {
				if it.ProductID == snap.TargetProductID {
					c.cursor = it
					break
				}
			}
			if c.state == StateGoingToShelf {
				c.nav.SetDestination(shelf.Position)
			} else {
				c.nav.Stop()
				c.actions.PlayPickupAction()
			}
		} else {
			c.state = StateShopping
		}
	case StatePlacingItems:
		// Belt contents are restored station-side; the placement cursor is
		// fast-forwarded during queue relinking.
		c.placeIdx = 0
		c.placedOfItem = 0
		c.placeWaiting = false
	case StatePaying:
		c.actions.PlayPaymentAction()
	case StateLeaving:
		c.nav.SetDestination(c.exitPos)
	}
}

// relinkStationQueue reattaches restored agents to a restored station's
// queue in snapshot order, bypassing admission side effects.
func (s *Simulator) relinkStationQueue(snap *StationSnapshot) {
	st := s.dir.FindByID(snap.ID)
	if st == nil {
		return
	}
	st.mu.Lock()
	for _, name := range snap.Queue {
		c := s.customerIndex[name]
		if c == nil {
			logrus.Warnf("restore: queued agent %s missing from snapshot", name)
			continue
		}
		st.queue.Enqueue(c)
		c.station = st
		c.inQueue = true
	}
	for _, name := range snap.Approaching {
		c := s.customerIndex[name]
		if c == nil {
			continue
		}
		st.approaching[name] = c
		if c.station == nil {
			c.station = st
		}
	}
	if snap.Current != "" {
		if c := s.customerIndex[snap.Current]; c != nil && st.queue.Contains(c) {
			st.current = c
			st.isProcessing = snap.Processing
			switch c.state {
			case StatePlacingItems:
				st.phase = phaseAwaitPaying
				st.phaseDeadline = s.Clock + st.cfg.AwaitPayingTimeout
				c.skipPlacedUnits(st.belt.UnscannedCount() + st.belt.ScannedCount())
			case StatePaying:
				st.phase = phaseScanning
				st.nextScanAt = s.Clock + st.cfg.ScanInterval
			default:
				st.current = nil
				st.isProcessing = false
				st.phase = phaseIdle
			}
		}
	}
	st.mu.Unlock()
}

// skipPlacedUnits fast-forwards the placement cursor past units already on
// the belt, so a restored agent does not place them a second time.
func (c *CustomerAgent) skipPlacedUnits(n int) {
	c.placeIdx = 0
	c.placedOfItem = 0
	for n > 0 && c.placeIdx < len(c.list.Items) {
		it := c.list.Items[c.placeIdx]
		remain := it.Collected - c.placedOfItem
		if remain > n {
			c.placedOfItem += n
			return
		}
		n -= remain
		c.placeIdx++
		c.placedOfItem = 0
	}
}

// retryRestoreBinding is the bounded retry driven by RestoreRetryEvent.
func (s *Simulator) retryRestoreBinding(customerID, stationID string, attempt int, now int64) {
	c := s.customerIndex[customerID]
	if c == nil {
		return
	}
	if c.station != nil || !c.state.IsCheckoutDirected() {
		return // resolved or moved on in the meantime
	}
	if st := s.dir.FindByID(stationID); st != nil {
		s.bindRestoredAgent(c, st)
		return
	}
	if attempt >= s.cfg.RestoreMaxAttempts {
		logrus.Warnf("restore: station %s never appeared for %s after %d attempts, reverting to shopping",
			stationID, customerID, attempt)
		c.ChangeState(StateShopping)
		return
	}
	s.Schedule(&RestoreRetryEvent{
		BaseEvent:  s.newBase(now+s.cfg.RestoreRetryDelay, EventTypeRestoreRetry),
		CustomerID: customerID,
		StationID:  stationID,
		Attempt:    attempt + 1,
	})
}

// bindRestoredAgent reattaches a late-appearing station to an agent restored
// in a checkout-directed state. Queue order from the old world cannot be
// reproduced on a fresh station, so queued agents rejoin at the tail.
func (s *Simulator) bindRestoredAgent(c *CustomerAgent, st *CheckoutStation) {
	c.station = st
	switch c.state {
	case StateGoingToCashier:
		st.ReserveApproachingSpot(c)
		c.nav.Resume()
		c.nav.SetDestination(st.GetEndOfQueuePosition())
	case StateJoiningQueue:
		st.ReserveApproachingSpot(c)
	case StateWaitingInQueue, StatePlacingItems, StatePaying:
		if !st.TryJoinQueue(c) {
			c.recoverStranded("restored station refused admission")
		}
	}
}

// SaveSnapshotFile writes a snapshot as indented JSON.
func SaveSnapshotFile(path string, ws *WorldSnapshot) error {
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}

// LoadSnapshotFile reads a snapshot written by SaveSnapshotFile.
func LoadSnapshotFile(path string) (*WorldSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	var ws WorldSnapshot
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", path, err)
	}
	return &ws, nil
}
