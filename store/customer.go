// Implements the customer behavior state machine. A customer walks in off
// the street, shops its list shelf by shelf, queues at a checkout station,
// places its items on the belt, pays and leaves. Every long-running wait
// carries a timeout that degrades to forced progress; no state blocks
// indefinitely.

package store

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// CustomerState is the lifecycle state of a customer agent.
type CustomerState string

const (
	StateStreetWalking    CustomerState = "street_walking"
	StateConsideringStore CustomerState = "considering_store"
	StateEntering         CustomerState = "entering"
	StateShopping         CustomerState = "shopping"
	StateGoingToShelf     CustomerState = "going_to_shelf"
	StateTakingItem       CustomerState = "taking_item"
	StateGoingToCashier   CustomerState = "going_to_cashier"
	StateJoiningQueue     CustomerState = "joining_queue"
	StateWaitingInQueue   CustomerState = "waiting_in_queue"
	StatePlacingItems     CustomerState = "placing_items_on_belt"
	StatePaying           CustomerState = "paying"
	StateLeaving          CustomerState = "leaving"
)

// IsCheckoutDirected reports whether the state binds the agent to a target
// checkout station.
func (s CustomerState) IsCheckoutDirected() bool {
	switch s {
	case StateGoingToCashier, StateJoiningQueue, StateWaitingInQueue, StatePlacingItems, StatePaying:
		return true
	}
	return false
}

// considerDelay is the pause in ConsideringStore before committing to enter.
const considerDelay int64 = 800

// travelBound caps any navigation-driven state so a pathological destination
// cannot stall an agent.
const travelBound int64 = 60 * TicksPerSecond

// World is the customer's view of the simulation it lives in. The Simulator
// implements it; tests may substitute a reduced fake.
type World interface {
	Clock
	Directory() *CheckoutDirectory
	Product(productID string) *Product
	ShelfFor(productID string) *Shelf
	Entrance() Vec2
	ExitPoint() Vec2
	ExitSpread() float64
	AgentRand() *rand.Rand
	DespawnCustomer(c *CustomerAgent)
}

// CustomerAgent owns a shopping list and a state machine; it decides what to
// shop for, when to queue and when to leave. It is the concrete
// QueueableAgent the checkout station serves.
type CustomerAgent struct {
	name    string
	wallet  float64
	cfg     AgentConfig
	world   World
	nav     Navigation
	actions ActionGate
	pricing Pricing
	policy  PurchasePolicy

	state      CustomerState
	stateTimer int64

	list        *ShoppingList
	cursor      *ShoppingListItem
	targetShelf *Shelf

	station      ServiceStation
	inQueue      bool
	queuePos     int
	standAt      Vec2
	standAtDirty bool
	joinAttempts int

	// Belt-placement task bookkeeping.
	placeIdx     int
	placedOfItem int
	placeWaiting bool
	placeTimer   int64
	placeStalled int64

	payGateLatch bool

	// The personal exit offset is assigned once and reused across restore.
	exitAssigned bool
	exitPos      Vec2

	onTransition func(c *CustomerAgent, from, to CustomerState)
}

// NewCustomerAgent creates a customer on the street with the given list and
// wallet. The agent starts in StreetWalking heading for the entrance.
func NewCustomerAgent(name string, wallet float64, entries []ListEntry, cfg AgentConfig,
	world World, nav Navigation, actions ActionGate, pricing Pricing, policy PurchasePolicy) *CustomerAgent {
	c := &CustomerAgent{
		name:    name,
		wallet:  wallet,
		cfg:     cfg,
		world:   world,
		nav:     nav,
		actions: actions,
		pricing: pricing,
		policy:  policy,
		list:    NewShoppingList(entries),
		state:   StateStreetWalking,
	}
	c.nav.SetDestination(world.Entrance())
	return c
}

// SetTransitionHook installs an observer invoked on every state change.
func (c *CustomerAgent) SetTransitionHook(fn func(c *CustomerAgent, from, to CustomerState)) {
	c.onTransition = fn
}

func (c *CustomerAgent) ID() string            { return c.name }
func (c *CustomerAgent) State() CustomerState  { return c.state }
func (c *CustomerAgent) StateTimer() int64     { return c.stateTimer }
func (c *CustomerAgent) Wallet() float64       { return c.wallet }
func (c *CustomerAgent) List() *ShoppingList   { return c.list }
func (c *CustomerAgent) Station() ServiceStation { return c.station }
func (c *CustomerAgent) InQueue() bool         { return c.inQueue }
func (c *CustomerAgent) QueuePosition() int    { return c.queuePos }
func (c *CustomerAgent) Navigator() Navigation { return c.nav }

// ChangeState is the only mutator of the current state. On every transition
// it cancels a pending approach reservation when the agent stops being
// checkout-directed, resets action triggers, zeroes the state timer and runs
// the state entry routine.
func (c *CustomerAgent) ChangeState(next CustomerState) {
	prev := c.state
	if prev.IsCheckoutDirected() && !next.IsCheckoutDirected() && c.station != nil && !c.inQueue {
		c.station.CancelApproachingSpot(c)
	}
	c.actions.ResetActionTriggers()
	c.stateTimer = 0
	c.state = next
	if c.onTransition != nil {
		c.onTransition(c, prev, next)
	}
	c.enterState(next)
}

func (c *CustomerAgent) enterState(next CustomerState) {
	switch next {
	case StateConsideringStore:
		c.nav.Stop()

	case StateEntering:
		c.nav.Resume()
		c.nav.SetDestination(c.world.Entrance())

	case StateShopping:
		c.cursor = nil
		c.targetShelf = nil
		c.nav.Stop()

	case StateGoingToShelf:
		c.nav.Resume()
		if c.targetShelf != nil {
			c.nav.SetDestination(c.targetShelf.Position)
		}

	case StateTakingItem:
		c.nav.Stop()
		if c.targetShelf != nil {
			c.nav.FaceTarget(c.targetShelf.Position, true)
		}
		c.actions.PlayPickupAction()

	case StateGoingToCashier:
		// Changing target: drop any stale binding first so queue membership
		// stays globally unique.
		if c.station != nil {
			c.station.CancelApproachingSpot(c)
			if c.inQueue {
				c.station.LeaveQueue(c)
				c.inQueue = false
			}
			c.station = nil
		}
		st := c.world.Directory().FindShortestQueue()
		if st == nil {
			logrus.Debugf("customer %s: no open checkout station, leaving", c.name)
			c.ChangeState(StateLeaving)
			return
		}
		c.station = st
		st.ReserveApproachingSpot(c)
		c.nav.Resume()
		c.nav.SetDestination(st.GetEndOfQueuePosition())

	case StateJoiningQueue:
		c.joinAttempts = 0
		c.nav.Stop()
		if c.station != nil {
			c.nav.FaceTarget(c.station.Position(), true)
		}

	case StatePlacingItems:
		c.placeIdx = 0
		c.placedOfItem = 0
		c.placeWaiting = false
		c.placeTimer = 0
		c.placeStalled = 0

	case StatePaying:
		c.payGateLatch = false
		c.actions.PlayPaymentAction()

	case StateLeaving:
		if !c.exitAssigned {
			r := c.world.AgentRand()
			spread := c.world.ExitSpread()
			offset := Vec2{
				X: (r.Float64()*2 - 1) * spread,
				Y: (r.Float64()*2 - 1) * spread,
			}
			c.exitPos = c.world.ExitPoint().Add(offset)
			c.exitAssigned = true
		}
		if c.station != nil {
			c.station.LeaveQueue(c)
			c.station.CancelApproachingSpot(c)
			c.station = nil
			c.inQueue = false
		}
		c.nav.Resume()
		c.nav.SetDestination(c.exitPos)
	}
}

// Update advances the agent by one tick of dt ticks at simulation time now.
func (c *CustomerAgent) Update(now, dt int64) {
	c.stateTimer += dt
	c.nav.Advance(dt)

	switch c.state {
	case StateStreetWalking:
		if c.nav.HasReachedDestination(1.0) || c.stateTimer >= 10*TicksPerSecond {
			c.ChangeState(StateConsideringStore)
		}

	case StateConsideringStore:
		if c.stateTimer >= considerDelay {
			c.ChangeState(StateEntering)
		}

	case StateEntering:
		if c.nav.HasReachedDestination(0) || c.stateTimer >= travelBound {
			c.ChangeState(StateShopping)
		}

	case StateShopping:
		c.updateShopping()

	case StateGoingToShelf:
		if c.targetShelf == nil {
			c.ChangeState(StateShopping)
			return
		}
		if c.nav.HasReachedDestination(c.cfg.InteractRange) || c.stateTimer >= travelBound {
			c.ChangeState(StateTakingItem)
		}

	case StateTakingItem:
		if c.actions.IsPickupActionComplete() || c.stateTimer >= c.cfg.PickupTimeout {
			c.processPickup()
		}

	case StateGoingToCashier:
		if c.station == nil || !c.station.IsOpen() {
			c.recoverStranded("target station closed en route")
			return
		}
		// The tail drifts as others join or approach; keep tracking it.
		c.nav.SetDestination(c.station.GetEndOfQueuePosition())
		if c.nav.HasReachedDestination(c.cfg.QueueJoinRange) || c.stateTimer >= travelBound {
			c.ChangeState(StateJoiningQueue)
		}

	case StateJoiningQueue:
		c.updateJoining()

	case StateWaitingInQueue:
		c.updateWaiting()

	case StatePlacingItems:
		c.updatePlacing(dt)

	case StatePaying:
		if !c.payGateLatch && (c.actions.IsPaymentActionComplete() || c.stateTimer >= c.cfg.PaymentTimeout) {
			c.payGateLatch = true
		}
		if c.stateTimer >= c.cfg.PayingAbandon {
			logrus.Warnf("customer %s: payment never finalized, leaving", c.name)
			c.ChangeState(StateLeaving)
		}

	case StateLeaving:
		atExit := c.nav.HasReachedDestination(0) ||
			c.nav.Position().DistanceTo(c.exitPos) <= defaultArriveThreshold
		if atExit || c.stateTimer >= c.cfg.ExitTimeout {
			c.world.DespawnCustomer(c)
		}
	}
}

// updateShopping selects the next shoppable item, or tries to move on to a
// checkout. With a non-empty cart and no open station the agent stays in
// Shopping and re-polls every update, bounded by the shopping wait timeout.
func (c *CustomerAgent) updateShopping() {
	if it := c.list.NextShoppable(); it != nil {
		shelf := c.world.ShelfFor(it.ProductID)
		if shelf == nil || !shelf.CanTakeProduct() {
			it.Unavailable = true
			return
		}
		c.cursor = it
		c.targetShelf = shelf
		c.ChangeState(StateGoingToShelf)
		return
	}

	if !c.list.HasCollectedAnything() {
		// Nothing collected and nothing shoppable: nothing to buy here.
		logrus.Warnf("customer %s: empty cart and exhausted list, leaving", c.name)
		c.ChangeState(StateLeaving)
		return
	}

	if c.world.Directory().FindShortestQueue() != nil {
		c.ChangeState(StateGoingToCashier)
		return
	}

	if c.stateTimer >= c.cfg.ShoppingWait {
		logrus.Warnf("customer %s: no checkout opened within wait bound, leaving with %d items",
			c.name, c.list.TotalCollected())
		c.ChangeState(StateLeaving)
	}
}

// processPickup resolves one pickup attempt: the purchase decision may
// refuse the item (marked unavailable, no stock consumed); a successful
// pickup increments the collected count and locks the purchase price on the
// first unit only.
func (c *CustomerAgent) processPickup() {
	it, shelf := c.cursor, c.targetShelf
	if it == nil || shelf == nil {
		c.ChangeState(StateShopping)
		return
	}
	// The decision sees the remaining budget: wallet minus what the cart
	// already commits at locked prices, so a multi-item list cannot spend
	// past the wallet at payment time.
	if !c.policy.ShouldTakeItem(c.world.Product(it.ProductID), c.wallet-c.list.CommittedValue(), c.pricing) {
		logrus.Debugf("customer %s: refused %s, marking unavailable", c.name, it.ProductID)
		it.Unavailable = true
		c.ChangeState(StateShopping)
		return
	}
	if _, ok := shelf.TakeProduct(); !ok {
		it.Unavailable = true
		c.ChangeState(StateShopping)
		return
	}
	if err := it.RecordPickup(c.pricing.GetRetailPrice(it.ProductID)); err != nil {
		logrus.Errorf("customer %s: %v", c.name, err)
		c.ChangeState(StateShopping)
		return
	}
	if it.IsComplete() {
		c.ChangeState(StateShopping)
	} else {
		// More units of the same item: replay the pickup action.
		c.ChangeState(StateTakingItem)
	}
}

// updateJoining attempts queue admission after the settle delay. The station
// may advance a sole joiner straight into payment from inside TryJoinQueue,
// in which case the WaitingInQueue transition is skipped.
func (c *CustomerAgent) updateJoining() {
	if c.station == nil || !c.station.IsOpen() {
		c.recoverStranded("target station closed while joining")
		return
	}
	if c.stateTimer < c.cfg.JoinSettleDelay {
		return
	}
	if c.station.TryJoinQueue(c) {
		c.inQueue = true
		if c.state == StateJoiningQueue {
			c.ChangeState(StateWaitingInQueue)
		}
		return
	}
	c.joinAttempts++
	if c.joinAttempts >= 10 {
		c.recoverStranded("queue admission kept failing")
		return
	}
	c.stateTimer = 0 // retry after another settle delay
}

// updateWaiting holds position facing the station, resuming navigation when
// a station-driven position update moved the standing point.
func (c *CustomerAgent) updateWaiting() {
	if c.station == nil {
		c.recoverStranded("station vanished while queued")
		return
	}
	c.nav.FaceTarget(c.station.Position(), false)
	if c.standAtDirty {
		c.standAtDirty = false
		c.nav.Resume()
		c.nav.SetDestination(c.standAt)
	}
	if c.nav.HasReachedDestination(0) {
		c.nav.Stop()
	}
}

// updatePlacing runs the belt-placement task: for each collected unit,
// command the station to place one instance, play the placement action and
// wait for completion or the per-item timeout before the next unit.
func (c *CustomerAgent) updatePlacing(dt int64) {
	if c.station == nil {
		c.recoverStranded("station vanished during belt placement")
		return
	}
	if c.placeWaiting {
		c.placeTimer += dt
		if c.actions.IsPlacementActionComplete() || c.placeTimer >= c.cfg.PlaceItemTimeout {
			c.placeWaiting = false
		}
		return
	}
	it := c.nextPlacement()
	if it == nil {
		c.ChangeState(StatePaying)
		return
	}
	if c.station.PlaceItemOnBelt(it.ProductID, it.LockedPrice, it.PriceLocked) {
		c.placedOfItem++
		c.placeStalled = 0
		c.actions.PlayPlacementAction()
		c.placeWaiting = true
		c.placeTimer = 0
		return
	}
	c.placeStalled += dt
	if c.placeStalled >= c.cfg.PlaceItemTimeout {
		logrus.Warnf("customer %s: belt at %s stayed full, proceeding to payment with items unplaced",
			c.name, c.station.ID())
		c.ChangeState(StatePaying)
	}
}

// nextPlacement returns the list item with a collected unit not yet placed,
// or nil when placement is finished.
func (c *CustomerAgent) nextPlacement() *ShoppingListItem {
	for c.placeIdx < len(c.list.Items) {
		it := c.list.Items[c.placeIdx]
		if c.placedOfItem < it.Collected {
			return it
		}
		c.placeIdx++
		c.placedOfItem = 0
	}
	return nil
}

// recoverStranded handles the loss of a pre-transaction station binding:
// retarget to an alternative open station, or fall back to the Shopping
// wait-for-station behavior.
func (c *CustomerAgent) recoverStranded(reason string) {
	logrus.Warnf("customer %s: %s", c.name, reason)
	st := c.station
	c.station = nil
	c.inQueue = false
	if st != nil {
		st.CancelApproachingSpot(c)
		st.LeaveQueue(c)
	}
	if c.world.Directory().FindShortestQueue() != nil {
		c.ChangeState(StateGoingToCashier)
	} else {
		c.ChangeState(StateShopping)
	}
}

// --- QueueableAgent ---

// BeginPayment is the station's signal to the queue head to start its
// transaction. May arrive synchronously from inside TryJoinQueue.
func (c *CustomerAgent) BeginPayment(s ServiceStation) {
	c.station = s
	c.inQueue = true
	c.ChangeState(StatePlacingItems)
}

func (c *CustomerAgent) ReachedPayingState() bool { return c.state == StatePaying }

func (c *CustomerAgent) PaymentGateOpen() bool { return c.payGateLatch }

func (c *CustomerAgent) Pay(amount float64) { c.wallet -= amount }

func (c *CustomerAgent) QueuePositionChanged(pos int, standAt Vec2) {
	c.inQueue = true
	c.queuePos = pos
	if standAt != c.standAt {
		c.standAt = standAt
		c.standAtDirty = true
	}
}

func (c *CustomerAgent) TransactionCompleted(amount float64) {
	logrus.Debugf("customer %s: paid %.2f, wallet now %.2f", c.name, amount, c.wallet)
	c.inQueue = false
	c.station = nil
	c.ChangeState(StateLeaving)
}

// StationClosed runs stranding recovery. Pre-transaction states retarget or
// fall back to Shopping; mid-transaction loss cannot be safely aborted and
// degrades to Shopping with a hard-anomaly diagnostic.
func (c *CustomerAgent) StationClosed(s ServiceStation) {
	if c.station != nil && c.station != s {
		return // stale notification from a previous target
	}
	c.station = nil
	c.inQueue = false
	switch c.state {
	case StateGoingToCashier, StateJoiningQueue, StateWaitingInQueue:
		if c.world.Directory().FindShortestQueue() != nil {
			c.ChangeState(StateGoingToCashier)
		} else {
			c.ChangeState(StateShopping)
		}
	case StatePlacingItems, StatePaying:
		logrus.Errorf("customer %s: station %s destroyed mid-transaction; degrading to shopping, operator attention required",
			c.name, s.ID())
		c.ChangeState(StateShopping)
	}
}
