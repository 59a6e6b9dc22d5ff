package store

// QueueableAgent is the station-facing view of a customer. The checkout
// station never touches the concrete CustomerAgent type, so tests can drive
// a station with fakes.
type QueueableAgent interface {
	ID() string

	// BeginPayment signals the queue head to start its transaction: the agent
	// moves through item placement into the Paying state. May be invoked
	// synchronously from inside TryJoinQueue when the joiner becomes the head
	// of an idle, staffed station.
	BeginPayment(s ServiceStation)

	// ReachedPayingState reports whether the agent has finished placing items
	// and entered Paying. The service loop suspends on this gate.
	ReachedPayingState() bool

	// PaymentGateOpen reports whether the agent's payment action has
	// completed (or timed out). The service loop waits for this gate before
	// finalizing the transaction.
	PaymentGateOpen() bool

	// Pay withdraws amount from the agent's wallet.
	Pay(amount float64)

	// QueuePositionChanged informs the agent of its new position index
	// (0 = head) and the spatial point it should stand at.
	QueuePositionChanged(pos int, standAt Vec2)

	// TransactionCompleted informs the agent that its transaction finalized
	// for the given amount; the agent leaves the queue and the store.
	TransactionCompleted(amount float64)

	// StationClosed informs the agent that its target station ceased to
	// exist; the agent runs stranding recovery.
	StationClosed(s ServiceStation)
}

// ServiceStation is the agent-facing view of a checkout station.
type ServiceStation interface {
	ID() string
	IsOpen() bool

	TryJoinQueue(a QueueableAgent) bool
	LeaveQueue(a QueueableAgent)
	ReserveApproachingSpot(a QueueableAgent)
	CancelApproachingSpot(a QueueableAgent)

	// GetEndOfQueuePosition returns the spatial target for the next joiner,
	// accounting for both queued and approaching agents so simultaneous
	// approachers spread out.
	GetEndOfQueuePosition() Vec2

	// QueueLength returns queued plus approaching agents; the directory uses
	// it to resolve "shortest queue".
	QueueLength() int

	Position() Vec2

	// PlaceItemOnBelt appends one item instance to the unscanned belt grid.
	// Returns false when the belt is at capacity.
	PlaceItemOnBelt(productID string, lockedPrice float64, priceLocked bool) bool

	// CheckAndStartProcessing is the idempotent service-loop entry point:
	// a no-op unless the station is open, staffed, idle and has a queue.
	CheckAndStartProcessing()
}
