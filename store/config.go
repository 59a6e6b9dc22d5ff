package store

// Durations are in ticks (1000 ticks = 1 simulated second); see nav.go.

// StationConfig groups checkout-station parameters.
type StationConfig struct {
	BeltColumns        int     // belt grid width (capacity = columns * rows)
	BeltRows           int     // belt grid height
	ScanInterval       int64   // ticks between item scans
	PaymentDelay       int64   // fixed payment-processing delay
	SettleDelay        int64   // pause between served customers
	AwaitPayingTimeout int64   // bound on waiting for the head to reach Paying
	QueueSpacing       float64 // distance between queue standing points
	QueueDirection     Vec2    // direction the queue extends from the station
}

// DefaultStationConfig returns the station defaults used by the CLI.
func DefaultStationConfig() StationConfig {
	return StationConfig{
		BeltColumns:        4,
		BeltRows:           6,
		ScanInterval:       600,
		PaymentDelay:       1500,
		SettleDelay:        500,
		AwaitPayingTimeout: 60 * TicksPerSecond,
		QueueSpacing:       0.8,
		QueueDirection:     Vec2{X: 0, Y: 1},
	}
}

// AgentConfig groups customer-agent parameters.
type AgentConfig struct {
	WalkSpeed          float64 // units per simulated second
	InteractRange      float64 // shelf interaction distance
	QueueJoinRange     float64 // distance to the queue tail that triggers joining
	ShoppingWait       int64   // max wait in Shopping for a station to appear
	PickupTimeout      int64   // bound on the pickup action
	JoinSettleDelay    int64   // pause before attempting TryJoinQueue
	PlaceItemTimeout   int64   // per-unit bound during belt placement
	PaymentTimeout     int64   // bound on the payment action
	PayingAbandon      int64   // bound on the whole Paying state
	ExitTimeout        int64   // bound on reaching the exit
	PickupActionDur    int64   // simulated pickup action length
	PlacementActionDur int64   // simulated placement action length
	PaymentActionDur   int64   // simulated payment action length
}

// DefaultAgentConfig returns the agent defaults used by the CLI.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		WalkSpeed:          2.0,
		InteractRange:      0.6,
		QueueJoinRange:     0.6,
		ShoppingWait:       30 * TicksPerSecond,
		PickupTimeout:      5 * TicksPerSecond,
		JoinSettleDelay:    300,
		PlaceItemTimeout:   5 * TicksPerSecond,
		PaymentTimeout:     5 * TicksPerSecond,
		PayingAbandon:      30 * TicksPerSecond,
		ExitTimeout:        10 * TicksPerSecond,
		PickupActionDur:    1200,
		PlacementActionDur: 400,
		PaymentActionDur:   1000,
	}
}

// LayoutConfig groups the store floor geometry the simulation needs:
// spawn/entrance/exit points and where shelves and stations stand.
type LayoutConfig struct {
	SpawnPoint    Vec2
	Entrance      Vec2
	ExitPoint     Vec2
	ExitSpread    float64 // radius of the randomized personal exit offset
	ShelfOrigin   Vec2
	ShelfSpacing  float64
	StationOrigin Vec2
	StationGap    float64
}

// DefaultLayoutConfig returns a compact floor layout.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		SpawnPoint:    Vec2{X: -6, Y: 0},
		Entrance:      Vec2{X: 0, Y: 0},
		ExitPoint:     Vec2{X: -4, Y: -2},
		ExitSpread:    1.5,
		ShelfOrigin:   Vec2{X: 2, Y: 4},
		ShelfSpacing:  1.5,
		StationOrigin: Vec2{X: 8, Y: 0},
		StationGap:    3.0,
	}
}

// SimConfig is the full simulation configuration.
type SimConfig struct {
	Seed         int64
	Horizon      int64
	TickInterval int64
	Stations     int
	Station      StationConfig
	Agent        AgentConfig
	Layout       LayoutConfig

	// RestoreRetryDelay and RestoreMaxAttempts bound snapshot restoration
	// when a referenced station is not yet registered.
	RestoreRetryDelay  int64
	RestoreMaxAttempts int
}

// DefaultSimConfig returns a runnable configuration.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Seed:               42,
		Horizon:            300 * TicksPerSecond,
		TickInterval:       100,
		Stations:           2,
		Station:            DefaultStationConfig(),
		Agent:              DefaultAgentConfig(),
		Layout:             DefaultLayoutConfig(),
		RestoreRetryDelay:  500,
		RestoreMaxAttempts: 10,
	}
}
