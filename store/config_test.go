package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStationConfig_FieldEquivalence(t *testing.T) {
	got := DefaultStationConfig()
	want := StationConfig{
		BeltColumns:        4,
		BeltRows:           6,
		ScanInterval:       600,
		PaymentDelay:       1500,
		SettleDelay:        500,
		AwaitPayingTimeout: 60 * TicksPerSecond,
		QueueSpacing:       0.8,
		QueueDirection:     Vec2{X: 0, Y: 1},
	}
	assert.Equal(t, want, got)
}

func TestDefaultSimConfig_IsRunnable(t *testing.T) {
	cfg := DefaultSimConfig()
	assert.Positive(t, cfg.Horizon)
	assert.Positive(t, cfg.TickInterval)
	assert.Positive(t, cfg.Stations)
	assert.Positive(t, cfg.RestoreRetryDelay)
	assert.Positive(t, cfg.RestoreMaxAttempts)
	assert.Positive(t, cfg.Agent.WalkSpeed)
	assert.Positive(t, cfg.Station.BeltColumns*cfg.Station.BeltRows)
}

func TestNewCatalog_RejectsBadInput(t *testing.T) {
	_, err := NewCatalog([]Product{{ID: "milk"}, {ID: "milk"}})
	assert.Error(t, err, "duplicate ids must be rejected")

	_, err = NewCatalog([]Product{{ID: ""}})
	assert.Error(t, err, "empty id must be rejected")

	_, err = NewCatalog([]Product{{ID: "milk", Price: -1}})
	assert.Error(t, err, "negative price must be rejected")
}

func TestCatalog_PriceChangeDoesNotTouchOrder(t *testing.T) {
	c, err := NewCatalog([]Product{
		{ID: "milk", Price: 1.50},
		{ID: "bread", Price: 2.20},
	})
	assert.NoError(t, err)

	c.SetRetailPrice("milk", 1.80)
	assert.Equal(t, 1.80, c.GetRetailPrice("milk"))
	assert.Equal(t, []string{"milk", "bread"}, c.ProductIDs())
	assert.Equal(t, 0.0, c.GetRetailPrice("unknown"))
}
