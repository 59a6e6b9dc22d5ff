package store

import (
	"math"
	"testing"
)

// fixedPricing bills every product at the same retail price.
type fixedPricing struct {
	price float64
}

func (p fixedPricing) GetRetailPrice(productID string) float64 { return p.price }

func TestBelt_CapacityBound(t *testing.T) {
	b := NewBelt(2, 2)

	for i := 0; i < 4; i++ {
		if b.Place("milk", 1.5, true) == nil {
			t.Fatalf("placement %d should fit within capacity 4", i)
		}
	}
	if b.Place("milk", 1.5, true) != nil {
		t.Error("placement beyond capacity should be rejected")
	}
	if b.UnscannedCount() != 4 {
		t.Errorf("unscanned count = %d, want 4", b.UnscannedCount())
	}
}

func TestBelt_ScanBillsLockedPrice(t *testing.T) {
	b := NewBelt(4, 4)
	retail := fixedPricing{price: 9.99}

	// Price was locked at 1.50 at pickup time; a later retail change must not
	// affect billing.
	it := b.Place("milk", 1.50, true)
	price, ok := b.Scan(it, retail)
	if !ok {
		t.Fatal("scan of a fresh item should succeed")
	}
	if price != 1.50 {
		t.Errorf("billed price = %.2f, want locked 1.50", price)
	}
	if b.RunningTotal() != 1.50 {
		t.Errorf("running total = %.2f, want 1.50", b.RunningTotal())
	}
}

func TestBelt_ScanFallsBackToRetailWhenUnlocked(t *testing.T) {
	b := NewBelt(4, 4)
	it := b.Place("bread", 0, false)

	price, ok := b.Scan(it, fixedPricing{price: 2.20})
	if !ok {
		t.Fatal("scan should succeed")
	}
	if price != 2.20 {
		t.Errorf("billed price = %.2f, want retail fallback 2.20", price)
	}
}

func TestBelt_DoubleScanRejected(t *testing.T) {
	b := NewBelt(4, 4)
	it := b.Place("milk", 1.50, true)

	if _, ok := b.Scan(it, fixedPricing{}); !ok {
		t.Fatal("first scan should succeed")
	}
	if _, ok := b.Scan(it, fixedPricing{}); ok {
		t.Error("second scan of the same item must be a no-op")
	}
	if b.RunningTotal() != 1.50 {
		t.Errorf("running total after double scan = %.2f, want 1.50", b.RunningTotal())
	}
	if b.ScannedCount() != 1 {
		t.Errorf("scanned count = %d, want 1", b.ScannedCount())
	}
}

func TestBelt_RunningTotalMatchesScannedSum(t *testing.T) {
	b := NewBelt(4, 4)
	b.Place("milk", 1.50, true)
	b.Place("milk", 1.50, true)
	b.Place("bread", 0, false)

	retail := fixedPricing{price: 2.20}
	sum := 0.0
	for {
		_, price, ok := b.ScanNext(retail)
		if !ok {
			break
		}
		sum += price
	}
	if math.Abs(b.RunningTotal()-sum) > 1e-9 {
		t.Errorf("running total %.2f != scanned sum %.2f", b.RunningTotal(), sum)
	}
	if math.Abs(b.RunningTotal()-5.20) > 1e-9 {
		t.Errorf("running total = %.2f, want 5.20", b.RunningTotal())
	}
}

func TestBelt_ClearResetsEverything(t *testing.T) {
	b := NewBelt(4, 4)
	b.Place("milk", 1.50, true)
	b.ScanNext(fixedPricing{})
	b.Place("bread", 0, false)

	b.Clear()
	if b.UnscannedCount() != 0 || b.ScannedCount() != 0 || b.RunningTotal() != 0 {
		t.Errorf("clear left unscanned=%d scanned=%d total=%.2f, want all zero",
			b.UnscannedCount(), b.ScannedCount(), b.RunningTotal())
	}
}
