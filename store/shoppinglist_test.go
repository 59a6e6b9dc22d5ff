package store

import (
	"testing"
)

func TestShoppingListItem_PriceLockedOnFirstUnitOnly(t *testing.T) {
	it := &ShoppingListItem{ProductID: "milk", Desired: 2}

	if err := it.RecordPickup(1.50); err != nil {
		t.Fatal(err)
	}
	if !it.PriceLocked || it.LockedPrice != 1.50 {
		t.Fatalf("first pickup should lock price at 1.50, got locked=%v price=%.2f", it.PriceLocked, it.LockedPrice)
	}

	// Retail price changed between pickups; the lock must hold.
	if err := it.RecordPickup(2.50); err != nil {
		t.Fatal(err)
	}
	if it.LockedPrice != 1.50 {
		t.Errorf("locked price after second pickup = %.2f, want 1.50", it.LockedPrice)
	}
	if it.Collected != 2 {
		t.Errorf("collected = %d, want 2", it.Collected)
	}
}

func TestShoppingListItem_PickupBeyondDesiredIsError(t *testing.T) {
	it := &ShoppingListItem{ProductID: "milk", Desired: 1}
	if err := it.RecordPickup(1.50); err != nil {
		t.Fatal(err)
	}
	if err := it.RecordPickup(1.50); err == nil {
		t.Error("pickup beyond desired quantity should be an error")
	}
	if it.Collected != 1 {
		t.Errorf("collected after rejected pickup = %d, want 1", it.Collected)
	}
}

func TestShoppingList_NextShoppableSkipsCompleteAndUnavailable(t *testing.T) {
	l := NewShoppingList([]ListEntry{
		{ProductID: "milk", Quantity: 1},
		{ProductID: "bread", Quantity: 1},
		{ProductID: "eggs", Quantity: 1},
	})

	l.Items[0].Collected = 1 // complete
	l.Items[1].Unavailable = true

	next := l.NextShoppable()
	if next == nil || next.ProductID != "eggs" {
		t.Errorf("next shoppable = %v, want eggs", next)
	}

	l.Items[2].Unavailable = true
	if l.NextShoppable() != nil {
		t.Error("exhausted list should have no shoppable item")
	}
}

func TestShoppingList_ZeroQuantityEntriesDropped(t *testing.T) {
	l := NewShoppingList([]ListEntry{
		{ProductID: "milk", Quantity: 0},
		{ProductID: "bread", Quantity: 2},
	})
	if len(l.Items) != 1 {
		t.Fatalf("list length = %d, want 1", len(l.Items))
	}
	if l.Items[0].ProductID != "bread" {
		t.Errorf("surviving item = %s, want bread", l.Items[0].ProductID)
	}
}

func TestShoppingList_CollectionAccounting(t *testing.T) {
	l := NewShoppingList([]ListEntry{{ProductID: "milk", Quantity: 2}})
	if l.HasCollectedAnything() {
		t.Error("fresh list should have collected nothing")
	}
	l.Items[0].RecordPickup(1.50)
	if !l.HasCollectedAnything() {
		t.Error("list with one pickup should report collected")
	}
	if l.TotalCollected() != 1 {
		t.Errorf("total collected = %d, want 1", l.TotalCollected())
	}
}
