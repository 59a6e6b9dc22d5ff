package store

import "fmt"

// ShoppingListItem is one product desire on a customer's list.
//
// Invariants: Collected never exceeds Desired and never decreases; the
// purchase price is locked exactly once, when the first unit is collected,
// and billing uses the locked price regardless of later retail changes.
type ShoppingListItem struct {
	ProductID   string
	Desired     int
	Collected   int
	LockedPrice float64
	PriceLocked bool
	Unavailable bool
}

// IsComplete reports whether every desired unit has been collected.
func (it *ShoppingListItem) IsComplete() bool {
	return it.Collected >= it.Desired
}

// CanContinueShopping reports whether the item is still worth pursuing:
// not complete and not marked unavailable.
func (it *ShoppingListItem) CanContinueShopping() bool {
	return !it.IsComplete() && !it.Unavailable
}

// RecordPickup registers one collected unit. The first unit locks the
// purchase price at the retail price in effect at pickup time. Collecting
// beyond Desired is a programming error.
func (it *ShoppingListItem) RecordPickup(retailPrice float64) error {
	if it.Collected >= it.Desired {
		return fmt.Errorf("shopping list item %s: pickup beyond desired quantity %d", it.ProductID, it.Desired)
	}
	if !it.PriceLocked {
		it.LockedPrice = retailPrice
		it.PriceLocked = true
	}
	it.Collected++
	return nil
}

func (it *ShoppingListItem) String() string {
	return fmt.Sprintf("ListItem(%s %d/%d locked=%v unavailable=%v)",
		it.ProductID, it.Collected, it.Desired, it.PriceLocked, it.Unavailable)
}

// ShoppingList is a customer's ordered list of desires.
type ShoppingList struct {
	Items []*ShoppingListItem
}

// NewShoppingList builds a list from (product, quantity) entries.
func NewShoppingList(entries []ListEntry) *ShoppingList {
	l := &ShoppingList{}
	for _, e := range entries {
		if e.Quantity <= 0 {
			continue
		}
		l.Items = append(l.Items, &ShoppingListItem{ProductID: e.ProductID, Desired: e.Quantity})
	}
	return l
}

// ListEntry is a neutral (product, quantity) pair used to construct lists.
type ListEntry struct {
	ProductID string
	Quantity  int
}

// NextShoppable returns the first item that can still be shopped for, or nil
// when the list is exhausted.
func (l *ShoppingList) NextShoppable() *ShoppingListItem {
	for _, it := range l.Items {
		if it.CanContinueShopping() {
			return it
		}
	}
	return nil
}

// HasCollectedAnything reports whether at least one unit of anything was
// collected.
func (l *ShoppingList) HasCollectedAnything() bool {
	for _, it := range l.Items {
		if it.Collected > 0 {
			return true
		}
	}
	return false
}

// CommittedValue returns what the cart will cost at the locked prices:
// the money already spoken for before any further pickup.
func (l *ShoppingList) CommittedValue() float64 {
	v := 0.0
	for _, it := range l.Items {
		v += float64(it.Collected) * it.LockedPrice
	}
	return v
}

// TotalCollected returns the total number of collected units across items.
func (l *ShoppingList) TotalCollected() int {
	n := 0
	for _, it := range l.Items {
		n += it.Collected
	}
	return n
}
