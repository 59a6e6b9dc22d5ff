package store

// BeltItem is one product instance on the checkout belt. An item becomes
// non-scannable the moment a scan claims it, before any presentation-side
// animation could run, which closes the double-scan race between operator
// input and an unfinished flight animation.
type BeltItem struct {
	ProductID   string
	LockedPrice float64
	PriceLocked bool

	scannable bool
	scanned   bool
}

// Scanned reports whether the item has been scanned.
func (it *BeltItem) Scanned() bool { return it.scanned }

// Belt is a station's transient holding area for one transaction: a bounded
// grid of unscanned items, the set of scanned items, and the running total.
//
// Invariant: RunningTotal == Σ(billed price of scanned items), where the
// billed price is the item's locked purchase price when one exists, else the
// retail price at scan time.
type Belt struct {
	columns int
	rows    int

	unscanned []*BeltItem
	scanned   []*BeltItem
	total     float64
}

// NewBelt creates a belt with capacity columns × rows.
func NewBelt(columns, rows int) *Belt {
	return &Belt{columns: columns, rows: rows}
}

// Capacity returns the maximum number of unscanned items the belt holds.
func (b *Belt) Capacity() int {
	return b.columns * b.rows
}

// Place appends one item instance to the unscanned grid. Excess beyond
// capacity is rejected.
func (b *Belt) Place(productID string, lockedPrice float64, priceLocked bool) *BeltItem {
	if len(b.unscanned) >= b.Capacity() {
		return nil
	}
	it := &BeltItem{
		ProductID:   productID,
		LockedPrice: lockedPrice,
		PriceLocked: priceLocked,
		scannable:   true,
	}
	b.unscanned = append(b.unscanned, it)
	return it
}

// Scan processes one belt item: marks it non-scannable, moves it from the
// unscanned to the scanned set and accumulates its billed price into the
// running total. Repeated scans of the same item are no-ops returning false.
func (b *Belt) Scan(it *BeltItem, pricing Pricing) (float64, bool) {
	if it == nil || !it.scannable {
		return 0, false
	}
	// Claim before anything else; a second scan attempt must see the claim.
	it.scannable = false

	for i, u := range b.unscanned {
		if u == it {
			b.unscanned = append(b.unscanned[:i], b.unscanned[i+1:]...)
			break
		}
	}
	price := it.LockedPrice
	if !it.PriceLocked {
		price = pricing.GetRetailPrice(it.ProductID)
	}
	it.scanned = true
	b.scanned = append(b.scanned, it)
	b.total += price
	return price, true
}

// ScanNext scans the oldest scannable unscanned item, or returns false when
// none remain.
func (b *Belt) ScanNext(pricing Pricing) (*BeltItem, float64, bool) {
	for _, it := range b.unscanned {
		if it.scannable {
			price, ok := b.Scan(it, pricing)
			if ok {
				return it, price, true
			}
		}
	}
	return nil, 0, false
}

// UnscannedCount returns the number of items not yet scanned.
func (b *Belt) UnscannedCount() int { return len(b.unscanned) }

// ScannedCount returns the number of scanned items.
func (b *Belt) ScannedCount() int { return len(b.scanned) }

// RunningTotal returns the accumulated billed total for the transaction.
func (b *Belt) RunningTotal() float64 { return b.total }

// Unscanned returns the unscanned items in placement order. Callers must not
// mutate the returned slice.
func (b *Belt) Unscanned() []*BeltItem { return b.unscanned }

// ScannedItems returns the scanned items in scan order. Callers must not
// mutate the returned slice.
func (b *Belt) ScannedItems() []*BeltItem { return b.scanned }

// Clear purges both sets and zeroes the total. Called exactly once per
// completed or abandoned transaction.
func (b *Belt) Clear() {
	b.unscanned = nil
	b.scanned = nil
	b.total = 0
}
