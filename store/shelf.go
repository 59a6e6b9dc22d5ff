package store

// Shelf is the product-source collaborator: a single shelf stocked with one
// product. Restocking is out of scope; stock only decreases.
type Shelf struct {
	ID        string
	ProductID string
	Position  Vec2
	stock     int
}

// NewShelf creates a shelf holding stock units of the given product.
func NewShelf(id, productID string, pos Vec2, stock int) *Shelf {
	return &Shelf{ID: id, ProductID: productID, Position: pos, stock: stock}
}

// CanTakeProduct reports whether at least one unit remains.
func (s *Shelf) CanTakeProduct() bool {
	return s.stock > 0
}

// TakeProduct removes one unit and returns its product id. The second return
// is false when the shelf is empty.
func (s *Shelf) TakeProduct() (string, bool) {
	if s.stock <= 0 {
		return "", false
	}
	s.stock--
	return s.ProductID, true
}

// Stock returns the remaining unit count.
func (s *Shelf) Stock() int {
	return s.stock
}
