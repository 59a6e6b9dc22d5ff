package store

import "fmt"

// Product is one sellable item in the catalog.
type Product struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Price      float64 `yaml:"price"`
	Popularity float64 `yaml:"popularity"` // relative selection weight for workload generation
	Stock      int     `yaml:"stock"`      // initial shelf stock
}

// Pricing is the price-lookup collaborator. The catalog implements it; tests
// substitute fixed-price fakes.
type Pricing interface {
	GetRetailPrice(productID string) float64
}

// Catalog holds the store's products in a stable order.
type Catalog struct {
	byID  map[string]*Product
	order []string
}

// NewCatalog builds a catalog from a product list. Duplicate IDs are an error.
func NewCatalog(products []Product) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Product, len(products))}
	for i := range products {
		p := products[i]
		if p.ID == "" {
			return nil, fmt.Errorf("catalog: product %d has empty id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("catalog: product %q has negative price", p.ID)
		}
		c.byID[p.ID] = &p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Lookup returns the product with the given id, or nil.
func (c *Catalog) Lookup(id string) *Product {
	return c.byID[id]
}

// GetRetailPrice returns the current retail price for a product, or 0 for an
// unknown id.
func (c *Catalog) GetRetailPrice(productID string) float64 {
	if p := c.byID[productID]; p != nil {
		return p.Price
	}
	return 0
}

// SetRetailPrice changes the current retail price of a product. Units whose
// purchase price is already locked are unaffected.
func (c *Catalog) SetRetailPrice(productID string, price float64) {
	if p := c.byID[productID]; p != nil {
		p.Price = price
	}
}

// ProductIDs returns product ids in catalog order.
func (c *Catalog) ProductIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}
