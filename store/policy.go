package store

// PurchasePolicy is the affordability/desirability collaborator consulted at
// pickup time. A refusal marks the shopping-list item unavailable without
// consuming shelf stock.
type PurchasePolicy interface {
	ShouldTakeItem(product *Product, money float64, pricing Pricing) bool
}

// BudgetPolicy approves a pickup when the current retail price fits within
// the customer's remaining money.
type BudgetPolicy struct{}

func (BudgetPolicy) ShouldTakeItem(product *Product, money float64, pricing Pricing) bool {
	if product == nil {
		return false
	}
	return pricing.GetRetailPrice(product.ID) <= money
}
