package pricing

import (
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// Matches reports whether item falls within the discount's product/category scope.
// Unscoped discounts match everything. A group also matches through its member products.
func Matches(d models.Discount, item models.LineItem) bool {
	if !d.Scoped() {
		return true
	}
	base := item.Base()

	products := toSet(d.Products)
	if products[base.ID] {
		return true
	}
	if g, ok := item.(models.GroupItem); ok {
		for _, id := range g.Products {
			if products[id] {
				return true
			}
		}
	}

	categories := toSet(d.Categories)
	for _, c := range base.Categories {
		if categories[c] {
			return true
		}
	}
	return false
}

// MatchesAny reports whether at least one line of the cart is in scope.
// Unscoped discounts pass even on an empty cart.
func MatchesAny(d models.Discount, lines models.Lines) bool {
	if !d.Scoped() {
		return true
	}
	for _, item := range lines {
		if Matches(d, item) {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
