package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

func intp(n int) *int { return &n }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shirt(id string, variation, modifier string, n int) models.ShopItem {
	item := models.ShopItem{
		LineBase:   models.LineBase{ID: id, Name: "Shirt", Categories: []string{"apparel"}},
		Qty:        intp(n),
		Variations: []models.Variation{{ID: "v-m", Name: "M", Amount: dec(variation), Selected: true}},
	}
	if modifier != "" {
		item.Modifiers = []models.Modifier{{ID: "print", Amount: dec(modifier), Selected: true}}
	}
	return item
}

func casual(id, category, value string, n int) models.CasualItem {
	return models.CasualItem{
		LineBase: models.LineBase{ID: id, Categories: []string{category}},
		Prices:   []models.PriceTier{{Name: "adult", Qty: intp(n), Value: dec(value)}},
	}
}

func newApplier() *Applier {
	return NewApplier(NewTotalizer(DefaultTaxRate))
}
