package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// Totals is the result of a totalization pass. Products holds copies of the input
// lines annotated with their own subtotal.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Products models.Lines    `json:"products"`
}

// Totalizer turns heterogeneous cart lines into subtotal, tax and total.
// It never reads adjustments and never mutates its input.
type Totalizer struct {
	TaxRate decimal.Decimal
}

func NewTotalizer(taxRate decimal.Decimal) *Totalizer {
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}
	return &Totalizer{TaxRate: taxRate}
}

func (t *Totalizer) Totalize(products models.Lines) Totals {
	out := make(models.Lines, 0, len(products))
	subtotal := decimal.Zero

	for _, item := range products {
		line := LineSubtotal(item)
		subtotal = subtotal.Add(line)
		out = append(out, models.WithAmount(item, models.LineAmount{
			Subtotal: line,
			Discount: decimal.Zero,
		}))
	}

	tax := t.Tax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    round2(subtotal.Add(tax)),
		Products: out,
	}
}

// TotalizeCart returns a fresh cart priced without any adjustments.
func (t *Totalizer) TotalizeCart(cart models.Cart) models.Cart {
	totals := t.Totalize(cart.Products)
	return models.Cart{
		Products: totals.Products,
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}
}

func (t *Totalizer) Tax(taxable decimal.Decimal) decimal.Decimal {
	return round2(nonNeg(taxable).Mul(t.TaxRate))
}

// LineSubtotal is the amount one line contributes before adjustments, rounded to cents.
func LineSubtotal(item models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, u := range lineUnits(item) {
		sum = sum.Add(u.price.Mul(u.count))
	}
	return round2(sum)
}

// unit is count identical sellable units of one line at a single unit price.
// Counts are decimals so that qty times sessions cannot overflow.
type unit struct {
	price decimal.Decimal
	count decimal.Decimal
}

func lineUnits(item models.LineItem) []unit {
	switch v := item.(type) {
	case models.ShopItem:
		return shopUnits(v)
	case models.ClassItem:
		return sessionUnits(v.SessionPricing)
	case models.CourseItem:
		return sessionUnits(v.SessionPricing)
	case models.CasualItem:
		return tierUnits(v.Prices, 1)
	case models.MembershipItem:
		return tierUnits(v.Prices, 1)
	case models.PrepaidItem:
		return tierUnits(v.Prices, 1)
	case models.GroupItem:
		return []unit{{price: nonNeg(v.Price), count: decimal.NewFromInt(1)}}
	}
	return nil
}

func shopUnits(v models.ShopItem) []unit {
	price := decimal.Zero
	for _, variation := range v.Variations {
		if variation.Selected {
			price = price.Add(nonNeg(variation.Amount))
		}
	}
	for _, m := range v.Modifiers {
		if m.Selected {
			price = price.Add(nonNeg(m.Amount))
		}
	}

	count := 1
	if v.Qty != nil {
		count = qty(v.Qty)
	}
	return []unit{{price: price, count: decimal.NewFromInt(int64(count))}}
}

// sessionUnits repeats every tier once per selected time slot. A line without
// any time slots is a single session.
func sessionUnits(s models.SessionPricing) []unit {
	slots := 1
	if len(s.Times) > 0 {
		slots = 0
		for _, t := range s.Times {
			if t.Selected {
				slots++
			}
		}
	}
	return tierUnits(s.Prices, slots)
}

func tierUnits(prices []models.PriceTier, multiplier int) []unit {
	out := make([]unit, 0, len(prices))
	for _, p := range prices {
		count := decimal.NewFromInt(int64(qty(p.Qty))).Mul(decimal.NewFromInt(int64(multiplier)))
		out = append(out, unit{price: nonNeg(p.Value), count: count})
	}
	return out
}
