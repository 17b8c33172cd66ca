package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the GST rate applied when none is configured.
var DefaultTaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func nonNeg(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// qty reads an optional quantity; unset or negative counts as zero.
func qty(q *int) int {
	if q == nil || *q < 0 {
		return 0
	}
	return *q
}

func minDec(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// capAt limits amount to max when max is set.
func capAt(amount decimal.Decimal, max decimal.NullDecimal) decimal.Decimal {
	if !max.Valid {
		return amount
	}
	return minDec(amount, nonNeg(max.Decimal))
}

// allocate splits total across weights proportionally, rounded to cents. The rounding
// remainder lands on the heaviest weight so the parts always sum to total.
func allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(weights))
	sum := decimal.Zero
	heaviest := -1
	for i, w := range weights {
		parts[i] = decimal.Zero
		sum = sum.Add(w)
		if w.IsPositive() && (heaviest < 0 || w.GreaterThan(weights[heaviest])) {
			heaviest = i
		}
	}
	if heaviest < 0 || total.IsZero() {
		return parts
	}

	assigned := decimal.Zero
	for i, w := range weights {
		if !w.IsPositive() {
			continue
		}
		parts[i] = round2(total.Mul(w).Div(sum))
		assigned = assigned.Add(parts[i])
	}
	parts[heaviest] = parts[heaviest].Add(total.Sub(assigned))
	return parts
}
