package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

func percentOff(id, value string) models.Discount {
	return models.Discount{ID: id, Name: id, Type: models.DiscountPercent, Value: dec(value), Mode: models.ModeDiscount}
}

func flatOff(id, value string) models.Discount {
	return models.Discount{ID: id, Name: id, Type: models.DiscountFlat, Value: dec(value), Mode: models.ModeDiscount}
}

func totalized(lines ...models.LineItem) models.Cart {
	return NewTotalizer(DefaultTaxRate).TotalizeCart(models.Cart{Products: lines})
}

func TestApplyDiscount_EndToEndPercent(t *testing.T) {
	cart := totalized(shirt("p1", "12.00", "2.00", 2))

	priced := newApplier().ApplyDiscount(cart, percentOff("ten", "10"))

	require.NotNil(t, priced.Adjustments)
	assert.Equal(t, "2.80", priced.Adjustments.Discounts.Total.StringFixed(2))
	assert.Equal(t, "28.00", priced.Subtotal.StringFixed(2))
	assert.Equal(t, "2.52", priced.Tax.StringFixed(2))
	assert.Equal(t, "27.72", priced.Total.StringFixed(2))
	require.Len(t, priced.Adjustments.Discounts.Applied, 1)
	assert.Equal(t, "ten", priced.Adjustments.Discounts.Applied[0].DiscountID)
	assert.Equal(t, "2.80", priced.Products[0].Base().Amount.Discount.StringFixed(2))
}

func TestCalculate_PercentCappedByMaxAmount(t *testing.T) {
	lines := models.Lines{casual("entry", "gym", "50", 1)}
	d := percentOff("twenty", "20")

	assert.Equal(t, "10.00", newApplier().Calculate(lines, d).Amount.StringFixed(2))

	d.MaxAmount = decimal.NewNullDecimal(dec("5"))
	assert.Equal(t, "5.00", newApplier().Calculate(lines, d).Amount.StringFixed(2))
}

func TestApplyDiscount_FlatNeverExceedsEligible(t *testing.T) {
	cart := totalized(casual("entry", "gym", "30", 1))

	priced := newApplier().ApplyDiscount(cart, flatOff("fifty", "50"))

	assert.Equal(t, "30.00", priced.Adjustments.Discounts.Total.StringFixed(2))
	assert.True(t, priced.Tax.IsZero())
	assert.True(t, priced.Total.IsZero())
}

func TestApplyDiscount_ScopedToCategory(t *testing.T) {
	cart := totalized(
		casual("entry", "gym", "40", 1),
		shirt("p1", "20", "", 1),
	)
	d := percentOff("apparel-half", "50")
	d.Categories = []string{"apparel"}

	priced := newApplier().ApplyDiscount(cart, d)

	assert.Equal(t, "10.00", priced.Adjustments.Discounts.Total.StringFixed(2))
	assert.True(t, priced.Products[0].Base().Amount.Discount.IsZero(), "gym line is out of scope")
	assert.Equal(t, "10.00", priced.Products[1].Base().Amount.Discount.StringFixed(2))
	// tax on 60 - 10
	assert.Equal(t, "5.00", priced.Tax.StringFixed(2))
	assert.Equal(t, "55.00", priced.Total.StringFixed(2))
}

func TestApplyDiscount_ScopedToProductMatchesGroupMembers(t *testing.T) {
	group := models.GroupItem{LineBase: models.LineBase{ID: "kit"}, Price: dec("80"), Products: []string{"mat"}}
	d := flatOff("mat-deal", "15")
	d.Products = []string{"mat"}

	calc := newApplier().Calculate(models.Lines{group, casual("entry", "gym", "10", 1)}, d)

	assert.Equal(t, "80.00", calc.Eligible.StringFixed(2))
	assert.Equal(t, "15.00", calc.Amount.StringFixed(2))
}

func TestCalculate_OutOfScopeIsZero(t *testing.T) {
	d := percentOff("shoes", "25")
	d.Products = []string{"shoe-1"}

	calc := newApplier().Calculate(models.Lines{shirt("p1", "20", "", 1)}, d)

	assert.True(t, calc.Eligible.IsZero())
	assert.True(t, calc.Amount.IsZero())
}

func TestCalculate_PerLineSumsToAmount(t *testing.T) {
	lines := models.Lines{
		casual("a", "gym", "10", 1),
		casual("b", "gym", "10", 1),
		casual("c", "gym", "10", 1),
	}

	calc := newApplier().Calculate(lines, flatOff("ten", "10"))

	sum := decimal.Zero
	for _, p := range calc.PerLine {
		sum = sum.Add(p)
	}
	assert.Equal(t, "10.00", calc.Amount.StringFixed(2))
	assert.True(t, sum.Equal(calc.Amount), "per-line %v must sum to %v", calc.PerLine, calc.Amount)
}

func TestCalculate_BogoDiscountsCheapestUnitsPerProduct(t *testing.T) {
	d := models.Discount{
		ID:   "b2g1",
		Type: models.DiscountPercent,
		Mode: models.ModeDiscount,
		Bogo: &models.Bogo{Enabled: true, BuyQty: 2, GetQty: 1, DiscountPercent: dec("100")},
	}
	lines := models.Lines{
		shirt("tee", "30", "", 2),
		shirt("tee", "20", "", 2),
		casual("entry", "gym", "15", 2),
	}

	calc := newApplier().Calculate(lines, d)

	// tee units 30,30,20,20: one full bundle of three, the 20 is free; the fourth unit pays.
	// entry has two units, no full bundle.
	assert.Equal(t, "20.00", calc.Amount.StringFixed(2))
	assert.True(t, calc.PerLine[0].IsZero())
	assert.Equal(t, "20.00", calc.PerLine[1].StringFixed(2))
	assert.True(t, calc.PerLine[2].IsZero())
}

func TestCalculate_BogoHalfOffRespectsMaxAmount(t *testing.T) {
	d := models.Discount{
		ID:        "bogo-half",
		Mode:      models.ModeDiscount,
		Bogo:      &models.Bogo{Enabled: true, BuyQty: 1, GetQty: 1, DiscountPercent: dec("50")},
		MaxAmount: decimal.NewNullDecimal(dec("12")),
	}
	lines := models.Lines{shirt("tee", "10", "", 6)}

	calc := newApplier().Calculate(lines, d)

	// three bundles, 5 off each = 15, capped at 12
	assert.Equal(t, "12.00", calc.Amount.StringFixed(2))
	assert.Equal(t, "12.00", calc.PerLine[0].StringFixed(2))
}

func TestCalculate_BogoIsScoped(t *testing.T) {
	d := models.Discount{
		ID:         "bogo",
		Mode:       models.ModeDiscount,
		Categories: []string{"apparel"},
		Bogo:       &models.Bogo{Enabled: true, BuyQty: 1, GetQty: 1, DiscountPercent: dec("100")},
	}
	lines := models.Lines{casual("entry", "gym", "15", 2), shirt("tee", "10", "", 2)}

	calc := newApplier().Calculate(lines, d)

	assert.Equal(t, "10.00", calc.Amount.StringFixed(2))
}

func TestApplyDiscount_ReplacesPreviousDiscount(t *testing.T) {
	cart := totalized(casual("entry", "gym", "100", 1))
	a := newApplier()

	first := a.ApplyDiscount(cart, percentOff("ten", "10"))
	second := a.ApplyDiscount(first, flatOff("five", "5"))

	require.Len(t, second.Adjustments.Discounts.Applied, 1)
	assert.Equal(t, "five", second.Adjustments.Discounts.Applied[0].DiscountID)
	assert.Equal(t, "5.00", second.Adjustments.Discounts.Total.StringFixed(2))
	assert.Equal(t, "104.50", second.Total.StringFixed(2))
}

func TestApplyDiscount_IsIdempotent(t *testing.T) {
	cart := totalized(shirt("p1", "12", "2", 2), casual("entry", "gym", "9.99", 3))
	a := newApplier()
	d := percentOff("fifteen", "15")

	once := a.ApplyDiscount(cart, d)
	twice := a.ApplyDiscount(once, d)

	assert.True(t, once.Total.Equal(twice.Total))
	assert.True(t, once.Tax.Equal(twice.Tax))
	assert.True(t, once.Adjustments.Discounts.Total.Equal(twice.Adjustments.Discounts.Total))
	assert.Nil(t, cart.Adjustments, "input cart must not be modified")
}

func TestApplyCustomDiscount_CappedAtSubtotal(t *testing.T) {
	cart := totalized(casual("entry", "gym", "25", 1))
	a := newApplier()

	priced := a.ApplyCustomDiscount(cart, dec("40"))
	assert.Equal(t, "25.00", priced.Adjustments.Discounts.Total.StringFixed(2))
	assert.True(t, priced.Total.IsZero())
	require.Len(t, priced.Adjustments.Discounts.Applied, 1)
	assert.True(t, priced.Adjustments.Discounts.Applied[0].Custom)

	priced = a.ApplyCustomDiscount(cart, dec("5"))
	assert.Equal(t, "5.00", priced.Adjustments.Discounts.Total.StringFixed(2))
	assert.Equal(t, "22.00", priced.Total.StringFixed(2))
}

func TestApplySurcharges_AdditiveAndKeepsDiscount(t *testing.T) {
	cart := totalized(casual("entry", "gym", "100", 1), shirt("tee", "20", "", 1))
	a := newApplier()

	card := models.Discount{ID: "card", Name: "Card fee", Type: models.DiscountPercent, Value: dec("1.5"), Mode: models.ModeSurcharge}
	holiday := models.Discount{ID: "holiday", Name: "Holiday", Type: models.DiscountFlat, Value: dec("5"), Mode: models.ModeSurcharge}
	shoes := models.Discount{ID: "shoes", Name: "Shoe fee", Type: models.DiscountFlat, Value: dec("3"), Mode: models.ModeSurcharge, Products: []string{"shoe"}}

	discounted := a.ApplyDiscount(cart, flatOff("ten", "10"))
	priced := a.ApplySurcharges(discounted, []models.Discount{card, holiday, shoes, percentOff("ignored", "50")})

	require.Len(t, priced.Adjustments.Surcharges.Applied, 2)
	assert.Equal(t, "6.80", priced.Adjustments.Surcharges.Total.StringFixed(2))
	assert.Equal(t, "10.00", priced.Adjustments.Discounts.Total.StringFixed(2))
	// 120 - 10 + 6.80 + 11.00
	assert.Equal(t, "11.00", priced.Tax.StringFixed(2))
	assert.Equal(t, "127.80", priced.Total.StringFixed(2))
}

func TestApplySurcharges_MaxAmount(t *testing.T) {
	s := models.Discount{ID: "s", Type: models.DiscountPercent, Value: dec("10"), Mode: models.ModeSurcharge, MaxAmount: decimal.NewNullDecimal(dec("2"))}

	amount := newApplier().SurchargeAmount(models.Lines{casual("entry", "gym", "100", 1)}, s)

	assert.Equal(t, "2.00", amount.StringFixed(2))
}

func TestAllocate_RemainderOnHeaviest(t *testing.T) {
	parts := allocate(dec("0.10"), []decimal.Decimal{dec("1"), dec("1"), dec("1")})

	assert.Equal(t, "0.04", parts[0].StringFixed(2))
	assert.Equal(t, "0.03", parts[1].StringFixed(2))
	assert.Equal(t, "0.03", parts[2].StringFixed(2))
}

func TestCalculate_BogoMillionsOfUnits(t *testing.T) {
	d := models.Discount{
		ID:   "b1g1",
		Mode: models.ModeDiscount,
		Bogo: &models.Bogo{Enabled: true, BuyQty: 1, GetQty: 1, DiscountPercent: dec("100")},
	}
	lines := models.Lines{shirt("tee", "10", "", 20_000_000)}

	calc := newApplier().Calculate(lines, d)

	assert.Equal(t, "100000000.00", calc.Amount.StringFixed(2))
	assert.Equal(t, "100000000.00", calc.PerLine[0].StringFixed(2))
}

func TestCalculate_BogoBundlesSpanPriceRuns(t *testing.T) {
	d := models.Discount{
		ID:   "b2g1",
		Mode: models.ModeDiscount,
		Bogo: &models.Bogo{Enabled: true, BuyQty: 2, GetQty: 1, DiscountPercent: dec("50")},
	}
	lines := models.Lines{
		shirt("tee", "30", "", 4),
		shirt("tee", "20", "", 3),
		shirt("tee", "10", "", 2),
	}

	calc := newApplier().Calculate(lines, d)

	// sorted units 30x4, 20x3, 10x2 = 9 units, 3 bundles; free positions 2, 5, 8
	// land on a 30, a 20 and a 10: 15 + 10 + 5.
	assert.Equal(t, "30.00", calc.Amount.StringFixed(2))
	assert.Equal(t, "15.00", calc.PerLine[0].StringFixed(2))
	assert.Equal(t, "10.00", calc.PerLine[1].StringFixed(2))
	assert.Equal(t, "5.00", calc.PerLine[2].StringFixed(2))
}

func TestCalculate_BogoStaysWithinEligibleForExtremeQuantities(t *testing.T) {
	d := models.Discount{
		ID:   "b3g2",
		Mode: models.ModeDiscount,
		Bogo: &models.Bogo{Enabled: true, BuyQty: 3, GetQty: 2, DiscountPercent: dec("100")},
	}

	for _, q := range []int{-5, 0, 4, 5, 1_000_003, 1 << 62, math.MaxInt64} {
		class := models.ClassItem{
			LineBase: models.LineBase{ID: "yoga"},
			SessionPricing: models.SessionPricing{
				Prices: []models.PriceTier{{Qty: intp(q), Value: dec("7.25")}},
				Times:  []models.TimeSlot{{ID: "mon", Selected: true}, {ID: "thu", Selected: true}},
			},
		}
		lines := models.Lines{shirt("tee", "3.10", "", q), class}

		calc := newApplier().Calculate(lines, d)

		assert.False(t, calc.Amount.IsNegative(), "qty %d", q)
		assert.True(t, calc.Amount.LessThanOrEqual(calc.Eligible), "qty %d", q)
		sum := decimal.Zero
		for _, p := range calc.PerLine {
			assert.False(t, p.IsNegative(), "qty %d", q)
			sum = sum.Add(p)
		}
		assert.True(t, sum.Equal(calc.Amount), "qty %d", q)
	}
}
