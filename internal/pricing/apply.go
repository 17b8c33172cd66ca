package pricing

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

const CustomDiscountName = "Custom discount"

// Calculation is the would-be effect of one discount on a set of lines. PerLine is
// aligned with the lines it was computed from and sums to Amount.
type Calculation struct {
	Eligible decimal.Decimal
	Amount   decimal.Decimal
	PerLine  []decimal.Decimal
}

// Applier computes discount and surcharge amounts and writes them onto carts.
// Calculate is the dry run shared by the resolver ranking and ApplyDiscount.
type Applier struct {
	totalizer *Totalizer
}

func NewApplier(t *Totalizer) *Applier {
	return &Applier{totalizer: t}
}

func (a *Applier) Totalizer() *Totalizer {
	return a.totalizer
}

// Calculate returns the amount d would take off lines without touching them.
func (a *Applier) Calculate(lines models.Lines, d models.Discount) Calculation {
	weights, eligible := eligibleWeights(lines, d)
	calc := Calculation{Eligible: eligible, Amount: decimal.Zero, PerLine: zeros(len(lines))}
	if !eligible.IsPositive() {
		return calc
	}

	if d.BogoEnabled() {
		amount, perLine := bogo(lines, weights, *d.Bogo)
		capped := minDec(capAt(amount, d.MaxAmount), eligible)
		if !capped.Equal(amount) {
			perLine = allocate(capped, perLine)
		}
		calc.Amount = capped
		calc.PerLine = perLine
		return calc
	}

	var amount decimal.Decimal
	switch d.Type {
	case models.DiscountPercent:
		amount = round2(eligible.Mul(nonNeg(d.Value)).Div(hundred))
	default:
		amount = round2(nonNeg(d.Value))
	}
	amount = minDec(capAt(amount, d.MaxAmount), eligible)

	calc.Amount = amount
	calc.PerLine = allocate(amount, weights)
	return calc
}

// ApplyDiscount prices cart with d as its only discount, replacing any previous one.
// Surcharges already on the cart are kept.
func (a *Applier) ApplyDiscount(cart models.Cart, d models.Discount) models.Cart {
	out, adj := a.reset(cart)
	calc := a.Calculate(out.Products, d)

	adj.Discounts = models.AdjustmentSet{
		Total: calc.Amount,
		Applied: []models.AppliedAdjustment{{
			DiscountID: d.ID,
			Name:       d.Name,
			Amount:     calc.Amount,
		}},
	}
	adj.DiscountError = ""
	out.Products = annotateDiscount(out.Products, calc.PerLine)
	out.Adjustments = &adj
	return a.finalize(out)
}

// ApplyCustomDiscount takes a staff-entered flat amount off the whole cart, bypassing
// every eligibility rule. The amount is capped at the subtotal.
func (a *Applier) ApplyCustomDiscount(cart models.Cart, amount decimal.Decimal) models.Cart {
	out, adj := a.reset(cart)
	amount = minDec(round2(nonNeg(amount)), out.Subtotal)

	weights := make([]decimal.Decimal, len(out.Products))
	for i, item := range out.Products {
		weights[i] = LineSubtotal(item)
	}

	adj.Discounts = models.AdjustmentSet{
		Total: amount,
		Applied: []models.AppliedAdjustment{{
			Name:   CustomDiscountName,
			Amount: amount,
			Custom: true,
		}},
	}
	adj.DiscountError = ""
	out.Products = annotateDiscount(out.Products, allocate(amount, weights))
	out.Adjustments = &adj
	return a.finalize(out)
}

// ApplySurcharges replaces the surcharges on cart with the ones among candidates
// that are in scope. Discount-mode entries are ignored.
func (a *Applier) ApplySurcharges(cart models.Cart, candidates []models.Discount) models.Cart {
	out, adj := a.reset(cart)

	set := models.AdjustmentSet{Total: decimal.Zero, Applied: []models.AppliedAdjustment{}}
	for _, s := range candidates {
		if !s.IsSurcharge() {
			continue
		}
		amount := a.SurchargeAmount(out.Products, s)
		if !amount.IsPositive() {
			continue
		}
		set.Total = set.Total.Add(amount)
		set.Applied = append(set.Applied, models.AppliedAdjustment{
			DiscountID: s.ID,
			Name:       s.Name,
			Amount:     amount,
		})
	}

	adj.Surcharges = set
	out.Adjustments = &adj
	return a.finalize(out)
}

// SurchargeAmount is the amount s adds to lines: a percentage of the in-scope
// subtotal or a flat fee, capped by MaxAmount. Out-of-scope surcharges add nothing.
func (a *Applier) SurchargeAmount(lines models.Lines, s models.Discount) decimal.Decimal {
	_, eligible := eligibleWeights(lines, s)
	if !eligible.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch s.Type {
	case models.DiscountPercent:
		amount = round2(eligible.Mul(nonNeg(s.Value)).Div(hundred))
	default:
		amount = round2(nonNeg(s.Value))
	}
	return capAt(amount, s.MaxAmount)
}

// reset recomputes line subtotals from the products and copies the adjustments so
// the caller's cart is left untouched.
func (a *Applier) reset(cart models.Cart) (models.Cart, models.Adjustments) {
	out := a.totalizer.TotalizeCart(cart)

	adj := models.Adjustments{
		Discounts:  models.AdjustmentSet{Total: decimal.Zero, Applied: []models.AppliedAdjustment{}},
		Surcharges: models.AdjustmentSet{Total: decimal.Zero, Applied: []models.AppliedAdjustment{}},
	}
	if cart.Adjustments != nil {
		adj.Discounts = copySet(cart.Adjustments.Discounts)
		adj.Surcharges = copySet(cart.Adjustments.Surcharges)
		adj.DiscountError = cart.Adjustments.DiscountError

		var perLine []decimal.Decimal
		for _, item := range cart.Products {
			d := decimal.Zero
			if amt := item.Base().Amount; amt != nil {
				d = amt.Discount
			}
			perLine = append(perLine, d)
		}
		out.Products = annotateDiscount(out.Products, perLine)
	}
	return out, adj
}

// finalize enforces total = subtotal - discounts + surcharges + tax, with tax on the
// discounted subtotal.
func (a *Applier) finalize(cart models.Cart) models.Cart {
	discounts, surcharges := decimal.Zero, decimal.Zero
	if cart.Adjustments != nil {
		discounts = cart.Adjustments.Discounts.Total
		surcharges = cart.Adjustments.Surcharges.Total
	}

	taxable := nonNeg(cart.Subtotal.Sub(discounts))
	cart.Tax = a.totalizer.Tax(taxable)
	cart.Total = nonNeg(round2(taxable.Add(surcharges).Add(cart.Tax)))
	return cart
}

func eligibleWeights(lines models.Lines, d models.Discount) ([]decimal.Decimal, decimal.Decimal) {
	weights := make([]decimal.Decimal, len(lines))
	eligible := decimal.Zero
	for i, item := range lines {
		weights[i] = decimal.Zero
		if Matches(d, item) {
			weights[i] = LineSubtotal(item)
			eligible = eligible.Add(weights[i])
		}
	}
	return weights, eligible
}

// bogoRun is count units of one line at a single price.
type bogoRun struct {
	line  int
	price decimal.Decimal
	count decimal.Decimal
}

// bogo discounts getQty of every buyQty+getQty units of the same product. Units are
// ordered by price descending so the cheapest units of each full bundle are the ones
// discounted. Runs of identical units are counted arithmetically, never expanded.
func bogo(lines models.Lines, weights []decimal.Decimal, b models.Bogo) (decimal.Decimal, []decimal.Decimal) {
	pct := minDec(nonNeg(b.DiscountPercent), hundred)
	perLine := zeros(len(lines))
	total := decimal.Zero

	var order []string
	pools := make(map[string][]bogoRun)
	for i, item := range lines {
		if !weights[i].IsPositive() {
			continue
		}
		key := item.Base().ID
		if key == "" {
			key = string(item.Kind()) + "#" + strconv.Itoa(i)
		}
		if _, ok := pools[key]; !ok {
			order = append(order, key)
		}
		for _, u := range lineUnits(item) {
			if u.count.IsPositive() {
				pools[key] = append(pools[key], bogoRun{line: i, price: u.price, count: u.count})
			}
		}
	}

	buy := decimal.NewFromInt(int64(b.BuyQty))
	get := decimal.NewFromInt(int64(b.GetQty))
	bundle := buy.Add(get)
	for _, key := range order {
		runs := pools[key]
		sort.SliceStable(runs, func(i, j int) bool {
			return runs[i].price.GreaterThan(runs[j].price)
		})

		units := decimal.Zero
		for _, r := range runs {
			units = units.Add(r.count)
		}
		full, _ := units.QuoRem(bundle, 0)
		limit := full.Mul(bundle)

		start := decimal.Zero
		for _, r := range runs {
			end := start.Add(r.count)
			n := freeUnits(minDec(end, limit), buy, get).Sub(freeUnits(minDec(start, limit), buy, get))
			start = end
			if !n.IsPositive() {
				continue
			}
			off := round2(r.price.Mul(pct).Div(hundred)).Mul(n)
			perLine[r.line] = perLine[r.line].Add(off)
			total = total.Add(off)
		}
	}
	return total, perLine
}

// freeUnits counts the discounted positions among the first x units: the last get
// positions of every buy+get bundle.
func freeUnits(x, buy, get decimal.Decimal) decimal.Decimal {
	bundles, rest := x.QuoRem(buy.Add(get), 0)
	n := bundles.Mul(get)
	if rest.GreaterThan(buy) {
		n = n.Add(rest.Sub(buy))
	}
	return n
}

func annotateDiscount(lines models.Lines, perLine []decimal.Decimal) models.Lines {
	out := make(models.Lines, len(lines))
	for i, item := range lines {
		amt := models.LineAmount{Subtotal: LineSubtotal(item), Discount: decimal.Zero}
		if i < len(perLine) {
			amt.Discount = perLine[i]
		}
		out[i] = models.WithAmount(item, amt)
	}
	return out
}

func copySet(s models.AdjustmentSet) models.AdjustmentSet {
	applied := make([]models.AppliedAdjustment, len(s.Applied))
	copy(applied, s.Applied)
	return models.AdjustmentSet{Total: s.Total, Applied: applied}
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
