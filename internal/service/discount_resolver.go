package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/pricing"
)

// Candidate is a discount together with the amount it would take off a cart.
type Candidate struct {
	Discount models.Discount `json:"discount"`
	Amount   decimal.Decimal `json:"amount"`
}

type ResolveRequest struct {
	OrgID    string
	Cart     models.Cart
	Customer *models.Customer
}

type ResolverOption func(*Resolver)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// Resolver picks the best automatic discount for a cart and validates discounts
// picked by staff. It never mutates the catalog or the cart.
type Resolver struct {
	catalog interfaces.DiscountCatalog
	usage   interfaces.UsageLookup
	applier *pricing.Applier
	logger  *zap.Logger
	now     func() time.Time
}

func NewResolver(catalog interfaces.DiscountCatalog, usage interfaces.UsageLookup, applier *pricing.Applier, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog: catalog,
		usage:   usage,
		applier: applier,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup finds a discount by id, or by code when id is empty.
func (r *Resolver) Lookup(ctx context.Context, orgID, id, code string) (*models.Discount, error) {
	var (
		d   *models.Discount
		err error
	)
	switch {
	case id != "":
		d, err = r.catalog.LookupDiscount(ctx, orgID, id)
	case code != "":
		d, err = r.catalog.LookupDiscountByCode(ctx, orgID, code)
	}
	if err != nil {
		return nil, errors.Wrap(err, "lookup discount")
	}
	return d, nil
}

// ValidateDiscount runs every eligibility rule against one named discount and
// reports the first one that fails. Only lookup failures are returned as errors.
func (r *Resolver) ValidateDiscount(ctx context.Context, d *models.Discount, cart models.Cart, customer *models.Customer) (models.ValidationResult, error) {
	if d == nil {
		return models.Ineligible(models.ReasonNotFound), nil
	}
	if d.IsSurcharge() {
		return models.Ineligible(models.ReasonNotADiscount), nil
	}

	reason, err := r.eligibility(ctx, *d, cart.Products, customerID(customer), r.now())
	if err != nil {
		return models.ValidationResult{}, err
	}
	if reason != "" {
		return models.Ineligible(reason), nil
	}
	return models.Eligible(), nil
}

// FindBestAutoDiscount returns the auto-assignable discount worth the most on this
// cart, or nil when none applies. Ties go to the most recently created discount.
func (r *Resolver) FindBestAutoDiscount(ctx context.Context, req ResolveRequest) (*Candidate, error) {
	all, err := r.catalog.LookupActiveDiscounts(ctx, req.OrgID)
	if err != nil {
		return nil, errors.Wrap(err, "lookup active discounts")
	}

	now := r.now()
	cid := customerID(req.Customer)

	var candidates []Candidate
	for _, d := range all {
		if !d.AutoAssign || d.IsSurcharge() {
			continue
		}
		reason, err := r.eligibility(ctx, d, req.Cart.Products, cid, now)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			r.logger.Debug("auto discount skipped", zap.String("discount_id", d.ID), zap.String("reason", string(reason)))
			continue
		}

		calc := r.applier.Calculate(req.Cart.Products, d)
		if !calc.Amount.IsPositive() {
			r.logger.Debug("auto discount worth nothing", zap.String("discount_id", d.ID))
			continue
		}
		candidates = append(candidates, Candidate{Discount: d, Amount: calc.Amount})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		if !a.Discount.CreatedAt.Equal(b.Discount.CreatedAt) {
			return a.Discount.CreatedAt.After(b.Discount.CreatedAt)
		}
		return a.Discount.ID < b.Discount.ID
	})

	best := candidates[0]
	r.logger.Debug("auto discount selected",
		zap.String("discount_id", best.Discount.ID),
		zap.String("amount", best.Amount.StringFixed(2)),
		zap.Int("candidates", len(candidates)),
	)
	return &best, nil
}

func (r *Resolver) eligibility(ctx context.Context, d models.Discount, lines models.Lines, customerID string, now time.Time) (models.Reason, error) {
	if reason := statusReason(d, now); reason != "" {
		return reason, nil
	}
	if !pricing.MatchesAny(d, lines) {
		return models.ReasonScopeMismatch, nil
	}
	return limitReason(ctx, r.usage, d, customerID, now)
}
