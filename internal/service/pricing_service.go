package service

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/pricing"
)

// PriceRequest is one pricing pass. At most one discount source is used, in this
// order: custom amount, discount id, discount code, automatic selection.
type PriceRequest struct {
	OrgID                string              `json:"orgId"`
	Cart                 models.Cart         `json:"cart"`
	Customer             *models.Customer    `json:"customer,omitempty"`
	DiscountCode         string              `json:"discountCode,omitempty"`
	DiscountID           string              `json:"discountId,omitempty"`
	CustomDiscountAmount decimal.NullDecimal `json:"customDiscountAmount"`
	AutoApply            bool                `json:"autoApply"`
	IsManualSelection    bool                `json:"isManualSelection"`
}

type PricingService struct {
	catalog  interfaces.DiscountCatalog
	resolver *Resolver
	applier  *pricing.Applier
	logger   *zap.Logger
}

func NewPricingService(catalog interfaces.DiscountCatalog, resolver *Resolver, applier *pricing.Applier, logger *zap.Logger) *PricingService {
	return &PricingService{
		catalog:  catalog,
		resolver: resolver,
		applier:  applier,
		logger:   logger,
	}
}

func (s *PricingService) Resolver() *Resolver {
	return s.resolver
}

// Totalize prices the cart lines alone, dropping any adjustments.
func (s *PricingService) Totalize(cart models.Cart) models.Cart {
	return s.applier.Totalizer().TotalizeCart(cart)
}

// CalculateAdjustments runs a full pricing pass: totalize, resolve at most one
// discount, apply it, add the org's surcharges. An ineligible discount never fails
// the pass; its reason lands in Adjustments.DiscountError.
func (s *PricingService) CalculateAdjustments(ctx context.Context, req PriceRequest) (models.Cart, error) {
	cart := s.Totalize(req.Cart)

	cart, err := s.resolveDiscount(ctx, cart, req)
	if err != nil {
		return models.Cart{}, err
	}

	var surcharges []models.Discount
	if req.OrgID != "" {
		surcharges, err = s.activeSurcharges(ctx, req.OrgID)
		if err != nil {
			return models.Cart{}, err
		}
	}
	return s.applier.ApplySurcharges(cart, surcharges), nil
}

func (s *PricingService) resolveDiscount(ctx context.Context, cart models.Cart, req PriceRequest) (models.Cart, error) {
	switch {
	case req.CustomDiscountAmount.Valid && req.CustomDiscountAmount.Decimal.IsPositive():
		return s.applier.ApplyCustomDiscount(cart, req.CustomDiscountAmount.Decimal), nil

	case req.DiscountID != "" || req.DiscountCode != "":
		d, err := s.resolver.Lookup(ctx, req.OrgID, req.DiscountID, req.DiscountCode)
		if err != nil {
			return models.Cart{}, err
		}
		result, err := s.resolver.ValidateDiscount(ctx, d, cart, req.Customer)
		if err != nil {
			return models.Cart{}, err
		}
		if result.Valid {
			return s.applier.ApplyDiscount(cart, *d), nil
		}

		if !req.IsManualSelection && req.AutoApply {
			s.logger.Debug("carried discount no longer eligible, falling back to auto",
				zap.String("discount_id", req.DiscountID),
				zap.String("reason", string(result.Reason)),
			)
			return s.applyAuto(ctx, cart, req)
		}
		return withDiscountError(cart, result.Reason), nil

	case req.AutoApply:
		return s.applyAuto(ctx, cart, req)
	}
	return cart, nil
}

func (s *PricingService) applyAuto(ctx context.Context, cart models.Cart, req PriceRequest) (models.Cart, error) {
	best, err := s.resolver.FindBestAutoDiscount(ctx, ResolveRequest{
		OrgID:    req.OrgID,
		Cart:     cart,
		Customer: req.Customer,
	})
	if err != nil {
		return models.Cart{}, err
	}
	if best == nil {
		return cart, nil
	}
	return s.applier.ApplyDiscount(cart, best.Discount), nil
}

func (s *PricingService) activeSurcharges(ctx context.Context, orgID string) ([]models.Discount, error) {
	all, err := s.catalog.LookupActiveDiscounts(ctx, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "lookup surcharges")
	}

	now := s.resolver.now()
	var out []models.Discount
	for _, d := range all {
		if d.IsSurcharge() && d.ArchivedAt == nil && d.InWindow(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func withDiscountError(cart models.Cart, reason models.Reason) models.Cart {
	cart.Adjustments = &models.Adjustments{
		Discounts:     models.AdjustmentSet{Total: decimal.Zero, Applied: []models.AppliedAdjustment{}},
		Surcharges:    models.AdjustmentSet{Total: decimal.Zero, Applied: []models.AppliedAdjustment{}},
		DiscountError: reason,
	}
	return cart
}
