package interfaces

import (
	"context"
	"time"

	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// DiscountCatalog is the read side of an org's discount catalog. Lookups return
// nil, nil when nothing matches.
type DiscountCatalog interface {
	LookupDiscount(ctx context.Context, orgID, id string) (*models.Discount, error)
	LookupDiscountByCode(ctx context.Context, orgID, code string) (*models.Discount, error)
	// LookupActiveDiscounts returns every non-archived discount and surcharge of the org.
	LookupActiveDiscounts(ctx context.Context, orgID string) ([]models.Discount, error)
}

// DiscountWriter is the staff-facing write side of the catalog.
type DiscountWriter interface {
	CreateDiscount(ctx context.Context, d models.Discount) (models.Discount, error)
}

// UsageLookup answers redemption-count questions. Counts are a snapshot; callers
// that must not over-redeem go through RedemptionStore instead.
type UsageLookup interface {
	CountRedemptions(ctx context.Context, discountID string) (int, error)
	// CountCustomerRedemptions counts redemptions by one customer, optionally only those at or after since.
	CountCustomerRedemptions(ctx context.Context, discountID, customerID string, since *time.Time) (int, error)
}

// RedemptionTx is the view of usage inside a locked redemption.
type RedemptionTx interface {
	UsageLookup
	InsertRedemption(ctx context.Context, r models.Redemption) error
}

// RedemptionStore serializes redemptions of one discount: fn runs while no other
// redemption of discountID can commit, and its writes commit only if it returns nil.
type RedemptionStore interface {
	WithDiscountLock(ctx context.Context, discountID string, fn func(ctx context.Context, tx RedemptionTx) error) error
}
