package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
	"github.com/Cheertaboi/studio-pricing-service/internal/pricing"
	"github.com/Cheertaboi/studio-pricing-service/internal/repository/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func timep(t time.Time) *time.Time { return &t }

func entry(id, category, value string, n int) models.CasualItem {
	return models.CasualItem{
		LineBase: models.LineBase{ID: id, Categories: []string{category}},
		Prices:   []models.PriceTier{{Name: "adult", Qty: intp(n), Value: dec(value)}},
	}
}

// hundredCart is two $50 entries in the fitness category.
func hundredCart() models.Cart {
	return models.Cart{Products: models.Lines{entry("entry", "fitness", "50", 2)}}
}

func flat(id, value string) models.Discount {
	return models.Discount{
		ID: id, OrgID: "org", Name: id,
		Type: models.DiscountFlat, Value: dec(value),
		Mode: models.ModeDiscount, AutoAssign: true,
		CreatedAt: testNow.AddDate(0, -1, 0),
	}
}

func percent(id, value string) models.Discount {
	d := flat(id, value)
	d.Type = models.DiscountPercent
	return d
}

type fixture struct {
	store      *memory.Store
	resolver   *Resolver
	pricing    *PricingService
	redemption *RedemptionService
}

func newFixture(discounts ...models.Discount) fixture {
	store := memory.NewStore(discounts)
	return newFixtureWith(store, store, store, store)
}

func newFixtureWith(store *memory.Store, catalog interfaces.DiscountCatalog, usage interfaces.UsageLookup, redemptions interfaces.RedemptionStore) fixture {
	applier := pricing.NewApplier(pricing.NewTotalizer(pricing.DefaultTaxRate))
	resolver := NewResolver(catalog, usage, applier, zap.NewNop(), WithClock(func() time.Time { return testNow }))
	redeem := NewRedemptionService(catalog, redemptions, zap.NewNop())
	redeem.now = func() time.Time { return testNow }
	return fixture{
		store:      store,
		resolver:   resolver,
		pricing:    NewPricingService(catalog, resolver, applier, zap.NewNop()),
		redemption: redeem,
	}
}

// redeemed seeds n committed redemptions of discountID by customerID at when.
func (f fixture) redeemed(discountID, customerID string, n int, when time.Time) {
	_ = f.store.WithDiscountLock(context.Background(), discountID, func(ctx context.Context, tx interfaces.RedemptionTx) error {
		for i := 0; i < n; i++ {
			_ = tx.InsertRedemption(ctx, models.Redemption{DiscountID: discountID, CustomerID: customerID, CreatedAt: when})
		}
		return nil
	})
}

type failingCatalog struct {
	err error
}

func (c failingCatalog) LookupDiscount(context.Context, string, string) (*models.Discount, error) {
	return nil, c.err
}

func (c failingCatalog) LookupDiscountByCode(context.Context, string, string) (*models.Discount, error) {
	return nil, c.err
}

func (c failingCatalog) LookupActiveDiscounts(context.Context, string) ([]models.Discount, error) {
	return nil, c.err
}
