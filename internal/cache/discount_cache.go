package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

type entry struct {
	discounts []models.Discount
	expires   time.Time
}

// DiscountCache holds each org's active discounts for a fixed TTL.
type DiscountCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]entry
	now   func() time.Time
}

func NewDiscountCache(ttl time.Duration) *DiscountCache {
	return &DiscountCache{
		ttl:   ttl,
		store: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *DiscountCache) Get(orgID string) ([]models.Discount, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[orgID]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.discounts, true
}

func (c *DiscountCache) Set(orgID string, discounts []models.Discount) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[orgID] = entry{discounts: discounts, expires: c.now().Add(c.ttl)}
}

func (c *DiscountCache) Invalidate(orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, orgID)
}

// Catalog is the catalog seen by the service: active-discount listings are
// served from the cache, point lookups and writes go to the backing store.
type Catalog interface {
	interfaces.DiscountCatalog
	interfaces.DiscountWriter
}

// CachedCatalog wraps a Catalog with a DiscountCache. Creating a discount drops
// the org's cached listing.
type CachedCatalog struct {
	next  Catalog
	cache *DiscountCache
}

func NewCachedCatalog(next Catalog, cache *DiscountCache) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache}
}

func (c *CachedCatalog) LookupDiscount(ctx context.Context, orgID, id string) (*models.Discount, error) {
	return c.next.LookupDiscount(ctx, orgID, id)
}

func (c *CachedCatalog) LookupDiscountByCode(ctx context.Context, orgID, code string) (*models.Discount, error) {
	return c.next.LookupDiscountByCode(ctx, orgID, code)
}

func (c *CachedCatalog) LookupActiveDiscounts(ctx context.Context, orgID string) ([]models.Discount, error) {
	if discounts, ok := c.cache.Get(orgID); ok {
		return discounts, nil
	}
	discounts, err := c.next.LookupActiveDiscounts(ctx, orgID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(orgID, discounts)
	return discounts, nil
}

func (c *CachedCatalog) CreateDiscount(ctx context.Context, d models.Discount) (models.Discount, error) {
	created, err := c.next.CreateDiscount(ctx, d)
	if err != nil {
		return models.Discount{}, err
	}
	c.cache.Invalidate(created.OrgID)
	return created, nil
}
