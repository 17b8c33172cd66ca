package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// Store is an in-memory discount catalog and redemption ledger, used for local
// runs from a YAML catalog and in tests.
type Store struct {
	mu          sync.RWMutex
	discounts   map[string]models.Discount
	redemptions []models.Redemption

	// redeemMu serializes WithDiscountLock callers.
	redeemMu sync.Mutex
}

func NewStore(seed []models.Discount) *Store {
	s := &Store{discounts: make(map[string]models.Discount, len(seed))}
	for _, d := range seed {
		s.discounts[d.ID] = d
	}
	return s
}

func (s *Store) LookupDiscount(ctx context.Context, orgID, id string) (*models.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.discounts[id]
	if !ok || d.OrgID != orgID {
		return nil, nil
	}
	return &d, nil
}

func (s *Store) LookupDiscountByCode(ctx context.Context, orgID, code string) (*models.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.sorted(orgID) {
		if d.Code != "" && strings.EqualFold(d.Code, code) {
			return &d, nil
		}
	}
	return nil, nil
}

func (s *Store) LookupActiveDiscounts(ctx context.Context, orgID string) ([]models.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Discount, 0)
	for _, d := range s.sorted(orgID) {
		if d.ArchivedAt == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) CreateDiscount(ctx context.Context, d models.Discount) (models.Discount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	s.discounts[d.ID] = d
	return d, nil
}

func (s *Store) CountRedemptions(ctx context.Context, discountID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countRedemptions(s.redemptions, discountID, "", nil), nil
}

func (s *Store) CountCustomerRedemptions(ctx context.Context, discountID, customerID string, since *time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countRedemptions(s.redemptions, discountID, customerID, since), nil
}

// Redemptions returns a copy of the ledger.
func (s *Store) Redemptions() []models.Redemption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Redemption, len(s.redemptions))
	copy(out, s.redemptions)
	return out
}

func (s *Store) WithDiscountLock(ctx context.Context, discountID string, fn func(ctx context.Context, tx interfaces.RedemptionTx) error) error {
	s.redeemMu.Lock()
	defer s.redeemMu.Unlock()

	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions = append(s.redemptions, tx.pending...)
	return nil
}

// sorted lists the org's discounts newest first. Callers hold s.mu.
func (s *Store) sorted(orgID string) []models.Discount {
	out := make([]models.Discount, 0, len(s.discounts))
	for _, d := range s.discounts {
		if d.OrgID == orgID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type memTx struct {
	store   *Store
	pending []models.Redemption
}

func (t *memTx) CountRedemptions(ctx context.Context, discountID string) (int, error) {
	n, _ := t.store.CountRedemptions(ctx, discountID)
	return n + countRedemptions(t.pending, discountID, "", nil), nil
}

func (t *memTx) CountCustomerRedemptions(ctx context.Context, discountID, customerID string, since *time.Time) (int, error) {
	n, _ := t.store.CountCustomerRedemptions(ctx, discountID, customerID, since)
	return n + countRedemptions(t.pending, discountID, customerID, since), nil
}

func (t *memTx) InsertRedemption(ctx context.Context, r models.Redemption) error {
	t.pending = append(t.pending, r)
	return nil
}

func countRedemptions(list []models.Redemption, discountID, customerID string, since *time.Time) int {
	n := 0
	for _, r := range list {
		if r.DiscountID != discountID {
			continue
		}
		if customerID != "" && r.CustomerID != customerID {
			continue
		}
		if since != nil && r.CreatedAt.Before(*since) {
			continue
		}
		n++
	}
	return n
}
