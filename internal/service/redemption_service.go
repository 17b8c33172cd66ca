package service

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

type RedeemRequest struct {
	OrgID      string          `json:"orgId"`
	DiscountID string          `json:"discountId"`
	CustomerID string          `json:"customerId,omitempty"`
	OrderRef   string          `json:"orderRef,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// RedemptionService records discount use at commit time. Limits are re-checked
// under the store's per-discount lock, so two concurrent checkouts cannot both
// take the last redemption.
type RedemptionService struct {
	catalog interfaces.DiscountCatalog
	store   interfaces.RedemptionStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewRedemptionService(catalog interfaces.DiscountCatalog, store interfaces.RedemptionStore, logger *zap.Logger) *RedemptionService {
	return &RedemptionService{
		catalog: catalog,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RedemptionService) Redeem(ctx context.Context, req RedeemRequest) (models.Redemption, error) {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	d, err := s.catalog.LookupDiscount(ctx, req.OrgID, req.DiscountID)
	if err != nil {
		return models.Redemption{}, errors.Wrap(err, "lookup discount")
	}
	if d == nil {
		return models.Redemption{}, ErrDiscountNotFound
	}

	r := models.Redemption{
		ID:         uuid.NewString(),
		DiscountID: d.ID,
		CustomerID: req.CustomerID,
		OrderRef:   req.OrderRef,
		Amount:     req.Amount,
		CreatedAt:  s.now().UTC(),
	}

	err = s.store.WithDiscountLock(ctx, d.ID, func(ctx context.Context, tx interfaces.RedemptionTx) error {
		if d.IsSurcharge() {
			return errors.Wrap(ErrNotRedeemable, string(models.ReasonNotADiscount))
		}
		if reason := statusReason(*d, r.CreatedAt); reason != "" {
			return errors.Wrap(ErrNotRedeemable, string(reason))
		}

		reason, err := limitReason(ctx, tx, *d, req.CustomerID, r.CreatedAt)
		if err != nil {
			return err
		}
		if reason != "" {
			return errors.Wrap(ErrRedemptionLimit, string(reason))
		}
		return tx.InsertRedemption(ctx, r)
	})
	if err != nil {
		return models.Redemption{}, err
	}

	s.logger.Info("discount redeemed",
		zap.String("discount_id", r.DiscountID),
		zap.String("customer_id", r.CustomerID),
		zap.String("redemption_id", r.ID),
	)
	return r, nil
}
