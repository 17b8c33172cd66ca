package service

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/Cheertaboi/studio-pricing-service/internal/interfaces"
	"github.com/Cheertaboi/studio-pricing-service/internal/models"
)

// statusReason checks the archive flag and the validity window.
func statusReason(d models.Discount, now time.Time) models.Reason {
	switch {
	case d.ArchivedAt != nil:
		return models.ReasonArchived
	case d.Start != nil && now.Before(*d.Start):
		return models.ReasonNotStarted
	case d.Expiry != nil && now.After(*d.Expiry):
		return models.ReasonExpired
	}
	return ""
}

// limitReason checks the global usage cap and, when customerID is set, the
// per-customer total and frequency caps. It returns the empty Reason when d may be used.
func limitReason(ctx context.Context, usage interfaces.UsageLookup, d models.Discount, customerID string, now time.Time) (models.Reason, error) {
	if d.Limits == nil {
		return "", nil
	}

	if d.Limits.UsageLimit != nil {
		used, err := usage.CountRedemptions(ctx, d.ID)
		if err != nil {
			return "", errors.Wrap(err, "count redemptions")
		}
		if used >= *d.Limits.UsageLimit {
			return models.ReasonUsageLimitReached, nil
		}
	}

	per := d.Limits.PerCustomer
	if customerID == "" || per == nil {
		return "", nil
	}

	if per.Total != nil {
		used, err := usage.CountCustomerRedemptions(ctx, d.ID, customerID, nil)
		if err != nil {
			return "", errors.Wrap(err, "count customer redemptions")
		}
		if used >= *per.Total {
			return models.ReasonCustomerLimitReached, nil
		}
	}

	if f := per.Frequency; f != nil && f.Count > 0 {
		used, err := usage.CountCustomerRedemptions(ctx, d.ID, customerID, f.Period.Since(now))
		if err != nil {
			return "", errors.Wrap(err, "count customer redemptions in period")
		}
		if used >= f.Count {
			return models.ReasonCustomerLimitReached, nil
		}
	}
	return "", nil
}

func customerID(c *models.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
