package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

type AdjustmentMode string

const (
	ModeDiscount  AdjustmentMode = "discount"
	ModeSurcharge AdjustmentMode = "surcharge"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Since returns the start of the rolling window of length p that ends at now.
// Unknown periods yield nil, meaning "all time".
func (p Period) Since(now time.Time) *time.Time {
	var t time.Time
	switch p {
	case PeriodDay:
		t = now.AddDate(0, 0, -1)
	case PeriodWeek:
		t = now.AddDate(0, 0, -7)
	case PeriodMonth:
		t = now.AddDate(0, -1, 0)
	case PeriodYear:
		t = now.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &t
}

type Bogo struct {
	Enabled         bool            `json:"enabled"`
	BuyQty          int             `json:"buyQty"`
	GetQty          int             `json:"getQty"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type Frequency struct {
	Count  int    `json:"count"`
	Period Period `json:"period"`
}

type PerCustomerLimit struct {
	Total     *int       `json:"total,omitempty"`
	Frequency *Frequency `json:"frequency,omitempty"`
}

type Limits struct {
	UsageLimit  *int              `json:"usageLimit,omitempty"`
	PerCustomer *PerCustomerLimit `json:"perCustomer,omitempty"`
}

// Discount is a catalog entry. Mode decides whether it lowers (discount) or
// raises (surcharge) the cart total. Empty Products and Categories mean unscoped.
type Discount struct {
	ID         string              `json:"_id"`
	OrgID      string              `json:"org"`
	Name       string              `json:"name"`
	Code       string              `json:"code,omitempty"`
	Type       DiscountType        `json:"type"`
	Value      decimal.Decimal     `json:"value"`
	Mode       AdjustmentMode      `json:"mode"`
	Products   []string            `json:"products,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Bogo       *Bogo               `json:"bogo,omitempty"`
	Limits     *Limits             `json:"limits,omitempty"`
	Start      *time.Time          `json:"start,omitempty"`
	Expiry     *time.Time          `json:"expiry,omitempty"`
	AutoAssign bool                `json:"autoAssign"`
	MaxAmount  decimal.NullDecimal `json:"maxAmount"`
	ArchivedAt *time.Time          `json:"archivedAt,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func (d Discount) IsSurcharge() bool {
	return d.Mode == ModeSurcharge
}

func (d Discount) Scoped() bool {
	return len(d.Products) > 0 || len(d.Categories) > 0
}

func (d Discount) BogoEnabled() bool {
	return d.Bogo != nil && d.Bogo.Enabled && d.Bogo.BuyQty > 0 && d.Bogo.GetQty > 0
}

// InWindow reports whether now falls within [Start, Expiry]; a missing bound is open.
func (d Discount) InWindow(now time.Time) bool {
	if d.Start != nil && now.Before(*d.Start) {
		return false
	}
	if d.Expiry != nil && now.After(*d.Expiry) {
		return false
	}
	return true
}

// Redemption is one committed use of a discount.
type Redemption struct {
	ID         string          `json:"id"`
	DiscountID string          `json:"discountId"`
	CustomerID string          `json:"customerId,omitempty"`
	OrderRef   string          `json:"orderRef,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"createdAt"`
}
