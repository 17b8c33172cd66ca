package models

import (
	"github.com/shopspring/decimal"
)

type LineItemType string

const (
	LineShop       LineItemType = "shop"
	LineClass      LineItemType = "class"
	LineCourse     LineItemType = "course"
	LineCasual     LineItemType = "casual"
	LineMembership LineItemType = "membership"
	LinePrepaid    LineItemType = "prepaid"
	LineGroup      LineItemType = "group"
)

// LineItem is one entry of a cart. The set of implementations is closed:
// ShopItem, ClassItem, CourseItem, CasualItem, MembershipItem, PrepaidItem and GroupItem.
type LineItem interface {
	Kind() LineItemType
	Base() LineBase
	lineItem()
}

// LineBase holds the fields every line item carries.
type LineBase struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Amount     *LineAmount `json:"amount,omitempty"`
}

// LineAmount is written by the totalizer and the applier.
type LineAmount struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
}

func (b LineBase) Base() LineBase { return b }

// PriceTier is a priced entry with its own quantity, e.g. "adult x2" on a class.
type PriceTier struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Qty       *int            `json:"qty"`
	Value     decimal.Decimal `json:"value"`
	Customers []string        `json:"customers,omitempty"`
}

type Variation struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Selected bool            `json:"selected"`
}

type Modifier struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Selected bool            `json:"selected"`
}

type TimeSlot struct {
	ID       string `json:"id,omitempty"`
	Start    string `json:"start,omitempty"`
	Selected bool   `json:"selected"`
}

type Recurrence struct {
	Interval string `json:"interval,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type ShopItem struct {
	LineBase
	Qty        *int        `json:"qty"`
	Variations []Variation `json:"variations,omitempty"`
	Modifiers  []Modifier  `json:"modifiers,omitempty"`
}

// SessionPricing is shared by classes and courses: tier prices repeated per selected time slot.
type SessionPricing struct {
	Prices []PriceTier `json:"prices,omitempty"`
	Times  []TimeSlot  `json:"times,omitempty"`
}

type ClassItem struct {
	LineBase
	SessionPricing
}

type CourseItem struct {
	LineBase
	SessionPricing
}

// CasualItem is a general-entry booking priced by tier with no time multiplier.
type CasualItem struct {
	LineBase
	Prices []PriceTier `json:"prices,omitempty"`
}

// PassPricing is shared by memberships and prepaid packs. Passes and Recurring are
// billing metadata and never change the cart total.
type PassPricing struct {
	Prices    []PriceTier `json:"prices,omitempty"`
	Passes    *int        `json:"passes,omitempty"`
	Recurring *Recurrence `json:"recurring,omitempty"`
}

type MembershipItem struct {
	LineBase
	PassPricing
}

type PrepaidItem struct {
	LineBase
	PassPricing
}

// GroupItem is a bundle sold at a fixed price regardless of its members.
type GroupItem struct {
	LineBase
	Price    decimal.Decimal `json:"price"`
	Products []string        `json:"products,omitempty"`
}

func (ShopItem) Kind() LineItemType       { return LineShop }
func (ClassItem) Kind() LineItemType      { return LineClass }
func (CourseItem) Kind() LineItemType     { return LineCourse }
func (CasualItem) Kind() LineItemType     { return LineCasual }
func (MembershipItem) Kind() LineItemType { return LineMembership }
func (PrepaidItem) Kind() LineItemType    { return LinePrepaid }
func (GroupItem) Kind() LineItemType      { return LineGroup }

func (ShopItem) lineItem()       {}
func (ClassItem) lineItem()      {}
func (CourseItem) lineItem()     {}
func (CasualItem) lineItem()     {}
func (MembershipItem) lineItem() {}
func (PrepaidItem) lineItem()    {}
func (GroupItem) lineItem()      {}

// WithAmount returns a copy of item annotated with amt.
func WithAmount(item LineItem, amt LineAmount) LineItem {
	a := &amt
	switch v := item.(type) {
	case ShopItem:
		v.Amount = a
		return v
	case ClassItem:
		v.Amount = a
		return v
	case CourseItem:
		v.Amount = a
		return v
	case CasualItem:
		v.Amount = a
		return v
	case MembershipItem:
		v.Amount = a
		return v
	case PrepaidItem:
		v.Amount = a
		return v
	case GroupItem:
		v.Amount = a
		return v
	}
	return item
}

// Cart is the priced shopping cart. Subtotal, Tax and Total are caches of Products and
// Adjustments; they are recomputed on every pricing pass.
type Cart struct {
	Products    Lines           `json:"products"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Adjustments *Adjustments    `json:"adjustments,omitempty"`
}

type Adjustments struct {
	Discounts     AdjustmentSet `json:"discounts"`
	Surcharges    AdjustmentSet `json:"surcharges"`
	DiscountError Reason        `json:"discountError,omitempty"`
}

type AdjustmentSet struct {
	Total   decimal.Decimal     `json:"total"`
	Applied []AppliedAdjustment `json:"applied"`
}

type AppliedAdjustment struct {
	DiscountID string          `json:"discountId,omitempty"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Custom     bool            `json:"custom,omitempty"`
}

type Customer struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}
