package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixedCart = `{
	"products": [
		{"type": "shop", "id": "tee", "qty": 2,
		 "variations": [{"id": "m", "amount": 12, "selected": true}],
		 "modifiers": [{"id": "print", "amount": "2.00", "selected": true}]},
		{"type": "class", "id": "yoga", "categories": ["wellness"],
		 "prices": [{"name": "adult", "qty": 1, "value": 20, "customers": ["c1"]}],
		 "times": [{"id": "mon", "selected": true}]},
		{"type": "membership", "id": "gold", "prices": [{"qty": 1, "value": 49.95}],
		 "recurring": {"interval": "month", "count": 12}},
		{"type": "group", "id": "kit", "price": 60, "products": ["mat", "towel"]}
	],
	"subtotal": 0, "tax": 0, "total": 0
}`

func TestLines_DecodesEachVariant(t *testing.T) {
	var cart Cart
	require.NoError(t, json.Unmarshal([]byte(mixedCart), &cart))
	require.Len(t, cart.Products, 4)

	shop, ok := cart.Products[0].(ShopItem)
	require.True(t, ok)
	require.NotNil(t, shop.Qty)
	assert.Equal(t, 2, *shop.Qty)
	assert.Equal(t, "2", shop.Modifiers[0].Amount.String())

	class, ok := cart.Products[1].(ClassItem)
	require.True(t, ok)
	assert.Equal(t, []string{"wellness"}, class.Base().Categories)
	assert.Equal(t, []string{"c1"}, class.Prices[0].Customers)
	assert.Len(t, class.Times, 1)

	membership, ok := cart.Products[2].(MembershipItem)
	require.True(t, ok)
	assert.Equal(t, "month", membership.Recurring.Interval)

	group, ok := cart.Products[3].(GroupItem)
	require.True(t, ok)
	assert.Equal(t, "60", group.Price.String())
	assert.Equal(t, LineGroup, group.Kind())
}

func TestLines_UnknownTypeFails(t *testing.T) {
	var lines Lines
	err := json.Unmarshal([]byte(`[{"type": "voucher", "id": "x"}]`), &lines)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLineItem))
	assert.Contains(t, err.Error(), "products[0]")
}

func TestLines_EncodeCarriesDiscriminator(t *testing.T) {
	lines := Lines{
		CasualItem{LineBase: LineBase{ID: "entry"}},
		PrepaidItem{LineBase: LineBase{ID: "pack"}},
	}

	body, err := json.Marshal(lines)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "casual", decoded[0]["type"])
	assert.Equal(t, "prepaid", decoded[1]["type"])

	var again Lines
	require.NoError(t, json.Unmarshal(body, &again))
	assert.IsType(t, PrepaidItem{}, again[1])
}

func TestLines_NilEncodesAsEmptyArray(t *testing.T) {
	body, err := json.Marshal(Cart{})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"products":[]`)
}

func TestWithAmount_ReturnsAnnotatedCopy(t *testing.T) {
	item := CasualItem{LineBase: LineBase{ID: "entry"}}

	annotated := WithAmount(item, LineAmount{})

	assert.Nil(t, item.Amount)
	assert.NotNil(t, annotated.Base().Amount)
}

func TestDiscount_InWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	assert.True(t, Discount{}.InWindow(now))
	assert.True(t, Discount{Start: &before, Expiry: &after}.InWindow(now))
	assert.False(t, Discount{Start: &after}.InWindow(now))
	assert.False(t, Discount{Expiry: &before}.InWindow(now))
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), *PeriodWeek.Since(now))
	assert.Equal(t, now.AddDate(0, -1, 0), *PeriodMonth.Since(now))
	assert.Nil(t, Period("fortnight").Since(now))
}
