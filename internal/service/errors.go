package service

import "github.com/go-faster/errors"

var (
	ErrDiscountNotFound = errors.New("discount not found")
	ErrRedemptionLimit  = errors.New("discount redemption limit reached")
	ErrNotRedeemable    = errors.New("discount cannot be redeemed")
)
