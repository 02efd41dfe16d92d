package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// Lookup returns the coupon for a code without judging eligibility;
	// eligibility is the pricing evaluator's call.
	Lookup(ctx context.Context, code string) (Coupon, error)
	// RecordUse bumps the usage counter. Called once per fulfilled order.
	RecordUse(ctx context.Context, code string) error
}

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Coupon, error)
	IncrementUse(ctx context.Context, db *gorm.DB, code string) error
}

var (
	ErrCouponNotFound    = errors.New("coupon_not_found")
	ErrCouponInactive    = errors.New("coupon_inactive")
	ErrCouponExpired     = errors.New("coupon_expired")
	ErrCouponExhausted   = errors.New("coupon_exhausted")
	ErrMinPurchaseNotMet = errors.New("min_purchase_not_met")
)
