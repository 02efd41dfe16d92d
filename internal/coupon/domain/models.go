package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount rule. Value is a whole percentage for percentage
// coupons and a minor-unit amount for fixed coupons. MinPurchase is in
// minor units; zero means no floor.
type Coupon struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"not null;uniqueIndex" json:"code"`
	Type        DiscountType `gorm:"not null" json:"type"`
	Value       int64        `gorm:"not null" json:"value"`
	MinPurchase int64        `gorm:"column:min_purchase;not null;default:0" json:"min_purchase"`
	UsageLimit  *int64       `gorm:"column:usage_limit" json:"usage_limit,omitempty"`
	UsedCount   int64        `gorm:"column:used_count;not null;default:0" json:"used_count"`
	ExpiresAt   *time.Time   `gorm:"column:expires_at" json:"expires_at,omitempty"`
	IsActive    bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (Coupon) TableName() string { return "coupons" }

// Validate reports whether the coupon may be applied to an order of the
// given subtotal at the given instant.
func (c *Coupon) Validate(subtotal int64, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return ErrCouponExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	if subtotal < c.MinPurchase {
		return ErrMinPurchaseNotMet
	}
	return nil
}
