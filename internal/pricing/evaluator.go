package pricing

import (
	"errors"
	"time"

	cartdomain "github.com/nightmarket/aestore/internal/cart/domain"
	coupondomain "github.com/nightmarket/aestore/internal/coupon/domain"
)

var (
	ErrEmptyCart         = errors.New("empty_cart")
	ErrInvalidOrderTotal = errors.New("invalid_order_total")
)

// Quote is the server-side price of a cart. All amounts are minor units.
type Quote struct {
	Subtotal   int64  `json:"subtotal"`
	Discount   int64  `json:"discount"`
	Total      int64  `json:"total"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// Evaluate prices the cart lines and applies the coupon if present.
// Client-supplied amounts never participate; every figure derives from the
// package rows behind the lines. Integer math throughout, remainders
// truncate in the customer's favor on percentage discounts.
func Evaluate(lines []cartdomain.Line, coupon *coupondomain.Coupon, now time.Time) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, ErrEmptyCart
	}

	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * line.Quantity
	}

	quote := Quote{Subtotal: subtotal, Total: subtotal}
	if coupon != nil {
		if err := coupon.Validate(subtotal, now); err != nil {
			return Quote{}, err
		}
		quote.Discount = discount(coupon, subtotal)
		quote.Total = subtotal - quote.Discount
		quote.CouponCode = coupon.Code
	}

	if quote.Total <= 0 {
		return Quote{}, ErrInvalidOrderTotal
	}
	return quote, nil
}

func discount(coupon *coupondomain.Coupon, subtotal int64) int64 {
	var d int64
	switch coupon.Type {
	case coupondomain.DiscountPercentage:
		d = subtotal * coupon.Value / 100
	case coupondomain.DiscountFixed:
		d = coupon.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
