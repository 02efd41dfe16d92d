package server

import (
	"errors"
	"net/http"
	"testing"

	sessionauth "github.com/nightmarket/aestore/internal/auth/session"
	cartdomain "github.com/nightmarket/aestore/internal/cart/domain"
	coupondomain "github.com/nightmarket/aestore/internal/coupon/domain"
	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/nightmarket/aestore/internal/pricing"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"no session", sessionauth.ErrNoSession, http.StatusUnauthorized, "unauthorized"},
		{"expired session", sessionauth.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{"invalid signature", paymentdomain.ErrInvalidSignature, http.StatusBadRequest, "verification_failed"},
		{"verification failed", paymentdomain.ErrVerificationFailed, http.StatusBadRequest, "verification_failed"},
		{"not settled", paymentdomain.ErrPaymentNotSettled, http.StatusConflict, "payment_not_settled"},
		{"unknown provider", paymentdomain.ErrProviderNotFound, http.StatusBadRequest, "validation_error"},
		{"empty cart", pricing.ErrEmptyCart, http.StatusBadRequest, "validation_error"},
		{"zero total", pricing.ErrInvalidOrderTotal, http.StatusBadRequest, "validation_error"},
		{"expired coupon", coupondomain.ErrCouponExpired, http.StatusBadRequest, "validation_error"},
		{"coupon not found", coupondomain.ErrCouponNotFound, http.StatusNotFound, "not_found"},
		{"order not found", orderdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"payment not found", pendingdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"cart item not found", cartdomain.ErrItemNotFound, http.StatusNotFound, "not_found"},
		{"duplicate intent", pendingdomain.ErrDuplicateIntent, http.StatusConflict, "conflict"},
		{"too many requests", ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantType, payload.Type)
		})
	}
}
