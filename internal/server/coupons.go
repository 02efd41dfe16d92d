package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/identity"
)

type previewCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// previewCoupon prices the user's cart with the coupon applied, without
// minting anything. The same evaluator runs again at intent time, so a
// preview is never a reservation.
func (s *Server) previewCoupon(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req previewCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.checkoutSvc.PreviewQuote(c.Request.Context(), userID, req.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
