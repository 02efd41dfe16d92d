package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/identity"
)

func (s *Server) listOrders(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orders, err := s.orderSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	detail, err := s.orderSvc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type completeOrderRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
}

// completeOrder is the client-driven fallback for when a provider
// notification is delayed or lost. It runs the exact same verified path the
// webhook would have, so a client can never talk itself into an order the
// provider did not settle.
func (s *Server) completeOrder(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req completeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Already fulfilled by a webhook or redirect; no need to ask the
	// provider again.
	if existing, err := s.orderSvc.GetByPaymentID(c.Request.Context(), req.ExternalID); err == nil && existing != nil {
		if existing.UserID != userID {
			AbortWithError(c, ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, existing)
		return
	}

	order, err := s.webhookSvc.CompleteFromQuery(c.Request.Context(), req.ExternalID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if order.UserID != userID {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}
