package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/checkout"
	"github.com/nightmarket/aestore/internal/identity"
)

func (s *Server) createCheckoutIntent(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req checkout.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.checkoutSvc.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
