package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"go.uber.org/zap"
)

// handleToyyibPayReturn is where the customer's browser lands after paying.
// The status_id query parameter is advisory only; settlement is always
// re-queried from the provider before anything is fulfilled.
func (s *Server) handleToyyibPayReturn(c *gin.Context) {
	billCode := c.Query("billcode")
	if billCode == "" {
		c.Redirect(http.StatusFound, s.cfg.BaseURL+"/payment/failed")
		return
	}

	order, err := s.webhookSvc.CompleteFromQuery(c.Request.Context(), billCode)
	if err != nil {
		s.log.Warn("toyyibpay return did not settle",
			zap.String("billcode", billCode),
			zap.String("status_id", c.Query("status_id")),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, paymentdomain.ErrPaymentNotSettled):
			c.Redirect(http.StatusFound, s.cfg.BaseURL+"/payment/pending?billcode="+billCode)
		case errors.Is(err, pendingdomain.ErrNotFound):
			c.Redirect(http.StatusFound, s.cfg.BaseURL+"/payment/failed")
		default:
			c.Redirect(http.StatusFound, s.cfg.BaseURL+"/payment/failed")
		}
		return
	}

	c.Redirect(http.StatusFound, s.cfg.BaseURL+"/payment/success?order_id="+order.ID.String())
}

// handleToyyibPayCallback is the server-to-server notification. It carries
// no signature, so it is treated purely as a prompt to re-query. Always
// answers 200; the provider does not retry on errors anyway.
func (s *Server) handleToyyibPayCallback(c *gin.Context) {
	billCode := c.PostForm("billcode")
	if billCode == "" {
		c.Status(http.StatusOK)
		return
	}

	if _, err := s.webhookSvc.CompleteFromQuery(c.Request.Context(), billCode); err != nil {
		s.log.Info("toyyibpay callback not fulfilled",
			zap.String("billcode", billCode),
			zap.Error(err),
		)
	}
	c.Status(http.StatusOK)
}
