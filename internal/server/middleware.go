package server

import (
	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/identity"
	"go.uber.org/zap"
)

// AuthRequired resolves the session cookie and stashes the user ID in the
// request context. No session, no entry.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := s.sessions.ResolveRequest(c.Request)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(identity.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// rateLimited throttles per user. Runs after AuthRequired so the key is the
// user ID. Fails open when redis is unavailable.
func (s *Server) rateLimited(name string, rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := identity.UserIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		res, err := s.limiter.Allow(c.Request.Context(), "ratelimit:"+name+":"+userID.String(), rate, burst)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.String("name", name), zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
