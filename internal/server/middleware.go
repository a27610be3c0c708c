package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
)

const contextClaimsKey = "auth.claims"

// AuthRequired verifies the bearer token and stores its claims on the context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.tokens.Verify(tokenString)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

func claimsFromContext(c *gin.Context) *authdomain.Claims {
	value, ok := c.Get(contextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*authdomain.Claims)
	return claims
}

// AuthRateLimit throttles credential endpoints per client address. A nil
// limiter (no redis configured) allows everything.
func (s *Server) AuthRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := s.authLimiter.Allow(c.Request.Context(), endpoint, c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", retryAfter.Truncate(0).String())
			}
			AbortWithError(c, ErrTooManyRequest)
			return
		}
		c.Next()
	}
}
