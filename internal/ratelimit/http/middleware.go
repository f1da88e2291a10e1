// Package http provides the gin middleware applying the adaptive rate limiter.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NotSilaev/MrStone/internal/clock"
	"github.com/NotSilaev/MrStone/internal/httputil"
)

// Throttler decides whether a request from a client must be rejected.
type Throttler interface {
	ShouldReject(ctx context.Context, clientIdentity string, now time.Time) bool
}

// ClientIdentityFunc extracts the identity a request is counted under.
type ClientIdentityFunc func(c *gin.Context) string

// FirstForwardedFor identifies the client by the first X-Forwarded-For address, falling
// back to the connection's remote address when the header is absent or empty.
func FirstForwardedFor(c *gin.Context) string {
	if header := c.GetHeader("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return c.RemoteIP()
}

// TrustedClientIP identifies the client with gin's ClientIP: X-Forwarded-For is only read
// when the peer is a trusted proxy, walking the chain from the right.
func TrustedClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// IdentityFor returns TrustedClientIP when trusted proxies are configured and
// FirstForwardedFor otherwise.
func IdentityFor(trustedProxies []string) ClientIdentityFunc {
	if len(trustedProxies) > 0 {
		return TrustedClientIP
	}
	return FirstForwardedFor
}

// RateLimitMiddleware rejects requests the throttler refuses with 429 Too Many Requests.
// Requests without any identity are let through.
func RateLimitMiddleware(throttler Throttler, clk clock.Clock, identify ClientIdentityFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := identify(c)
		if clientIP == "" {
			c.Next()
			return
		}

		if throttler.ShouldReject(c.Request.Context(), clientIP, clk.Now()) {
			httputil.RespondGin(c, http.StatusTooManyRequests, "Too many requests", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
