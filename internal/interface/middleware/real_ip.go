package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ipHeaders are consulted in order; the first one carrying a parseable
// address wins. CF-Connecting-IP is set by the CDN in front of the web tier,
// X-Forwarded-For by the ingest proxy (left-most entry is the client).
var ipHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For"}

// RealIP resolves the originating client address and stores it under
// "real_ip" for the rate limiter and the login audit trail.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", resolveClientIP(c))
		c.Next()
	}
}

func resolveClientIP(c *gin.Context) string {
	for _, h := range ipHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		candidate := strings.TrimSpace(strings.SplitN(v, ",", 2)[0])
		if ip := net.ParseIP(candidate); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
