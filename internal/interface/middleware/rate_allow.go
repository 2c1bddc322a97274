package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP returns an AllowFunc that lets requests from private or
// loopback addresses bypass rate limits (health checks, ingest sidecars).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := clientIPOrUnknown(c)
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
