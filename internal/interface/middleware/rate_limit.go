package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/glowcast/glowcast/pkg/response"
)

// KeyFunc derives the bucket a request counts against. Buckets are
// namespaced so an IP limit and a per-user limit never collide.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request bypasses the limiter entirely
// (health checks, the ingest callback from the media server).
type AllowFunc func(c *gin.Context) bool

// KeyByIP buckets by client address. Used on unauthenticated surfaces
// (registration, login, public streamer pages).
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + clientIPOrUnknown(c)
	}
}

// KeyByIPAndPath buckets by address and route, for endpoints that need a
// tighter budget than the caller's overall IP budget (password reset).
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		return "rl:path:" + path + ":ip:" + clientIPOrUnknown(c)
	}
}

// KeyByUserID buckets authenticated traffic by identity; anonymous requests
// fall back to the address bucket.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "rl:user:" + uid
		}
		return "rl:user:anon:ip:" + clientIPOrUnknown(c)
	}
}

func clientIPOrUnknown(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// countScript increments the bucket and starts its window on first hit, as
// one atomic step so two concurrent first hits cannot race the expiry.
var countScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RateLimit enforces a fixed-window limit of max requests per window, counted
// in redis. The limiter fails open: if redis is unreachable the request goes
// through uncounted. CORS preflights are never counted.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		n, err := countScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			c.Next()
			return
		}

		var resetSec int
		if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int(ttl.Seconds())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max-n))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if n > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
