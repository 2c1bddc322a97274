package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/container"
	handlers "github.com/glowcast/glowcast/internal/interface/http"
	"github.com/glowcast/glowcast/internal/interface/middleware"
	"github.com/glowcast/glowcast/pkg/helpers"
)

// StreamModule wires streamer pages, search, the owner-only stream key
// endpoints, and ingest authorization.
type StreamModule struct {
	Handler *handlers.StreamHandler
	JWT     *helpers.JWTManager
}

func NewStreamModule(h *handlers.StreamHandler, jwt *helpers.JWTManager) *StreamModule {
	return &StreamModule{Handler: h, JWT: jwt}
}

func (m *StreamModule) Register(rg *gin.RouterGroup) {
	publicLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	// ingest sidecars sit on the private network and skip the limit
	ingestLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.GET("/streamers/search", publicLimiter, m.Handler.Search)
	rg.GET("/streamers/:username", publicLimiter, m.Handler.GetStreamer)
	rg.POST("/ingest/auth", ingestLimiter, m.Handler.IngestAuth)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/stream/key", m.Handler.GetStreamKey)
		auth.POST("/stream/key", m.Handler.RotateStreamKey)
		auth.POST("/stream/ban", m.Handler.Ban)
		auth.POST("/stream/unban", m.Handler.Unban)
	}
}
