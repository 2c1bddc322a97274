package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/container"
	handlers "github.com/glowcast/glowcast/internal/interface/http"
	"github.com/glowcast/glowcast/internal/interface/middleware"
)

// AuthModule wires the public password-reset endpoints with tight per-IP
// limits.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/reset/init", resetInitLimiter, m.Handler.ResetInit)
	rg.POST("/auth/reset/confirm", resetConfirmLimiter, m.Handler.ResetConfirm)
}
