package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/container"
	handlers "github.com/glowcast/glowcast/internal/interface/http"
	"github.com/glowcast/glowcast/internal/interface/middleware"
	"github.com/glowcast/glowcast/pkg/helpers"
)

// PointsModule wires the ledger endpoints. Everything here requires an
// authenticated identity.
type PointsModule struct {
	Handler *handlers.PointsHandler
	JWT     *helpers.JWTManager
}

func NewPointsModule(h *handlers.PointsHandler, jwt *helpers.JWTManager) *PointsModule {
	return &PointsModule{Handler: h, JWT: jwt}
}

func (m *PointsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/points", m.Handler.Balance)
		auth.POST("/points/purchase", m.Handler.Purchase)
		auth.POST("/points/redeem", m.Handler.Redeem)
		auth.POST("/points/tip", m.Handler.Tip)
	}
}
