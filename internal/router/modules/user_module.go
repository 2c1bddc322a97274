package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/container"
	handlers "github.com/glowcast/glowcast/internal/interface/http"
	"github.com/glowcast/glowcast/internal/interface/middleware"
	"github.com/glowcast/glowcast/pkg/helpers"
)

// UserModule wires account routes.
// Public: POST /api/register, POST /api/login
// Protected: POST /api/logout, GET/PUT /api/profile, POST /api/profile/avatar,
// DELETE /api/account
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
