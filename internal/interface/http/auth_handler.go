package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/pkg/response"
	"github.com/glowcast/glowcast/pkg/validation"
)

// AuthHandler carries the password-reset flow. The reset token lives on the
// identity row; delivery goes through the mail queue.
type AuthHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *userapp.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

// ResetInit POST /api/auth/reset/init {email}
// Always answers OK so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset link was sent", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}
