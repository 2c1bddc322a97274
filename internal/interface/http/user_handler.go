package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/pkg/helpers"
	"github.com/glowcast/glowcast/pkg/response"
	"github.com/glowcast/glowcast/pkg/validation"
)

type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,handle"`
	Email    string `json:"email" binding:"required,handle,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	// Identifier is a username or an email; the service tells them apart.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Title      *string `json:"title"`
	Game       *string `json:"game"`
	WithGame   *bool   `json:"with_game"`
	Live       *bool   `json:"live"`
	WithGoal   *bool   `json:"with_goal"`
	Goal       *int64  `json:"goal" binding:"omitempty,gte=0"`
	GoalReward *string `json:"goal_reward" binding:"omitempty,max=100"`
	Twitter    *string `json:"twitter" binding:"omitempty,max=150"`
	FirstSite  *string `json:"first_site" binding:"omitempty,max=150"`
	Bio        *string `json:"bio" binding:"omitempty,max=600"`
}

// Register POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ClientIP: clientIP(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ownerView(u), "account created", nil)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Identifier, req.Password, clientIP(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, gin.H{
		"user":  ownerView(res.User),
		"token": res.Token,
	}, "login successful", gin.H{"expires_at": res.ExpiresAt})
}

// Logout POST /api/logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ownerView(u), "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), userapp.UpdateProfileInput{
		Title:      req.Title,
		Game:       req.Game,
		WithGame:   req.WithGame,
		Live:       req.Live,
		WithGoal:   req.WithGoal,
		Goal:       req.Goal,
		GoalReward: req.GoalReward,
		Twitter:    req.Twitter,
		FirstSite:  req.FirstSite,
		Bio:        req.Bio,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ownerView(u), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart form, field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.GetString("userID"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pic": url}, "avatar updated", nil)
}

// DeleteAccount DELETE /api/account
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), c.GetString("userID")); err != nil {
		writeError(c, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
