package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/pkg/response"
	"github.com/glowcast/glowcast/pkg/validation"
)

type PointsHandler struct {
	Points *userapp.PointsService
	Users  *userapp.Service
	Logger *logrus.Logger
}

func NewPointsHandler(points *userapp.PointsService, users *userapp.Service, logger *logrus.Logger) *PointsHandler {
	return &PointsHandler{Points: points, Users: users, Logger: logger}
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type tipRequest struct {
	To     string `json:"to" binding:"required"` // streamer username
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// Balance GET /api/points
func (h *PointsHandler) Balance(c *gin.Context) {
	balance, err := h.Points.Balance(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"points": balance}, "balance", nil)
}

// Purchase POST /api/points/purchase — credits the caller after a completed
// purchase. Payment settlement happens upstream; this endpoint applies the
// resulting credit.
func (h *PointsHandler) Purchase(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	balance, err := h.Points.Credit(c.Request.Context(), c.GetString("userID"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"points": balance}, "points credited", nil)
}

// Redeem POST /api/points/redeem — debits the caller (goal payouts, reward
// claims). Fails without partial effect when the balance is short.
func (h *PointsHandler) Redeem(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	balance, err := h.Points.Debit(c.Request.Context(), c.GetString("userID"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"points": balance}, "points redeemed", nil)
}

// Tip POST /api/points/tip — transfers points from the caller to a streamer.
// Banned viewers cannot tip the streamer who banned them.
func (h *PointsHandler) Tip(c *gin.Context) {
	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	streamer, err := h.Users.GetStreamer(c.Request.Context(), req.To)
	if err != nil {
		writeError(c, err)
		return
	}
	if streamer.Stream.IsBanned(c.GetString("username")) {
		response.Error[any](c, http.StatusForbidden, "you are banned from this channel", nil)
		return
	}
	err = h.Points.Transfer(c.Request.Context(), c.GetString("userID"), streamer.ID, req.Amount)
	if err != nil {
		if errors.Is(err, userapp.ErrInvalidAmount) && streamer.ID == c.GetString("userID") {
			response.Error[any](c, http.StatusBadRequest, "cannot tip yourself", nil)
			return
		}
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"tipped": req.Amount, "to": streamer.Username}, "tip sent", nil)
}
