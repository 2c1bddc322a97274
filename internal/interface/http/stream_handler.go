package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/pkg/response"
	"github.com/glowcast/glowcast/pkg/validation"
)

type StreamHandler struct {
	Svc    *userapp.Service
	Keys   *userapp.StreamKeyService
	Logger *logrus.Logger
}

func NewStreamHandler(svc *userapp.Service, keys *userapp.StreamKeyService, logger *logrus.Logger) *StreamHandler {
	return &StreamHandler{Svc: svc, Keys: keys, Logger: logger}
}

// GetStreamKey GET /api/stream/key — owner only; the key is never listed
// anywhere else.
func (h *StreamHandler) GetStreamKey(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stream_key": u.StreamKey}, "stream key", nil)
}

// RotateStreamKey POST /api/stream/key — issues a fresh key; any previous key
// stops authorizing ingest immediately.
func (h *StreamHandler) RotateStreamKey(c *gin.Context) {
	key, err := h.Keys.Issue(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stream_key": key}, "stream key rotated", nil)
}

type ingestAuthRequest struct {
	StreamKey string `json:"stream_key" binding:"required"`
}

// IngestAuth POST /api/ingest/auth — called by the ingest process to
// attribute an incoming stream to an identity.
func (h *StreamHandler) IngestAuth(c *gin.Context) {
	var req ingestAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ownerID, err := h.Keys.AuthorizeIngest(c.Request.Context(), req.StreamKey)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user_id": ownerID}, "authorized", nil)
}

// GetStreamer GET /api/streamers/:username — public page, masked view.
func (h *StreamHandler) GetStreamer(c *gin.Context) {
	u, err := h.Svc.GetStreamer(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, publicView(u), "streamer", nil)
}

// Search GET /api/streamers/search?q=...&size=...
func (h *StreamHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchStreamers(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "results", gin.H{"count": len(hits)})
}

type banRequest struct {
	Username string `json:"username" binding:"required"`
}

// Ban POST /api/stream/ban
func (h *StreamHandler) Ban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.BanViewer(c.Request.Context(), c.GetString("userID"), req.Username); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"banned": req.Username}, "viewer banned", nil)
}

// Unban POST /api/stream/unban
func (h *StreamHandler) Unban(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UnbanViewer(c.Request.Context(), c.GetString("userID"), req.Username); err != nil {
		writeError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"unbanned": req.Username}, "viewer unbanned", nil)
}
