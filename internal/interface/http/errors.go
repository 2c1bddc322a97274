package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/internal/domain/repository"
	"github.com/glowcast/glowcast/pkg/response"
)

// writeError maps service and repository failures onto the response envelope.
// Authentication failures stay generic; duplicate errors name the field;
// store outages become 503 and are never retried here.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrInvalidAmount):
		response.Error[any](c, http.StatusBadRequest, "amount must be positive", nil)
	case errors.Is(err, application.ErrInvalidResetToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, repository.ErrInsufficientPoints):
		response.Error[any](c, http.StatusUnprocessableEntity, "insufficient points", nil)
	case errors.Is(err, repository.ErrStoreUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "store unavailable", nil)
	default:
		if field, ok := repository.IsDuplicate(err); ok {
			response.Error[any](c, http.StatusConflict, "already taken", gin.H{"field": field})
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
