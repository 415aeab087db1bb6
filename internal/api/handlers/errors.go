package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse = models.ErrorResponse

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidSettings), errors.Is(err, models.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrCaptureNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyOwned), errors.Is(err, models.ErrNotOwner),
		errors.Is(err, models.ErrVersionConflict),
		errors.Is(err, models.ErrAlreadyRunning), errors.Is(err, models.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, models.ErrDeviceBusy), errors.Is(err, models.ErrFrameUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}

	if status >= http.StatusInternalServerError {
		logging.Error(c).Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	} else {
		logging.Debug(c).Err(err).Int("status", status).Msg("Request rejected")
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
