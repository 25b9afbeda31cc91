package http

import (
	"errors"
	"net/http"

	"clip-and-ship/infrastructure/logger"
	"clip-and-ship/usecase"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

const (
	ErrorUnmarshal     = "Invalid JSON body"
	ErrorUnauthorized  = "Unauthorized"
	ErrorConfiguration = "Configuration error"
)

// statusOf maps a usecase error to its HTTP status.
func statusOf(err error) int {
	var ve *usecase.ValidationError
	var ns *usecase.NotSupportedError
	switch {
	case errors.As(err, &ve), errors.Is(err, usecase.ErrInsufficientCredits):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ns):
		return http.StatusNotImplemented
	case errors.Is(err, usecase.ErrReconnectRequired):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers with {error, details}. Validation errors carry their own
// message; everything else uses the fallback message.
func respondError(c *gin.Context, err error, fallback string, extra ...gin.H) {
	status := statusOf(err)
	body := gin.H{"error": fallback, "details": err.Error()}
	switch status {
	case http.StatusBadRequest, http.StatusNotImplemented, http.StatusUnauthorized, http.StatusServiceUnavailable:
		body = gin.H{"error": err.Error()}
	case http.StatusInternalServerError:
		if errors.Is(err, usecase.ErrConfiguration) {
			body["error"] = ErrorConfiguration
		}
	}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	report(c, status, err)
	c.JSON(status, body)
}

func report(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"error":  err,
		"path":   c.FullPath(),
		"method": c.Request.Method,
	}).Error("Request failed")
	sentry.CaptureException(err)
}

func badJSON(c *gin.Context, err error) {
	logger.GetLogger().WithField("error", err).Warn(ErrorUnmarshal)
	c.JSON(http.StatusBadRequest, gin.H{"error": ErrorUnmarshal, "details": err.Error()})
}

func userID(c *gin.Context) string { return c.GetString("user_id") }
