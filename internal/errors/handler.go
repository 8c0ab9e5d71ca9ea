package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorHandler provides centralized error logging and rendering
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to a structured response and renders it.
// Unrecognized errors become opaque 500s; their detail stays in the logs.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := toAPIError(r.Context(), err)

	logLevel := slog.LevelError
	if apiErr.StatusCode < http.StatusInternalServerError {
		logLevel = slog.LevelWarn
	}
	h.logger.Log(r.Context(), logLevel, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", apiErr.StatusCode),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"error":   apiErr,
	})
}

func toAPIError(ctx context.Context, err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return New(http.StatusGatewayTimeout, "REQUEST_TIMEOUT", "The request took too long to process")
	case errors.Is(err, context.Canceled):
		return New(499, "CLIENT_CLOSED_REQUEST", "Client closed the request")
	default:
		return ErrInternalServer
	}
}
