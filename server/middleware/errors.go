package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponder пишет ошибки в едином JSON формате и считает их в метриках
type ErrorResponder struct {
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewErrorResponder создает обработчик ошибок
func NewErrorResponder(logger *slog.Logger, metrics *monitoring.Metrics) *ErrorResponder {
	return &ErrorResponder{logger: logger, metrics: metrics}
}

// Respond прерывает обработку запроса и отдает ошибку клиенту
func (r *ErrorResponder) Respond(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unexpected error", err)
	}
	reqID := GetRequestIDFromGin(c)

	level := slog.LevelWarn
	if appErr.StatusCode() >= 500 {
		level = slog.LevelError
	}
	r.logger.Log(c.Request.Context(), level, "HTTP error",
		"error", appErr.Unwrap(),
		"user_message", appErr.UserMessage(),
		"context", appErr.Context,
		"status_code", appErr.StatusCode(),
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	if r.metrics != nil {
		r.metrics.ErrorsTotal.WithLabelValues(appErr.Kind()).Inc()
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), ErrorResponse{
		Error:     appErr.Kind(),
		Message:   appErr.UserMessage(),
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
