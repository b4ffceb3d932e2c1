package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdmserver/server/monitoring"
)

// HealthHandler проверка состояния сервера
type HealthHandler struct {
	checker *monitoring.HealthChecker
}

// NewHealthHandler создает обработчик проверки состояния
func NewHealthHandler(checker *monitoring.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth состояние сервера и его компонентов
// @Summary Проверка состояния
// @Tags system
// @Produce json
// @Success 200 {object} monitoring.HealthCheckResult
// @Failure 503 {object} monitoring.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	result := h.checker.Check(c.Request.Context())
	status := http.StatusOK
	if result.Status == monitoring.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
