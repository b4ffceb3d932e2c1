package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"mdmserver/internal/domain/material"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/middleware"
)

// BaseHandler базовый обработчик с общими методами
type BaseHandler struct {
	responder *middleware.ErrorResponder
	logger    *slog.Logger
}

// NewBaseHandler создает новый базовый обработчик
func NewBaseHandler(responder *middleware.ErrorResponder, logger *slog.Logger) BaseHandler {
	return BaseHandler{responder: responder, logger: logger}
}

// HandleError отдает ошибку клиенту в едином формате
func (h BaseHandler) HandleError(c *gin.Context, err error) {
	h.responder.Respond(c, err)
}

// bindJSON разбирает тело запроса, при ошибке отвечает 400
func (h BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.HandleError(c, apperrors.NewValidationError("неверный формат тела запроса", err))
		return false
	}
	return true
}

// ErrorResponse ответ с ошибкой (для документации API)
type ErrorResponse = middleware.ErrorResponse

// RecordPayload запись МТР в теле запроса
type RecordPayload struct {
	ID           string `json:"id,omitempty" example:"M-001"`
	Name         string `json:"name" example:"疏水器"`
	Spec         string `json:"spec" example:"DN25 PN1.6"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Unit         string `json:"unit,omitempty" example:"个"`
	Category     string `json:"category,omitempty"`
}

// Record преобразует тело запроса в запись
func (p RecordPayload) Record() material.Record {
	return material.Record{
		ID:           p.ID,
		Name:         p.Name,
		Spec:         p.Spec,
		Manufacturer: p.Manufacturer,
		Unit:         p.Unit,
		Category:     p.Category,
	}
}

func toRecords(payloads []RecordPayload) []material.Record {
	out := make([]material.Record, len(payloads))
	for i, p := range payloads {
		out[i] = p.Record()
	}
	return out
}
