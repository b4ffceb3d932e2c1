package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mdmserver/classification"
	"mdmserver/server/services"
)

// ClassificationHandler обработчики классификации МТР
type ClassificationHandler struct {
	BaseHandler
	service *services.ClassificationService
}

// NewClassificationHandler создает обработчик классификации
func NewClassificationHandler(base BaseHandler, service *services.ClassificationService) *ClassificationHandler {
	return &ClassificationHandler{BaseHandler: base, service: service}
}

// ClassifyResponse рекомендации категорий для записи
type ClassifyResponse struct {
	Categories []classification.CategoryScore `json:"categories"`
	Richness   float64                        `json:"spec_richness"`
	Invalid    bool                           `json:"invalid"`
	Reason     string                         `json:"reason,omitempty"`
}

func newClassifyResponse(out classification.Outcome) ClassifyResponse {
	cats := out.Categories
	if cats == nil {
		cats = []classification.CategoryScore{}
	}
	return ClassifyResponse{
		Categories: cats,
		Richness:   out.Richness,
		Invalid:    out.Invalid,
		Reason:     out.Reason,
	}
}

// BatchClassifyRequest пакет записей для классификации
type BatchClassifyRequest struct {
	Records []RecordPayload `json:"records" binding:"required"`
}

// BatchClassifyItem результат для одной записи пакета
type BatchClassifyItem struct {
	ID string `json:"id,omitempty"`
	ClassifyResponse
}

// BatchClassifyResponse результаты в порядке записей запроса
type BatchClassifyResponse struct {
	Results []BatchClassifyItem `json:"results"`
	Total   int                 `json:"total"`
}

// HandleClassify классифицирует одну запись
// @Summary Классифицировать запись МТР
// @Description Рекомендует категории по наименованию и характеристикам. Пустое наименование возвращает invalid=true.
// @Tags classification
// @Accept json
// @Produce json
// @Param request body RecordPayload true "Запись МТР"
// @Success 200 {object} ClassifyResponse
// @Failure 400 {object} ErrorResponse
// @Router /classify [post]
func (h *ClassificationHandler) HandleClassify(c *gin.Context) {
	var req RecordPayload
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := h.service.Classify(c.Request.Context(), req.Record())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newClassifyResponse(out))
}

// HandleBatchClassify классифицирует пакет записей
// @Summary Пакетная классификация
// @Description Классифицирует до 10000 записей параллельно. Порядок результатов совпадает с порядком записей.
// @Tags classification
// @Accept json
// @Produce json
// @Param request body BatchClassifyRequest true "Пакет записей"
// @Success 200 {object} BatchClassifyResponse
// @Failure 400 {object} ErrorResponse
// @Router /classify/batch [post]
func (h *ClassificationHandler) HandleBatchClassify(c *gin.Context) {
	var req BatchClassifyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	outcomes, err := h.service.BatchClassify(c.Request.Context(), toRecords(req.Records))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	results := make([]BatchClassifyItem, len(outcomes))
	for i, out := range outcomes {
		results[i] = BatchClassifyItem{ID: req.Records[i].ID, ClassifyResponse: newClassifyResponse(out)}
	}
	c.JSON(http.StatusOK, BatchClassifyResponse{Results: results, Total: len(results)})
}
