package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mdmserver/internal/domain/material"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/services"
)

// MatchingHandler обработчики поиска похожих записей
type MatchingHandler struct {
	BaseHandler
	service *services.MatchingService
}

// NewMatchingHandler создает обработчик поиска похожих
func NewMatchingHandler(base BaseHandler, service *services.MatchingService) *MatchingHandler {
	return &MatchingHandler{BaseHandler: base, service: service}
}

// MatchRequest запрос поиска похожих. Без threshold и max_results
// используются значения из конфигурации.
type MatchRequest struct {
	Query      RecordPayload `json:"query"`
	Threshold  *float64      `json:"threshold,omitempty" example:"0.5"`
	MaxResults *int          `json:"max_results,omitempty" example:"10"`
}

// MatchResponse найденные записи справочника
type MatchResponse struct {
	Results []material.MatchResult `json:"results"`
	Invalid bool                   `json:"invalid"`
	Reason  string                 `json:"reason,omitempty"`
}

// HandleMatch ищет похожие записи в справочнике
// @Summary Найти похожие записи
// @Description Ищет в справочнике записи, похожие на запрос. Точные совпадения возвращаются всегда.
// @Tags matching
// @Accept json
// @Produce json
// @Param request body MatchRequest true "Запрос"
// @Success 200 {object} MatchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /match [post]
func (h *MatchingHandler) HandleMatch(c *gin.Context) {
	var req MatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := h.service.FindSimilar(c.Request.Context(), services.MatchRequest{
		Query:      req.Query.Record(),
		Threshold:  req.Threshold,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	results := out.Results
	if results == nil {
		results = []material.MatchResult{}
	}
	c.JSON(http.StatusOK, MatchResponse{Results: results, Invalid: out.Invalid, Reason: out.Reason})
}

// HandleThresholds рекомендованные пороги по справочнику
// @Summary Рекомендованные пороги схожести
// @Description Процентили оценок схожести внутри справочника и статистика по категориям
// @Tags matching
// @Produce json
// @Param sample_size query int false "Размер выборки" default(100)
// @Success 200 {object} services.ThresholdsReport
// @Failure 400 {object} ErrorResponse
// @Router /match/thresholds [get]
func (h *MatchingHandler) HandleThresholds(c *gin.Context) {
	sampleSize, ok := h.queryInt(c, "sample_size", 0)
	if !ok {
		return
	}
	report, err := h.service.RecommendedThresholds(c.Request.Context(), sampleSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleSearchByCategory записи справочника по категории
// @Summary Записи категории
// @Tags matching
// @Produce json
// @Param category query string true "Категория"
// @Param limit query int false "Максимум записей" default(50)
// @Success 200 {array} material.Record
// @Failure 400 {object} ErrorResponse
// @Router /match/category [get]
func (h *MatchingHandler) HandleSearchByCategory(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	records, err := h.service.SearchByCategory(c.Request.Context(), c.Query("category"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// queryInt читает целый параметр запроса, при ошибке отвечает 400
func (h BaseHandler) queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.HandleError(c, apperrors.NewValidationError("неверный формат параметра "+name, err))
		return 0, false
	}
	return v, true
}

// queryFloat читает необязательный дробный параметр запроса
func (h BaseHandler) queryFloat(c *gin.Context, name string) (*float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.HandleError(c, apperrors.NewValidationError("неверный формат параметра "+name, err))
		return nil, false
	}
	return &v, true
}
