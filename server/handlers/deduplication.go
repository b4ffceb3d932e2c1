package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mdmserver/deduplication"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/services"
)

// DeduplicationHandler обработчики поиска дубликатов
type DeduplicationHandler struct {
	BaseHandler
	service *services.DeduplicationService
}

// NewDeduplicationHandler создает обработчик дедупликации
func NewDeduplicationHandler(base BaseHandler, service *services.DeduplicationService) *DeduplicationHandler {
	return &DeduplicationHandler{BaseHandler: base, service: service}
}

// DeduplicateRequest пакет для дедупликации. Без records обрабатывается весь справочник.
type DeduplicateRequest struct {
	Records   []RecordPayload `json:"records,omitempty"`
	Threshold *float64        `json:"threshold,omitempty" example:"0.8"`
}

// HandleDeduplicate группирует записи в кластеры дубликатов
// @Summary Найти дубликаты
// @Description Разбивает пакет (или весь справочник) на кластеры. Запуск по справочнику сохраняется и получает run_id.
// @Tags deduplication
// @Accept json
// @Produce json
// @Param request body DeduplicateRequest true "Пакет и порог"
// @Success 200 {object} services.DedupReport
// @Failure 400 {object} ErrorResponse
// @Router /deduplicate [post]
func (h *DeduplicationHandler) HandleDeduplicate(c *gin.Context) {
	var req DeduplicateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var records = toRecords(req.Records)
	if req.Records == nil {
		records = nil
	}
	report, _, err := h.service.Deduplicate(c.Request.Context(), records, req.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleExport выгружает кластеры справочника в файл
// @Summary Выгрузить кластеры дубликатов
// @Tags deduplication
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Produce json
// @Param format query string false "xlsx, csv или json" default(xlsx)
// @Param threshold query number false "Порог схожести"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /deduplicate/export [get]
func (h *DeduplicationHandler) HandleExport(c *gin.Context) {
	format, err := deduplication.ParseFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}
	threshold, ok := h.queryFloat(c, "threshold")
	if !ok {
		return
	}

	// Файл собирается в буфер, чтобы ошибка не пришла посреди выгрузки
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf, format, threshold); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("duplicates_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// HandleGetRun сохраненный запуск дедупликации
// @Summary Запуск дедупликации
// @Tags deduplication
// @Produce json
// @Param id path string true "ID запуска"
// @Success 200 {object} database.DedupRun
// @Failure 404 {object} ErrorResponse
// @Router /deduplicate/runs/{id} [get]
func (h *DeduplicationHandler) HandleGetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
