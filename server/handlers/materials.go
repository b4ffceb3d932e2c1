package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mdmserver/server/errors"
	"mdmserver/server/services"
)

// maxUploadSize предельный размер загружаемого файла справочника
const maxUploadSize = 64 << 20

// MaterialHandler обработчики справочника МТР
type MaterialHandler struct {
	BaseHandler
	service *services.MaterialService
}

// NewMaterialHandler создает обработчик справочника МТР
func NewMaterialHandler(base BaseHandler, service *services.MaterialService) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service}
}

// HandleImport загружает записи из xlsx или csv
// @Summary Загрузить справочник МТР
// @Description Колонки определяются по заголовку. Строки без наименования и повторные коды пропускаются и перечисляются в отчете.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл xlsx или csv"
// @Success 200 {object} services.ImportReport
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /materials/import [post]
func (h *MaterialHandler) HandleImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleError(c, apperrors.NewTooLargeError("файл слишком большой"))
			return
		}
		h.HandleError(c, apperrors.NewValidationError("файл не передан", err))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, apperrors.NewInternalError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	report, err := h.service.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleList страница записей справочника
// @Summary Список записей МТР
// @Tags materials
// @Produce json
// @Param limit query int false "Размер страницы" default(100)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} services.MaterialPage
// @Failure 400 {object} ErrorResponse
// @Router /materials [get]
func (h *MaterialHandler) HandleList(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := h.queryInt(c, "offset", 0)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// HandleGet запись справочника по коду
// @Summary Запись МТР
// @Tags materials
// @Produce json
// @Param id path string true "Код записи"
// @Success 200 {object} material.Record
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id} [get]
func (h *MaterialHandler) HandleGet(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleDelete удаляет запись справочника
// @Summary Удалить запись МТР
// @Tags materials
// @Param id path string true "Код записи"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /materials/{id} [delete]
func (h *MaterialHandler) HandleDelete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
