package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "mdmserver/server/errors"
	"mdmserver/server/services"
)

// maxCategoryDocument предельный размер загружаемого справочника категорий
const maxCategoryDocument = 4 << 20

// CategoryHandler обработчики справочника категорий
type CategoryHandler struct {
	BaseHandler
	service *services.CategoryService
}

// NewCategoryHandler создает обработчик справочника категорий
func NewCategoryHandler(base BaseHandler, service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

// HandleGetCategories действующий справочник категорий
// @Summary Справочник категорий
// @Tags categories
// @Produce json
// @Success 200 {object} classification.CategoryConfig
// @Router /categories [get]
func (h *CategoryHandler) HandleGetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Current())
}

// HandleReplaceCategories заменяет справочник категорий
// @Summary Заменить справочник категорий
// @Description Принимает документ YAML или JSON. Некорректный справочник отклоняется целиком, действующий остается без изменений.
// @Tags categories
// @Accept application/x-yaml
// @Accept json
// @Produce json
// @Param request body classification.CategoryConfig true "Справочник"
// @Success 200 {object} classification.CategoryConfig
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /categories [put]
func (h *CategoryHandler) HandleReplaceCategories(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCategoryDocument+1))
	if err != nil {
		h.HandleError(c, apperrors.NewValidationError("не удалось прочитать тело запроса", err))
		return
	}
	if len(body) > maxCategoryDocument {
		h.HandleError(c, apperrors.NewTooLargeError("справочник категорий слишком большой"))
		return
	}

	cfg, err := h.service.Replace(c.Request.Context(), body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
