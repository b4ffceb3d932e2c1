package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers набор обработчиков API
type Handlers struct {
	Classification *ClassificationHandler
	Matching       *MatchingHandler
	Deduplication  *DeduplicationHandler
	Categories     *CategoryHandler
	Materials      *MaterialHandler
	Health         *HealthHandler
}

// RegisterRoutes регистрирует маршруты API. Промежуточные обработчики из
// apiMiddleware применяются только к группе /api.
func (h *Handlers) RegisterRoutes(router *gin.Engine, metrics http.Handler, apiMiddleware ...gin.HandlerFunc) {
	router.GET("/health", h.Health.HandleHealth)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	api := router.Group("/api", apiMiddleware...)

	api.POST("/classify", h.Classification.HandleClassify)
	api.POST("/classify/batch", h.Classification.HandleBatchClassify)

	match := api.Group("/match")
	{
		match.POST("", h.Matching.HandleMatch)
		match.GET("/thresholds", h.Matching.HandleThresholds)
		match.GET("/category", h.Matching.HandleSearchByCategory)
	}

	dedup := api.Group("/deduplicate")
	{
		dedup.POST("", h.Deduplication.HandleDeduplicate)
		dedup.GET("/export", h.Deduplication.HandleExport)
		dedup.GET("/runs/:id", h.Deduplication.HandleGetRun)
	}

	api.GET("/categories", h.Categories.HandleGetCategories)
	api.PUT("/categories", h.Categories.HandleReplaceCategories)

	materials := api.Group("/materials")
	{
		materials.GET("", h.Materials.HandleList)
		materials.POST("/import", h.Materials.HandleImport)
		materials.GET("/:id", h.Materials.HandleGet)
		materials.DELETE("/:id", h.Materials.HandleDelete)
	}
}
