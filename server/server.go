package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"mdmserver/classification"
	"mdmserver/database"
	"mdmserver/engine"
	"mdmserver/internal/config"
	"mdmserver/server/handlers"
	"mdmserver/server/middleware"
	"mdmserver/server/monitoring"
	"mdmserver/server/services"
)

// Version версия сервера в ответе /health
const Version = "1.0.0"

// Server HTTP сервер справочника МТР
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	db         *database.MasterDataDB
	engines    *services.EngineHolder
	metrics    *monitoring.Metrics
	health     *monitoring.HealthChecker
	handler    http.Handler
	httpServer *http.Server
}

// New собирает сервер: база, справочник категорий, движок, сервисы и маршруты
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := database.NewMasterDataDBWithConfig(cfg.DatabasePath, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open master data database: %w", err)
	}

	categories, err := loadCategories(cfg.CategoryConfigPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	start := time.Now()
	eng, err := engine.New(categories.Categories, cfg.EngineConfig(), engine.WithLogger(logger))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	LogDuration(ctx, logger, "engine_build", time.Since(start), "categories", eng.Categories().Len())

	s := &Server{
		config:  cfg,
		logger:  logger,
		db:      db,
		engines: services.NewEngineHolder(eng),
		metrics: monitoring.NewMetrics(),
		health:  monitoring.NewHealthChecker(Version),
	}

	categoryService := services.NewCategoryService(s.engines, db, logger, s.metrics)
	// Справочник, принятый через API, важнее файла конфигурации
	if restored, err := categoryService.RestoreLatest(ctx); err != nil {
		logger.Warn("Failed to restore category snapshot, using startup categories", "error", err)
	} else if restored {
		logger.Info("Category snapshot restored", "categories", s.engines.Load().Categories().Len())
	}

	if _, total, err := db.ListMaterials(ctx, 1, 0); err == nil {
		s.metrics.MaterialsStored.Set(float64(total))
	}

	s.health.RegisterComponent("database", true, monitoring.PingCheck("database", db.Ping))
	s.health.RegisterComponent("engine", true, func(ctx context.Context) monitoring.ComponentHealth {
		h := monitoring.ComponentHealth{Name: "engine", Status: monitoring.HealthStatusHealthy, Timestamp: time.Now()}
		if s.engines.Load().Categories().Len() == 0 {
			h.Status = monitoring.HealthStatusUnhealthy
			h.Message = "no categories loaded"
		}
		return h
	})

	s.handler = s.buildHandler(categoryService)
	return s, nil
}

func loadCategories(path string) (*classification.CategoryConfig, error) {
	if path == "" {
		return classification.DefaultCategoryConfig()
	}
	cfg, err := classification.LoadCategoryConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories from %s: %w", path, err)
	}
	return cfg, nil
}

func (s *Server) buildHandler(categoryService *services.CategoryService) http.Handler {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	responder := middleware.NewErrorResponder(s.logger, s.metrics)
	base := handlers.NewBaseHandler(responder, s.logger)

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinRecoveryMiddleware(s.logger, responder))
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger, s.metrics))

	handlers.RegisterSwaggerRoutes(router, "")

	var apiMiddleware []gin.HandlerFunc
	if s.config.RateLimitRPS > 0 {
		apiMiddleware = append(apiMiddleware, middleware.GinRateLimitMiddleware(s.config.RateLimitRPS, s.config.RateLimitBurst, responder))
	}

	h := &handlers.Handlers{
		Classification: handlers.NewClassificationHandler(base,
			services.NewClassificationService(s.engines, s.config.BatchWorkers, s.logger, s.metrics)),
		Matching: handlers.NewMatchingHandler(base,
			services.NewMatchingService(s.engines, s.db, s.logger, s.metrics)),
		Deduplication: handlers.NewDeduplicationHandler(base,
			services.NewDeduplicationService(s.engines, s.db, s.logger, s.metrics)),
		Categories: handlers.NewCategoryHandler(base, categoryService),
		Materials: handlers.NewMaterialHandler(base,
			services.NewMaterialService(s.db, s.logger, s.metrics)),
		Health: handlers.NewHealthHandler(s.health),
	}
	h.RegisterRoutes(router, s.metrics.Handler(), apiMiddleware...)
	return router
}

// Handler HTTP обработчик сервера
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start запускает HTTP сервер и блокируется до остановки
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // выгрузка дубликатов по большому справочнику
		IdleTimeout:  120 * time.Second,
	}

	s.health.LogHealthStatus(context.Background(), s.logger)
	s.logger.Info("Server starting", "addr", s.httpServer.Addr, "version", Version)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает прием запросов, дожидается текущих и закрывает базу
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}
