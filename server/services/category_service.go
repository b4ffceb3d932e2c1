package services

import (
	"context"
	"log/slog"

	"mdmserver/classification"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// CategoryService справочник категорий: чтение и горячая замена
type CategoryService struct {
	engines *EngineHolder
	store   MasterDataStore
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewCategoryService создает сервис справочника категорий
func NewCategoryService(engines *EngineHolder, store MasterDataStore, logger *slog.Logger, metrics *monitoring.Metrics) *CategoryService {
	s := &CategoryService{engines: engines, store: store, logger: logger, metrics: metrics}
	if metrics != nil {
		metrics.CategoriesLoaded.Set(float64(engines.Load().Categories().Len()))
	}
	return s
}

// Current действующий справочник
func (s *CategoryService) Current() *classification.CategoryConfig {
	return &classification.CategoryConfig{
		Categories: s.engines.Load().Categories().Definitions(),
	}
}

// Replace проверяет новый справочник, собирает по нему движок и
// подменяет текущий. При любой ошибке действующий справочник не меняется.
func (s *CategoryService) Replace(ctx context.Context, document []byte) (*classification.CategoryConfig, error) {
	if err := ValidateContext(ctx); err != nil {
		return nil, err
	}

	cfg, err := classification.ParseCategoryConfig(document)
	if err != nil {
		return nil, apperrors.NewValidationError("не удалось разобрать справочник категорий", err)
	}

	next, err := s.engines.Load().WithCategories(cfg.Categories)
	if err != nil {
		return nil, apperrors.FromError(err, "invalid category configuration")
	}

	// Снимок сохраняется в нормализованном виде, чтобы после рестарта
	// загрузился ровно тот справочник, что был принят
	stored, err := cfg.MarshalDocument()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode category configuration", err)
	}
	if err := s.store.SaveCategorySnapshot(ctx, cfg.Version, len(cfg.Categories), stored); err != nil {
		return nil, apperrors.NewInternalError("failed to save category snapshot", err)
	}

	s.engines.Swap(next)
	if s.metrics != nil {
		s.metrics.CategoriesLoaded.Set(float64(next.Categories().Len()))
		s.metrics.CategoryReloads.Inc()
	}
	s.logger.Info("Category configuration replaced",
		"version", cfg.Version,
		"categories", next.Categories().Len(),
	)
	return cfg, nil
}

// RestoreLatest применяет последний сохраненный справочник, если он есть.
// Возвращает false, если снимков нет и остается справочник, с которым стартовал сервер.
func (s *CategoryService) RestoreLatest(ctx context.Context) (bool, error) {
	document, ok, err := s.store.LatestCategorySnapshot(ctx)
	if err != nil || !ok {
		return false, err
	}

	cfg, err := classification.ParseCategoryConfig(document)
	if err != nil {
		return false, err
	}
	next, err := s.engines.Load().WithCategories(cfg.Categories)
	if err != nil {
		return false, err
	}

	s.engines.Swap(next)
	if s.metrics != nil {
		s.metrics.CategoriesLoaded.Set(float64(next.Categories().Len()))
	}
	s.logger.Info("Category configuration restored from snapshot",
		"version", cfg.Version,
		"categories", next.Categories().Len(),
	)
	return true, nil
}
