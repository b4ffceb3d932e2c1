package services

import (
	"context"
	"log/slog"

	"mdmserver/internal/domain/material"
	"mdmserver/matching"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// MatchRequest параметры поиска похожих. Пустые поля заменяются
// значениями из конфигурации движка.
type MatchRequest struct {
	Query      material.Record
	Threshold  *float64
	MaxResults *int
}

// MatchingService поиск похожих записей в справочнике
type MatchingService struct {
	engines *EngineHolder
	store   MasterDataStore
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewMatchingService создает сервис поиска похожих
func NewMatchingService(engines *EngineHolder, store MasterDataStore, logger *slog.Logger, metrics *monitoring.Metrics) *MatchingService {
	return &MatchingService{engines: engines, store: store, logger: logger, metrics: metrics}
}

// FindSimilar ищет похожие записи во всем справочнике
func (s *MatchingService) FindSimilar(ctx context.Context, req MatchRequest) (matching.Outcome, error) {
	if err := ValidateContext(ctx); err != nil {
		return matching.Outcome{}, err
	}
	eng := s.engines.Load()
	cfg := eng.Config()

	threshold := cfg.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	maxResults := cfg.MaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}
	// Ошибки аргументов отдаем до чтения справочника
	if err := material.ValidateThreshold(threshold); err != nil {
		return matching.Outcome{}, apperrors.FromError(err, "invalid threshold")
	}
	if maxResults <= 0 {
		return matching.Outcome{}, apperrors.FromError(material.ErrInvalidMaxResults, "invalid max_results")
	}

	corpus, err := s.store.AllMaterials(ctx)
	if err != nil {
		return matching.Outcome{}, apperrors.NewInternalError("failed to load master data", err)
	}

	out, err := eng.FindSimilar(req.Query, corpus, threshold, maxResults)
	if err != nil {
		return matching.Outcome{}, apperrors.FromError(err, "similarity search failed")
	}
	if s.metrics != nil && !out.Invalid {
		s.metrics.MatchResults.Observe(float64(len(out.Results)))
	}
	return out, nil
}

// ThresholdsReport рекомендованные пороги и статистика справочника
type ThresholdsReport struct {
	Thresholds    matching.Thresholds `json:"thresholds"`
	TotalRecords  int                 `json:"total_records"`
	CategoryStats map[string]int      `json:"category_stats"`
}

// RecommendedThresholds пороги, рассчитанные по распределению оценок в справочнике
func (s *MatchingService) RecommendedThresholds(ctx context.Context, sampleSize int) (ThresholdsReport, error) {
	if err := ValidateContext(ctx); err != nil {
		return ThresholdsReport{}, err
	}
	if sampleSize <= 0 {
		sampleSize = matching.DefaultSampleSize
	}

	corpus, err := s.store.AllMaterials(ctx)
	if err != nil {
		return ThresholdsReport{}, apperrors.NewInternalError("failed to load master data", err)
	}
	idx, err := s.engines.Load().Index(corpus)
	if err != nil {
		return ThresholdsReport{}, apperrors.FromError(err, "failed to index master data")
	}

	return ThresholdsReport{
		Thresholds:    idx.RecommendedThresholds(sampleSize),
		TotalRecords:  idx.Len(),
		CategoryStats: idx.CategoryStats(),
	}, nil
}

// SearchByCategory записи справочника с указанной категорией
func (s *MatchingService) SearchByCategory(ctx context.Context, category string, limit int) ([]material.Record, error) {
	if err := ValidateContext(ctx); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, apperrors.NewValidationError("категория не указана", nil)
	}
	corpus, err := s.store.AllMaterials(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load master data", err)
	}
	idx, err := s.engines.Load().Index(corpus)
	if err != nil {
		return nil, apperrors.FromError(err, "failed to index master data")
	}
	return idx.SearchByCategory(category, limit), nil
}
