package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"mdmserver/classification"
	"mdmserver/internal/domain/material"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// MaxBatchSize максимальное число записей в одном запросе пакетной классификации
const MaxBatchSize = 10000

// ClassificationService сервис для классификации записей
type ClassificationService struct {
	engines *EngineHolder
	workers int
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewClassificationService создает новый сервис классификации
func NewClassificationService(engines *EngineHolder, workers int, logger *slog.Logger, metrics *monitoring.Metrics) *ClassificationService {
	if workers < 1 {
		workers = 1
	}
	return &ClassificationService{
		engines: engines,
		workers: workers,
		logger:  logger,
		metrics: metrics,
	}
}

// Classify рекомендует категории для одной записи
func (s *ClassificationService) Classify(ctx context.Context, rec material.Record) (classification.Outcome, error) {
	if err := ValidateContext(ctx); err != nil {
		return classification.Outcome{}, err
	}
	out := s.engines.Load().Classify(rec)
	s.observe(out)
	return out, nil
}

// BatchClassify классифицирует пакет параллельно. Порядок результатов
// совпадает с порядком записей и не зависит от числа воркеров.
func (s *ClassificationService) BatchClassify(ctx context.Context, records []material.Record) ([]classification.Outcome, error) {
	if err := ValidateContext(ctx); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []classification.Outcome{}, nil
	}
	if len(records) > MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("пакет слишком большой: %d записей, максимум %d", len(records), MaxBatchSize), nil)
	}

	start := time.Now()
	// Один движок на весь пакет, даже если справочник перезагрузят посреди обработки
	eng := s.engines.Load()
	results := make([]classification.Outcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = eng.Classify(records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError("batch classification interrupted", err)
	}

	for _, out := range results {
		s.observe(out)
	}
	if s.metrics != nil {
		s.metrics.BatchSize.Observe(float64(len(records)))
	}
	s.logger.Info("Batch classified",
		"records", len(records),
		"workers", s.workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (s *ClassificationService) observe(out classification.Outcome) {
	if s.metrics == nil {
		return
	}
	outcome := "classified"
	switch {
	case out.Invalid:
		outcome = "invalid"
	case len(out.Categories) == 0:
		outcome = "unclassified"
	}
	s.metrics.ClassifiedTotal.WithLabelValues(outcome).Inc()
}
