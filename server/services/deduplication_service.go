package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"mdmserver/database"
	"mdmserver/deduplication"
	"mdmserver/internal/domain/material"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// DedupReport результат дедупликации пакета
type DedupReport struct {
	RunID    string                  `json:"run_id,omitempty"`
	Clusters []material.DedupCluster `json:"clusters"`
	Summary  deduplication.Summary   `json:"summary"`
}

// DeduplicationService поиск дубликатов в пакете или во всем справочнике
type DeduplicationService struct {
	engines *EngineHolder
	store   MasterDataStore
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewDeduplicationService создает сервис дедупликации
func NewDeduplicationService(engines *EngineHolder, store MasterDataStore, logger *slog.Logger, metrics *monitoring.Metrics) *DeduplicationService {
	return &DeduplicationService{engines: engines, store: store, logger: logger, metrics: metrics}
}

// Deduplicate группирует записи в кластеры. Без записей обрабатывается
// весь справочник, и результат такого запуска сохраняется.
func (s *DeduplicationService) Deduplicate(ctx context.Context, records []material.Record, threshold *float64) (DedupReport, []material.Record, error) {
	if err := ValidateContext(ctx); err != nil {
		return DedupReport{}, nil, err
	}
	eng := s.engines.Load()

	t := eng.Config().DefaultThreshold
	if threshold != nil {
		t = *threshold
	}
	if err := material.ValidateThreshold(t); err != nil {
		return DedupReport{}, nil, apperrors.FromError(err, "invalid threshold")
	}

	fromStore := records == nil
	if fromStore {
		var err error
		records, err = s.store.AllMaterials(ctx)
		if err != nil {
			return DedupReport{}, nil, apperrors.NewInternalError("failed to load master data", err)
		}
	}

	start := time.Now()
	clusters, err := eng.Deduplicate(records, t)
	if err != nil {
		return DedupReport{}, nil, apperrors.FromError(err, "deduplication failed")
	}

	report := DedupReport{Clusters: clusters, Summary: deduplication.Summarize(clusters)}
	if fromStore {
		report.RunID, err = s.store.SaveDedupRun(ctx, t, len(records), clusters)
		if err != nil {
			return DedupReport{}, nil, apperrors.NewInternalError("failed to save dedup run", err)
		}
	}

	if s.metrics != nil {
		for _, c := range clusters {
			if !c.IsSingleton() {
				s.metrics.DedupClusters.WithLabelValues(string(c.ConfidenceLevel)).Inc()
			}
		}
	}
	s.logger.Info("Deduplication completed",
		"records", len(records),
		"clusters", report.Summary.TotalClusters,
		"duplicate_clusters", report.Summary.DuplicateClusters,
		"threshold", t,
		"run_id", report.RunID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, records, nil
}

// Export дедуплицирует справочник и выгружает кластеры в выбранном формате
func (s *DeduplicationService) Export(ctx context.Context, w io.Writer, format deduplication.ExportFormat, threshold *float64) error {
	report, records, err := s.Deduplicate(ctx, nil, threshold)
	if err != nil {
		return err
	}
	if err := deduplication.Export(w, format, report.Clusters, records); err != nil {
		return apperrors.NewInternalError("failed to export clusters", err)
	}
	return nil
}

// GetRun сохраненный запуск дедупликации
func (s *DeduplicationService) GetRun(ctx context.Context, id string) (*database.DedupRun, error) {
	if err := ValidateContext(ctx); err != nil {
		return nil, err
	}
	run, err := s.store.GetDedupRun(ctx, id)
	if err != nil {
		return nil, apperrors.FromError(err, "failed to load dedup run")
	}
	return run, nil
}
