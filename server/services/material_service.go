package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"mdmserver/importer"
	"mdmserver/internal/domain/material"
	apperrors "mdmserver/server/errors"
	"mdmserver/server/monitoring"
)

// ImportReport результат загрузки файла в справочник
type ImportReport struct {
	BatchID  string                 `json:"batch_id"`
	Imported int                    `json:"imported"`
	Skipped  []importer.RowIssue    `json:"skipped,omitempty"`
	Mapping  importer.ColumnMapping `json:"mapping"`
	Total    int                    `json:"total"`
}

// MaterialPage страница записей справочника
type MaterialPage struct {
	Records []material.Record `json:"records"`
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}

// MaterialService загрузка и просмотр справочника МТР
type MaterialService struct {
	store   MasterDataStore
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewMaterialService создает сервис справочника
func NewMaterialService(store MasterDataStore, logger *slog.Logger, metrics *monitoring.Metrics) *MaterialService {
	return &MaterialService{store: store, logger: logger, metrics: metrics}
}

// Import разбирает xlsx или csv файл и сохраняет записи.
// Строки без наименования и повторные коды пропускаются и попадают в отчет.
func (s *MaterialService) Import(ctx context.Context, filename string, r io.Reader) (ImportReport, error) {
	if err := ValidateContext(ctx); err != nil {
		return ImportReport{}, err
	}

	var (
		parsed *importer.MaterialsImport
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		parsed, err = importer.ParseMaterialsExcel(r)
	case ".csv":
		parsed, err = importer.ParseMaterialsCSV(r)
	default:
		return ImportReport{}, apperrors.NewValidationError(
			fmt.Sprintf("неподдерживаемый формат файла %q, ожидается .xlsx или .csv", ext), nil)
	}
	if err != nil {
		return ImportReport{}, apperrors.FromError(err, "не удалось разобрать файл")
	}
	if len(parsed.Records) == 0 {
		return ImportReport{}, apperrors.NewValidationError("в файле нет записей с наименованием", nil)
	}

	if _, err := s.store.UpsertMaterials(ctx, parsed.Records, parsed.BatchID); err != nil {
		return ImportReport{}, apperrors.FromError(err, "failed to store materials")
	}
	_, total, err := s.store.ListMaterials(ctx, 1, 0)
	if err != nil {
		return ImportReport{}, apperrors.NewInternalError("failed to count materials", err)
	}
	if s.metrics != nil {
		s.metrics.MaterialsStored.Set(float64(total))
	}

	s.logger.Info("Materials imported",
		"file", filename,
		"batch_id", parsed.BatchID,
		"imported", len(parsed.Records),
		"skipped", len(parsed.Skipped),
		"total", total,
	)
	return ImportReport{
		BatchID:  parsed.BatchID,
		Imported: len(parsed.Records),
		Skipped:  parsed.Skipped,
		Mapping:  parsed.Mapping,
		Total:    total,
	}, nil
}

// List страница справочника в порядке ID
func (s *MaterialService) List(ctx context.Context, limit, offset int) (MaterialPage, error) {
	if err := ValidateContext(ctx); err != nil {
		return MaterialPage{}, err
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	records, total, err := s.store.ListMaterials(ctx, limit, offset)
	if err != nil {
		return MaterialPage{}, apperrors.NewInternalError("failed to list materials", err)
	}
	return MaterialPage{Records: records, Total: total, Limit: limit, Offset: offset}, nil
}

// Get запись справочника
func (s *MaterialService) Get(ctx context.Context, id string) (material.Record, error) {
	rec, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return material.Record{}, apperrors.FromError(err, "failed to get material")
	}
	return rec, nil
}

// Delete удаляет запись справочника
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteMaterial(ctx, id); err != nil {
		return apperrors.FromError(err, "failed to delete material")
	}
	s.logger.Info("Material deleted", "id", id)
	return nil
}
