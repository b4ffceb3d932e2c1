package services

import (
	"context"

	"mdmserver/database"
	"mdmserver/internal/domain/material"
)

// MasterDataStore хранилище справочника, с которым работают сервисы.
// Реализуется database.MasterDataDB.
type MasterDataStore interface {
	Ping(ctx context.Context) error
	UpsertMaterials(ctx context.Context, records []material.Record, batchID string) (string, error)
	ListMaterials(ctx context.Context, limit, offset int) ([]material.Record, int, error)
	AllMaterials(ctx context.Context) ([]material.Record, error)
	GetMaterial(ctx context.Context, id string) (material.Record, error)
	DeleteMaterial(ctx context.Context, id string) error
	SaveCategorySnapshot(ctx context.Context, version string, count int, document []byte) error
	LatestCategorySnapshot(ctx context.Context) ([]byte, bool, error)
	SaveDedupRun(ctx context.Context, threshold float64, records int, clusters []material.DedupCluster) (string, error)
	GetDedupRun(ctx context.Context, id string) (*database.DedupRun, error)
}

var _ MasterDataStore = (*database.MasterDataDB)(nil)
