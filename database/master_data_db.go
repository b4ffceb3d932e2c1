package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"mdmserver/internal/domain/material"
)

// ErrMaterialNotFound запись справочника не найдена
var ErrMaterialNotFound = errors.New("material not found")

// ErrDedupRunNotFound запуск дедупликации не найден
var ErrDedupRunNotFound = errors.New("dedup run not found")

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MasterDataDB хранилище справочника МТР: записи, снимки справочника
// категорий и результаты дедупликации. Движок сам ничего не хранит,
// хранилище вызывается только внешним слоем.
type MasterDataDB struct {
	conn *sql.DB
}

// NewMasterDataDB открывает базу с настройками по умолчанию
func NewMasterDataDB(dbPath string) (*MasterDataDB, error) {
	return NewMasterDataDBWithConfig(dbPath, DBConfig{})
}

// isInMemory определяет, что путь относится к in-memory SQLite
func isInMemory(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	// Формат file:memdb?mode=memory&cache=shared также хранит БД в памяти
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// NewMasterDataDBWithConfig открывает базу и применяет миграции
func NewMasterDataDBWithConfig(dbPath string, config DBConfig) (*MasterDataDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open master data database: %w", err)
	}

	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получит пустую БД
	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	// Настройка connection pooling
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping master data database: %w", err)
	}

	// WAL позволяет множественным читателям работать одновременно без блокировок
	if !isInMemory(dbPath) {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("[MasterDataDB] Warning: Failed to enable WAL mode: %v", err)
		}
	}

	if err := InitMasterDataSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize master data schema: %w", err)
	}

	return &MasterDataDB{conn: conn}, nil
}

// Close закрывает подключение
func (db *MasterDataDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *MasterDataDB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// UpsertMaterials сохраняет записи одной транзакцией. Существующие записи с
// тем же ID перезаписываются. Пустой batchID заменяется новым, итоговый
// идентификатор пакета возвращается.
func (db *MasterDataDB) UpsertMaterials(ctx context.Context, records []material.Record, batchID string) (string, error) {
	if err := material.ValidateCorpus(records); err != nil {
		return "", err
	}
	if batchID == "" {
		batchID = uuid.New().String()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO materials (id, name, spec, manufacturer, unit, category, import_batch, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			spec = excluded.spec,
			manufacturer = excluded.manufacturer,
			unit = excluded.unit,
			category = excluded.category,
			import_batch = excluded.import_batch,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.Spec, r.Manufacturer, r.Unit, r.Category, batchID); err != nil {
			return "", fmt.Errorf("failed to upsert material %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit materials: %w", err)
	}
	return batchID, nil
}

const materialColumns = `id, name, spec, manufacturer, unit, category`

func scanMaterial(row interface{ Scan(...interface{}) error }) (material.Record, error) {
	var r material.Record
	err := row.Scan(&r.ID, &r.Name, &r.Spec, &r.Manufacturer, &r.Unit, &r.Category)
	return r, err
}

// GetMaterial запись по ID
func (db *MasterDataDB) GetMaterial(ctx context.Context, id string) (material.Record, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ?`, id)
	r, err := scanMaterial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return material.Record{}, fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
	}
	if err != nil {
		return material.Record{}, fmt.Errorf("failed to get material %s: %w", id, err)
	}
	return r, nil
}

// ListMaterials страница записей в порядке ID и общее количество
func (db *MasterDataDB) ListMaterials(ctx context.Context, limit, offset int) ([]material.Record, int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM materials`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count materials: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	records, err := db.queryMaterials(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// AllMaterials весь справочник в порядке ID, корпус для поиска похожих
func (db *MasterDataDB) AllMaterials(ctx context.Context) ([]material.Record, error) {
	return db.queryMaterials(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY id`)
}

func (db *MasterDataDB) queryMaterials(ctx context.Context, query string, args ...interface{}) ([]material.Record, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	records := []material.Record{}
	for rows.Next() {
		r, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteMaterial удаляет запись
func (db *MasterDataDB) DeleteMaterial(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete material %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrMaterialNotFound, id)
	}
	return nil
}

// SaveCategorySnapshot сохраняет применённый справочник категорий
func (db *MasterDataDB) SaveCategorySnapshot(ctx context.Context, version string, count int, document []byte) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO category_snapshots (version, categories_count, document) VALUES (?, ?, ?)`,
		version, count, document)
	if err != nil {
		return fmt.Errorf("failed to save category snapshot: %w", err)
	}
	return nil
}

// LatestCategorySnapshot последний сохранённый справочник. ok = false, если снимков нет.
func (db *MasterDataDB) LatestCategorySnapshot(ctx context.Context) (document []byte, ok bool, err error) {
	err = db.conn.QueryRowContext(ctx,
		`SELECT document FROM category_snapshots ORDER BY id DESC LIMIT 1`).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load category snapshot: %w", err)
	}
	return document, true, nil
}

// DedupRun сохранённый результат дедупликации
type DedupRun struct {
	ID                string                  `json:"id"`
	Threshold         float64                 `json:"threshold"`
	RecordsCount      int                     `json:"records_count"`
	ClustersCount     int                     `json:"clusters_count"`
	DuplicateClusters int                     `json:"duplicate_clusters"`
	Clusters          []material.DedupCluster `json:"clusters,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// SaveDedupRun сохраняет кластеры запуска и возвращает его ID
func (db *MasterDataDB) SaveDedupRun(ctx context.Context, threshold float64, records int, clusters []material.DedupCluster) (string, error) {
	payload, err := json.Marshal(clusters)
	if err != nil {
		return "", fmt.Errorf("failed to marshal clusters: %w", err)
	}

	duplicates := 0
	for _, c := range clusters {
		if !c.IsSingleton() {
			duplicates++
		}
	}

	id := uuid.New().String()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO dedup_runs (id, threshold, records_count, clusters_count, duplicate_clusters, clusters_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, threshold, records, len(clusters), duplicates, payload)
	if err != nil {
		return "", fmt.Errorf("failed to save dedup run: %w", err)
	}
	return id, nil
}

// GetDedupRun запуск дедупликации с кластерами
func (db *MasterDataDB) GetDedupRun(ctx context.Context, id string) (*DedupRun, error) {
	var run DedupRun
	var payload []byte
	var createdAt sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, threshold, records_count, clusters_count, duplicate_clusters, clusters_json, created_at
		FROM dedup_runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Threshold, &run.RecordsCount, &run.ClustersCount, &run.DuplicateClusters, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDedupRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dedup run %s: %w", id, err)
	}
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	if err := json.Unmarshal(payload, &run.Clusters); err != nil {
		return nil, fmt.Errorf("failed to decode clusters of run %s: %w", id, err)
	}
	return &run, nil
}
