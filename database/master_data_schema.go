package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованная миграция схемы, применяется ровно один раз
type migration struct {
	name  string
	apply func(*sql.DB) error
}

var masterDataMigrations = []migration{
	{name: "001_materials", apply: createMaterialsTable},
	{name: "002_category_snapshots", apply: createCategorySnapshotsTable},
	{name: "003_dedup_runs", apply: createDedupRunsTable},
}

// InitMasterDataSchema применяет недостающие миграции справочника МТР
func InitMasterDataSchema(db *sql.DB) error {
	if err := ensureMigrationTable(db); err != nil {
		return err
	}
	for _, m := range masterDataMigrations {
		if err := ensureMigrationApplied(db, m.name, m.apply); err != nil {
			return err
		}
	}
	return nil
}

func createMaterialsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS materials (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			spec TEXT NOT NULL DEFAULT '',
			manufacturer TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			import_batch TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_materials_category ON materials(category);
	`)
	if err != nil {
		return fmt.Errorf("failed to create materials table: %w", err)
	}
	return nil
}

func createCategorySnapshotsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS category_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version TEXT NOT NULL DEFAULT '',
			categories_count INTEGER NOT NULL,
			document BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create category_snapshots table: %w", err)
	}
	return nil
}

func createDedupRunsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS dedup_runs (
			id TEXT PRIMARY KEY,
			threshold REAL NOT NULL,
			records_count INTEGER NOT NULL,
			clusters_count INTEGER NOT NULL,
			duplicate_clusters INTEGER NOT NULL,
			clusters_json BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create dedup_runs table: %w", err)
	}
	return nil
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// ensureMigrationApplied выполняет миграцию только один раз.
func ensureMigrationApplied(db *sql.DB, name string, apply func(*sql.DB) error) error {
	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRow(query, name).Scan(&appliedAt)
	switch {
	case err == nil && appliedAt.Valid:
		return nil
	case err != nil && err != sql.ErrNoRows:
		return fmt.Errorf("failed to check migration %s: %w", name, err)
	}

	if err := apply(db); err != nil {
		return err
	}

	query = fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := db.Exec(query, name, time.Now()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}

	log.Printf("[Migrations] %s applied successfully", name)
	return nil
}
