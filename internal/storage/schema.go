package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createFlowsTable(tx); err != nil {
			return err
		}
		if err := createAnnotationsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Run migrations sequentially as the schema evolves.

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func createFlowsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS flows (
			name TEXT PRIMARY KEY,
			declared_cross INTEGER NOT NULL DEFAULT 0,
			is_cross INTEGER NOT NULL DEFAULT 0,
			exported_at TEXT NOT NULL
		)
	`)
	return err
}

func createAnnotationsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS annotations (
			id TEXT PRIMARY KEY,
			flow_name TEXT NOT NULL REFERENCES flows(name) ON DELETE CASCADE,
			repo_id TEXT NOT NULL,
			path TEXT NOT NULL,
			commit_hash TEXT NOT NULL,
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			tagless_line INTEGER NOT NULL,
			context_before TEXT NOT NULL,
			context_line TEXT NOT NULL,
			context_after TEXT NOT NULL,
			symbol_path TEXT NOT NULL DEFAULT '',
			node_type TEXT NOT NULL DEFAULT '',
			current_node TEXT NOT NULL,
			next_node TEXT NOT NULL,
			cross_declared INTEGER NOT NULL DEFAULT 0,
			raw_comment TEXT NOT NULL,
			position INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_annotations_flow
		ON annotations(flow_name, position)
	`)
	return err
}
