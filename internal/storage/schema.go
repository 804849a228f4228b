package storage

import (
	"database/sql"
	"fmt"
)

// bootstrap creates every table and index the engine needs if they are
// not already present. It never drops or alters existing tables —
// column additions are handled by runMigrations.
func bootstrap(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			chunk_type TEXT NOT NULL,
			file_path TEXT,
			entity_name TEXT,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL UNIQUE,
			metadata TEXT,
			snapshot_id INTEGER,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_project ON chunks(project)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_type ON chunks(chunk_type)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_entity ON chunks(entity_name)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_snapshot ON chunks(snapshot_id)`,

		`CREATE TABLE IF NOT EXISTS chunk_relationships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_chunk_id INTEGER NOT NULL,
			to_chunk_id INTEGER NOT NULL,
			relationship_type TEXT NOT NULL,
			metadata TEXT,
			FOREIGN KEY (from_chunk_id) REFERENCES chunks(id) ON DELETE CASCADE,
			FOREIGN KEY (to_chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_from ON chunk_relationships(from_chunk_id)`,
		`CREATE INDEX IF NOT EXISTS idx_relationships_to ON chunk_relationships(to_chunk_id)`,

		`CREATE TABLE IF NOT EXISTS business_rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			entity TEXT NOT NULL,
			file TEXT,
			rule_description TEXT NOT NULL DEFAULT '',
			ai_interpretation TEXT NOT NULL DEFAULT '',
			user_correction TEXT,
			is_validated INTEGER NOT NULL DEFAULT 0,
			validation_date TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_business_rules_project ON business_rules(project)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			snapshot_type TEXT NOT NULL,
			parent_snapshot_id INTEGER,
			user_message TEXT,
			changed_files TEXT NOT NULL DEFAULT '[]',
			diff_summary TEXT,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (parent_snapshot_id) REFERENCES snapshots(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_project ON snapshots(project)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_type ON snapshots(snapshot_type)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_parent ON snapshots(parent_snapshot_id)`,

		`CREATE TABLE IF NOT EXISTS error_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			snapshot_id INTEGER,
			file TEXT,
			entity TEXT,
			error_type TEXT NOT NULL,
			message TEXT NOT NULL,
			stacktrace TEXT,
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			first_seen TIMESTAMP NOT NULL,
			last_seen TIMESTAMP NOT NULL,
			is_resolved INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_error_logs_project ON error_logs(project)`,
		`CREATE INDEX IF NOT EXISTS idx_error_logs_dedup ON error_logs(project, error_type, message, is_resolved)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}

	return nil
}
