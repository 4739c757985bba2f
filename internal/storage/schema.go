// Package storage persists projected concept graphs in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written to graph_metadata on schema creation.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes if they do not exist yet.
// Uses a transaction so that schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"projects", createProjectsTable},
		{"nodes", createNodesTable},
		{"edges", createEdgesTable},
		{"graph_metadata", createGraphMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO graph_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap graph_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the schema version, or "0" for a database
// without schema.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='graph_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check graph_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM graph_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in graph_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
    project_id TEXT PRIMARY KEY,                 -- UUID, regenerated on every write
    config_path TEXT NOT NULL UNIQUE,            -- Absolute tsconfig path, natural key
    root_path TEXT NOT NULL,                     -- Directory local FQNs are relative to
    written_at TEXT NOT NULL                     -- ISO 8601
)
`

const createNodesTable = `
CREATE TABLE IF NOT EXISTS nodes (
    node_id TEXT PRIMARY KEY,                    -- UUID
    project_id TEXT NOT NULL,
    fqn TEXT NOT NULL,                           -- Global FQN
    local_fqn TEXT NOT NULL,                     -- Project-relative FQN
    kind TEXT NOT NULL,                          -- module, class, interface, ...
    name TEXT NOT NULL,
    file_path TEXT NOT NULL DEFAULT '',          -- Empty for external nodes
    start_line INTEGER NOT NULL DEFAULT 0,
    end_line INTEGER NOT NULL DEFAULT 0,
    UNIQUE (project_id, fqn),
    FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
)
`

const createEdgesTable = `
CREATE TABLE IF NOT EXISTS edges (
    edge_id TEXT PRIMARY KEY,                    -- UUID
    project_id TEXT NOT NULL,
    from_fqn TEXT NOT NULL,                      -- Always a node of the project
    to_fqn TEXT NOT NULL,                        -- May lie outside the project
    edge_type TEXT NOT NULL,                     -- DECLARES, DEPENDS_ON, ...
    cardinality INTEGER NOT NULL DEFAULT 0,      -- DEPENDS_ON only
    name TEXT NOT NULL DEFAULT '',               -- EXPORTS only
    FOREIGN KEY (project_id) REFERENCES projects(project_id) ON DELETE CASCADE
)
`

const createGraphMetadataTable = `
CREATE TABLE IF NOT EXISTS graph_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_nodes_fqn ON nodes(fqn)",
		"CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name)",
		"CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind)",
		"CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_fqn, edge_type)",
		"CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_fqn, edge_type)",
		"CREATE INDEX IF NOT EXISTS idx_edges_project ON edges(project_id)",
	}
}
