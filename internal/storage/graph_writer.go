package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/tsconcepts/internal/graph"
)

// GraphWriter writes projected concept graphs to SQLite.
type GraphWriter struct {
	db     *sql.DB
	ownsDB bool // true if we opened the connection
}

// WriteStats reports what a write stored. SkippedEdges counts edges whose
// source is not a node of the written graph.
type WriteStats struct {
	Nodes        int
	Edges        int
	SkippedEdges int
}

// NewGraphWriter opens the database at dbPath, creating it and its schema
// when missing.
func NewGraphWriter(dbPath string) (*GraphWriter, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GraphWriter{db: db, ownsDB: true}, nil
}

// NewGraphWriterWithDB creates a writer on an existing connection. The
// schema must already exist.
func NewGraphWriterWithDB(db *sql.DB) *GraphWriter {
	return &GraphWriter{db: db}
}

// WriteGraphData replaces the stored graph of the project identified by
// configPath. Everything happens in one transaction.
func (w *GraphWriter) WriteGraphData(rootPath, configPath string, data *graph.GraphData) (WriteStats, error) {
	var stats WriteStats

	tx, err := w.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Nodes and edges go with the project row
	if _, err := sq.Delete("projects").Where(sq.Eq{"config_path": configPath}).RunWith(tx).Exec(); err != nil {
		return stats, fmt.Errorf("failed to clear project: %w", err)
	}

	projectID := uuid.New().String()
	if _, err := sq.Insert("projects").
		Columns("project_id", "config_path", "root_path", "written_at").
		Values(projectID, configPath, rootPath, time.Now().UTC().Format(time.RFC3339)).
		RunWith(tx).Exec(); err != nil {
		return stats, fmt.Errorf("failed to insert project: %w", err)
	}

	known := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if known[n.ID] {
			continue
		}
		known[n.ID] = true
		if _, err := sq.Insert("nodes").
			Columns("node_id", "project_id", "fqn", "local_fqn", "kind", "name", "file_path", "start_line", "end_line").
			Values(uuid.New().String(), projectID, n.ID, n.LocalID, string(n.Kind), n.Name, n.File, n.StartLine, n.EndLine).
			RunWith(tx).Exec(); err != nil {
			return stats, fmt.Errorf("failed to insert node %s: %w", n.ID, err)
		}
		stats.Nodes++
	}

	for _, e := range data.Edges {
		if !known[e.From] {
			stats.SkippedEdges++
			continue
		}
		if _, err := sq.Insert("edges").
			Columns("edge_id", "project_id", "from_fqn", "to_fqn", "edge_type", "cardinality", "name").
			Values(uuid.New().String(), projectID, e.From, e.To, string(e.Type), e.Cardinality, e.Name).
			RunWith(tx).Exec(); err != nil {
			return stats, fmt.Errorf("failed to insert edge %s -> %s: %w", e.From, e.To, err)
		}
		stats.Edges++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stats, nil
}

// Close closes the connection if the writer opened it.
func (w *GraphWriter) Close() error {
	if w.ownsDB && w.db != nil {
		return w.db.Close()
	}
	return nil
}
