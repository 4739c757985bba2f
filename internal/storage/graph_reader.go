package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/tsconcepts/internal/graph"
)

// ErrProjectNotFound is returned when no graph is stored for a project.
var ErrProjectNotFound = errors.New("project not found")

// GraphReader reads stored concept graphs.
type GraphReader struct {
	db     *sql.DB
	ownsDB bool
}

// ProjectRow is a stored project.
type ProjectRow struct {
	ConfigPath string
	RootPath   string
	WrittenAt  time.Time
}

// Dependency is one DEPENDS_ON edge as seen from the queried declaration.
type Dependency struct {
	From        string
	To          string
	Cardinality int
	Project     string // config path of the project that stored the edge
}

// NewGraphReader opens the database at dbPath read-only.
func NewGraphReader(dbPath string) (*GraphReader, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &GraphReader{db: db, ownsDB: true}, nil
}

// NewGraphReaderWithDB creates a reader on an existing connection.
func NewGraphReaderWithDB(db *sql.DB) *GraphReader {
	return &GraphReader{db: db}
}

// Projects lists the stored projects ordered by config path.
func (r *GraphReader) Projects() ([]ProjectRow, error) {
	rows, err := sq.Select("config_path", "root_path", "written_at").
		From("projects").
		OrderBy("config_path").
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectRow
	for rows.Next() {
		var p ProjectRow
		var written string
		if err := rows.Scan(&p.ConfigPath, &p.RootPath, &written); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.WrittenAt, _ = time.Parse(time.RFC3339, written)
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindNodes returns the nodes whose name, global FQN or local FQN equals
// query.
func (r *GraphReader) FindNodes(query string) ([]graph.Node, error) {
	rows, err := sq.Select("fqn", "local_fqn", "kind", "name", "file_path", "start_line", "end_line").
		From("nodes").
		Where(sq.Or{sq.Eq{"name": query}, sq.Eq{"fqn": query}, sq.Eq{"local_fqn": query}}).
		OrderBy("fqn").
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// Dependencies returns the DEPENDS_ON edges leaving fqn, or reaching it when
// incoming is set, most used first.
func (r *GraphReader) Dependencies(fqn string, incoming bool) ([]Dependency, error) {
	column := "e.from_fqn"
	if incoming {
		column = "e.to_fqn"
	}
	rows, err := sq.Select("e.from_fqn", "e.to_fqn", "e.cardinality", "p.config_path").
		From("edges e").
		Join("projects p ON p.project_id = e.project_id").
		Where(sq.Eq{column: fqn, "e.edge_type": string(graph.EdgeDependsOn)}).
		OrderBy("e.cardinality DESC", "e.from_fqn", "e.to_fqn").
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer rows.Close()

	var out []Dependency
	for rows.Next() {
		var d Dependency
		if err := rows.Scan(&d.From, &d.To, &d.Cardinality, &d.Project); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReadGraphData loads the stored graph of the project identified by
// configPath.
func (r *GraphReader) ReadGraphData(configPath string) (*graph.GraphData, error) {
	var projectID, written string
	err := sq.Select("project_id", "written_at").
		From("projects").
		Where(sq.Eq{"config_path": configPath}).
		RunWith(r.db).QueryRow().Scan(&projectID, &written)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", configPath, ErrProjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	nodeRows, err := sq.Select("fqn", "local_fqn", "kind", "name", "file_path", "start_line", "end_line").
		From("nodes").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("fqn").
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	nodes, err := scanNodes(nodeRows)
	nodeRows.Close()
	if err != nil {
		return nil, err
	}

	edgeRows, err := sq.Select("from_fqn", "to_fqn", "edge_type", "cardinality", "name").
		From("edges").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("from_fqn", "edge_type", "to_fqn").
		RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []graph.Edge
	for edgeRows.Next() {
		var e graph.Edge
		var typ string
		if err := edgeRows.Scan(&e.From, &e.To, &typ, &e.Cardinality, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Type = graph.EdgeType(typ)
		edges = append(edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	generated, _ := time.Parse(time.RFC3339, written)
	return &graph.GraphData{
		Metadata: graph.GraphMetadata{
			Project:     configPath,
			GeneratedAt: generated,
			NodeCount:   len(nodes),
			EdgeCount:   len(edges),
		},
		Nodes: nodes,
		Edges: edges,
	}, nil
}

// Close closes the connection if the reader opened it.
func (r *GraphReader) Close() error {
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

func scanNodes(rows *sql.Rows) ([]graph.Node, error) {
	var out []graph.Node
	for rows.Next() {
		var n graph.Node
		var kind string
		if err := rows.Scan(&n.ID, &n.LocalID, &kind, &n.Name, &n.File, &n.StartLine, &n.EndLine); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Kind = graph.NodeKind(kind)
		out = append(out, n)
	}
	return out, rows.Err()
}
