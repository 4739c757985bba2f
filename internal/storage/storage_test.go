package storage

// Test Plan for graph storage:
// - CreateSchema is idempotent and records the schema version
// - WriteGraphData stores nodes and edges and skips edges without a known source
// - Rewriting a project replaces its previous graph
// - Dependencies lists outgoing and incoming DEPENDS_ON edges by cardinality
// - FindNodes matches by name, global FQN and local FQN
// - ReadGraphData returns ErrProjectNotFound for unknown projects
// - NewGraphWriter and NewGraphReader round trip through a file

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/graph"
)

const (
	testRoot   = "/proj"
	testConfig = "/proj/tsconfig.json"
)

func sampleGraph() *graph.GraphData {
	return &graph.GraphData{
		Nodes: []graph.Node{
			{ID: `"/proj/a.ts"`, LocalID: `"./a.ts"`, Kind: graph.NodeModule, Name: "./a.ts", File: "a.ts"},
			{ID: `"/proj/a.ts".A`, LocalID: `"./a.ts".A`, Kind: graph.NodeClass, Name: "A", File: "a.ts", StartLine: 1, EndLine: 3},
			{ID: `"/proj/a.ts".B`, LocalID: `"./a.ts".B`, Kind: graph.NodeClass, Name: "B", File: "a.ts", StartLine: 5, EndLine: 9},
			{ID: `"/proj/a.ts".helper`, LocalID: `"./a.ts".helper`, Kind: graph.NodeFunction, Name: "helper", File: "a.ts", StartLine: 11, EndLine: 11},
		},
		Edges: []graph.Edge{
			{From: `"/proj/a.ts"`, To: `"/proj/a.ts".A`, Type: graph.EdgeDeclares},
			{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".A`, Type: graph.EdgeExtends},
			{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".A`, Type: graph.EdgeDependsOn, Cardinality: 1},
			{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".helper`, Type: graph.EdgeDependsOn, Cardinality: 3},
			{From: `"/proj/a.ts".helper`, To: `"lodash".map`, Type: graph.EdgeDependsOn, Cardinality: 2},
			{From: `"/elsewhere.ts".X`, To: `"/proj/a.ts".A`, Type: graph.EdgeDependsOn, Cardinality: 1},
		},
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	require.NoError(t, CreateSchema(db))

	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestWriteGraphData(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewGraphWriterWithDB(db)

	stats, err := w.WriteGraphData(testRoot, testConfig, sampleGraph())
	require.NoError(t, err)
	assert.Equal(t, WriteStats{Nodes: 4, Edges: 5, SkippedEdges: 1}, stats)

	r := NewGraphReaderWithDB(db)
	data, err := r.ReadGraphData(testConfig)
	require.NoError(t, err)
	assert.Equal(t, 4, data.Metadata.NodeCount)
	assert.Equal(t, 5, data.Metadata.EdgeCount)
	assert.Equal(t, testConfig, data.Metadata.Project)

	want := sampleGraph().Nodes
	if diff := cmp.Diff(want, data.Nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	projects, err := r.Projects()
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, testRoot, projects[0].RootPath)
	assert.False(t, projects[0].WrittenAt.IsZero())
}

func TestWriteGraphDataReplaces(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	w := NewGraphWriterWithDB(db)

	_, err := w.WriteGraphData(testRoot, testConfig, sampleGraph())
	require.NoError(t, err)

	smaller := &graph.GraphData{
		Nodes: []graph.Node{{ID: `"/proj/c.ts"`, LocalID: `"./c.ts"`, Kind: graph.NodeModule, Name: "./c.ts", File: "c.ts"}},
	}
	_, err = w.WriteGraphData(testRoot, testConfig, smaller)
	require.NoError(t, err)

	data, err := NewGraphReaderWithDB(db).ReadGraphData(testConfig)
	require.NoError(t, err)
	require.Len(t, data.Nodes, 1)
	assert.Equal(t, `"/proj/c.ts"`, data.Nodes[0].ID)
	assert.Empty(t, data.Edges)

	var nodeCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&nodeCount))
	assert.Equal(t, 1, nodeCount)
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	_, err := NewGraphWriterWithDB(db).WriteGraphData(testRoot, testConfig, sampleGraph())
	require.NoError(t, err)
	r := NewGraphReaderWithDB(db)

	tests := []struct {
		name     string
		fqn      string
		incoming bool
		want     []Dependency
	}{
		{
			name: "outgoing ordered by cardinality",
			fqn:  `"/proj/a.ts".B`,
			want: []Dependency{
				{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".helper`, Cardinality: 3, Project: testConfig},
				{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".A`, Cardinality: 1, Project: testConfig},
			},
		},
		{
			name:     "incoming",
			fqn:      `"/proj/a.ts".A`,
			incoming: true,
			want: []Dependency{
				{From: `"/proj/a.ts".B`, To: `"/proj/a.ts".A`, Cardinality: 1, Project: testConfig},
			},
		},
		{
			name: "external target",
			fqn:  `"/proj/a.ts".helper`,
			want: []Dependency{
				{From: `"/proj/a.ts".helper`, To: `"lodash".map`, Cardinality: 2, Project: testConfig},
			},
		},
		{
			name: "unknown",
			fqn:  `"/proj/missing.ts".X`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Dependencies(tt.fqn, tt.incoming)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindNodes(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	_, err := NewGraphWriterWithDB(db).WriteGraphData(testRoot, testConfig, sampleGraph())
	require.NoError(t, err)
	r := NewGraphReaderWithDB(db)

	for _, query := range []string{"B", `"/proj/a.ts".B`, `"./a.ts".B`} {
		nodes, err := r.FindNodes(query)
		require.NoError(t, err, query)
		require.Len(t, nodes, 1, query)
		assert.Equal(t, graph.NodeClass, nodes[0].Kind)
		assert.Equal(t, 5, nodes[0].StartLine)
	}

	nodes, err := r.FindNodes("nothing")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestReadGraphDataNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewGraphReaderWithDB(NewTestDB(t)).ReadGraphData("/nope/tsconfig.json")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "cache", "graph.db")

	w, err := NewGraphWriter(dbPath)
	require.NoError(t, err)
	_, err = w.WriteGraphData(testRoot, testConfig, sampleGraph())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewGraphReader(dbPath)
	require.NoError(t, err)
	defer r.Close()

	deps, err := r.Dependencies(`"/proj/a.ts".B`, false)
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}
