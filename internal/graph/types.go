package graph

import "time"

// NodeKind represents the kind of a projected concept.
type NodeKind string

const (
	NodeModule              NodeKind = "module"
	NodeClass               NodeKind = "class"
	NodeInterface           NodeKind = "interface"
	NodeFunction            NodeKind = "function"
	NodeVariable            NodeKind = "variable"
	NodeEnum                NodeKind = "enum"
	NodeTypeAlias           NodeKind = "type_alias"
	NodeMethod              NodeKind = "method"
	NodeProperty            NodeKind = "property"
	NodeExternalModule      NodeKind = "external_module"
	NodeExternalDeclaration NodeKind = "external_declaration"
)

// Node is a declaration, module or external entity identified by its
// global FQN.
type Node struct {
	ID        string   `json:"id"`         // Global FQN
	LocalID   string   `json:"local_id"`   // Project-relative FQN
	Kind      NodeKind `json:"kind"`       // Kind of the concept
	Name      string   `json:"name"`       // Declared name or module path
	File      string   `json:"file"`       // Project-relative file path, empty for externals
	StartLine int      `json:"start_line"` // 1-indexed, 0 when unknown
	EndLine   int      `json:"end_line"`
}

// EdgeType represents the type of relationship between nodes.
type EdgeType string

const (
	EdgeDeclares    EdgeType = "DECLARES"
	EdgeDependsOn   EdgeType = "DEPENDS_ON"
	EdgeExtends     EdgeType = "EXTENDS"
	EdgeImplements  EdgeType = "IMPLEMENTS"
	EdgeExports     EdgeType = "EXPORTS"
	EdgeDecoratedBy EdgeType = "DECORATED_BY"
)

// Edge is a relationship between two node IDs. The target may be missing
// from the node set when it lies outside the analyzed projects.
type Edge struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Type        EdgeType `json:"type"`
	Cardinality int      `json:"cardinality,omitempty"` // DEPENDS_ON only
	Name        string   `json:"name,omitempty"`        // EXPORTS only: the exported name
}

// GraphData is the projected graph of one project.
type GraphData struct {
	Metadata GraphMetadata `json:"_metadata"`
	Nodes    []Node        `json:"nodes"`
	Edges    []Edge        `json:"edges"`
}

// GraphMetadata contains metadata about the graph.
type GraphMetadata struct {
	Project     string    `json:"project"`
	GeneratedAt time.Time `json:"generated_at"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
}
