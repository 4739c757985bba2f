// Package graph projects the concepts of a project into a graph of
// declarations and their relationships.
package graph

import (
	"sort"
	"time"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Build projects m into nodes and edges. Nodes are deduplicated by ID and
// sorted; edges keep the order of the concepts they come from.
func Build(project string, m concept.Map) *GraphData {
	b := &builder{nodes: map[string]Node{}}

	for _, mod := range concept.AllOf[concept.Module](m, concept.IDModule) {
		b.node(Node{ID: mod.FQN.Global, LocalID: mod.FQN.Local, Kind: NodeModule, Name: mod.Path, File: mod.Path})
	}
	for _, c := range concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration) {
		b.declaration(c.FQN, NodeClass, c.ClassName, c.Coordinates)
		if c.ExtendsClass != nil {
			b.edge(Edge{From: c.FQN.Global, To: c.ExtendsClass.FQN.Global, Type: EdgeExtends})
		}
		for _, i := range c.Implements {
			b.edge(Edge{From: c.FQN.Global, To: i.FQN.Global, Type: EdgeImplements})
		}
		b.members(c.FQN, c.Methods, c.Properties, c.AccessorProperties)
		if c.Constructor != nil {
			for _, p := range c.Constructor.ParameterProperties {
				b.member(c.FQN, Node{ID: p.FQN.Global, LocalID: p.FQN.Local, Kind: NodeProperty, Name: p.Name, File: p.Coordinates.FileName, StartLine: p.Coordinates.StartLine, EndLine: p.Coordinates.EndLine})
			}
		}
		b.decorators(c.FQN, c.Decorators)
	}
	for _, c := range concept.AllOf[concept.InterfaceDeclaration](m, concept.IDInterfaceDeclaration) {
		b.declaration(c.FQN, NodeInterface, c.InterfaceName, c.Coordinates)
		for _, e := range c.Extends {
			b.edge(Edge{From: c.FQN.Global, To: e.FQN.Global, Type: EdgeExtends})
		}
		b.members(c.FQN, c.Methods, c.Properties, c.AccessorProperties)
	}
	for _, c := range concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration) {
		b.declaration(c.FQN, NodeFunction, c.FunctionName, c.Coordinates)
	}
	for _, c := range concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration) {
		b.declaration(c.FQN, NodeVariable, c.VariableName, c.Coordinates)
	}
	for _, c := range concept.AllOf[concept.EnumDeclaration](m, concept.IDEnumDeclaration) {
		b.declaration(c.FQN, NodeEnum, c.EnumName, c.Coordinates)
	}
	for _, c := range concept.AllOf[concept.TypeAliasDeclaration](m, concept.IDTypeAliasDeclaration) {
		b.declaration(c.FQN, NodeTypeAlias, c.TypeAliasName, c.Coordinates)
	}
	for _, ext := range concept.AllOf[concept.ExternalModule](m, concept.IDExternalModule) {
		b.node(Node{ID: ext.FQN.Global, LocalID: ext.FQN.Local, Kind: NodeExternalModule, Name: concept.ExtractPath(ext.FQN.Global)})
		for _, d := range ext.Declarations {
			b.node(Node{ID: d.FQN.Global, LocalID: d.FQN.Local, Kind: NodeExternalDeclaration, Name: d.Name})
			b.edge(Edge{From: ext.FQN.Global, To: d.FQN.Global, Type: EdgeDeclares})
		}
	}
	for _, e := range concept.AllOf[concept.ExportDeclaration](m, concept.IDExportDeclaration) {
		if e.GlobalDeclFQN == "" || e.SourceFilePathAbsolute == "" {
			continue
		}
		b.edge(Edge{From: `"` + e.SourceFilePathAbsolute + `"`, To: e.GlobalDeclFQN, Type: EdgeExports, Name: e.ExportedName()})
	}
	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		b.edge(Edge{From: d.Source, To: d.Target, Type: EdgeDependsOn, Cardinality: d.Cardinality})
	}

	nodes := make([]Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return &GraphData{
		Metadata: GraphMetadata{
			Project:     project,
			GeneratedAt: time.Now(),
			NodeCount:   len(nodes),
			EdgeCount:   len(b.edges),
		},
		Nodes: nodes,
		Edges: b.edges,
	}
}

type builder struct {
	nodes map[string]Node
	edges []Edge
	seen  map[Edge]bool
}

// node keeps the first node registered for an ID.
func (b *builder) node(n Node) {
	if n.ID == "" {
		return
	}
	if _, ok := b.nodes[n.ID]; !ok {
		b.nodes[n.ID] = n
	}
}

func (b *builder) edge(e Edge) {
	if e.From == "" || e.To == "" {
		return
	}
	if b.seen == nil {
		b.seen = map[Edge]bool{}
	}
	if b.seen[e] {
		return
	}
	b.seen[e] = true
	b.edges = append(b.edges, e)
}

// declaration adds a top-level declaration and the DECLARES edge from its
// module.
func (b *builder) declaration(fqn concept.FQN, kind NodeKind, name string, at concept.CodeCoordinates) {
	b.node(Node{
		ID:        fqn.Global,
		LocalID:   fqn.Local,
		Kind:      kind,
		Name:      name,
		File:      at.FileName,
		StartLine: at.StartLine,
		EndLine:   at.EndLine,
	})
	if path := concept.ExtractPath(fqn.Global); path != "" {
		b.edge(Edge{From: `"` + path + `"`, To: fqn.Global, Type: EdgeDeclares})
	}
}

func (b *builder) member(owner concept.FQN, n Node) {
	b.node(n)
	b.edge(Edge{From: owner.Global, To: n.ID, Type: EdgeDeclares})
}

func (b *builder) members(owner concept.FQN, methods []concept.MethodDeclaration, props []concept.PropertyDeclaration, accessors []concept.AccessorProperty) {
	for _, m := range methods {
		b.member(owner, Node{ID: m.FQN.Global, LocalID: m.FQN.Local, Kind: NodeMethod, Name: m.MethodName, File: m.Coordinates.FileName, StartLine: m.Coordinates.StartLine, EndLine: m.Coordinates.EndLine})
		b.decorators(m.FQN, m.Decorators)
	}
	for _, p := range props {
		b.member(owner, Node{ID: p.FQN.Global, LocalID: p.FQN.Local, Kind: NodeProperty, Name: p.PropertyName, File: p.Coordinates.FileName, StartLine: p.Coordinates.StartLine, EndLine: p.Coordinates.EndLine})
		b.decorators(p.FQN, p.Decorators)
	}
	for _, a := range accessors {
		b.member(owner, Node{ID: a.FQN.Global, LocalID: a.FQN.Local, Kind: NodeProperty, Name: a.PropertyName})
	}
}

func (b *builder) decorators(owner concept.FQN, decorators []concept.Decorator) {
	for _, d := range decorators {
		if target := decoratorTarget(d.Value); target != "" {
			b.edge(Edge{From: owner.Global, To: target, Type: EdgeDecoratedBy})
		}
	}
}

// decoratorTarget returns the declaration a decorator expression names:
// `@A` and `@A(...)` both name A.
func decoratorTarget(v concept.Value) string {
	switch v := v.(type) {
	case concept.ValueDeclared:
		return v.FQN.Global
	case concept.ValueCall:
		return decoratorTarget(v.Callee)
	}
	return ""
}
