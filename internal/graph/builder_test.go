package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Test Plan for graph projection:
// - Modules declare their top-level declarations, classes their members
// - Heritage clauses become EXTENDS and IMPLEMENTS edges
// - Exports and aggregated dependencies keep their name and cardinality
// - External modules declare their external declarations
// - Decorators link to the declaration they call
// - Duplicate nodes and edges are collapsed

func fqn(s string) concept.FQN { return concept.Identifier(s) }

func TestBuild(t *testing.T) {
	t.Parallel()

	m := concept.Of(
		concept.Module{FQN: fqn(`"/p/a.ts"`), Path: "/a.ts"},
		concept.Module{FQN: fqn(`"/p/a.ts"`), Path: "/a.ts"},
		concept.ClassDeclaration{
			ClassName:    "A",
			FQN:          fqn(`"/p/a.ts".A`),
			ExtendsClass: &concept.TypeDeclared{FQN: fqn(`"/p/a.ts".Base`)},
			Implements:   []concept.TypeDeclared{{FQN: fqn(`"/p/a.ts".I`)}},
			Methods:      []concept.MethodDeclaration{{MethodName: "run", FQN: fqn(`"/p/a.ts".A.run`)}},
			Properties:   []concept.PropertyDeclaration{{PropertyName: "x", FQN: fqn(`"/p/a.ts".A.x`)}},
			Decorators: []concept.Decorator{{
				Value: concept.ValueCall{Callee: concept.ValueDeclared{FQN: fqn(`"@angular/core".Component`)}},
			}},
			Coordinates: concept.CodeCoordinates{FileName: "./a.ts", StartLine: 3, EndLine: 9},
		},
		concept.InterfaceDeclaration{InterfaceName: "I", FQN: fqn(`"/p/a.ts".I`)},
		concept.ExternalModule{
			FQN:          fqn(`"@angular/core"`),
			Declarations: []concept.ExternalDeclaration{{FQN: fqn(`"@angular/core".Component`), Name: "Component"}},
		},
		concept.ExportDeclaration{Identifier: "A", Alias: "Alpha", GlobalDeclFQN: `"/p/a.ts".A`, SourceFilePathAbsolute: "/p/a.ts"},
		concept.Dependency{Source: `"/p/a.ts".A`, Target: `"@angular/core".Component`, Cardinality: 2},
	)

	g := Build("/p/tsconfig.json", m)
	require.NotNil(t, g)

	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{
		`"/p/a.ts"`,
		`"/p/a.ts".A`,
		`"/p/a.ts".A.run`,
		`"/p/a.ts".A.x`,
		`"/p/a.ts".I`,
		`"@angular/core"`,
		`"@angular/core".Component`,
	}, ids)
	assert.Equal(t, len(g.Nodes), g.Metadata.NodeCount)
	assert.Equal(t, "/p/tsconfig.json", g.Metadata.Project)

	class := g.Nodes[1]
	assert.Equal(t, NodeClass, class.Kind)
	assert.Equal(t, "./a.ts", class.File)
	assert.Equal(t, 3, class.StartLine)

	want := []Edge{
		{From: `"/p/a.ts"`, To: `"/p/a.ts".A`, Type: EdgeDeclares},
		{From: `"/p/a.ts".A`, To: `"/p/a.ts".Base`, Type: EdgeExtends},
		{From: `"/p/a.ts".A`, To: `"/p/a.ts".I`, Type: EdgeImplements},
		{From: `"/p/a.ts".A`, To: `"/p/a.ts".A.run`, Type: EdgeDeclares},
		{From: `"/p/a.ts".A`, To: `"/p/a.ts".A.x`, Type: EdgeDeclares},
		{From: `"/p/a.ts".A`, To: `"@angular/core".Component`, Type: EdgeDecoratedBy},
		{From: `"/p/a.ts"`, To: `"/p/a.ts".I`, Type: EdgeDeclares},
		{From: `"@angular/core"`, To: `"@angular/core".Component`, Type: EdgeDeclares},
		{From: `"/p/a.ts"`, To: `"/p/a.ts".A`, Type: EdgeExports, Name: "Alpha"},
		{From: `"/p/a.ts".A`, To: `"@angular/core".Component`, Type: EdgeDependsOn, Cardinality: 2},
	}
	if diff := cmp.Diff(want, g.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoratorTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value concept.Value
		want  string
	}{
		{"declared", concept.ValueDeclared{FQN: fqn(`"/p/d.ts".log`)}, `"/p/d.ts".log`},
		{"call", concept.ValueCall{Callee: concept.ValueDeclared{FQN: fqn(`"/p/d.ts".log`)}}, `"/p/d.ts".log`},
		{"complex", concept.Complex("a[0]"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decoratorTarget(tt.value))
		})
	}
}
