package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Test Plan for the post-processors:
// - Dependencies on packages create external modules with their declarations
// - Module dependencies on packages create external modules without declarations
// - Star re-exports expand into the exports of the source module
// - `export * as ns` prefixes the expanded names with the namespace
// - Named re-exports link to the original declaration, default included
// - Re-exports of packages link to the external declarations
// - Unresolvable re-exports are reported and dropped
// - Re-export cycles terminate

func module(m concept.Map, path string) {
	m.Add("", concept.Module{FQN: concept.ModuleFQN(path, "")})
}

func exports(m concept.Map, file string) map[string]concept.ExportDeclaration {
	out := map[string]concept.ExportDeclaration{}
	for _, e := range concept.AllOf[concept.ExportDeclaration](m, concept.IDExportDeclaration) {
		if e.SourceFilePathAbsolute == file {
			name := e.Identifier
			if e.Alias != "" {
				name = e.Alias
			}
			out[name] = e
		}
	}
	return out
}

func dependencies(m concept.Map) map[[2]string]int {
	out := map[[2]string]int{}
	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		out[d.Key()] += d.Cardinality
	}
	return out
}

func TestExternalDependencies(t *testing.T) {
	t.Parallel()

	m := concept.Map{}
	m.Add("", concept.NewDependency(`"/p/a.ts".A`, `"react".useState`, concept.KindDeclaration))
	m.Add("", concept.NewDependency(`"/p/a.ts".B`, `"react".useState`, concept.KindDeclaration))
	m.Add("", concept.NewDependency(`"/p/a.ts".B`, `"react".React.Component`, concept.KindDeclaration))
	m.Add("", concept.NewDependency(`"/p/a.ts"`, `"lodash"`, concept.KindModule))
	m.Add("", concept.NewDependency(`"/p/a.ts".A`, `"/p/b.ts".B`, concept.KindDeclaration))
	m.Add("", concept.NewDependency(`"/p/a.ts".A`, `Promise`, concept.KindDeclaration))

	errs := ExternalDependencies{}.PostProcess(&Project{Root: "/p", Concepts: m}, nil)
	require.Empty(t, errs)

	mods := concept.AllOf[concept.ExternalModule](m, concept.IDExternalModule)
	require.Len(t, mods, 2)
	byFQN := map[string]concept.ExternalModule{}
	for _, mod := range mods {
		byFQN[mod.FQN.Global] = mod
	}

	react := byFQN[`"react"`]
	require.Len(t, react.Declarations, 2)
	assert.Equal(t, "useState", react.Declarations[0].Name)
	assert.Equal(t, `"react".useState`, react.Declarations[0].FQN.Global)
	assert.Equal(t, "React.Component", react.Declarations[1].Name)

	assert.Empty(t, byFQN[`"lodash"`].Declarations)
}

func TestExports(t *testing.T) {
	t.Parallel()

	m := concept.Map{}
	for _, p := range []string{"/p/a.ts", "/p/b.ts", "/p/c.ts", "/p/lib/index.ts"} {
		module(m, p)
	}
	add := func(e concept.ExportDeclaration) { m.Add("", e) }

	add(concept.ExportDeclaration{Identifier: "B", GlobalDeclFQN: `"/p/b.ts".B`, Kind: concept.ExportValue, SourceFilePathAbsolute: "/p/b.ts"})
	add(concept.ExportDeclaration{Identifier: "make", GlobalDeclFQN: `"/p/b.ts".make`, IsDefault: true, Kind: concept.ExportValue, SourceFilePathAbsolute: "/p/b.ts"})
	add(concept.ExportDeclaration{Identifier: "I", GlobalDeclFQN: `"/p/lib".I`, Kind: concept.ExportType, SourceFilePathAbsolute: "/p/lib/index.ts"})

	add(concept.ExportDeclaration{Identifier: "*", Kind: concept.ExportNamespace, ImportSource: "/p/b.ts", GlobalDeclFQN: `"/p/b.ts"`, SourceFilePathAbsolute: "/p/a.ts"})
	add(concept.ExportDeclaration{Identifier: "*", Alias: "lib", Kind: concept.ExportNamespace, ImportSource: "/p/lib", GlobalDeclFQN: `"/p/lib"`, SourceFilePathAbsolute: "/p/a.ts"})
	add(concept.ExportDeclaration{Identifier: "default", Alias: "Maker", Kind: concept.ExportValue, ImportSource: "/p/b.ts", SourceFilePathAbsolute: "/p/c.ts"})
	add(concept.ExportDeclaration{Identifier: "Missing", Kind: concept.ExportValue, ImportSource: "/p/b.ts", SourceFilePathAbsolute: "/p/c.ts"})

	p := &Project{Root: "/p", Concepts: m}
	errs := Exports{}.PostProcess(p, []*Project{p})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Missing")

	a := exports(m, "/p/a.ts")
	require.Len(t, a, 3)
	assert.Equal(t, `"/p/b.ts".B`, a["B"].GlobalDeclFQN)
	assert.True(t, a["default"].IsDefault)
	assert.Equal(t, `"/p/b.ts".make`, a["default"].GlobalDeclFQN)
	assert.Equal(t, `"/p/lib".I`, a["lib.I"].GlobalDeclFQN)
	assert.Equal(t, concept.ExportType, a["lib.I"].Kind)

	c := exports(m, "/p/c.ts")
	require.Len(t, c, 1)
	assert.Equal(t, `"/p/b.ts".make`, c["Maker"].GlobalDeclFQN)

	deps := dependencies(m)
	assert.Equal(t, 1, deps[[2]string{`"/p/a.ts"`, `"/p/b.ts"`}])
	assert.Equal(t, 1, deps[[2]string{`"/p/a.ts"`, `"/p/lib"`}])
	assert.Equal(t, 1, deps[[2]string{`"/p/c.ts"`, `"/p/b.ts".make`}])
}

func TestExternalReExports(t *testing.T) {
	t.Parallel()

	m := concept.Map{}
	module(m, "/p/a.ts")
	m.Add("", concept.NewDependency(`"/p/a.ts".x`, `"react".useState`, concept.KindDeclaration))
	m.Add("", concept.ExportDeclaration{Identifier: "useState", Kind: concept.ExportValue, ImportSource: "react", SourceFilePathAbsolute: "/p/a.ts"})
	m.Add("", concept.ExportDeclaration{Identifier: "*", Alias: "R", Kind: concept.ExportNamespace, ImportSource: "react", SourceFilePathAbsolute: "/p/a.ts"})
	m.Add("", concept.ExportDeclaration{Identifier: "x", Kind: concept.ExportValue, ImportSource: "vue", SourceFilePathAbsolute: "/p/a.ts"})

	p := &Project{Root: "/p", Concepts: m}
	errs := Run([]*Project{p}, Default()...)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "vue")

	a := exports(m, "/p/a.ts")
	require.Len(t, a, 2)
	assert.Equal(t, `"react".useState`, a["useState"].GlobalDeclFQN)
	assert.Equal(t, `"react".useState`, a["R.useState"].GlobalDeclFQN)

	deps := dependencies(m)
	assert.Equal(t, 1, deps[[2]string{`"/p/a.ts"`, `"react".useState`}])
	assert.Equal(t, 1, deps[[2]string{`"/p/a.ts"`, `"react"`}])
}

func TestReExportCycle(t *testing.T) {
	t.Parallel()

	m := concept.Map{}
	module(m, "/p/a.ts")
	module(m, "/p/b.ts")
	m.Add("", concept.ExportDeclaration{Identifier: "*", Kind: concept.ExportNamespace, ImportSource: "/p/b.ts", SourceFilePathAbsolute: "/p/a.ts"})
	m.Add("", concept.ExportDeclaration{Identifier: "*", Kind: concept.ExportNamespace, ImportSource: "/p/a.ts", SourceFilePathAbsolute: "/p/b.ts"})
	m.Add("", concept.ExportDeclaration{Identifier: "A", GlobalDeclFQN: `"/p/a.ts".A`, Kind: concept.ExportValue, SourceFilePathAbsolute: "/p/a.ts"})

	p := &Project{Root: "/p", Concepts: m}
	errs := Exports{}.PostProcess(p, []*Project{p})
	assert.Empty(t, errs)
	b := exports(m, "/p/b.ts")
	assert.Contains(t, b, "A")
}
