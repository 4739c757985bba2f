package checker

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/ast"
)

// Test Plan for Checker:
// - Module file declarations are qualified with the quoted absolute path
// - Script file declarations are global and unqualified
// - Named imports resolve to the exporting file's declaration
// - `export *` re-exports are followed
// - Imports of installed packages resolve to external symbols
// - let/var initializers are widened, const initializers keep literals
// - Optional parameters are typed as a union with undefined first
// - Destructured bindings are typed by the sliced member type
// - Async functions infer a Promise return type
// - References to type aliases keep the alias symbol
// - Enum member access is typed by the member symbol
// - Namespace members are qualified by the namespace
// - tsconfig path mappings resolve to project files

func parseFiles(t *testing.T, files map[string]string) []*ast.File {
	t.Helper()
	parser := ast.NewParser()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*ast.File
	for _, name := range names {
		f, err := parser.ParseSource(name, files[name])
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func newChecker(t *testing.T, files map[string]string) (*Checker, map[string]*ast.File) {
	t.Helper()
	parsed := parseFiles(t, files)
	byPath := map[string]*ast.File{}
	for _, f := range parsed {
		byPath[f.Path] = f
	}
	return New(parsed, Options{ProjectRoot: "/proj"}), byPath
}

// find returns the first node of kind whose text is text ("" matches any).
func find(root *ast.Node, kind, text string) *ast.Node {
	var found *ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == kind && (text == "" || n.Text() == text) {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestChecker_QualifiedNames(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/a.ts":      "export class Foo {}\n",
		"/proj/global.ts": "class Bar {}\nnamespace NS { export class C {} }\n",
	})

	foo := c.SymbolAtLocation(find(files["/proj/a.ts"].Root, "type_identifier", "Foo"))
	require.NotNil(t, foo)
	assert.Equal(t, `"/proj/a.ts".Foo`, c.QualifiedName(foo))

	bar := c.SymbolAtLocation(find(files["/proj/global.ts"].Root, "type_identifier", "Bar"))
	require.NotNil(t, bar)
	assert.Equal(t, "Bar", c.QualifiedName(bar))

	cls := c.SymbolAtLocation(find(files["/proj/global.ts"].Root, "type_identifier", "C"))
	require.NotNil(t, cls)
	assert.Equal(t, "NS.C", c.QualifiedName(cls))
}

func TestChecker_Imports(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/a.ts": "export class Foo {}\n",
		"/proj/c.ts": "export * from './a';\n",
		"/proj/b.ts": "import { Foo } from './c';\nimport React, { useState } from 'react';\nconst x = new Foo();\n",
	})

	b := files["/proj/b.ts"]
	x := c.TypeAtLocation(find(b.Root, "variable_declarator", ""))
	require.NotNil(t, x.Symbol)
	assert.Equal(t, `"/proj/a.ts".Foo`, c.QualifiedName(x.Symbol))

	react := c.Resolve(c.SymbolAtLocation(find(b.Root, "identifier", "React")))
	assert.True(t, c.IsExternal(react))
	assert.Equal(t, `"react".React`, c.QualifiedName(react))

	useState := c.Resolve(c.SymbolAtLocation(find(b.Root, "import_specifier", "useState")))
	assert.Equal(t, `"react".React.useState`, c.QualifiedName(useState))

	reexported := c.Export("/proj/c.ts", "Foo")
	require.NotNil(t, reexported)
	assert.Equal(t, `"/proj/a.ts".Foo`, c.QualifiedName(reexported))
}

func TestChecker_Widening(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/w.ts": "let a = 1;\nconst b = 1;\nconst o = { k: 'v' };\n",
	})
	root := files["/proj/w.ts"].Root

	a := c.TypeAtLocation(find(root, "variable_declarator", "a = 1"))
	assert.Equal(t, "number", TypeToString(a))

	b := c.TypeAtLocation(find(root, "variable_declarator", "b = 1"))
	assert.True(t, b.Is(TypeNumberLiteral))
	assert.Equal(t, float64(1), b.Literal)

	o := c.TypeAtLocation(find(root, "variable_declarator", "o = { k: 'v' }"))
	require.Len(t, o.Properties, 1)
	assert.Equal(t, "k", o.Properties[0].Name)
	assert.Equal(t, "string", TypeToString(c.TypeOfProperty(o.Properties[0])))
}

func TestChecker_Signatures(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/f.ts": "function f(x?: string) {}\nasync function g() { return 1; }\n",
	})
	root := files["/proj/f.ts"].Root

	f := c.SignatureOf(find(root, "function_declaration", ""))
	require.Len(t, f.Parameters, 1)
	p := f.Parameters[0]
	assert.True(t, p.Optional)
	require.True(t, p.Type.Is(TypeUnion))
	assert.True(t, p.Type.Types[0].Is(TypeUndefined))
	assert.True(t, p.Type.Types[1].Is(TypeString))
	assert.Equal(t, "void", TypeToString(c.ReturnTypeOf(f)))

	var gDecl *ast.Node
	for _, n := range root.NamedChildren() {
		if name := n.ChildByField("name"); name != nil && name.Text() == "g" {
			gDecl = n
		}
	}
	require.NotNil(t, gDecl)
	g := c.SignatureOf(gDecl)
	assert.True(t, g.Async)
	assert.Equal(t, "Promise<number>", TypeToString(c.ReturnTypeOf(g)))
}

func TestChecker_DestructuredBindings(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/a.ts": "interface I { a: number; b: string }\n" +
			"function f({a, b}: I) { return a; }\n" +
			"function g(p: I) { const { b } = p; return b; }\n",
	})
	root := files["/proj/a.ts"].Root

	tests := []struct {
		name string
		fn   string
		want string
	}{
		{name: "parameter", fn: "f", want: "number"},
		{name: "local variable", fn: "g", want: "string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decl *ast.Node
			for _, n := range root.NamedChildren() {
				if name := n.ChildByField("name"); name != nil && name.Text() == tt.fn && n.Kind == "function_declaration" {
					decl = n
				}
			}
			require.NotNil(t, decl)
			ret := c.ReturnTypeOf(c.SignatureOf(decl))
			assert.Equal(t, tt.want, TypeToString(ret))
		})
	}
}

func TestChecker_AliasesEnumsAndLibraries(t *testing.T) {
	t.Parallel()

	c, files := newChecker(t, map[string]string{
		"/proj/t.ts": "type U = 'a' | 'b';\nlet u: U;\nenum E { A, B }\nconst e = E.A;\nlet d: Date;\n",
	})
	root := files["/proj/t.ts"].Root

	u := c.TypeAtLocation(find(root, "variable_declarator", "u: U"))
	require.NotNil(t, u.AliasSymbol)
	assert.Equal(t, "U", u.AliasSymbol.Name)
	assert.True(t, u.Is(TypeUnion))

	e := c.TypeAtLocation(find(root, "variable_declarator", "e = E.A"))
	require.NotNil(t, e.Symbol)
	assert.True(t, e.Symbol.Has(SymEnumMember))
	assert.Equal(t, "E", e.Symbol.Parent.Name)

	d := c.TypeAtLocation(find(root, "variable_declarator", "d: Date"))
	require.NotNil(t, d.Symbol)
	assert.True(t, c.IsStandardLibrary(d.Symbol))
	assert.Equal(t, "Date", c.QualifiedName(d.Symbol))
}

func TestChecker_PathMappings(t *testing.T) {
	t.Parallel()

	parsed := parseFiles(t, map[string]string{
		"/proj/src/lib/util.ts": "export function util() {}\n",
		"/proj/src/app.ts":      "import { util } from '@/lib/util';\n",
	})
	c := New(parsed, Options{
		ProjectRoot: "/proj",
		BaseURL:     "/proj",
		Paths:       map[string][]string{"@/*": {"src/*"}},
	})

	var app *ast.File
	for _, f := range parsed {
		if f.Path == "/proj/src/app.ts" {
			app = f
		}
	}
	require.NotNil(t, app)

	resolved, ok := c.ResolveModule(app, "@/lib/util")
	require.True(t, ok)
	assert.Equal(t, "/proj/src/lib/util.ts", resolved)

	util := c.Resolve(c.SymbolAtLocation(find(app.Root, "import_specifier", "")))
	assert.Equal(t, `"/proj/src/lib/util.ts".util`, c.QualifiedName(util))
}
