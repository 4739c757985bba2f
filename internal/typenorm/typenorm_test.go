package typenorm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// Test Plan for the type normalizer:
// - Named project types become declared types with module-qualified FQNs
// - Standard library types keep their bare name and register no dependency
// - Unions order undefined before other primitives
// - Object, function, tuple and literal types are decomposed structurally
// - Indexed access types short-circuit to a placeholder
// - Self-referencing aliases terminate through the alias reference
// - Self-referencing interfaces terminate through a declared member type
// - Excluded FQNs force anonymous handling
// - Method types special-case constructors, getters and setters

type recorder struct {
	kinds []string
	pre   func(ctx *traverser.Context) error
}

func (p *recorder) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: p.kinds}
}

func (p *recorder) PreChildren(ctx *traverser.Context) error { return p.pre(ctx) }

func (p *recorder) PostChildren(*traverser.Context, concept.Map) (concept.Map, error) { return nil, nil }

func traverse(t *testing.T, files map[string]string, target string, extra traverser.Processor) concept.Map {
	t.Helper()
	parser := ast.NewParser()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var parsed []*ast.File
	var file *ast.File
	for _, name := range names {
		f, err := parser.ParseSource(name, files[name])
		require.NoError(t, err)
		parsed = append(parsed, f)
		if name == target {
			file = f
		}
	}
	require.NotNil(t, file)

	c := checker.New(parsed, checker.Options{ProjectRoot: "/proj"})
	m, err := traverser.New(
		extra,
		scope.NewDependencyResolution(nil),
		scope.ScopeProcessor{},
		scope.DeclarationScopeProcessor{},
	).Traverse(&traverser.Global{ProjectRoot: "/proj", File: file, Checker: c})
	require.NoError(t, err)
	return m
}

// aliasTypes normalizes the value of every type alias in target.
func aliasTypes(t *testing.T, files map[string]string, target string, opts Options) (map[string]concept.Type, concept.Map) {
	t.Helper()
	got := map[string]concept.Type{}
	m := traverse(t, files, target, &recorder{
		kinds: []string{"type_alias_declaration"},
		pre: func(ctx *traverser.Context) error {
			typ, err := ParseNodeType(ctx, ctx.Node.ChildByField("value"), opts)
			got[ctx.Node.ChildByField("name").Text()] = typ
			return err
		},
	})
	return got, m
}

func declared(global, local string, args ...concept.Type) concept.TypeDeclared {
	if args == nil {
		args = []concept.Type{}
	}
	return concept.TypeDeclared{FQN: concept.FQN{Global: global, Local: local}, TypeArguments: args}
}

func TestParseNodeType(t *testing.T) {
	t.Parallel()

	got, m := aliasTypes(t, map[string]string{
		"/proj/a.ts": "export class A<T> { x: T; }\n",
		"/proj/b.ts": "import { A } from './a';\n" +
			"type Generic = A<string>;\n" +
			"type Maybe = string | undefined;\n" +
			"type Shape = { readonly a: number; b?: string };\n" +
			"type Fn = (x: number, y?: string) => boolean;\n" +
			"type Pair = [number, \"a\"];\n" +
			"type Numbers = Array<number>;\n" +
			"type Lookup = A<number>[\"x\"];\n" +
			"type List = { next: List };\n",
	}, "/proj/b.ts", Options{})

	maybe := concept.TypeUnion{Types: []concept.Type{concept.Primitive("undefined"), concept.Primitive("string")}}
	tests := []struct {
		name string
		want concept.Type
	}{
		{"Generic", declared(`"/proj/a.ts".A`, `"./a.ts".A`, concept.Primitive("string"))},
		{"Maybe", maybe},
		{"Shape", concept.TypeObject{Members: []concept.TypeObjectMember{
			{Name: "a", Type: concept.Primitive("number"), Readonly: true},
			{Name: "b", Type: maybe, Optional: true},
		}}},
		{"Fn", concept.TypeFunction{
			ReturnType: concept.Primitive("boolean"),
			Parameters: []concept.TypeFunctionParameter{
				{Index: 0, Name: "x", Type: concept.Primitive("number")},
				{Index: 1, Name: "y", Optional: true, Type: maybe},
			},
			TypeParameters: []concept.TypeParameterDeclaration{},
		}},
		{"Pair", concept.TypeTuple{Types: []concept.Type{
			concept.Primitive("number"),
			concept.TypeLiteral{Value: concept.StringLiteral("a")},
		}}},
		{"Numbers", concept.TypeDeclared{FQN: concept.Identifier("Array"), TypeArguments: []concept.Type{concept.Primitive("number")}}},
		{"Lookup", concept.NotIdentified("indexed access type")},
		{"List", concept.TypeObject{Members: []concept.TypeObjectMember{
			{Name: "next", Type: declared(`"/proj/b.ts".List`, `"./b.ts".List`)},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, got[tt.name])
		})
	}

	deps := concept.AllOf[concept.Dependency](m, concept.IDDependency)
	require.Len(t, deps, 1)
	assert.Equal(t, `"/proj/b.ts"`, deps[0].Source)
	assert.Equal(t, `"/proj/a.ts".A`, deps[0].Target)
}

func TestParseNodeType_Excluded(t *testing.T) {
	t.Parallel()

	got, m := aliasTypes(t, map[string]string{
		"/proj/a.ts": "export class A {}\n",
		"/proj/b.ts": "import { A } from './a';\ntype Self = A;\n",
	}, "/proj/b.ts", Options{Excluded: `"/proj/a.ts".A`})

	assert.Equal(t, concept.NotIdentified("A"), got["Self"])
	assert.Empty(t, concept.AllOf[concept.Dependency](m, concept.IDDependency))
}

func TestParsePropertyType_SelfReference(t *testing.T) {
	t.Parallel()

	got := map[string]concept.Type{}
	traverse(t, map[string]string{
		"/proj/r.ts": "export interface R { r?: R }\n",
	}, "/proj/r.ts", &recorder{
		kinds: []string{"property_signature"},
		pre: func(ctx *traverser.Context) error {
			typ, err := ParsePropertyType(ctx, ctx.Node)
			got[ctx.Node.ChildByField("name").Text()] = typ
			return err
		},
	})

	assert.Equal(t, concept.TypeUnion{Types: []concept.Type{
		concept.Primitive("undefined"),
		declared(`"/proj/r.ts".R`, `"./r.ts".R`),
	}}, got["r"])
}

func TestParseMethodType(t *testing.T) {
	t.Parallel()

	got := map[string]concept.TypeFunction{}
	traverse(t, map[string]string{
		"/proj/a.ts": "export class A {}\n",
		"/proj/b.ts": "import { A } from './a';\n" +
			"export class C {\n" +
			"  constructor(a: number) {}\n" +
			"  get v(): string { return ''; }\n" +
			"  set v(x: string) {}\n" +
			"  async m<T>(p?: A): Promise<void> {}\n" +
			"}\n",
	}, "/proj/b.ts", &recorder{
		kinds: []string{"method_definition"},
		pre: func(ctx *traverser.Context) error {
			fn, err := ParseMethodType(ctx, ctx.Node)
			key := ctx.Node.ChildByField("name").Text()
			if ctx.Node.HasToken("set") {
				key = "set " + key
			}
			got[key] = fn
			return err
		},
	})

	noTypeParams := []concept.TypeParameterDeclaration{}
	assert.Equal(t, concept.TypeFunction{
		ReturnType:     concept.NotIdentified("constructor"),
		Parameters:     []concept.TypeFunctionParameter{{Index: 0, Name: "a", Type: concept.Primitive("number")}},
		TypeParameters: noTypeParams,
	}, got["constructor"])

	assert.Equal(t, concept.TypeFunction{
		ReturnType:     concept.Primitive("string"),
		Parameters:     []concept.TypeFunctionParameter{},
		TypeParameters: noTypeParams,
	}, got["v"])

	assert.Equal(t, concept.TypeFunction{
		ReturnType:     concept.NotIdentified("setter"),
		Parameters:     []concept.TypeFunctionParameter{{Index: 0, Name: "x", Type: concept.Primitive("string")}},
		TypeParameters: noTypeParams,
	}, got["set v"])

	m := got["m"]
	assert.True(t, m.Async)
	assert.Equal(t, concept.TypeDeclared{FQN: concept.Identifier("Promise"), TypeArguments: []concept.Type{concept.Primitive("void")}}, m.ReturnType)
	require.Len(t, m.Parameters, 1)
	assert.True(t, m.Parameters[0].Optional)
	assert.Equal(t, concept.TypeUnion{Types: []concept.Type{
		concept.Primitive("undefined"),
		declared(`"/proj/a.ts".A`, `"./a.ts".A`),
	}}, m.Parameters[0].Type)
	assert.Equal(t, []concept.TypeParameterDeclaration{
		{Name: "T", Constraint: concept.TypeObject{Members: []concept.TypeObjectMember{}}},
	}, m.TypeParameters)
}
