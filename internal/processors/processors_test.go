package processors

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

// Test Plan for the declaration processors:
// - let and const variables differ in type but not in initial value
// - References from class members roll up to one source per member
// - Destructured parameters keep one position, destructured variables
//   declare one variable per binding
// - Class members, accessors and parameter properties are grouped on the
//   class; overloads collapse
// - Enum members keep literal initializers and fall back to source text
// - Imports and exports record their sources and target FQNs
// - Only anonymous default exports are named "default"
// - Declarations inside function bodies are not extracted
// - Transient concepts never reach the program level

func extract(t *testing.T, files map[string]string, target string) concept.Map {
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
	m, err := Assemble(scope.NewRegistry()).Traverse(&traverser.Global{ProjectRoot: "/proj", File: file, Checker: c})
	require.NoError(t, err)
	return m
}

func single(t *testing.T, src string) concept.Map {
	t.Helper()
	return extract(t, map[string]string{"/proj/a.ts": src}, "/proj/a.ts")
}

func variables(m concept.Map) map[string]concept.VariableDeclaration {
	out := map[string]concept.VariableDeclaration{}
	for _, v := range concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration) {
		out[v.VariableName] = v
	}
	return out
}

func TestVariables(t *testing.T) {
	t.Parallel()

	got := variables(single(t, "let x = 0;\nconst y = 0;\nvar z: string;\n"))
	require.Len(t, got, 3)

	x := got["x"]
	assert.Equal(t, concept.VariableLet, x.Kind)
	assert.Equal(t, concept.Primitive("number"), x.Type)
	assert.Equal(t, concept.LiteralOf(concept.NumberLiteral(0)), x.InitValue)
	assert.Equal(t, `"/proj/a.ts".x`, x.FQN.Global)
	assert.Equal(t, `"./a.ts".x`, x.FQN.Local)
	assert.Equal(t, "/a.ts", x.Coordinates.FileName)
	assert.Equal(t, 1, x.Coordinates.StartLine)

	y := got["y"]
	assert.Equal(t, concept.VariableConst, y.Kind)
	assert.Equal(t, concept.TypeLiteral{Value: concept.NumberLiteral(0)}, y.Type)
	assert.Equal(t, concept.LiteralOf(concept.NumberLiteral(0)), y.InitValue)

	z := got["z"]
	assert.Equal(t, concept.VariableVar, z.Kind)
	assert.Equal(t, concept.Primitive("string"), z.Type)
	assert.Nil(t, z.InitValue)
}

func TestNestedDeclarationsAreNotExtracted(t *testing.T) {
	t.Parallel()

	m := single(t, "function f() {\n  const inner = 1;\n  class Local {}\n}\n")
	fns := concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration)
	require.Len(t, fns, 1)
	assert.Equal(t, "f", fns[0].FunctionName)
	assert.Empty(t, concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration))
	assert.Empty(t, concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration))
}

func TestMemberReferencesRollUpToClass(t *testing.T) {
	t.Parallel()

	m := extract(t, map[string]string{
		"/proj/a.ts": "export class A { x: number = 1 }\n",
		"/proj/b.ts": "import { A } from './a';\n" +
			"export class B {\n" +
			"  a: A;\n" +
			"  make(): void { new A(); }\n" +
			"}\n",
	}, "/proj/b.ts")

	const a = `"/proj/a.ts".A`
	const b = `"/proj/b.ts".B`
	total := 0
	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		if d.Target == a && (d.Source == b || concept.IsWithin(d.Source, b)) {
			total += d.Cardinality
		}
	}
	assert.Equal(t, 2, total)
}

func TestDestructuring(t *testing.T) {
	t.Parallel()

	m := single(t, "interface P { a: number; b: string }\n"+
		"function f({ a, b }: P, c: number) {}\n"+
		"declare const p: P;\n"+
		"const { a, b } = p;\n")

	fns := concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration)
	require.Len(t, fns, 1)
	params := fns[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, 0, params[0].Index)
	assert.Equal(t, "", params[0].Name)
	declared, ok := params[0].Type.(concept.TypeDeclared)
	require.True(t, ok)
	assert.Equal(t, `"/proj/a.ts".P`, declared.FQN.Global)
	assert.Equal(t, 1, params[1].Index)
	assert.Equal(t, "c", params[1].Name)

	got := variables(m)
	require.Contains(t, got, "a")
	require.Contains(t, got, "b")
	assert.Equal(t, concept.Primitive("number"), got["a"].Type)
	assert.Equal(t, concept.Primitive("string"), got["b"].Type)
	assert.Equal(t, concept.VariableConst, got["a"].Kind)
	assert.Nil(t, got["a"].InitValue)
}

func TestClassMembers(t *testing.T) {
	t.Parallel()

	m := single(t, "function log(target: any) {}\n"+
		"@log\n"+
		"export abstract class Shape<T extends object> {\n"+
		"  static count = 0;\n"+
		"  protected label?: string;\n"+
		"  #secret = 1;\n"+
		"  constructor(private readonly id: string, name: string) {}\n"+
		"  get area(): number { return 0; }\n"+
		"  set area(v: number) {}\n"+
		"  move(x: number): void;\n"+
		"  move(x: number, y?: number): void {}\n"+
		"  abstract draw(): void;\n"+
		"  ['computed']() {}\n"+
		"}\n")

	classes := concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration)
	require.Len(t, classes, 1)
	c := classes[0]

	assert.Equal(t, "Shape", c.ClassName)
	assert.True(t, c.Abstract)
	assert.Equal(t, `"/proj/a.ts".Shape`, c.FQN.Global)
	require.Len(t, c.TypeParameters, 1)
	assert.Equal(t, "T", c.TypeParameters[0].Name)
	require.Len(t, c.Decorators, 1)

	props := map[string]concept.PropertyDeclaration{}
	for _, p := range c.Properties {
		props[p.PropertyName] = p
	}
	require.Len(t, props, 3)
	assert.Equal(t, concept.Bool(true), props["count"].IsStatic)
	assert.True(t, props["label"].Optional)
	assert.Equal(t, concept.VisibilityProtected, props["label"].Visibility)
	assert.Equal(t, concept.VisibilityJSPrivate, props["secret"].Visibility)
	assert.Equal(t, `"/proj/a.ts".Shape.count`, props["count"].FQN.Global)

	methods := map[string]concept.MethodDeclaration{}
	for _, meth := range c.Methods {
		methods[meth.MethodName] = meth
	}
	require.Len(t, methods, 2)
	require.Len(t, methods["move"].Parameters, 2)
	assert.True(t, methods["move"].Parameters[1].Optional)
	assert.Equal(t, concept.Bool(true), methods["draw"].Abstract)

	accessors := map[string]concept.AccessorProperty{}
	for _, a := range c.AccessorProperties {
		accessors[a.PropertyName] = a
	}
	require.Len(t, accessors, 1)
	assert.NotNil(t, accessors["area"].Getter)
	assert.NotNil(t, accessors["area"].Setter)

	require.NotNil(t, c.Constructor)
	require.Len(t, c.Constructor.Parameters, 2)
	require.Len(t, c.Constructor.ParameterProperties, 1)
	pp := c.Constructor.ParameterProperties[0]
	assert.Equal(t, "id", pp.Name)
	assert.Equal(t, concept.VisibilityPrivate, pp.Visibility)
	assert.True(t, pp.Readonly)
	assert.Equal(t, `"/proj/a.ts".Shape.id`, pp.FQN.Global)
}

func TestInterfaces(t *testing.T) {
	t.Parallel()

	m := single(t, "interface Base { id: string }\n"+
		"interface Named extends Base {\n"+
		"  name: string;\n"+
		"  greet(other: Named): string;\n"+
		"}\n")

	byName := map[string]concept.InterfaceDeclaration{}
	for _, i := range concept.AllOf[concept.InterfaceDeclaration](m, concept.IDInterfaceDeclaration) {
		byName[i.InterfaceName] = i
	}
	require.Len(t, byName, 2)

	named := byName["Named"]
	require.Len(t, named.Extends, 1)
	assert.Equal(t, `"/proj/a.ts".Base`, named.Extends[0].FQN.Global)
	require.Len(t, named.Properties, 1)
	assert.Nil(t, named.Properties[0].IsStatic)
	require.Len(t, named.Methods, 1)
	assert.Equal(t, "greet", named.Methods[0].MethodName)
}

func TestEnums(t *testing.T) {
	t.Parallel()

	m := single(t, "export const enum E { A = 1, B, C = A + 1, 'D' = 'd' }\ndeclare enum F { X }\n")

	byName := map[string]concept.EnumDeclaration{}
	for _, e := range concept.AllOf[concept.EnumDeclaration](m, concept.IDEnumDeclaration) {
		byName[e.EnumName] = e
	}
	require.Len(t, byName, 2)

	e := byName["E"]
	assert.True(t, e.Constant)
	assert.False(t, e.Declared)
	require.Len(t, e.Members, 4)
	assert.Equal(t, "A", e.Members[0].Name)
	assert.Equal(t, `"/proj/a.ts".E.A`, e.Members[0].FQN.Global)
	assert.Equal(t, concept.LiteralOf(concept.NumberLiteral(1)), e.Members[0].Init)
	assert.Nil(t, e.Members[1].Init)
	assert.NotNil(t, e.Members[2].Init)
	assert.Equal(t, "D", e.Members[3].Name)
	assert.Equal(t, concept.LiteralOf(concept.StringLiteral("d")), e.Members[3].Init)

	assert.True(t, byName["F"].Declared)
}

func TestEnumMembersWithoutInitializers(t *testing.T) {
	t.Parallel()

	m := single(t, "enum E { A, B, C = 5 }\n")

	enums := concept.AllOf[concept.EnumDeclaration](m, concept.IDEnumDeclaration)
	require.Len(t, enums, 1)
	members := enums[0].Members
	require.Len(t, members, 3)

	var got []string
	for _, member := range members {
		got = append(got, member.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Nil(t, members[0].Init)
	assert.Nil(t, members[1].Init)
	assert.Equal(t, concept.LiteralOf(concept.NumberLiteral(5)), members[2].Init)
}

func TestTypeAliases(t *testing.T) {
	t.Parallel()

	m := single(t, "type Pair<T> = [T, T];\ntype Id = string;\n")
	byName := map[string]concept.TypeAliasDeclaration{}
	for _, a := range concept.AllOf[concept.TypeAliasDeclaration](m, concept.IDTypeAliasDeclaration) {
		byName[a.TypeAliasName] = a
	}
	require.Len(t, byName, 2)
	require.Len(t, byName["Pair"].TypeParameters, 1)
	assert.Equal(t, concept.Primitive("string"), byName["Id"].Type)
}

func TestFunctionOverloadsCollapse(t *testing.T) {
	t.Parallel()

	m := single(t, "export function f(a: string): void;\n"+
		"export function f(a: number): void;\n"+
		"export function f(a: any) {}\n")

	fns := concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration)
	require.Len(t, fns, 1)
	exports := concept.AllOf[concept.ExportDeclaration](m, concept.IDExportDeclaration)
	require.Len(t, exports, 1)
	assert.Equal(t, "f", exports[0].Identifier)
}

func TestNamespaces(t *testing.T) {
	t.Parallel()

	m := single(t, "namespace NS {\n  export class Inner {}\n  export const v = 1;\n}\n")
	classes := concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration)
	require.Len(t, classes, 1)
	assert.Equal(t, `"/proj/a.ts".NS.Inner`, classes[0].FQN.Global)
	vars := variables(m)
	require.Contains(t, vars, "v")
	assert.Equal(t, `"/proj/a.ts".NS.v`, vars["v"].FQN.Global)
}

func TestImports(t *testing.T) {
	t.Parallel()

	m := extract(t, map[string]string{
		"/proj/a.ts": "export class A {}\nexport default function make() {}\n",
		"/proj/b.ts": "import make, { A as X } from './a';\n" +
			"import * as all from './a';\n" +
			"import type { A } from './a';\n" +
			"import { useState } from 'react';\n",
	}, "/proj/b.ts")

	imports := concept.AllOf[concept.ImportDeclaration](m, concept.IDImportDeclaration)
	require.Len(t, imports, 5)
	byLocal := map[string]concept.ImportDeclaration{}
	for _, imp := range imports {
		local := imp.Identifier
		if imp.Alias != "" {
			local = imp.Alias
		}
		if imp.Kind == concept.ExportNamespace {
			local = "all"
		}
		byLocal[local+"/"+string(imp.Kind)] = imp
	}

	x := byLocal["X/"+string(concept.ExportValue)]
	assert.Equal(t, "A", x.Identifier)
	assert.Equal(t, "/proj/a.ts", x.ImportSource)
	assert.Equal(t, `"/proj/a.ts".A`, x.TargetFQN)
	assert.Equal(t, "/proj/b.ts", x.SourceFilePathAbsolute)

	def := byLocal["make/"+string(concept.ExportValue)]
	assert.True(t, def.IsDefault)
	assert.Equal(t, "default", def.Identifier)

	ns := byLocal["all/"+string(concept.ExportNamespace)]
	assert.Equal(t, "*", ns.Identifier)
	assert.Equal(t, `"/proj/a.ts"`, ns.TargetFQN)

	typ := byLocal["A/"+string(concept.ExportType)]
	assert.Equal(t, `"/proj/a.ts".A`, typ.TargetFQN)

	ext := byLocal["useState/"+string(concept.ExportValue)]
	assert.Equal(t, "react", ext.ImportSource)
}

func TestExports(t *testing.T) {
	t.Parallel()

	m := extract(t, map[string]string{
		"/proj/b.ts": "export interface I {}\nexport const c = 1;\n",
		"/proj/a.ts": "class A {}\n" +
			"export interface Local {}\n" +
			"export { A as Alias };\n" +
			"export * from './b';\n" +
			"export { I as J } from './b';\n" +
			"export default class {}\n",
	}, "/proj/a.ts")

	byName := map[string]concept.ExportDeclaration{}
	for _, e := range concept.AllOf[concept.ExportDeclaration](m, concept.IDExportDeclaration) {
		byName[e.Identifier] = e
	}
	require.Len(t, byName, 5)

	assert.Equal(t, concept.ExportType, byName["Local"].Kind)
	assert.Equal(t, `"/proj/a.ts".Local`, byName["Local"].GlobalDeclFQN)

	alias := byName["A"]
	assert.Equal(t, "Alias", alias.Alias)
	assert.Equal(t, `"/proj/a.ts".A`, alias.GlobalDeclFQN)
	assert.Equal(t, concept.ExportValue, alias.Kind)

	star := byName["*"]
	assert.Equal(t, concept.ExportNamespace, star.Kind)
	assert.Equal(t, "/proj/b.ts", star.ImportSource)
	assert.Equal(t, `"/proj/b.ts"`, star.GlobalDeclFQN)

	reexport := byName["I"]
	assert.Equal(t, "J", reexport.Alias)
	assert.Equal(t, "/proj/b.ts", reexport.ImportSource)
	assert.Equal(t, `"/proj/b.ts".I`, reexport.GlobalDeclFQN)
	assert.Equal(t, concept.ExportType, reexport.Kind)

	def := byName["default"]
	assert.True(t, def.IsDefault)
	assert.Equal(t, `"/proj/a.ts".default`, def.GlobalDeclFQN)

	classes := concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration)
	names := map[string]bool{}
	for _, c := range classes {
		names[c.ClassName] = true
	}
	assert.Equal(t, map[string]bool{"A": true, "default": true}, names)
}

func TestModuleConcept(t *testing.T) {
	t.Parallel()

	m := extract(t, map[string]string{"/proj/src/a.ts": "export const a = 1;\n"}, "/proj/src/a.ts")
	mods := concept.AllOf[concept.Module](m, concept.IDModule)
	require.Len(t, mods, 1)
	assert.Equal(t, `"/proj/src/a.ts"`, mods[0].FQN.Global)
	assert.Equal(t, `"./src/a.ts"`, mods[0].FQN.Local)
	assert.Equal(t, "/src/a.ts", mods[0].Path)
}

func TestNoTransientConceptsAtProgramLevel(t *testing.T) {
	t.Parallel()

	m := single(t, "class A { @dec x: number = 1; m(@dec p: string) {} }\nenum E { A }\nfunction dec(...a: any[]) {}\n")
	flat := m.Flatten()
	for _, id := range transient {
		assert.Empty(t, flat[id], "transient concept %s leaked", id)
	}
}
