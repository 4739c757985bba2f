package react

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/postprocess"
	"github.com/mvp-joe/tsconcepts/internal/processors"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// Test Plan for the React feature:
// - Custom elements are counted per rendering declaration, intrinsic ones
//   are ignored
// - Rendering a custom element registers a dependency on it
// - useState array patterns yield a state hook owned by the component
// - Components are recognized by return type, function-typed variables and
//   React base classes
// - Re-running the component post-processor does not duplicate components

func extractTSX(t *testing.T, src string) concept.Map {
	t.Helper()
	f, err := ast.NewParser().ParseSource("/proj/app.tsx", src)
	require.NoError(t, err)
	c := checker.New([]*ast.File{f}, checker.Options{ProjectRoot: "/proj"})
	tr := processors.Assemble(scope.NewRegistry(), Feature)
	m, err := tr.Traverse(&traverser.Global{ProjectRoot: "/proj", File: f, Checker: c})
	require.NoError(t, err)
	return m
}

func TestJSXDependencies(t *testing.T) {
	t.Parallel()

	m := extractTSX(t, `
function Button() { return <button />; }
export function App() {
  return <div><Button /><Button></Button><span /></div>;
}
`)
	deps := concept.AllOf[JSXDependency](m, IDJSXDependency)
	require.Len(t, deps, 1)
	assert.Equal(t, `"/proj/app.tsx".App`, deps[0].Source)
	assert.Equal(t, `"/proj/app.tsx".Button`, deps[0].FQN.Global)
	assert.Equal(t, "Button", deps[0].Name)
	assert.Equal(t, 2, deps[0].Cardinality)
	assert.Nil(t, deps[0].Ref)

	var toButton []concept.Dependency
	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		if d.Source == `"/proj/app.tsx".App` && d.Target == `"/proj/app.tsx".Button` {
			toButton = append(toButton, d)
		}
	}
	require.Len(t, toButton, 1)
	assert.Equal(t, 2, toButton[0].Cardinality)
}

func TestStateHooks(t *testing.T) {
	t.Parallel()

	m := extractTSX(t, `
export function Counter() {
  const [count, setCount] = useState(0);
  const [open] = useState(false);
  return <div>{count}</div>;
}
`)
	hooks := concept.AllOf[StateHook](m, IDStateHook)
	require.Len(t, hooks, 1)
	assert.Equal(t, StateHook{
		ComponentFQN: `"/proj/app.tsx".Counter`,
		PropName:     "count",
		SetterName:   "setCount",
	}, hooks[0])
}

func TestIntrinsic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want bool
	}{
		{"div", true},
		{"my-element", true},
		{"svg:rect", true},
		{"Button", false},
		{"Foo.Bar", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, intrinsic(tt.tag))
		})
	}
}

func TestComponentPostProcessor(t *testing.T) {
	t.Parallel()

	element := concept.TypeDeclared{FQN: concept.Identifier(`"react".React.JSX.Element`)}
	m := concept.Of(
		concept.FunctionDeclaration{
			FunctionName: "App",
			FQN:          concept.Identifier(`"/p/a.tsx".App`),
			ReturnType:   element,
		},
		concept.FunctionDeclaration{
			FunctionName: "helper",
			FQN:          concept.Identifier(`"/p/a.tsx".helper`),
			ReturnType:   concept.Primitive("number"),
		},
		concept.VariableDeclaration{
			VariableName: "Card",
			FQN:          concept.Identifier(`"/p/a.tsx".Card`),
			Type: concept.TypeFunction{
				ReturnType: concept.TypeUnion{Types: []concept.Type{element, concept.Primitive("null")}},
			},
		},
		concept.ClassDeclaration{
			ClassName:    "Legacy",
			FQN:          concept.Identifier(`"/p/a.tsx".Legacy`),
			ExtendsClass: &concept.TypeDeclared{FQN: concept.Identifier(`"react".React.Component`)},
		},
		concept.ClassDeclaration{
			ClassName: "Plain",
			FQN:       concept.Identifier(`"/p/a.tsx".Plain`),
		},
	)
	p := &postprocess.Project{Root: "/p", Concepts: m}

	errs := postprocess.Run([]*postprocess.Project{p}, ComponentPostProcessor{}, ComponentPostProcessor{})
	assert.Empty(t, errs)

	got := concept.AllOf[Component](m, IDComponent)
	assert.Equal(t, []Component{
		{FQN: concept.Identifier(`"/p/a.tsx".App`), ComponentName: "App"},
		{FQN: concept.Identifier(`"/p/a.tsx".Card`), ComponentName: "Card"},
		{FQN: concept.Identifier(`"/p/a.tsx".Legacy`), ComponentName: "Legacy", ClassComponent: true},
	}, got)
}

func TestJSXDependencyResolvesRefs(t *testing.T) {
	t.Parallel()

	dep := JSXDependency{Name: "Foo", FQN: concept.Identifier("Foo"), Ref: &concept.Ref{Name: "Foo"}}
	lookup := func(ref *concept.Ref) (concept.FQN, bool) {
		return concept.Identifier(`"/p/foo.ts".Foo`), ref.Name == "Foo"
	}
	got := concept.ResolveConcept(dep, lookup).(JSXDependency)
	assert.Equal(t, `"/p/foo.ts".Foo`, got.FQN.Global)
	assert.Nil(t, got.Ref)
}
