package traverser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Test Plan for the traverser:
// - Children are visited before PostChildren of their parent
// - Child concepts are labelled with their property; ordered properties are indexed
// - Enum members with and without initializers are labelled as members
// - Concepts a processor does not consume flow up to the program
// - Local context values are scoped to the subtree of the frame that set them
// - Condition.Check filters nodes after the frame is pushed
// - Processor errors abort the traversal and carry node position
// - A missing file yields an empty map

const idMark concept.ID = "mark"

type mark struct {
	Name string
}

func (mark) ConceptID() concept.ID { return idMark }

// recorder runs callbacks on nodes of the given kinds.
type recorder struct {
	kinds []string
	check func(ctx *Context) bool
	pre   func(ctx *Context) error
	post  func(ctx *Context, children concept.Map) (concept.Map, error)
}

func (p *recorder) Condition() ExecutionCondition {
	return ExecutionCondition{Kinds: p.kinds, Check: p.check}
}

func (p *recorder) PreChildren(ctx *Context) error {
	if p.pre == nil {
		return nil
	}
	return p.pre(ctx)
}

func (p *recorder) PostChildren(ctx *Context, children concept.Map) (concept.Map, error) {
	if p.post == nil {
		return nil, nil
	}
	return p.post(ctx, children)
}

func parse(t *testing.T, src string) *Global {
	t.Helper()
	f, err := ast.NewParser().ParseSource("/p/a.ts", src)
	require.NoError(t, err)
	return &Global{ProjectRoot: "/p", File: f}
}

func names(marks []mark) []string {
	out := make([]string, len(marks))
	for i, m := range marks {
		out[i] = m.Name
	}
	return out
}

func identifiers() *recorder {
	return &recorder{
		kinds: []string{"identifier"},
		post: func(ctx *Context, _ concept.Map) (concept.Map, error) {
			return concept.Of(mark{Name: ctx.Node.Text()}), nil
		},
	}
}

func TestTraverse_PropertiesAndOrder(t *testing.T) {
	t.Parallel()

	calls := &recorder{
		kinds: []string{"call_expression"},
		post: func(_ *Context, children concept.Map) (concept.Map, error) {
			callee := concept.Take[mark](children, PropFunction, idMark)
			var args []string
			for _, label := range IndexedProps(children, PropArguments) {
				args = append(args, names(concept.Take[mark](children, label, idMark))...)
			}
			require.Len(t, callee, 1)
			return concept.Of(mark{Name: callee[0].Name + "(" + strings.Join(args, ",") + ")"}), nil
		},
	}

	m, err := New(identifiers(), calls).Traverse(parse(t, "f(x, y);\n"))
	require.NoError(t, err)

	got := concept.AllOf[mark](m, idMark)
	assert.Equal(t, []string{"f(x,y)"}, names(got))
}

func TestTraverse_EnumMembersAreMembers(t *testing.T) {
	t.Parallel()

	members := &recorder{
		kinds: []string{"property_identifier", "enum_assignment"},
		check: func(ctx *Context) bool {
			return ctx.Node.Parent != nil && ctx.Node.Parent.Kind == "enum_body"
		},
		post: func(ctx *Context, _ concept.Map) (concept.Map, error) {
			n := ctx.Node
			if name := n.ChildByField("name"); name != nil {
				n = name
			}
			return concept.Of(mark{Name: n.Text()}), nil
		},
	}
	var got []string
	enums := &recorder{
		kinds: []string{"enum_declaration"},
		post: func(_ *Context, children concept.Map) (concept.Map, error) {
			got = names(concept.Take[mark](children, PropMembers, idMark))
			return nil, nil
		},
	}

	_, err := New(members, enums).Traverse(parse(t, "enum E { A, B, C = 5 }\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestTraverse_UnconsumedConceptsFlowUp(t *testing.T) {
	t.Parallel()

	m, err := New(identifiers()).Traverse(parse(t, "const a = b + c;\n"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, names(concept.AllOf[mark](m, idMark)))
}

func TestTraverse_LocalContextScope(t *testing.T) {
	t.Parallel()

	owner := NewKey[string]("test.owner")
	var seen []string

	classes := &recorder{
		kinds: []string{"class_declaration"},
		pre: func(ctx *Context) error {
			owner.Set(ctx.Locals, ctx.Node.ChildByField("name").Text())
			return nil
		},
	}
	members := &recorder{
		kinds: []string{"method_definition", "function_declaration"},
		pre: func(ctx *Context) error {
			name := ctx.Node.ChildByField("name").Text()
			if o, dist, ok := owner.Next(ctx.Locals); ok {
				seen = append(seen, o+"."+name)
				assert.Positive(t, dist)
				assert.False(t, owner.Has(ctx.Locals))
			} else {
				seen = append(seen, name)
			}
			return nil
		},
	}

	_, err := New(classes, members).Traverse(parse(t, "class A { m() {} }\nclass B { n() {} }\nfunction f() {}\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A.m", "B.n", "f"}, seen)
}

func TestTraverse_ConditionCheck(t *testing.T) {
	t.Parallel()

	onlyArgs := identifiers()
	onlyArgs.check = func(ctx *Context) bool {
		return ctx.Prop() == PropArguments
	}

	m, err := New(onlyArgs).Traverse(parse(t, "f(x);\nconst y = 1;\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names(concept.AllOf[mark](m, idMark)))
}

func TestTraverse_Error(t *testing.T) {
	t.Parallel()

	failing := &recorder{
		kinds: []string{"function_declaration"},
		post: func(ctx *Context, _ concept.Map) (concept.Map, error) {
			return nil, Invariant(ctx, "boom %d", 1)
		},
	}

	_, err := New(failing).Traverse(parse(t, "const a = 1;\n\nfunction f() {}\n"))
	require.Error(t, err)

	var inv *InvariantError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "/p/a.ts", inv.File)
	assert.Equal(t, "function_declaration", inv.Kind)
	assert.Equal(t, 3, inv.Line)
	assert.Equal(t, "boom 1", inv.Message)
	assert.Equal(t, "/p/a.ts:3: function_declaration: boom 1", err.Error())
}

func TestTraverse_NoFile(t *testing.T) {
	t.Parallel()

	m, err := New(identifiers()).Traverse(&Global{})
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestIndexedProps(t *testing.T) {
	t.Parallel()

	m := concept.Map{}
	m.Add(IndexedProp(PropElements, 10), mark{Name: "k"})
	m.Add(IndexedProp(PropElements, 2), mark{Name: "c"})
	m.Add(PropElements, mark{Name: "plain"})
	m.Add("elements[x]", mark{Name: "bad"})

	assert.Equal(t, []string{"elements[2]", "elements[10]"}, IndexedProps(m, PropElements))
}
