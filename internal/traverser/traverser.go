// Package traverser walks syntax trees bottom-up and dispatches nodes to
// processors that turn them into concepts.
package traverser

import (
	"fmt"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// ExecutionCondition selects the nodes a processor runs on. Check is
// optional and is evaluated after the node's frame has been pushed.
type ExecutionCondition struct {
	Kinds []string
	Check func(ctx *Context) bool
}

// Processor extracts concepts from a node and the concepts of its children.
type Processor interface {
	Condition() ExecutionCondition
	// PreChildren runs before the children are visited. Use it to set up
	// local contexts for the subtree.
	PreChildren(ctx *Context) error
	// PostChildren runs after the children are visited. Child concepts it
	// consumes must be removed from children; what remains is passed up.
	PostChildren(ctx *Context, children concept.Map) (concept.Map, error)
}

// BaseProcessor supplies no-op hooks.
type BaseProcessor struct{}

func (BaseProcessor) PreChildren(*Context) error { return nil }

func (BaseProcessor) PostChildren(*Context, concept.Map) (concept.Map, error) {
	return nil, nil
}

// InvariantError reports a broken pipeline invariant. It aborts the
// traversal of the current file.
type InvariantError struct {
	File    string
	Kind    string
	Line    int
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
}

// Invariant creates an InvariantError for the node of ctx.
func Invariant(ctx *Context, format string, args ...any) *InvariantError {
	e := &InvariantError{Message: fmt.Sprintf(format, args...)}
	if ctx != nil && ctx.Node != nil {
		e.Kind = ctx.Node.Kind
		e.Line = ctx.Node.Start.Line + 1
	}
	if ctx != nil && ctx.Global != nil && ctx.Global.File != nil {
		e.File = ctx.Global.File.Path
	}
	return e
}

// Traverser dispatches nodes to processors in registration order.
type Traverser struct {
	byKind map[string][]Processor
}

// New creates a traverser for the given processors.
func New(processors ...Processor) *Traverser {
	t := &Traverser{byKind: map[string][]Processor{}}
	for _, p := range processors {
		for _, kind := range p.Condition().Kinds {
			t.byKind[kind] = append(t.byKind[kind], p)
		}
	}
	return t
}

// Traverse walks the file of g and returns the concepts produced for it.
func (t *Traverser) Traverse(g *Global) (concept.Map, error) {
	if g.File == nil || g.File.Root == nil {
		return concept.Map{}, nil
	}
	lc := &LocalContexts{}
	return t.visit(g, lc, g.File.Root, "", 0)
}

func (t *Traverser) visit(g *Global, lc *LocalContexts, node *ast.Node, prop string, index int) (concept.Map, error) {
	lc.push(node, prop, index)
	defer lc.pop()

	ctx := &Context{Node: node, Global: g, Locals: lc}

	var active []Processor
	for _, p := range t.byKind[node.Kind] {
		cond := p.Condition()
		if cond.Check == nil || cond.Check(ctx) {
			active = append(active, p)
		}
	}

	for _, p := range active {
		if err := p.PreChildren(ctx); err != nil {
			return nil, err
		}
	}

	children := concept.Map{}
	counts := map[string]int{}
	for _, child := range node.Children {
		if !child.Named {
			continue
		}
		childProp := PropertyName(node, child)
		m, err := t.visit(g, lc, child, childProp, counts[childProp])
		if err != nil {
			return nil, err
		}
		if !IsPassThrough(child.Kind) {
			label := childProp
			if orderedProps[childProp] {
				label = IndexedProp(childProp, counts[childProp])
			}
			m = m.Unify(label)
		}
		counts[childProp]++
		children.Merge(m)
	}

	produced := make([]concept.Map, 0, len(active))
	for _, p := range active {
		out, err := p.PostChildren(ctx, children)
		if err != nil {
			return nil, err
		}
		if out != nil {
			produced = append(produced, out)
		}
	}

	result := concept.Merge(children)
	result.Merge(produced...)
	return result, nil
}
