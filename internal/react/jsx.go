package react

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// JSXElementProcessor records every custom element a declaration renders
// and registers a dependency on it. Intrinsic elements (lower-case or
// dashed tag names) are ignored.
type JSXElementProcessor struct {
	traverser.BaseProcessor
}

func (JSXElementProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"jsx_opening_element", "jsx_self_closing_element"}}
}

func (JSXElementProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	name := ctx.Node.ChildByField("name")
	if name == nil || intrinsic(name.Text()) {
		return nil, nil
	}
	source, ok := scope.DependencySource(ctx)
	if !ok {
		return nil, nil
	}
	tag := name.Text()
	dep := JSXDependency{Source: source.Global, Name: tag, Cardinality: 1}

	var fqn concept.FQN
	resolved := false
	if sym := ctx.Global.Checker.SymbolAtLocation(name); sym != nil {
		fqn, resolved = scope.SymbolFQN(ctx.Global, sym)
	}
	if resolved {
		dep.FQN = fqn
	} else {
		dep.FQN = concept.Identifier(tag)
		dep.Ref = scope.ScheduleFqnResolution(ctx, tag)
	}

	// Member tags are already covered by the dependency on their object.
	if name.Kind == "identifier" {
		var err error
		if resolved {
			err = scope.RegisterDependency(ctx, fqn.Global, false)
		} else {
			err = scope.RegisterDependency(ctx, tag, true)
		}
		if err != nil {
			return nil, err
		}
	}
	return concept.Of(dep), nil
}

func intrinsic(tag string) bool {
	if tag == "" || strings.Contains(tag, "-") || strings.Contains(tag, ":") {
		return true
	}
	r := []rune(tag)[0]
	return unicode.IsLower(r)
}

// JSXCollector merges the JSX dependencies of a file per source and
// element, summing their cardinality.
type JSXCollector struct {
	traverser.BaseProcessor
}

func (JSXCollector) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"program"}}
}

func (JSXCollector) PostChildren(_ *traverser.Context, children concept.Map) (concept.Map, error) {
	var deps []JSXDependency
	for _, c := range children.TakeAll(IDJSXDependency) {
		if d, ok := c.(JSXDependency); ok {
			deps = append(deps, d)
		}
	}
	out := concept.Map{}
	for _, d := range MergeJSXDependencies(deps) {
		out.Add("", d)
	}
	return out, nil
}

// MergeJSXDependencies merges dependencies with the same source and element
// FQN and sorts the result by source, then element.
func MergeJSXDependencies(deps []JSXDependency) []JSXDependency {
	var out []JSXDependency
	pos := map[[2]string]int{}
	for _, d := range deps {
		key := [2]string{d.Source, d.FQN.Global}
		if i, ok := pos[key]; ok {
			out[i].Cardinality += d.Cardinality
			continue
		}
		pos[key] = len(out)
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].FQN.Global < out[j].FQN.Global
	})
	return out
}
