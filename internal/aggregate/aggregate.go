// Package aggregate turns the raw dependencies collected during traversal
// into the final dependency edges of a project.
//
// Dependencies are merged by (source, target), then rolled up and down the
// containment hierarchy: a module declares its top-level declarations, a
// class or interface declares its members, an enum declares its members and
// an external module declares the external declarations used from it. A
// dependency of a member is also a dependency of its class and module, and a
// dependency on a member is also a dependency on its class and module. Edges
// between a declaration and one of its own ancestors are never synthesized.
package aggregate

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// Prop is the property aggregated dependencies are stored under. A map that
// already carries it is not aggregated again.
const Prop = "aggregated-dependencies"

// Lookup resolves references left unresolved by their file.
type Lookup interface {
	Lookup(ref *concept.Ref) (concept.FQN, bool)
}

// Aggregate removes every dependency from m and adds the aggregated
// dependencies under Prop. Other concepts are left untouched. lookup may be
// nil.
func Aggregate(m concept.Map, lookup Lookup) concept.Map {
	if m.Has(Prop) {
		return m
	}

	var raw []concept.Dependency
	for _, c := range m.TakeAll(concept.IDDependency) {
		d, ok := c.(concept.Dependency)
		if !ok {
			continue
		}
		if d.Ref != nil && lookup != nil {
			if fqn, ok := lookup.Lookup(d.Ref); ok {
				d.Target = fqn.Global
				d.Ref = nil
			}
		}
		raw = append(raw, d)
	}

	h := newHierarchy(m, raw)
	deps := Merge(raw)

	direct := deps[:0:0]
	for _, d := range deps {
		if !h.isAncestor(d.Target, d.Source) {
			direct = append(direct, d)
		}
	}

	up := append([]concept.Dependency{}, direct...)
	for _, d := range direct {
		for _, p := range h.ancestors(d.Target) {
			if !h.isAncestor(p, d.Source) && p != d.Source {
				up = append(up, rollup(d, d.Source, p))
			}
		}
	}

	all := append([]concept.Dependency{}, up...)
	for _, d := range up {
		for _, p := range h.ancestors(d.Source) {
			if !h.isAncestor(p, d.Target) && p != d.Target {
				all = append(all, rollup(d, p, d.Target))
			}
		}
	}

	for _, d := range Merge(all) {
		m.Add(Prop, d)
	}
	return m
}

func rollup(d concept.Dependency, source, target string) concept.Dependency {
	out := concept.NewDependency(source, target, kindOf(target))
	out.Cardinality = d.Cardinality
	return out
}

func kindOf(fqn string) concept.DependencyKind {
	if concept.IsModule(fqn) {
		return concept.KindModule
	}
	return concept.KindDeclaration
}

// Merge collapses dependencies with the same source and target, summing
// their cardinality. The result is ordered by source, then target.
func Merge(deps []concept.Dependency) []concept.Dependency {
	byKey := map[[2]string]int{}
	var out []concept.Dependency
	for _, d := range deps {
		if i, ok := byKey[d.Key()]; ok {
			out[i].Cardinality += d.Cardinality
			continue
		}
		byKey[d.Key()] = len(out)
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// hierarchy is the containment graph of a project. Edges point from a
// declaration to the module or declaration that declares it.
type hierarchy struct {
	g graph.Graph[string, string]
}

func newHierarchy(m concept.Map, deps []concept.Dependency) *hierarchy {
	h := &hierarchy{g: graph.New(graph.StringHash, graph.Directed())}

	for _, mod := range concept.AllOf[concept.Module](m, concept.IDModule) {
		h.vertex(mod.FQN.Global)
	}
	var members [][2]string
	declare := func(fqn concept.FQN) {
		if fqn.Global != "" {
			h.vertex(fqn.Global)
		}
	}
	member := func(owner, fqn concept.FQN) {
		if fqn.Global != "" {
			h.vertex(fqn.Global)
			members = append(members, [2]string{fqn.Global, owner.Global})
		}
	}

	for _, c := range concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration) {
		declare(c.FQN)
		for _, p := range c.Properties {
			member(c.FQN, p.FQN)
		}
		for _, meth := range c.Methods {
			member(c.FQN, meth.FQN)
		}
		for _, a := range c.AccessorProperties {
			member(c.FQN, a.FQN)
		}
		if c.Constructor != nil {
			member(c.FQN, c.Constructor.FQN)
			for _, pp := range c.Constructor.ParameterProperties {
				member(c.FQN, pp.FQN)
			}
		}
	}
	for _, i := range concept.AllOf[concept.InterfaceDeclaration](m, concept.IDInterfaceDeclaration) {
		declare(i.FQN)
		for _, p := range i.Properties {
			member(i.FQN, p.FQN)
		}
		for _, meth := range i.Methods {
			member(i.FQN, meth.FQN)
		}
		for _, a := range i.AccessorProperties {
			member(i.FQN, a.FQN)
		}
	}
	for _, e := range concept.AllOf[concept.EnumDeclaration](m, concept.IDEnumDeclaration) {
		declare(e.FQN)
		for _, em := range e.Members {
			member(e.FQN, em.FQN)
		}
	}
	for _, f := range concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration) {
		declare(f.FQN)
	}
	for _, v := range concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration) {
		declare(v.FQN)
	}
	for _, a := range concept.AllOf[concept.TypeAliasDeclaration](m, concept.IDTypeAliasDeclaration) {
		declare(a.FQN)
	}

	for _, e := range members {
		_ = h.g.AddEdge(e[0], e[1])
	}

	// Every declaration without an owning class-like declaration belongs to
	// the module of its FQN.
	vertices, _ := h.g.AdjacencyMap()
	for v, out := range vertices {
		if len(out) > 0 || concept.IsModule(v) {
			continue
		}
		if p := concept.ExtractPath(v); p != "" {
			mod := `"` + p + `"`
			if _, err := h.g.Vertex(mod); err == nil {
				_ = h.g.AddEdge(v, mod)
			}
		}
	}

	// External declarations are declared by their package.
	for _, d := range deps {
		if d.TargetKind != concept.KindDeclaration {
			continue
		}
		p := concept.ExtractPath(d.Target)
		if p == "" || !paths.IsNodeModule(p) {
			continue
		}
		mod := `"` + p + `"`
		h.vertex(d.Target)
		h.vertex(mod)
		_ = h.g.AddEdge(d.Target, mod)
	}
	return h
}

func (h *hierarchy) vertex(fqn string) {
	_ = h.g.AddVertex(fqn)
}

// ancestors returns the modules and declarations that transitively declare
// fqn, nearest first.
func (h *hierarchy) ancestors(fqn string) []string {
	if _, err := h.g.Vertex(fqn); err != nil {
		return nil
	}
	var out []string
	_ = graph.DFS(h.g, fqn, func(v string) bool {
		if v != fqn {
			out = append(out, v)
		}
		return false
	})
	return out
}

// isAncestor reports whether a transitively declares b.
func (h *hierarchy) isAncestor(a, b string) bool {
	for _, p := range h.ancestors(b) {
		if p == a {
			return true
		}
	}
	return false
}
