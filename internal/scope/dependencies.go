package scope

import (
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// CreateDependencyIndex starts collecting the dependencies registered in the
// current subtree. Their source is the FQN of the current scope.
func CreateDependencyIndex(ctx *traverser.Context) {
	CreateDependencyIndexFor(ctx, ConstructScopeFQN(ctx, false))
}

// CreateDependencyIndexFor is CreateDependencyIndex with an explicit source.
func CreateDependencyIndexFor(ctx *traverser.Context, source concept.FQN) {
	dependencySourceKey.Set(ctx.Locals, source)
	deps := []concept.Dependency{}
	dependencyIndexKey.Set(ctx.Locals, &deps)
}

// RegisterDependency adds a dependency from the nearest dependency source to
// target. With resolve the target is a local name that is resolved against
// the declaration index later.
func RegisterDependency(ctx *traverser.Context, target string, resolve bool) error {
	index, _, ok := dependencyIndexKey.Next(ctx.Locals)
	if !ok {
		return traverser.Invariant(ctx, "no dependency index for %q", target)
	}
	source, _, ok := dependencySourceKey.Next(ctx.Locals)
	if !ok {
		return traverser.Invariant(ctx, "no dependency source for %q", target)
	}
	dep := concept.NewDependency(source.Global, target, concept.KindDeclaration)
	if resolve {
		dep.Ref = ScheduleFqnResolution(ctx, target)
	}
	*index = append(*index, dep)
	return nil
}

// DependencySource returns the FQN dependencies are currently registered for.
func DependencySource(ctx *traverser.Context) (concept.FQN, bool) {
	source, _, ok := dependencySourceKey.Next(ctx.Locals)
	return source, ok
}

// GetRegisteredDependencies returns the dependencies of the nearest
// dependency index.
func GetRegisteredDependencies(ctx *traverser.Context) concept.Map {
	index, _, ok := dependencyIndexKey.Next(ctx.Locals)
	if !ok {
		return concept.Map{}
	}
	m := concept.Map{}
	for _, d := range *index {
		m.Add("", d)
	}
	return m
}

// MergeDependencies drops dependencies that cannot be linked and merges the
// rest per (source, target), summing cardinality. Order of first occurrence
// is kept.
//
// A dependency cannot be linked when its target is neither a module nor a
// module-qualified name, or when it points into its own source.
func MergeDependencies(deps []concept.Dependency) []concept.Dependency {
	var out []concept.Dependency
	pos := map[[2]string]int{}
	for _, d := range deps {
		if d.Target == "" {
			continue
		}
		if (d.Target[0] != '"' && d.TargetKind != concept.KindModule) || concept.IsWithin(d.Target, d.Source) {
			continue
		}
		if i, ok := pos[d.Key()]; ok {
			out[i].Cardinality += d.Cardinality
			continue
		}
		pos[d.Key()] = len(out)
		out = append(out, d)
	}
	return out
}
