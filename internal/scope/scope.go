// Package scope tracks lexical scopes during traversal, builds the
// fully-qualified names of declarations, and collects and resolves the
// dependencies registered while inside a declaration.
package scope

import (
	"strconv"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// DeclarationIndex maps the global FQN of a scope to the local names declared
// in it and their FQNs.
type DeclarationIndex map[string]map[string]concept.FQN

// fqnScope is one named or anonymous level of the FQN.
type fqnScope struct {
	identifier concept.FQN
	// nextAnonymous numbers the anonymous scopes opened directly inside.
	nextAnonymous int
}

var (
	declarationIndexKey = traverser.NewKey[DeclarationIndex]("declaration-index")
	fqnScopeKey         = traverser.NewKey[*fqnScope]("fqn-scope")
	dependencySourceKey = traverser.NewKey[concept.FQN]("dependency-source-fqn")
	dependencyIndexKey  = traverser.NewKey[*[]concept.Dependency]("dependency-index")
)

// AddScopeContext opens a new FQN level on the current node. An empty name
// opens an anonymous scope numbered after its siblings. The call is ignored
// when the node already opened a scope.
func AddScopeContext(ctx *traverser.Context, name string) {
	if fqnScopeKey.Has(ctx.Locals) {
		return
	}
	if name == "" {
		parent, _, ok := fqnScopeKey.Next(ctx.Locals)
		if !ok {
			return
		}
		name = strconv.Itoa(parent.nextAnonymous)
		parent.nextAnonymous++
	}
	fqnScopeKey.Set(ctx.Locals, &fqnScope{identifier: concept.Identifier(name)})
}

func openModuleScope(ctx *traverser.Context, module concept.FQN) {
	fqnScopeKey.Set(ctx.Locals, &fqnScope{identifier: module})
}

// ConstructScopeFQN joins all open scopes into the FQN of the current scope.
// With skipLast the scope opened by the current node is left out.
func ConstructScopeFQN(ctx *traverser.Context, skipLast bool) concept.FQN {
	var global, local []string
	for _, s := range scopes(ctx.Locals, skipLast) {
		global = append(global, s.Global)
		local = append(local, s.Local)
	}
	return concept.FQN{Global: strings.Join(global, "."), Local: strings.Join(local, ".")}
}

// ConstructFQNPrefix is ConstructScopeFQN followed by a trailing "." on both
// forms, ready to have a member name appended.
func ConstructFQNPrefix(ctx *traverser.Context, skipLast bool) concept.FQN {
	fqn := ConstructScopeFQN(ctx, skipLast)
	if fqn.IsZero() {
		return fqn
	}
	return concept.FQN{Global: fqn.Global + ".", Local: fqn.Local + "."}
}

func scopes(lc *traverser.LocalContexts, skipLast bool) []concept.FQN {
	n := lc.Len()
	if skipLast {
		n--
	}
	var out []concept.FQN
	for i := 0; i < n; i++ {
		if s, ok := fqnScopeKey.At(lc, i); ok {
			out = append(out, s.identifier)
		}
	}
	return out
}

// DeclarationIdentifier is the name a declaration contributes to its FQN:
// its own name, or "default" for an anonymous default export.
func DeclarationIdentifier(name string) string {
	if name == "" {
		return "default"
	}
	return name
}

// IsDefaultDeclaration reports whether n is the anonymous class or function
// of `export default class {}` or `export default function () {}`.
func IsDefaultDeclaration(n *ast.Node) bool {
	if !n.Is("class", "function_expression", "function", "generator_function") {
		return false
	}
	p := n.Parent
	return n.Field == "value" && p != nil && p.Kind == "export_statement" && p.HasToken("default")
}

// ConstructDeclarationFQN returns the FQN of a declaration named name made
// in the current scope, before the declaration opens its own scope.
func ConstructDeclarationFQN(ctx *traverser.Context, name string) concept.FQN {
	return ConstructScopeFQN(ctx, false).Append(DeclarationIdentifier(name))
}

// RegisterDeclaration records that localName refers to fqn in the current
// scope. With insideScope the declaration is registered while its own scope
// is open, so that scope is skipped.
func RegisterDeclaration(ctx *traverser.Context, localName string, fqn concept.FQN, insideScope bool) error {
	index, _, ok := declarationIndexKey.Next(ctx.Locals)
	if !ok {
		return traverser.Invariant(ctx, "no declaration index for %q", localName)
	}
	key := ConstructScopeFQN(ctx, insideScope).Global
	names, ok := index[key]
	if !ok {
		names = map[string]concept.FQN{}
		index[key] = names
	}
	names[localName] = fqn
	return nil
}

// ScheduleFqnResolution returns a placeholder for localName that is
// resolved against the declaration index once the file has been traversed.
func ScheduleFqnResolution(ctx *traverser.Context, localName string) *concept.Ref {
	var namespaces []string
	for _, s := range scopes(ctx.Locals, false) {
		namespaces = append(namespaces, s.Global)
	}
	return &concept.Ref{Name: localName, Scopes: namespaces}
}
