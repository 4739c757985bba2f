package scope

import (
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// DependencyResolution opens the module scope of a file and owns its
// declaration index. After the file has been traversed it resolves every
// scheduled reference and merges the dependencies of the file.
type DependencyResolution struct {
	traverser.BaseProcessor
	registry *Registry
}

// NewDependencyResolution creates the processor. Global declarations of
// script files are recorded in registry when it is not nil.
func NewDependencyResolution(registry *Registry) *DependencyResolution {
	return &DependencyResolution{registry: registry}
}

func (p *DependencyResolution) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"program"}}
}

func (p *DependencyResolution) PreChildren(ctx *traverser.Context) error {
	module := paths.ModuleFQN(ctx.Global.ProjectRoot, ctx.ModulePath())
	declarationIndexKey.Set(ctx.Locals, DeclarationIndex{})
	openModuleScope(ctx, module)
	CreateDependencyIndexFor(ctx, module)
	return nil
}

func (p *DependencyResolution) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	index, ok := declarationIndexKey.Current(ctx.Locals)
	if !ok {
		return nil, traverser.Invariant(ctx, "declaration index missing on program")
	}
	lookup := func(ref *concept.Ref) (concept.FQN, bool) {
		return index.Lookup(ref)
	}

	resolved := concept.Resolve(children, lookup)
	for prop := range children {
		delete(children, prop)
	}
	for prop, inner := range resolved {
		children[prop] = inner
	}

	var deps []concept.Dependency
	for _, c := range children.TakeAll(concept.IDDependency) {
		if d, ok := c.(concept.Dependency); ok {
			deps = append(deps, d)
		}
	}
	if own, ok := dependencyIndexKey.Current(ctx.Locals); ok {
		for _, d := range *own {
			deps = append(deps, concept.ResolveConcept(d, lookup).(concept.Dependency))
		}
	}

	if p.registry != nil && !ctx.Global.Checker.IsModuleFile(ctx.Global.File) {
		module := paths.ModuleFQN(ctx.Global.ProjectRoot, ctx.ModulePath())
		for name, fqn := range index[module.Global] {
			p.registry.Register(name, fqn)
		}
	}

	out := concept.Map{}
	for _, d := range MergeDependencies(deps) {
		out.Add("", d)
	}
	return out, nil
}

// Lookup resolves a reference against the declarations registered in the
// scopes enclosing it, innermost first.
func (idx DeclarationIndex) Lookup(ref *concept.Ref) (concept.FQN, bool) {
	if ref == nil {
		return concept.FQN{}, false
	}
	return resolveDotted(ref.Name, func(name string) (concept.FQN, bool) {
		for i := len(ref.Scopes); i > 0; i-- {
			if fqn, ok := idx[strings.Join(ref.Scopes[:i], ".")][name]; ok {
				return fqn, true
			}
		}
		return concept.FQN{}, false
	})
}

// ScopeProcessor opens anonymous scopes for blocks and loops.
type ScopeProcessor struct {
	traverser.BaseProcessor
}

func (ScopeProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"statement_block", "for_statement", "for_in_statement"},
		Check: func(ctx *traverser.Context) bool {
			// namespace bodies belong to the namespace scope
			p := ctx.Node.Parent
			return p == nil || !p.Is("internal_module", "module")
		},
	}
}

func (ScopeProcessor) PreChildren(ctx *traverser.Context) error {
	AddScopeContext(ctx, "")
	return nil
}

// DeclarationScopeProcessor opens a named scope for every declaration, also
// for those that do not become declaration concepts.
type DeclarationScopeProcessor struct {
	traverser.BaseProcessor
}

func (DeclarationScopeProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{
			"class_declaration", "abstract_class_declaration", "function_declaration",
			"generator_function_declaration", "function_signature", "interface_declaration",
			"type_alias_declaration", "enum_declaration",
		},
	}
}

func (DeclarationScopeProcessor) PreChildren(ctx *traverser.Context) error {
	name := ""
	if n := ctx.Node.ChildByField("name"); n != nil {
		name = n.Text()
	}
	AddScopeContext(ctx, name)
	return nil
}

// IdentifierDependency registers a dependency for every identifier that
// references a declaration. Names that declare something, member names,
// parameters, patterns and import/export specifiers are skipped, as are
// references to block-local declarations.
type IdentifierDependency struct {
	traverser.BaseProcessor
}

func (IdentifierDependency) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"identifier", "shorthand_property_identifier"},
		Check: func(ctx *traverser.Context) bool {
			return isReference(ctx.Node)
		},
	}
}

func isReference(n *ast.Node) bool {
	parent := n.Parent
	if parent == nil {
		return false
	}
	switch n.Field {
	case "name", "alias", "pattern", "parameter", "label":
		return false
	}
	switch parent.Kind {
	case "import_specifier", "export_specifier", "namespace_import", "namespace_export",
		"import_clause", "import_require_clause", "array_pattern", "object_pattern",
		"rest_pattern", "nested_type_identifier", "type_predicate":
		return false
	case "pair_pattern":
		return n.Field != "value"
	case "assignment_pattern", "object_assignment_pattern":
		return n.Field != "left"
	case "extends_clause":
		return n.Field != "value"
	case "call_expression":
		// tagged template tag
		if n.Field == "function" {
			if args := parent.ChildByField("arguments"); args != nil && args.Kind == "template_string" {
				return false
			}
		}
	case "arguments":
		// import("./x") specifier expressions
		if call := parent.Parent; call != nil && call.Kind == "call_expression" {
			if fn := call.ChildByField("function"); fn != nil && fn.Kind == "import" {
				return false
			}
		}
	}
	return true
}

func (IdentifierDependency) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	c := ctx.Global.Checker
	sym := c.SymbolAtLocation(ctx.Node)
	if sym == nil || sym.BlockLocal || sym.Any(checker.SymParameter|checker.SymTypeParameter) {
		return nil, nil
	}
	if c.IsStandardLibrary(sym) {
		return nil, nil
	}
	fqn, ok := SymbolFQN(ctx.Global, sym)
	if ok {
		return nil, RegisterDependency(ctx, fqn.Global, false)
	}
	return nil, RegisterDependency(ctx, ctx.Node.Text(), true)
}

// MemberExpressionDependency registers a dependency on `fqn.member` when the
// object of a member access has a declared type.
type MemberExpressionDependency struct {
	traverser.BaseProcessor
}

func (MemberExpressionDependency) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"member_expression"}}
}

func (MemberExpressionDependency) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	prop := ctx.Node.ChildByField("property")
	object := ctx.Node.ChildByField("object")
	if prop == nil || object == nil || prop.Kind != "property_identifier" {
		return nil, nil
	}
	c := ctx.Global.Checker
	t := c.TypeAtLocation(object)
	if t == nil || t.Is(checker.TypeParameter) {
		return nil, nil
	}
	sym := t.AliasSymbol
	if sym == nil {
		sym = t.Symbol
	}
	if sym == nil || c.IsStandardLibrary(sym) {
		return nil, nil
	}
	if sym.Has(checker.SymEnumMember) && sym.Parent != nil {
		sym = sym.Parent
	}
	fqn, ok := SymbolFQN(ctx.Global, sym)
	if !ok {
		return nil, nil
	}
	return nil, RegisterDependency(ctx, fqn.Global+"."+prop.Text(), false)
}
