package processors

import (
	"path"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// ModuleProcessor emits the module concept of every file.
type ModuleProcessor struct {
	traverser.BaseProcessor
}

func (ModuleProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"program"}}
}

func (ModuleProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	root := ctx.Global.ProjectRoot
	return concept.Of(concept.Module{
		FQN:  paths.ModuleFQN(root, ctx.ModulePath()),
		Path: paths.GraphPath(paths.Relative(root, ctx.ModulePath())),
	}), nil
}

// NamespaceProcessor opens a named scope for `namespace X {}` so that its
// declarations are qualified by the namespace name.
type NamespaceProcessor struct {
	traverser.BaseProcessor
}

func (NamespaceProcessor) Condition() traverser.ExecutionCondition {
	cond := declarationCondition("internal_module", "module")
	check := cond.Check
	cond.Check = func(ctx *traverser.Context) bool {
		name := ctx.Node.ChildByField("name")
		return name != nil && name.Kind != "string" && check(ctx)
	}
	return cond
}

func (NamespaceProcessor) PreChildren(ctx *traverser.Context) error {
	name := strings.ReplaceAll(ctx.Node.ChildByField("name").Text(), " ", "")
	first, _, _ := strings.Cut(name, ".")
	if err := scope.RegisterDeclaration(ctx, first, scope.ConstructDeclarationFQN(ctx, first), false); err != nil {
		return err
	}
	scope.AddScopeContext(ctx, name)
	return nil
}

// sourceModule resolves the module specifier of an import or re-export. It
// returns the absolute path of a project file, or the specifier of a
// package.
func sourceModule(ctx *traverser.Context, spec string) (p string, external bool) {
	if abs, ok := ctx.Global.Checker.ResolveModule(ctx.Global.File, spec); ok {
		return abs, false
	}
	if paths.IsNodeModule(spec) {
		return spec, true
	}
	return path.Join(path.Dir(ctx.ModulePath()), spec), false
}

func moduleGlobal(ctx *traverser.Context, p string, external bool) string {
	if external {
		return `"` + p + `"`
	}
	return paths.ModuleFQN(ctx.Global.ProjectRoot, p).Global
}

func sourceSpecifier(stmt *ast.Node) (string, bool) {
	src := stmt.ChildByField("source")
	if src == nil {
		return "", false
	}
	return ast.StringValue(src), true
}

// symbolGlobal returns the global FQN of what sym names, if it is known.
func symbolGlobal(ctx *traverser.Context, sym *checker.Symbol) (string, bool) {
	if sym == nil {
		return "", false
	}
	fqn, ok := scope.SymbolFQN(ctx.Global, sym)
	if !ok || fqn.IsZero() {
		return "", false
	}
	return fqn.Global, true
}

// ImportProcessor emits one import declaration per imported binding and
// registers the local name of every binding. Imports are not dependencies
// on their own; uses of the imported names are.
type ImportProcessor struct {
	traverser.BaseProcessor
}

func (ImportProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"import_statement"},
		Check: func(ctx *traverser.Context) bool {
			p := ctx.Node.Parent
			return p != nil && p.Kind == "program"
		},
	}
}

type importBinding struct {
	node      *ast.Node
	imported  string
	local     string
	isDefault bool
	kind      concept.ExportKind
}

func importBindings(stmt *ast.Node) []importBinding {
	clause := stmt.FirstChildOfKind("import_clause")
	if clause == nil {
		return nil
	}
	kind := concept.ExportValue
	if stmt.HasToken("type") {
		kind = concept.ExportType
	}
	var out []importBinding
	for _, c := range clause.NamedChildren() {
		switch c.Kind {
		case "identifier":
			out = append(out, importBinding{node: c, imported: "default", local: c.Text(), isDefault: true, kind: kind})
		case "namespace_import":
			if id := c.FirstChildOfKind("identifier"); id != nil {
				out = append(out, importBinding{node: c, imported: "*", local: id.Text(), kind: concept.ExportNamespace})
			}
		case "named_imports":
			for _, spec := range c.ChildrenOfKind("import_specifier") {
				name := spec.ChildByField("name")
				if name == nil {
					continue
				}
				imported := ast.StringValue(name)
				local := imported
				if alias := spec.ChildByField("alias"); alias != nil {
					local = alias.Text()
				}
				k := kind
				if spec.HasToken("type") {
					k = concept.ExportType
				}
				out = append(out, importBinding{node: spec, imported: imported, local: local, isDefault: imported == "default", kind: k})
			}
		}
	}
	return out
}

func (ImportProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	n := ctx.Node
	spec, ok := sourceSpecifier(n)
	if !ok {
		return nil, nil
	}
	source, external := sourceModule(ctx, spec)
	module := moduleGlobal(ctx, source, external)

	out := concept.Map{}
	for _, b := range importBindings(n) {
		target := module
		if b.kind != concept.ExportNamespace {
			target = module + "." + b.imported
		}
		if t, ok := ctx.Global.Checker.ImportOf(b.node); ok {
			if global, ok := symbolGlobal(ctx, t.Symbol); ok {
				target = global
			}
		}
		if err := scope.RegisterDeclaration(ctx, b.local, paths.ToFQN(ctx.Global.ProjectRoot, target), false); err != nil {
			return nil, err
		}
		imp := concept.ImportDeclaration{
			Identifier:             b.imported,
			IsDefault:              b.isDefault,
			Kind:                   b.kind,
			ImportSource:           source,
			TargetFQN:              target,
			SourceFilePathAbsolute: ctx.ModulePath(),
		}
		if b.local != b.imported {
			imp.Alias = b.local
		}
		out.Add("", imp)
	}
	return out, nil
}

// ExportProcessor emits the export declarations of a module: exported
// declarations, export lists, default exports and re-exports.
type ExportProcessor struct {
	traverser.BaseProcessor
}

func (ExportProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"export_statement"},
		Check: func(ctx *traverser.Context) bool {
			p := ctx.Node.Parent
			return p != nil && p.Kind == "program"
		},
	}
}

func (ExportProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	n := ctx.Node
	base := concept.ExportDeclaration{
		Kind:                   concept.ExportValue,
		IsDefault:              n.HasToken("default"),
		SourceFilePathAbsolute: ctx.ModulePath(),
	}
	if n.HasToken("type") {
		base.Kind = concept.ExportType
	}

	var exports []concept.ExportDeclaration
	switch {
	case n.ChildByField("declaration") != nil:
		exports = declarationExports(ctx, n, base)
	case n.FirstChildOfKind("export_clause") != nil:
		exports = listExports(ctx, n, base)
	case n.ChildByField("value") != nil:
		exports = []concept.ExportDeclaration{defaultExport(ctx, n.ChildByField("value"), base)}
	default:
		exports = starExport(ctx, n, base)
	}

	out := concept.Map{}
	for _, e := range exports {
		out.Add("", e)
	}
	return out, nil
}

// exportedNames returns the names a declaration introduces.
func exportedNames(decl *ast.Node) []string {
	switch decl.Kind {
	case "lexical_declaration", "variable_declaration":
		var out []string
		for _, d := range decl.ChildrenOfKind("variable_declarator") {
			for _, id := range checker.PatternIdentifiers(d.ChildByField("name")) {
				out = append(out, id.Text())
			}
		}
		return out
	case "internal_module", "module":
		name := decl.ChildByField("name")
		if name == nil || name.Kind == "string" {
			return nil
		}
		first, _, _ := strings.Cut(name.Text(), ".")
		return []string{strings.TrimSpace(first)}
	case "function_signature":
		if isOverloadedFunction(decl) {
			return nil
		}
	}
	if name := declarationName(decl); name != "" {
		return []string{name}
	}
	return nil
}

func declarationExports(ctx *traverser.Context, stmt *ast.Node, base concept.ExportDeclaration) []concept.ExportDeclaration {
	decl := unwrapStatement(stmt)
	if decl == nil {
		return nil
	}
	if decl.Is("interface_declaration", "type_alias_declaration") {
		base.Kind = concept.ExportType
	}
	var out []concept.ExportDeclaration
	for _, name := range exportedNames(decl) {
		e := base
		e.Identifier = name
		e.GlobalDeclFQN = scope.ConstructDeclarationFQN(ctx, name).Global
		out = append(out, e)
	}
	return out
}

// symbolKind tells whether sym is only a type.
func symbolKind(c *checker.Checker, sym *checker.Symbol, fallback concept.ExportKind) concept.ExportKind {
	sym = c.Resolve(sym)
	if sym == nil {
		return fallback
	}
	switch {
	case sym.Has(checker.SymModule):
		return concept.ExportNamespace
	case sym.Any(checker.SymClass | checker.SymFunction | checker.SymVariable | checker.SymEnum | checker.SymNamespace):
		return fallback
	case sym.Any(checker.SymInterface | checker.SymTypeAlias):
		return concept.ExportType
	}
	return fallback
}

func listExports(ctx *traverser.Context, stmt *ast.Node, base concept.ExportDeclaration) []concept.ExportDeclaration {
	c := ctx.Global.Checker
	spec, reexport := sourceSpecifier(stmt)
	var source string
	var module string
	if reexport {
		var external bool
		source, external = sourceModule(ctx, spec)
		module = moduleGlobal(ctx, source, external)
		base.ImportSource = source
	}

	var out []concept.ExportDeclaration
	for _, s := range stmt.FirstChildOfKind("export_clause").ChildrenOfKind("export_specifier") {
		nameNode := s.ChildByField("name")
		if nameNode == nil {
			continue
		}
		name := ast.StringValue(nameNode)
		exported := name
		if alias := s.ChildByField("alias"); alias != nil {
			exported = ast.StringValue(alias)
		}

		e := base
		e.Identifier = name
		e.IsDefault = exported == "default"
		if exported != name && exported != "default" {
			e.Alias = exported
		}
		if s.HasToken("type") {
			e.Kind = concept.ExportType
		}

		var sym *checker.Symbol
		if reexport {
			e.GlobalDeclFQN = module + "." + name
			if t, ok := c.ImportOf(s); ok {
				sym = t.Symbol
			}
		} else {
			e.GlobalDeclFQN = scope.ConstructDeclarationFQN(ctx, name).Global
			sym = c.SymbolAtLocation(nameNode)
		}
		if global, ok := symbolGlobal(ctx, sym); ok {
			e.GlobalDeclFQN = global
		}
		if sym != nil && e.Kind != concept.ExportType {
			e.Kind = symbolKind(c, sym, e.Kind)
		}
		out = append(out, e)
	}
	return out
}

func defaultExport(ctx *traverser.Context, value *ast.Node, base concept.ExportDeclaration) concept.ExportDeclaration {
	e := base
	e.IsDefault = true
	e.Identifier = "default"
	value = ast.Unwrap(value)
	switch {
	case value.Kind == "identifier":
		e.Identifier = value.Text()
		e.GlobalDeclFQN = scope.ConstructDeclarationFQN(ctx, value.Text()).Global
		sym := ctx.Global.Checker.SymbolAtLocation(value)
		if global, ok := symbolGlobal(ctx, sym); ok {
			e.GlobalDeclFQN = global
		}
		if sym != nil {
			e.Kind = symbolKind(ctx.Global.Checker, sym, e.Kind)
		}
	case scope.IsDefaultDeclaration(value):
		name := declarationName(value)
		if name != "" {
			e.Identifier = name
		}
		e.GlobalDeclFQN = scope.ConstructDeclarationFQN(ctx, name).Global
	}
	return e
}

// starExport handles `export * from "m"` and `export * as ns from "m"`.
// The exported names of m are expanded after all modules are known.
func starExport(ctx *traverser.Context, stmt *ast.Node, base concept.ExportDeclaration) []concept.ExportDeclaration {
	spec, ok := sourceSpecifier(stmt)
	if !ok {
		return nil
	}
	source, external := sourceModule(ctx, spec)
	e := base
	e.Identifier = "*"
	e.Kind = concept.ExportNamespace
	e.ImportSource = source
	e.GlobalDeclFQN = moduleGlobal(ctx, source, external)
	if ns := stmt.FirstChildOfKind("namespace_export"); ns != nil {
		if names := ns.NamedChildren(); len(names) > 0 {
			e.Alias = ast.StringValue(names[0])
		}
	}
	return []concept.ExportDeclaration{e}
}
