// Package checker resolves names and types of a TypeScript project from its
// syntax trees. It understands declarations, imports and exports, type
// annotations and the inference rules needed to type initializers. It is not
// safe for concurrent use.
package checker

import (
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// Options configure module resolution.
type Options struct {
	ProjectRoot string
	// BaseURL is the absolute directory non-relative imports are resolved
	// against. Empty disables baseUrl resolution.
	BaseURL string
	// Paths are tsconfig path mappings, relative to BaseURL.
	Paths    map[string][]string
	Packages *paths.PackageNames
}

// Checker answers symbol and type queries for a set of parsed files.
type Checker struct {
	opts    Options
	files   map[string]*ast.File
	scopes  map[*ast.File]*fileScope
	globals map[string]*Symbol
	library map[string]*Symbol
	locals  map[*ast.Node]map[string]*Symbol
	types   map[*ast.Node]*Type
	pending map[*ast.Node]bool
	symbols map[*ast.Node]*Symbol
}

type fileScope struct {
	file    *ast.File
	module  bool
	self    *Symbol
	locals  map[string]*Symbol
	exports map[string]*Symbol
	stars   []string
}

// New binds the given files. Top-level declarations of script files (files
// without imports or exports) are visible to every file.
func New(files []*ast.File, opts Options) *Checker {
	c := &Checker{
		opts:    opts,
		files:   map[string]*ast.File{},
		scopes:  map[*ast.File]*fileScope{},
		globals: map[string]*Symbol{},
		library: map[string]*Symbol{},
		locals:  map[*ast.Node]map[string]*Symbol{},
		types:   map[*ast.Node]*Type{},
		pending: map[*ast.Node]bool{},
		symbols: map[*ast.Node]*Symbol{},
	}
	for _, f := range files {
		c.files[f.Path] = f
	}
	for _, f := range files {
		c.bindFile(f)
	}
	return c
}

// File returns the parsed file at the absolute path, or nil.
func (c *Checker) File(path string) *ast.File {
	return c.files[paths.Slash(path)]
}

// IsModuleFile reports whether f has top-level imports or exports.
func (c *Checker) IsModuleFile(f *ast.File) bool {
	if fs, ok := c.scopes[f]; ok {
		return fs.module
	}
	return isModule(f)
}

func isModule(f *ast.File) bool {
	if f == nil || f.Root == nil {
		return false
	}
	for _, stmt := range f.Root.NamedChildren() {
		if stmt.Is("import_statement", "export_statement") {
			return true
		}
	}
	return false
}

// ModuleSymbol returns the symbol standing for the module f itself.
func (c *Checker) ModuleSymbol(f *ast.File) *Symbol {
	if fs, ok := c.scopes[f]; ok {
		return fs.self
	}
	return nil
}

func (c *Checker) bindFile(f *ast.File) {
	fs := &fileScope{
		file:    f,
		module:  isModule(f),
		locals:  map[string]*Symbol{},
		exports: map[string]*Symbol{},
	}
	fs.self = &Symbol{Name: f.Path, Flags: SymModule, File: f, Origin: OriginProject}
	c.scopes[f] = fs
	if f.Root == nil {
		return
	}

	b := &binder{c: c, fs: fs}
	var localExports [][2]string
	for _, stmt := range f.Root.NamedChildren() {
		localExports = append(localExports, b.bindStatement(stmt, nil, fs.locals)...)
	}
	for _, e := range localExports {
		if sym, ok := fs.locals[e[0]]; ok {
			fs.exports[e[1]] = sym
		} else {
			fs.exports[e[1]] = c.resolveName(f.Root, e[0])
		}
	}
	if !fs.module {
		for name, sym := range fs.locals {
			if g, ok := c.globals[name]; ok {
				g.Flags |= sym.Flags
				g.Decls = append(g.Decls, sym.Decls...)
				continue
			}
			c.globals[name] = sym
		}
	}
}

// binder declares the symbols of one file.
type binder struct {
	c  *Checker
	fs *fileScope
}

func (b *binder) declare(table map[string]*Symbol, parent *Symbol, name string, flags SymbolFlags, decl *ast.Node) *Symbol {
	if name == "" {
		return nil
	}
	sym, ok := table[name]
	if !ok {
		sym = &Symbol{Name: name, File: b.fs.file, Parent: parent, Origin: OriginProject}
		table[name] = sym
	}
	sym.addDecl(flags, decl)
	if decl != nil {
		b.c.symbols[decl] = sym
	}
	return sym
}

// bindStatement declares what stmt introduces into table. Inside a module
// file's top level, it returns the pairs (local, exported) of export
// specifiers that refer to local names, which are resolved once every
// statement has been bound.
func (b *binder) bindStatement(stmt *ast.Node, parent *Symbol, table map[string]*Symbol) [][2]string {
	exports := b.fs.exports
	if parent != nil {
		exports = nil
	}
	switch stmt.Kind {
	case "export_statement":
		return b.bindExport(stmt, parent, table, exports)
	case "import_statement":
		if parent == nil {
			b.bindImport(stmt, table)
		}
	case "expression_statement":
		for _, child := range stmt.NamedChildren() {
			if child.Is("internal_module", "module") {
				b.bindDeclaration(child, parent, table)
			}
		}
	default:
		b.bindDeclaration(stmt, parent, table)
	}
	return nil
}

func (b *binder) bindExport(stmt *ast.Node, parent *Symbol, table, exports map[string]*Symbol) [][2]string {
	isDefault := stmt.HasToken("default")
	if decl := stmt.ChildByField("declaration"); decl != nil {
		syms := b.bindDeclaration(decl, parent, table)
		if exports != nil {
			for _, sym := range syms {
				if isDefault {
					exports["default"] = sym
				} else {
					exports[sym.Name] = sym
				}
			}
			if isDefault && len(syms) == 0 {
				exports["default"] = b.declare(table, parent, "default", declarationFlags(decl), decl)
			}
		}
		return nil
	}
	if exports == nil {
		return nil
	}

	source := stmt.ChildByField("source")
	if value := stmt.ChildByField("value"); value != nil && isDefault {
		v := ast.Unwrap(value)
		switch v.Kind {
		case "identifier":
			return [][2]string{{v.Text(), "default"}}
		case "class", "function_expression", "function", "generator_function", "arrow_function":
			if name := v.ChildByField("name"); name != nil {
				exports["default"] = b.declare(table, parent, name.Text(), declarationFlags(v), v)
				return nil
			}
			exports["default"] = b.declare(table, parent, "default", declarationFlags(v), v)
			return nil
		}
		exports["default"] = b.declare(map[string]*Symbol{}, parent, "default", SymVariable, stmt)
		return nil
	}

	if source == nil {
		var pairs [][2]string
		if clause := stmt.FirstChildOfKind("export_clause"); clause != nil {
			for _, spec := range clause.ChildrenOfKind("export_specifier") {
				local, exported := specifierNames(spec)
				pairs = append(pairs, [2]string{local, exported})
			}
		}
		return pairs
	}

	spec := ast.StringValue(source)
	if clause := stmt.FirstChildOfKind("export_clause"); clause != nil {
		for _, s := range clause.ChildrenOfKind("export_specifier") {
			local, exported := specifierNames(s)
			exports[exported] = b.importSymbol(exported, spec, local, s)
		}
		return nil
	}
	if ns := stmt.FirstChildOfKind("namespace_export"); ns != nil {
		if id := ns.NamedChildren(); len(id) > 0 {
			exports[id[0].Text()] = b.importSymbol(id[0].Text(), spec, "*", ns)
		}
		return nil
	}
	if stmt.HasToken("*") {
		b.fs.stars = append(b.fs.stars, spec)
	}
	return nil
}

func specifierNames(spec *ast.Node) (local, exported string) {
	local = identifierText(spec.ChildByField("name"))
	exported = local
	if alias := spec.ChildByField("alias"); alias != nil {
		exported = identifierText(alias)
	}
	return local, exported
}

func identifierText(n *ast.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind == "string" {
		return ast.StringValue(n)
	}
	return n.Text()
}

func (b *binder) importSymbol(name, spec, importName string, decl *ast.Node) *Symbol {
	sym := &Symbol{
		Name:       name,
		Flags:      SymImport,
		Decls:      []*ast.Node{decl},
		File:       b.fs.file,
		Origin:     OriginProject,
		importFrom: b.fs.file,
		importSpec: spec,
		importName: importName,
	}
	b.c.symbols[decl] = sym
	return sym
}

func (b *binder) bindImport(stmt *ast.Node, table map[string]*Symbol) {
	source := stmt.ChildByField("source")
	if source == nil {
		return
	}
	spec := ast.StringValue(source)
	clause := stmt.FirstChildOfKind("import_clause")
	if clause == nil {
		return
	}
	for _, child := range clause.NamedChildren() {
		switch child.Kind {
		case "identifier":
			table[child.Text()] = b.importSymbol(child.Text(), spec, "default", child)
		case "namespace_import":
			if id := child.FirstChildOfKind("identifier"); id != nil {
				table[id.Text()] = b.importSymbol(id.Text(), spec, "*", child)
			}
		case "named_imports":
			for _, s := range child.ChildrenOfKind("import_specifier") {
				imported, local := specifierNames(s)
				table[local] = b.importSymbol(local, spec, imported, s)
			}
		}
	}
}

func declarationFlags(decl *ast.Node) SymbolFlags {
	switch decl.Kind {
	case "class_declaration", "abstract_class_declaration", "class":
		return SymClass
	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "function", "arrow_function", "generator_function":
		return SymFunction
	}
	return SymVariable
}

// bindDeclaration declares decl and returns the declared symbols.
func (b *binder) bindDeclaration(decl *ast.Node, parent *Symbol, table map[string]*Symbol) []*Symbol {
	name := decl.ChildByField("name")
	one := func(flags SymbolFlags) []*Symbol {
		if name == nil {
			return nil
		}
		if sym := b.declare(table, parent, name.Text(), flags, decl); sym != nil {
			return []*Symbol{sym}
		}
		return nil
	}

	switch decl.Kind {
	case "class_declaration", "abstract_class_declaration", "class":
		return one(SymClass)
	case "interface_declaration":
		return one(SymInterface)
	case "type_alias_declaration":
		return one(SymTypeAlias)
	case "function_declaration", "generator_function_declaration", "function_signature":
		return one(SymFunction)
	case "enum_declaration":
		syms := one(SymEnum)
		if len(syms) == 1 {
			b.bindEnumMembers(syms[0], decl)
		}
		return syms
	case "lexical_declaration", "variable_declaration":
		var out []*Symbol
		for _, d := range decl.ChildrenOfKind("variable_declarator") {
			for _, id := range PatternIdentifiers(d.ChildByField("name")) {
				if sym := b.declare(table, parent, id.Text(), SymVariable, d); sym != nil {
					out = append(out, sym)
				}
			}
		}
		return out
	case "ambient_declaration":
		var out []*Symbol
		for _, child := range decl.NamedChildren() {
			out = append(out, b.bindDeclaration(child, parent, table)...)
		}
		return out
	case "internal_module", "module":
		return b.bindNamespace(decl, parent, table)
	}
	return nil
}

func (b *binder) bindEnumMembers(enum *Symbol, decl *ast.Node) {
	body := decl.ChildByField("body")
	for _, m := range body.NamedChildren() {
		var name *ast.Node
		switch m.Kind {
		case "enum_assignment":
			name = m.ChildByField("name")
		case "property_identifier", "string":
			name = m
		}
		if name == nil {
			continue
		}
		member := enum.declareMember(identifierText(name), SymEnumMember, m)
		b.c.symbols[m] = member
	}
}

func (b *binder) bindNamespace(decl *ast.Node, parent *Symbol, table map[string]*Symbol) []*Symbol {
	nameNode := decl.ChildByField("name")
	if nameNode == nil || nameNode.Kind == "string" {
		// declare module "x" { ... } augments another module
		return nil
	}
	segments := strings.Split(nameNode.Text(), ".")
	outer := b.declare(table, parent, strings.TrimSpace(segments[0]), SymNamespace, decl)
	ns := outer
	for _, seg := range segments[1:] {
		ns = ns.declareMember(strings.TrimSpace(seg), SymNamespace, decl)
	}
	if ns.Members == nil {
		ns.Members = map[string]*Symbol{}
	}
	b.c.symbols[decl] = ns
	if body := decl.ChildByField("body"); body != nil {
		for _, stmt := range body.NamedChildren() {
			b.bindStatement(stmt, ns, ns.Members)
		}
	}
	return []*Symbol{outer}
}

// PatternIdentifiers returns the identifiers a binding pattern declares.
func PatternIdentifiers(pattern *ast.Node) []*ast.Node {
	if pattern == nil {
		return nil
	}
	var out []*ast.Node
	ast.Walk(pattern, func(n *ast.Node) bool {
		switch n.Kind {
		case "identifier", "shorthand_property_identifier_pattern":
			if n.Field == "value" && n.Parent != nil && n.Parent.Kind == "assignment_pattern" {
				return false
			}
			out = append(out, n)
			return false
		case "pair_pattern":
			if v := n.ChildByField("value"); v != nil {
				out = append(out, PatternIdentifiers(v)...)
			}
			return false
		case "assignment_pattern", "object_assignment_pattern":
			out = append(out, PatternIdentifiers(n.ChildByField("left"))...)
			return false
		}
		return true
	})
	return out
}
