package checker

import (
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
)

// SymbolFlags classify what a symbol declares. Merged declarations (a class
// and an interface of the same name, overloads) combine their flags.
type SymbolFlags uint32

const (
	SymClass SymbolFlags = 1 << iota
	SymInterface
	SymFunction
	SymVariable
	SymEnum
	SymEnumMember
	SymTypeAlias
	SymNamespace
	SymModule
	SymTypeParameter
	SymProperty
	SymMethod
	SymParameter
	SymImport
	SymAccessor
)

// Origin tells where a symbol is declared.
type Origin int

const (
	OriginProject Origin = iota
	OriginStandardLibrary
	OriginExternal
	OriginUnresolved
)

// Symbol is a named entity. Project symbols point at their declaration
// nodes; library symbols only carry their path.
type Symbol struct {
	Name    string
	Flags   SymbolFlags
	Decls   []*ast.Node
	File    *ast.File
	Parent  *Symbol
	Members map[string]*Symbol
	Origin  Origin
	// Module is the package name of external symbols.
	Module string
	// Path is the dotted name of library symbols inside their module.
	Path string
	// BlockLocal symbols are declared inside a function or block.
	BlockLocal bool

	importFrom *ast.File
	importSpec string
	importName string
	target     *Symbol
	resolving  bool

	members map[string]*Symbol // lazily bound class and interface members
}

// Has reports whether all of flags are set.
func (s *Symbol) Has(flags SymbolFlags) bool {
	return s != nil && s.Flags&flags == flags
}

// Any reports whether one of flags is set.
func (s *Symbol) Any(flags SymbolFlags) bool {
	return s != nil && s.Flags&flags != 0
}

// ValueDeclaration returns the first declaration node, or nil.
func (s *Symbol) ValueDeclaration() *ast.Node {
	if s == nil || len(s.Decls) == 0 {
		return nil
	}
	return s.Decls[0]
}

func (s *Symbol) addDecl(flags SymbolFlags, decl *ast.Node) {
	s.Flags |= flags
	if decl != nil {
		s.Decls = append(s.Decls, decl)
	}
}

func (s *Symbol) member(name string) *Symbol {
	if s == nil || s.Members == nil {
		return nil
	}
	return s.Members[name]
}

func (s *Symbol) declareMember(name string, flags SymbolFlags, decl *ast.Node) *Symbol {
	if s.Members == nil {
		s.Members = map[string]*Symbol{}
	}
	m, ok := s.Members[name]
	if !ok {
		m = &Symbol{Name: name, File: s.File, Parent: s, Origin: s.Origin}
		s.Members[name] = m
	}
	m.addDecl(flags, decl)
	return m
}

// QualifiedName returns the fully-qualified name of a symbol:
//   - `"/abs/file.ts".A.b` for declarations in module files
//   - `A.b` for declarations in script files and the standard library
//   - `"pkg".Path` for external symbols
//   - the bare name for locals, type parameters and unresolved names
func (c *Checker) QualifiedName(s *Symbol) string {
	if s == nil {
		return ""
	}
	s = c.Resolve(s)
	switch s.Origin {
	case OriginStandardLibrary:
		return s.Path
	case OriginExternal:
		if s.Path == "" {
			return `"` + s.Module + `"`
		}
		return `"` + s.Module + `".` + s.Path
	case OriginUnresolved:
		return s.Name
	}
	if s.BlockLocal || s.Has(SymTypeParameter) || s.Has(SymParameter) {
		return s.Name
	}
	if s.Has(SymModule) && s.Parent == nil {
		return `"` + s.File.Path + `"`
	}

	var parts []string
	for p := s; p != nil; p = p.Parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	dotted := strings.Join(parts, ".")
	if s.File != nil && c.IsModuleFile(s.File) {
		return `"` + s.File.Path + `".` + dotted
	}
	return dotted
}

// IsStandardLibrary reports whether s is declared by the language runtime.
func (c *Checker) IsStandardLibrary(s *Symbol) bool {
	return c.Resolve(s).Origin == OriginStandardLibrary
}

// IsExternal reports whether s is declared by an installed package.
func (c *Checker) IsExternal(s *Symbol) bool {
	return c.Resolve(s).Origin == OriginExternal
}

// Resolve follows import aliases to the symbol they refer to.
func (c *Checker) Resolve(s *Symbol) *Symbol {
	if s == nil || !s.Has(SymImport) {
		return s
	}
	if s.target != nil {
		return s.target
	}
	if s.resolving {
		return c.unresolved(s.Name)
	}
	s.resolving = true
	defer func() { s.resolving = false }()

	t := c.resolveImportSymbol(s)
	if t == nil {
		t = c.unresolved(s.Name)
	}
	s.target = t
	return t
}

func (c *Checker) unresolved(name string) *Symbol {
	return &Symbol{Name: name, Origin: OriginUnresolved}
}

// MemberOf returns the member name of the container s: namespace and enum
// members, module exports, class and interface members (inherited ones
// included) and the nested paths of library symbols.
func (c *Checker) MemberOf(s *Symbol, name string) *Symbol {
	s = c.Resolve(s)
	if s == nil {
		return nil
	}
	switch s.Origin {
	case OriginStandardLibrary, OriginExternal:
		return c.libraryMember(s, name)
	case OriginUnresolved:
		return nil
	}
	if s.Has(SymModule) && s.Parent == nil {
		return c.exportOf(s.File, name, map[string]bool{})
	}
	if m := s.member(name); m != nil {
		return m
	}
	if s.Any(SymClass | SymInterface) {
		return c.classMember(s, name, 0)
	}
	return nil
}

func (c *Checker) libraryMember(s *Symbol, name string) *Symbol {
	key := libraryKey(s.Origin, s.Module, s.Path+"."+name)
	if m, ok := c.library[key]; ok {
		return m
	}
	path := name
	if s.Path != "" {
		path = s.Path + "." + name
	}
	m := &Symbol{Name: name, Origin: s.Origin, Module: s.Module, Path: path, Parent: s, Flags: SymProperty}
	c.library[key] = m
	return m
}

func (c *Checker) classMember(s *Symbol, name string, depth int) *Symbol {
	if depth > maxHeritageDepth {
		return nil
	}
	members := c.membersOf(s)
	if m, ok := members[name]; ok {
		return m
	}
	for _, base := range c.baseSymbols(s) {
		if base.Origin != OriginProject {
			continue
		}
		if m := c.classMember(base, name, depth+1); m != nil {
			return m
		}
	}
	return nil
}

const maxHeritageDepth = 16

// membersOf binds the members of a class or interface on first use.
func (c *Checker) membersOf(s *Symbol) map[string]*Symbol {
	if s.members != nil {
		return s.members
	}
	s.members = map[string]*Symbol{}
	declare := func(name string, flags SymbolFlags, decl *ast.Node) {
		m, ok := s.members[name]
		if !ok {
			m = &Symbol{Name: name, File: s.File, Parent: s, Origin: s.Origin}
			s.members[name] = m
		}
		m.addDecl(flags, decl)
	}
	for _, decl := range s.Decls {
		body := decl.ChildByField("body")
		if body == nil {
			continue
		}
		for _, member := range body.NamedChildren() {
			name := memberName(member)
			if name == "" {
				continue
			}
			switch member.Kind {
			case "public_field_definition", "property_signature":
				flags := SymProperty
				if member.HasToken("accessor") {
					flags |= SymAccessor
				}
				declare(name, flags, member)
			case "method_definition", "method_signature", "abstract_method_signature":
				if member.HasToken("get") || member.HasToken("set") {
					declare(name, SymProperty|SymAccessor, member)
				} else if name == "constructor" {
					declareParameterProperties(member, declare)
				} else {
					declare(name, SymMethod, member)
				}
			}
		}
	}
	return s.members
}

func declareParameterProperties(ctor *ast.Node, declare func(string, SymbolFlags, *ast.Node)) {
	params := ctor.ChildByField("parameters")
	for _, p := range params.NamedChildren() {
		if p.FirstChildOfKind("accessibility_modifier") == nil && !p.HasToken("readonly") && !p.HasToken("override") {
			continue
		}
		if pattern := p.ChildByField("pattern"); pattern != nil && pattern.Kind == "identifier" {
			declare(pattern.Text(), SymProperty, p)
		}
	}
}

// baseSymbols returns the resolved symbols a class extends and an interface
// extends.
func (c *Checker) baseSymbols(s *Symbol) []*Symbol {
	var out []*Symbol
	for _, decl := range s.Decls {
		ast.Walk(decl, func(n *ast.Node) bool {
			if n != decl && n.Is("class_body", "interface_body", "object_type", "statement_block") {
				return false
			}
			if n.Is("extends_clause") {
				if v := n.ChildByField("value"); v != nil {
					if sym := c.SymbolAtLocation(v); sym != nil {
						out = append(out, c.Resolve(sym))
					}
				}
				return false
			}
			if n.Is("extends_type_clause") {
				for _, t := range n.NamedChildren() {
					if sym := c.typeNameSymbol(t); sym != nil {
						out = append(out, c.Resolve(sym))
					}
				}
				return false
			}
			return true
		})
	}
	return out
}

// memberName returns the declared name of a class or interface member.
func memberName(member *ast.Node) string {
	name := member.ChildByField("name")
	if name == nil {
		return ""
	}
	switch name.Kind {
	case "string", "template_string":
		return ast.StringValue(name)
	case "computed_property_name":
		return ""
	}
	return name.Text()
}
