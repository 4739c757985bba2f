package checker

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
)

// SymbolAtLocation returns the symbol a name node refers to, or the symbol
// declared by a declaration node. Imports are not followed; use Resolve.
func (c *Checker) SymbolAtLocation(n *ast.Node) *Symbol {
	n = ast.Unwrap(n)
	if n == nil {
		return nil
	}
	if s, ok := c.symbols[n]; ok {
		return s
	}
	if n.Field == "name" && n.Parent != nil {
		if s, ok := c.symbols[n.Parent]; ok {
			return s
		}
	}

	switch n.Kind {
	case "identifier", "type_identifier", "shorthand_property_identifier", "this":
		if n.Kind == "this" {
			return nil
		}
		return c.resolveName(n, n.Text())
	case "property_identifier", "private_property_identifier":
		if n.Parent != nil && n.Parent.Kind == "member_expression" && n.Field == "property" {
			return c.memberAccess(n.Parent)
		}
	case "member_expression":
		return c.memberAccess(n)
	case "nested_type_identifier", "nested_identifier":
		container := n.ChildByField("module")
		if container == nil {
			container = n.ChildByField("object")
		}
		name := n.ChildByField("name")
		if name == nil {
			name = n.ChildByField("property")
		}
		if container == nil || name == nil {
			return nil
		}
		return c.MemberOf(c.SymbolAtLocation(container), name.Text())
	case "generic_type":
		return c.SymbolAtLocation(n.ChildByField("name"))
	}
	return nil
}

// typeNameSymbol returns the symbol named by a heritage or reference type.
func (c *Checker) typeNameSymbol(n *ast.Node) *Symbol {
	switch n.Kind {
	case "generic_type":
		return c.SymbolAtLocation(n.ChildByField("name"))
	case "type_identifier", "nested_type_identifier", "identifier", "member_expression":
		return c.SymbolAtLocation(n)
	}
	return nil
}

// memberAccess resolves the property of a member expression. Containers
// (namespaces, enums, modules, library symbols) are looked up by symbol;
// other objects by the declared type of the object.
func (c *Checker) memberAccess(n *ast.Node) *Symbol {
	object := n.ChildByField("object")
	prop := n.ChildByField("property")
	if object == nil || prop == nil {
		return nil
	}
	name := prop.Text()
	if sym := c.Resolve(c.SymbolAtLocation(object)); sym != nil && isContainer(sym) {
		return c.MemberOf(sym, name)
	}
	t := c.TypeAtLocation(object)
	if t == nil {
		return nil
	}
	if t.Symbol != nil && !t.valueSide {
		return c.MemberOf(t.Symbol, name)
	}
	return nil
}

func isContainer(s *Symbol) bool {
	switch s.Origin {
	case OriginStandardLibrary, OriginExternal:
		return !s.Has(SymVariable) || s.Any(SymNamespace|SymClass|SymInterface)
	case OriginUnresolved:
		return false
	}
	return s.Any(SymNamespace|SymEnum|SymModule|SymClass) && !s.Any(SymVariable|SymParameter)
}

// resolveName looks name up from the scope of node: enclosing blocks and
// functions first, then the module, the project's script globals, the
// standard library and ambient library namespaces. Unknown names resolve to
// an unresolved symbol.
func (c *Checker) resolveName(node *ast.Node, name string) *Symbol {
	for n := node.Parent; n != nil; n = n.Parent {
		if n.Kind == "program" {
			break
		}
		if table := c.localTable(n); table != nil {
			if s, ok := table[name]; ok {
				return s
			}
		}
	}
	if fs, ok := c.scopes[node.File]; ok {
		if s, ok := fs.locals[name]; ok {
			return s
		}
	}
	if s, ok := c.globals[name]; ok {
		return s
	}
	if s := c.standardSymbol(name); s != nil {
		return s
	}
	if s := c.ambientSymbol(name); s != nil {
		return s
	}
	return c.unresolved(name)
}

// localTable returns the names declared by the scope node, or nil.
func (c *Checker) localTable(scope *ast.Node) map[string]*Symbol {
	if t, ok := c.locals[scope]; ok {
		return t
	}
	var table map[string]*Symbol
	add := func(name string, flags SymbolFlags, decl *ast.Node) {
		if table == nil {
			table = map[string]*Symbol{}
		}
		if s, ok := table[name]; ok {
			s.addDecl(flags, decl)
			return
		}
		table[name] = &Symbol{
			Name:       name,
			Flags:      flags,
			Decls:      []*ast.Node{decl},
			File:       scope.File,
			Origin:     OriginProject,
			BlockLocal: flags&SymTypeParameter == 0,
		}
		if flags&SymTypeParameter != 0 {
			c.symbols[decl] = table[name]
		}
	}

	if tps := scope.ChildByField("type_parameters"); tps != nil {
		for _, tp := range tps.ChildrenOfKind("type_parameter") {
			if name := tp.ChildByField("name"); name != nil {
				add(name.Text(), SymTypeParameter, tp)
			}
		}
	}

	switch scope.Kind {
	case "statement_block":
		if scope.Parent != nil && scope.Parent.Is("internal_module", "module") {
			if ns, ok := c.symbols[scope.Parent]; ok {
				c.locals[scope] = ns.Members
				return ns.Members
			}
		}
		c.addBlockDeclarations(scope, add)
	case "switch_body", "class_static_block":
		c.addBlockDeclarations(scope, add)
	case "switch_case", "switch_default":
		c.addBlockDeclarations(scope, add)
	case "for_statement":
		if init := scope.ChildByField("initializer"); init != nil {
			c.addVariableDeclarations(init, add)
		}
	case "for_in_statement":
		if left := scope.ChildByField("left"); left != nil && scope.ChildByField("kind") != nil {
			for _, id := range PatternIdentifiers(left) {
				add(id.Text(), SymVariable, scope)
			}
		}
	case "catch_clause":
		if p := scope.ChildByField("parameter"); p != nil {
			for _, id := range PatternIdentifiers(p) {
				add(id.Text(), SymVariable, scope)
			}
		}
	case "function_declaration", "generator_function_declaration", "function_expression", "function",
		"generator_function", "arrow_function", "method_definition", "function_signature",
		"method_signature", "abstract_method_signature", "function_type", "constructor_type",
		"call_signature", "construct_signature":
		if p := scope.ChildByField("parameter"); p != nil {
			add(p.Text(), SymParameter, p)
		}
		if params := scope.ChildByField("parameters"); params != nil {
			for _, p := range params.NamedChildren() {
				for _, id := range PatternIdentifiers(p.ChildByField("pattern")) {
					add(id.Text(), SymParameter, p)
				}
			}
		}
		if scope.Is("function_expression", "function", "generator_function") {
			if name := scope.ChildByField("name"); name != nil {
				add(name.Text(), SymFunction, scope)
			}
		}
	case "class":
		if name := scope.ChildByField("name"); name != nil {
			add(name.Text(), SymClass, scope)
		}
	}
	c.locals[scope] = table
	return table
}

func (c *Checker) addBlockDeclarations(block *ast.Node, add func(string, SymbolFlags, *ast.Node)) {
	for _, stmt := range block.NamedChildren() {
		switch stmt.Kind {
		case "lexical_declaration", "variable_declaration":
			c.addVariableDeclarations(stmt, add)
		case "function_declaration", "generator_function_declaration":
			if name := stmt.ChildByField("name"); name != nil {
				add(name.Text(), SymFunction, stmt)
			}
		case "class_declaration", "abstract_class_declaration":
			if name := stmt.ChildByField("name"); name != nil {
				add(name.Text(), SymClass, stmt)
			}
		case "interface_declaration":
			if name := stmt.ChildByField("name"); name != nil {
				add(name.Text(), SymInterface, stmt)
			}
		case "type_alias_declaration":
			if name := stmt.ChildByField("name"); name != nil {
				add(name.Text(), SymTypeAlias, stmt)
			}
		case "enum_declaration":
			if name := stmt.ChildByField("name"); name != nil {
				add(name.Text(), SymEnum, stmt)
			}
		}
	}
}

func (c *Checker) addVariableDeclarations(decl *ast.Node, add func(string, SymbolFlags, *ast.Node)) {
	if !decl.Is("lexical_declaration", "variable_declaration") {
		return
	}
	for _, d := range decl.ChildrenOfKind("variable_declarator") {
		for _, id := range PatternIdentifiers(d.ChildByField("name")) {
			add(id.Text(), SymVariable, d)
		}
	}
}
