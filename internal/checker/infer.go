package checker

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
)

var declarationKinds = map[string]bool{
	"variable_declarator":        true,
	"public_field_definition":    true,
	"property_signature":         true,
	"required_parameter":         true,
	"optional_parameter":         true,
	"class_declaration":          true,
	"abstract_class_declaration": true,
	"interface_declaration":      true,
	"type_alias_declaration":     true,
	"enum_declaration":           true,
	"enum_assignment":            true,
	"function_declaration":       true,
	"function_signature":         true,
	"method_definition":          true,
	"method_signature":           true,
	"abstract_method_signature":  true,
}

var typeNodeKinds = map[string]bool{
	"type_annotation":           true,
	"predefined_type":           true,
	"literal_type":              true,
	"type_identifier":           true,
	"nested_type_identifier":    true,
	"generic_type":              true,
	"array_type":                true,
	"readonly_type":             true,
	"union_type":                true,
	"intersection_type":         true,
	"tuple_type":                true,
	"function_type":             true,
	"object_type":               true,
	"lookup_type":               true,
	"type_query":                true,
	"parenthesized_type":        true,
	"conditional_type":          true,
	"index_type_query":          true,
	"template_literal_type":     true,
	"infer_type":                true,
	"constructor_type":          true,
	"existential_type":          true,
	"type_predicate_annotation": true,
	"asserts_annotation":        true,
	"this_type":                 true,
}

// TypeAtLocation returns the type of an expression, of what a declaration
// node (or its name) declares, or of a type node.
func (c *Checker) TypeAtLocation(n *ast.Node) *Type {
	if n == nil {
		return anyType()
	}
	if typeNodeKinds[n.Kind] {
		return c.TypeFromTypeNode(n)
	}
	if n.Field == "name" && n.Parent != nil && declarationKinds[n.Parent.Kind] {
		n = n.Parent
	}
	if declarationKinds[n.Kind] {
		if sym, ok := c.symbols[n]; ok && !n.Is("required_parameter", "optional_parameter") {
			if n.Kind == "variable_declarator" || n.Kind == "enum_assignment" {
				return c.cached(n, func() *Type { return c.typeOfDeclaration(n) })
			}
			return c.TypeOfSymbol(sym)
		}
		return c.cached(n, func() *Type { return c.typeOfDeclaration(n) })
	}
	return c.cached(n, func() *Type { return c.expressionType(n) })
}

func (c *Checker) cached(n *ast.Node, compute func() *Type) *Type {
	if t, ok := c.types[n]; ok {
		return t
	}
	if c.pending[n] {
		return anyType()
	}
	c.pending[n] = true
	t := compute()
	delete(c.pending, n)
	if t == nil {
		t = anyType()
	}
	c.types[n] = t
	return t
}

// TypeOfSymbol returns the type of the value a symbol denotes.
func (c *Checker) TypeOfSymbol(sym *Symbol) *Type {
	sym = c.Resolve(sym)
	if sym == nil {
		return anyType()
	}
	switch sym.Origin {
	case OriginUnresolved:
		return anyType()
	case OriginStandardLibrary:
		if iface, ok := standardValueTypes[sym.Path]; ok {
			return &Type{Flags: TypeObject, Symbol: c.standardSymbol(iface)}
		}
		if sym.Parent != nil {
			return anyType()
		}
		return &Type{Flags: TypeObject, Symbol: sym, valueSide: sym.Any(SymClass | SymFunction | SymVariable)}
	case OriginExternal:
		return &Type{Flags: TypeObject, Symbol: sym}
	}

	switch {
	case sym.Has(SymEnumMember):
		return &Type{Flags: TypeObject, Symbol: sym}
	case sym.Any(SymClass | SymEnum | SymNamespace | SymModule):
		return &Type{Flags: TypeObject, Symbol: sym, valueSide: true}
	case sym.Has(SymFunction):
		return &Type{Flags: TypeObject, Symbol: sym, valueSide: true, Signatures: c.functionSignatures(sym)}
	case sym.Has(SymMethod):
		var sigs []*Signature
		for _, d := range sym.Decls {
			sigs = append(sigs, c.SignatureOf(d))
		}
		t := &Type{Flags: TypeObject, Symbol: sym, Signatures: sigs}
		if d := sym.ValueDeclaration(); d != nil && d.HasToken("?") {
			return optional(t)
		}
		return t
	case sym.Any(SymVariable | SymProperty | SymParameter):
		d := sym.ValueDeclaration()
		if d == nil {
			return anyType()
		}
		if id := bindingIdentifier(d, sym.Name); id != nil {
			return c.cached(id, func() *Type { return c.BindingType(id) })
		}
		if d.Kind == "variable_declarator" {
			if name := d.ChildByField("name"); name == nil || name.Kind != "identifier" {
				return anyType()
			}
		}
		return c.cached(d, func() *Type { return c.typeOfDeclaration(d) })
	case sym.Any(SymInterface | SymTypeAlias | SymTypeParameter):
		return c.DeclaredTypeOfSymbol(sym)
	}
	return anyType()
}

// functionSignatures returns the overload signatures of a function, or the
// implementation's signature when it has no overloads.
func (c *Checker) functionSignatures(sym *Symbol) []*Signature {
	var overloads, impls []*Signature
	for _, d := range sym.Decls {
		switch d.Kind {
		case "function_signature":
			overloads = append(overloads, c.SignatureOf(d))
		case "function_declaration", "generator_function_declaration", "function_expression",
			"function", "arrow_function", "generator_function":
			impls = append(impls, c.SignatureOf(d))
		}
	}
	if len(overloads) > 0 {
		return overloads
	}
	return impls
}

func (c *Checker) typeOfDeclaration(d *ast.Node) *Type {
	switch d.Kind {
	case "variable_declarator":
		if ann := d.ChildByField("type"); ann != nil {
			return c.TypeFromTypeNode(ann)
		}
		value := d.ChildByField("value")
		if value == nil {
			return anyType()
		}
		t := c.TypeAtLocation(value)
		if isConstDeclarator(d) {
			return t
		}
		return widen(t)
	case "public_field_definition", "property_signature":
		var t *Type
		if ann := d.ChildByField("type"); ann != nil {
			t = c.TypeFromTypeNode(ann)
		} else if value := d.ChildByField("value"); value != nil {
			t = c.TypeAtLocation(value)
			if !d.HasToken("readonly") {
				t = widen(t)
			}
		} else {
			t = anyType()
		}
		if d.HasToken("?") {
			return optional(t)
		}
		return t
	case "required_parameter", "optional_parameter":
		return c.parameter(d).Type
	case "enum_assignment", "property_identifier":
		if sym, ok := c.symbols[d]; ok {
			return &Type{Flags: TypeObject, Symbol: sym}
		}
	case "export_statement":
		if value := d.ChildByField("value"); value != nil {
			return c.TypeAtLocation(value)
		}
	case "method_definition", "method_signature", "abstract_method_signature":
		if d.HasToken("get") {
			return c.ReturnTypeOf(c.SignatureOf(d))
		}
		if d.HasToken("set") {
			sig := c.SignatureOf(d)
			if len(sig.Parameters) > 0 {
				return sig.Parameters[0].Type
			}
			return anyType()
		}
		return &Type{Flags: TypeObject, Signatures: []*Signature{c.SignatureOf(d)}}
	}
	if sym, ok := c.symbols[d]; ok {
		return c.TypeOfSymbol(sym)
	}
	return anyType()
}

func isConstDeclarator(d *ast.Node) bool {
	p := d.Parent
	if p == nil || p.Kind != "lexical_declaration" {
		return false
	}
	kind := p.ChildByField("kind")
	return kind != nil && kind.Text() == "const"
}

func (c *Checker) expressionType(n *ast.Node) *Type {
	switch n.Kind {
	case "number":
		return numberLiteralOf(n.Text())
	case "string":
		return stringLiteral(ast.StringValue(n))
	case "template_string":
		if n.FirstChildOfKind("template_substitution") == nil {
			return stringLiteral(ast.StringValue(n))
		}
		return intrinsic(TypeString)
	case "true":
		return boolLiteral(true)
	case "false":
		return boolLiteral(false)
	case "null":
		return intrinsic(TypeNull)
	case "undefined":
		return undefinedType()
	case "regex":
		return &Type{Flags: TypeObject, Symbol: c.standardSymbol("RegExp")}
	case "identifier", "shorthand_property_identifier":
		if n.Text() == "undefined" {
			return undefinedType()
		}
		return c.TypeOfSymbol(c.SymbolAtLocation(n))
	case "parenthesized_expression", "spread_element", "satisfies_expression":
		if inner := n.NamedChildren(); len(inner) > 0 {
			return c.TypeAtLocation(inner[0])
		}
	case "sequence_expression":
		if inner := n.NamedChildren(); len(inner) > 0 {
			return c.TypeAtLocation(inner[len(inner)-1])
		}
	case "member_expression":
		return c.memberExpressionType(n)
	case "subscript_expression":
		object := c.TypeAtLocation(n.ChildByField("object"))
		if isArrayType(object) {
			return object.TypeArguments[0]
		}
		return anyType()
	case "call_expression":
		return c.callType(n)
	case "new_expression":
		sym := c.Resolve(c.SymbolAtLocation(n.ChildByField("constructor")))
		if sym == nil || sym.Origin == OriginUnresolved {
			return anyType()
		}
		t := &Type{Flags: TypeObject, Symbol: sym}
		if ta := n.ChildByField("type_arguments"); ta != nil {
			for _, a := range ta.NamedChildren() {
				t.TypeArguments = append(t.TypeArguments, c.TypeFromTypeNode(a))
			}
		}
		return t
	case "arrow_function", "function_expression", "function", "generator_function":
		return &Type{Flags: TypeObject, Signatures: []*Signature{c.SignatureOf(n)}}
	case "class":
		return unsupported("typeof class")
	case "object":
		return c.objectLiteralType(n, false)
	case "array":
		t, _ := c.arrayLiteralType(n, false)
		return t
	case "as_expression":
		named := n.NamedChildren()
		if len(named) == 1 {
			return c.constAssertion(named[0])
		}
		if len(named) == 2 {
			return c.TypeFromTypeNode(named[1])
		}
	case "non_null_expression":
		if inner := n.NamedChildren(); len(inner) == 1 {
			return removeNullable(c.TypeAtLocation(inner[0]))
		}
	case "await_expression":
		if inner := n.NamedChildren(); len(inner) == 1 {
			t := c.TypeAtLocation(inner[0])
			if t.Symbol != nil && t.Symbol.Origin == OriginStandardLibrary && t.Symbol.Path == "Promise" && len(t.TypeArguments) == 1 {
				return t.TypeArguments[0]
			}
			return t
		}
	case "binary_expression":
		return c.binaryType(n)
	case "unary_expression":
		return c.unaryType(n)
	case "update_expression":
		return intrinsic(TypeNumber)
	case "ternary_expression":
		return newUnion([]*Type{
			c.TypeAtLocation(n.ChildByField("consequence")),
			c.TypeAtLocation(n.ChildByField("alternative")),
		})
	case "assignment_expression", "augmented_assignment_expression":
		return c.TypeAtLocation(n.ChildByField("right"))
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return &Type{Flags: TypeObject, Symbol: c.MemberOf(c.ambientSymbol("JSX"), "Element")}
	}
	return anyType()
}

func isArrayType(t *Type) bool {
	return t != nil && t.Symbol != nil && t.Symbol.Origin == OriginStandardLibrary &&
		(t.Symbol.Path == "Array" || t.Symbol.Path == "ReadonlyArray") && len(t.TypeArguments) == 1
}

func (c *Checker) memberExpressionType(n *ast.Node) *Type {
	sym := c.memberAccess(n)
	if sym != nil && sym.Origin != OriginStandardLibrary {
		return c.TypeOfSymbol(sym)
	}
	if prop := n.ChildByField("property"); prop != nil && prop.Text() == "length" {
		object := c.TypeAtLocation(n.ChildByField("object"))
		if isArrayType(object) || object.Is(TypeString|TypeStringLiteral|TypeTuple) {
			return intrinsic(TypeNumber)
		}
	}
	return anyType()
}

func (c *Checker) callType(n *ast.Node) *Type {
	fn := n.ChildByField("function")
	if fn == nil {
		return anyType()
	}
	if fn.Kind == "import" {
		return c.promiseOf(anyType())
	}
	callee := c.TypeAtLocation(fn)
	if callee.Is(TypeUnion) {
		callee = removeNullable(callee)
	}
	if len(callee.Signatures) == 0 {
		return anyType()
	}
	sig := callee.Signatures[0]
	ret := c.ReturnTypeOf(sig)
	if len(sig.TypeParameters) == 0 {
		return ret
	}

	bindings := map[string]*Type{}
	if ta := n.ChildByField("type_arguments"); ta != nil {
		for i, a := range ta.NamedChildren() {
			if i < len(sig.TypeParameters) {
				bindings[sig.TypeParameters[i].Name] = c.TypeFromTypeNode(a)
			}
		}
	}
	if args := n.ChildByField("arguments"); args != nil {
		for i, a := range args.NamedChildren() {
			if i >= len(sig.Parameters) {
				break
			}
			pt := sig.Parameters[i].Type
			if pt.Is(TypeParameter) {
				if _, ok := bindings[pt.Symbol.Name]; !ok {
					bindings[pt.Symbol.Name] = widen(c.TypeAtLocation(a))
				}
			}
		}
	}
	return instantiate(ret, bindings)
}

// instantiate substitutes bound type parameters at the top level of t and
// in its type arguments.
func instantiate(t *Type, bindings map[string]*Type) *Type {
	if len(bindings) == 0 || t == nil {
		return t
	}
	if t.Is(TypeParameter) {
		if b, ok := bindings[t.Symbol.Name]; ok {
			return b
		}
		return t
	}
	if len(t.TypeArguments) == 0 && len(t.Types) == 0 {
		return t
	}
	cp := *t
	if len(t.TypeArguments) > 0 {
		cp.TypeArguments = make([]*Type, len(t.TypeArguments))
		for i, a := range t.TypeArguments {
			cp.TypeArguments[i] = instantiate(a, bindings)
		}
	}
	if len(t.Types) > 0 {
		cp.Types = make([]*Type, len(t.Types))
		for i, m := range t.Types {
			cp.Types[i] = instantiate(m, bindings)
		}
	}
	return &cp
}

func (c *Checker) constAssertion(expr *ast.Node) *Type {
	expr = ast.Unwrap(expr)
	switch expr.Kind {
	case "object":
		return c.objectLiteralType(expr, true)
	case "array":
		_, elems := c.arrayLiteralType(expr, true)
		return &Type{Flags: TypeTuple, Types: elems}
	}
	return c.TypeAtLocation(expr)
}

func (c *Checker) objectLiteralType(n *ast.Node, keepLiterals bool) *Type {
	t := &Type{Flags: TypeObject}
	value := func(v *ast.Node) func() *Type {
		return func() *Type {
			if keepLiterals {
				return c.constAssertion(v)
			}
			return widen(c.TypeAtLocation(v))
		}
	}
	for _, m := range n.NamedChildren() {
		switch m.Kind {
		case "pair":
			key := m.ChildByField("key")
			v := m.ChildByField("value")
			if key == nil || v == nil || key.Kind == "computed_property_name" {
				continue
			}
			t.Properties = append(t.Properties, &Property{Name: identifierText(key), Readonly: keepLiterals, Node: m, get: value(v)})
		case "shorthand_property_identifier":
			t.Properties = append(t.Properties, &Property{Name: m.Text(), Readonly: keepLiterals, Node: m, get: value(m)})
		case "method_definition":
			member := m
			t.Properties = append(t.Properties, &Property{Name: memberName(m), Node: m, get: func() *Type {
				return &Type{Flags: TypeObject, Signatures: []*Signature{c.SignatureOf(member)}}
			}})
		case "spread_element":
			inner := m.NamedChildren()
			if len(inner) == 1 {
				spread := c.TypeAtLocation(inner[0])
				if spread.Symbol == nil && spread.Is(TypeObject) {
					t.Properties = append(t.Properties, spread.Properties...)
				}
			}
		}
	}
	return t
}

// arrayLiteralType returns the array type of an array literal together with
// the types of its elements.
func (c *Checker) arrayLiteralType(n *ast.Node, keepLiterals bool) (*Type, []*Type) {
	var elems []*Type
	for _, e := range n.NamedChildren() {
		var et *Type
		switch {
		case e.Kind == "spread_element":
			inner := e.NamedChildren()
			if len(inner) == 1 {
				st := c.TypeAtLocation(inner[0])
				if isArrayType(st) {
					et = st.TypeArguments[0]
				} else {
					et = anyType()
				}
			}
		case keepLiterals:
			et = c.constAssertion(e)
		default:
			et = widen(c.TypeAtLocation(e))
		}
		if et != nil {
			elems = append(elems, et)
		}
	}
	elem := intrinsic(TypeNever)
	if len(elems) > 0 {
		elem = newUnion(elems)
	}
	return &Type{Flags: TypeObject, Symbol: c.standardSymbol("Array"), TypeArguments: []*Type{elem}}, elems
}

func (c *Checker) binaryType(n *ast.Node) *Type {
	op := n.ChildByField("operator")
	if op == nil {
		return anyType()
	}
	left := c.TypeAtLocation(n.ChildByField("left"))
	right := c.TypeAtLocation(n.ChildByField("right"))
	switch op.Text() {
	case "+":
		switch {
		case left.Is(TypeString|TypeStringLiteral) || right.Is(TypeString|TypeStringLiteral):
			return intrinsic(TypeString)
		case left.Is(TypeNumber|TypeNumberLiteral) && right.Is(TypeNumber|TypeNumberLiteral):
			return intrinsic(TypeNumber)
		case left.Is(TypeBigInt|TypeBigIntLiteral) && right.Is(TypeBigInt|TypeBigIntLiteral):
			return intrinsic(TypeBigInt)
		}
		return anyType()
	case "-", "*", "/", "%", "**", "<<", ">>", ">>>", "&", "|", "^":
		if left.Is(TypeBigInt | TypeBigIntLiteral) {
			return intrinsic(TypeBigInt)
		}
		return intrinsic(TypeNumber)
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return intrinsic(TypeBoolean)
	case "&&":
		return right
	case "||", "??":
		return newUnion([]*Type{removeNullable(left), right})
	}
	return anyType()
}

func (c *Checker) unaryType(n *ast.Node) *Type {
	op := n.ChildByField("operator")
	arg := n.ChildByField("argument")
	if op == nil {
		return anyType()
	}
	switch op.Text() {
	case "!", "delete":
		return intrinsic(TypeBoolean)
	case "typeof":
		return intrinsic(TypeString)
	case "void":
		return undefinedType()
	case "-":
		if arg != nil && arg.Kind == "number" {
			t := numberLiteralOf(arg.Text())
			if f, ok := t.Literal.(float64); ok {
				return numberLiteral(-f)
			}
			return t
		}
		return intrinsic(TypeNumber)
	}
	return intrinsic(TypeNumber)
}
