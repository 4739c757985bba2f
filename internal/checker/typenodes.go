package checker

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
)

// TypeFromTypeNode resolves a type written in source. Type annotations
// (": T") are unwrapped.
func (c *Checker) TypeFromTypeNode(n *ast.Node) *Type {
	if n == nil {
		return anyType()
	}
	if n.Is("type_annotation", "opting_type_annotation", "omitting_type_annotation") {
		inner := n.NamedChildren()
		if len(inner) == 0 {
			return anyType()
		}
		n = inner[0]
	}
	if t, ok := c.types[n]; ok {
		return t
	}
	if c.pending[n] {
		return unsupported("recursive type")
	}
	c.pending[n] = true
	t := c.typeFromTypeNode(n)
	delete(c.pending, n)
	c.types[n] = t
	return t
}

func (c *Checker) typeFromTypeNode(n *ast.Node) *Type {
	switch n.Kind {
	case "predefined_type":
		if f, ok := primitiveFlags[n.Text()]; ok {
			return intrinsic(f)
		}
		return unsupported(n.Text())
	case "literal_type":
		return c.literalTypeNode(n)
	case "undefined":
		return undefinedType()
	case "null":
		return intrinsic(TypeNull)
	case "parenthesized_type":
		if inner := n.NamedChildren(); len(inner) == 1 {
			return c.TypeFromTypeNode(inner[0])
		}
	case "type_identifier", "nested_type_identifier":
		return c.typeReference(n, nil)
	case "generic_type":
		var args []*Type
		if ta := n.ChildByField("type_arguments"); ta != nil {
			for _, a := range ta.NamedChildren() {
				args = append(args, c.TypeFromTypeNode(a))
			}
		}
		return c.typeReference(n.ChildByField("name"), args)
	case "array_type":
		elem := n.NamedChildren()
		if len(elem) == 0 {
			break
		}
		name := "Array"
		if n.Parent != nil && n.Parent.Kind == "readonly_type" {
			name = "ReadonlyArray"
		}
		return &Type{Flags: TypeObject, Symbol: c.standardSymbol(name), TypeArguments: []*Type{c.TypeFromTypeNode(elem[0])}}
	case "readonly_type":
		if inner := n.NamedChildren(); len(inner) == 1 {
			return c.TypeFromTypeNode(inner[0])
		}
	case "union_type":
		var members []*Type
		for _, m := range n.NamedChildren() {
			members = append(members, c.TypeFromTypeNode(m))
		}
		return newUnion(members)
	case "intersection_type":
		var members []*Type
		for _, m := range n.NamedChildren() {
			members = append(members, c.TypeFromTypeNode(m))
		}
		if len(members) == 1 {
			return members[0]
		}
		return &Type{Flags: TypeIntersection, Types: members}
	case "tuple_type":
		var elems []*Type
		for _, m := range n.NamedChildren() {
			elems = append(elems, c.tupleElement(m))
		}
		return &Type{Flags: TypeTuple, Types: elems}
	case "function_type":
		return &Type{Flags: TypeObject, Signatures: []*Signature{c.SignatureOf(n)}}
	case "object_type":
		return c.objectTypeNode(n)
	case "lookup_type":
		return &Type{Flags: TypeIndexedAccess, text: n.Text()}
	case "type_query":
		if inner := n.NamedChildren(); len(inner) == 1 {
			if sym := c.SymbolAtLocation(inner[0]); sym != nil {
				return c.TypeOfSymbol(sym)
			}
		}
	case "type_predicate_annotation", "type_predicate":
		return intrinsic(TypeBoolean)
	case "asserts", "asserts_annotation":
		return intrinsic(TypeVoid)
	}
	return unsupported(n.Text())
}

func (c *Checker) literalTypeNode(n *ast.Node) *Type {
	inner := n.NamedChildren()
	if len(inner) != 1 {
		return unsupported(n.Text())
	}
	v := inner[0]
	switch v.Kind {
	case "string":
		return stringLiteral(ast.StringValue(v))
	case "number":
		return numberLiteralOf(v.Text())
	case "true":
		return boolLiteral(true)
	case "false":
		return boolLiteral(false)
	case "null":
		return intrinsic(TypeNull)
	case "undefined":
		return undefinedType()
	case "unary_expression":
		if arg := v.ChildByField("argument"); arg != nil && arg.Kind == "number" && v.HasToken("-") {
			t := numberLiteralOf(arg.Text())
			switch l := t.Literal.(type) {
			case float64:
				t.Literal = -l
			case *big.Int:
				t.Literal = new(big.Int).Neg(l)
			}
			return t
		}
	}
	return unsupported(n.Text())
}

// numberLiteralOf parses a numeric literal, including bigint ("10n"),
// hex, octal and binary forms and numeric separators.
func numberLiteralOf(text string) *Type {
	clean := strings.ReplaceAll(text, "_", "")
	if strings.HasSuffix(clean, "n") {
		i, ok := new(big.Int).SetString(strings.TrimSuffix(clean, "n"), 0)
		if !ok {
			return unsupported(text)
		}
		return &Type{Flags: TypeBigIntLiteral, Literal: i}
	}
	if len(clean) > 2 && clean[0] == '0' && strings.ContainsAny(clean[1:2], "xXoObB") {
		i, err := strconv.ParseInt(clean, 0, 64)
		if err == nil {
			return numberLiteral(float64(i))
		}
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return unsupported(text)
	}
	return numberLiteral(f)
}

func (c *Checker) tupleElement(n *ast.Node) *Type {
	switch n.Kind {
	case "optional_type":
		if inner := n.NamedChildren(); len(inner) == 1 {
			return optional(c.TypeFromTypeNode(inner[0]))
		}
	case "rest_type":
		if inner := n.NamedChildren(); len(inner) == 1 {
			return c.TypeFromTypeNode(inner[0])
		}
	case "required_parameter", "optional_parameter":
		t := c.TypeFromTypeNode(n.ChildByField("type"))
		if n.Kind == "optional_parameter" {
			return optional(t)
		}
		return t
	}
	return c.TypeFromTypeNode(n)
}

// typeReference resolves a named type reference.
func (c *Checker) typeReference(name *ast.Node, args []*Type) *Type {
	if name == nil {
		return anyType()
	}
	sym := c.Resolve(c.SymbolAtLocation(name))
	if sym == nil {
		return unsupported(name.Text())
	}
	if sym.Origin == OriginStandardLibrary && sym.Path == "Array" && len(args) == 0 {
		args = []*Type{anyType()}
	}
	t := c.DeclaredTypeOfSymbol(sym)
	if len(args) == 0 {
		return t
	}
	if t.AliasSymbol != nil {
		cp := *t
		cp.AliasTypeArguments = args
		return &cp
	}
	if t.Symbol != nil && !t.Is(TypeParameter) {
		cp := *t
		cp.TypeArguments = args
		return &cp
	}
	return t
}

// DeclaredTypeOfSymbol returns the type a symbol denotes in a type position.
func (c *Checker) DeclaredTypeOfSymbol(sym *Symbol) *Type {
	sym = c.Resolve(sym)
	if sym == nil {
		return anyType()
	}
	switch {
	case sym.Has(SymTypeParameter):
		return &Type{Flags: TypeParameter, Symbol: sym}
	case sym.Has(SymEnumMember):
		return &Type{Flags: TypeObject, Symbol: sym}
	case sym.Has(SymTypeAlias) && sym.Origin == OriginProject:
		return c.aliasType(sym)
	}
	return &Type{Flags: TypeObject, Symbol: sym}
}

// aliasType resolves the aliased type. Anonymous structures keep a
// reference to the alias; named types and primitives are returned as is.
func (c *Checker) aliasType(sym *Symbol) *Type {
	var decl *ast.Node
	for _, d := range sym.Decls {
		if d.Kind == "type_alias_declaration" {
			decl = d
			break
		}
	}
	if decl == nil {
		return &Type{Flags: TypeObject, Symbol: sym}
	}
	underlying := c.TypeFromTypeNode(decl.ChildByField("value"))
	if underlying.Symbol != nil || underlying.Flags&TypeIntrinsic != 0 || underlying.AliasSymbol != nil {
		return underlying
	}
	cp := *underlying
	cp.AliasSymbol = sym
	return &cp
}

func (c *Checker) objectTypeNode(n *ast.Node) *Type {
	t := &Type{Flags: TypeObject}
	for _, m := range n.NamedChildren() {
		switch m.Kind {
		case "property_signature":
			member := m
			t.Properties = append(t.Properties, &Property{
				Name:     memberName(m),
				Optional: m.HasToken("?"),
				Readonly: m.HasToken("readonly"),
				Node:     m,
				get: func() *Type {
					pt := c.TypeFromTypeNode(member.ChildByField("type"))
					if member.HasToken("?") {
						return optional(pt)
					}
					return pt
				},
			})
		case "method_signature":
			member := m
			t.Properties = append(t.Properties, &Property{
				Name:     memberName(m),
				Optional: m.HasToken("?"),
				Node:     m,
				get: func() *Type {
					ft := &Type{Flags: TypeObject, Signatures: []*Signature{c.SignatureOf(member)}}
					if member.HasToken("?") {
						return optional(ft)
					}
					return ft
				},
			})
		case "call_signature":
			t.Signatures = append(t.Signatures, c.SignatureOf(m))
		case "construct_signature", "index_signature":
			return unsupported(n.Text())
		}
	}
	return t
}

// TypeOfProperty returns the type of an object type member.
func (c *Checker) TypeOfProperty(p *Property) *Type {
	if p.typ == nil {
		if p.get == nil {
			return anyType()
		}
		p.typ = p.get()
	}
	return p.typ
}

// TypeParametersOf returns the type parameters declared by decl.
func (c *Checker) TypeParametersOf(decl *ast.Node) []*TypeParam {
	tps := decl.ChildByField("type_parameters")
	if tps == nil {
		return nil
	}
	var out []*TypeParam
	for _, tp := range tps.ChildrenOfKind("type_parameter") {
		name := tp.ChildByField("name")
		if name == nil {
			continue
		}
		p := &TypeParam{Name: name.Text()}
		if constraint := tp.ChildByField("constraint"); constraint != nil {
			inner := constraint.NamedChildren()
			if len(inner) == 1 {
				p.Constraint = c.TypeFromTypeNode(inner[0])
			}
		}
		out = append(out, p)
	}
	return out
}

// SignatureOf returns the call signature declared by a function-like node.
func (c *Checker) SignatureOf(fn *ast.Node) *Signature {
	sig := &Signature{
		TypeParameters: c.TypeParametersOf(fn),
		Async:          fn.HasToken("async"),
		Node:           fn,
		retNode:        fn.ChildByField("return_type"),
	}
	if p := fn.ChildByField("parameter"); p != nil {
		sig.Parameters = append(sig.Parameters, &Parameter{Name: p.Text(), Type: anyType(), Node: p})
	}
	if params := fn.ChildByField("parameters"); params != nil {
		for _, p := range params.NamedChildren() {
			if !p.Is("required_parameter", "optional_parameter") {
				continue
			}
			sig.Parameters = append(sig.Parameters, c.parameter(p))
		}
	}
	return sig
}

func (c *Checker) parameter(p *ast.Node) *Parameter {
	pattern := p.ChildByField("pattern")
	param := &Parameter{Node: p, Optional: p.Kind == "optional_parameter"}
	if pattern != nil {
		param.Name = pattern.Text()
		switch pattern.Kind {
		case "object_pattern", "array_pattern":
			// destructured parameters are anonymous
			param.Name = ""
		case "rest_pattern":
			param.Rest = true
			if inner := pattern.NamedChildren(); len(inner) == 1 {
				param.Name = inner[0].Text()
			}
		}
	}
	if value := p.ChildByField("value"); value != nil {
		param.Optional = true
		if p.ChildByField("type") == nil {
			param.Type = widen(c.TypeAtLocation(value))
		}
	}
	if param.Type == nil {
		if ann := p.ChildByField("type"); ann != nil {
			param.Type = c.TypeFromTypeNode(ann)
		} else if param.Rest {
			param.Type = &Type{Flags: TypeObject, Symbol: c.standardSymbol("Array"), TypeArguments: []*Type{anyType()}}
		} else {
			param.Type = anyType()
		}
	}
	if p.Kind == "optional_parameter" {
		param.Type = optional(param.Type)
	}
	return param
}

// ReturnTypeOf returns the declared or inferred return type of sig.
func (c *Checker) ReturnTypeOf(sig *Signature) *Type {
	if sig.ret != nil {
		return sig.ret
	}
	if sig.inferred {
		return anyType()
	}
	sig.inferred = true
	var ret *Type
	if sig.retNode != nil {
		ret = c.TypeFromTypeNode(sig.retNode)
	} else {
		ret = c.inferReturnType(sig.Node)
		if sig.Async {
			ret = c.promiseOf(ret)
		}
	}
	sig.ret = ret
	return ret
}

func (c *Checker) promiseOf(t *Type) *Type {
	if t.Symbol != nil && t.Symbol.Origin == OriginStandardLibrary && t.Symbol.Path == "Promise" {
		return t
	}
	return &Type{Flags: TypeObject, Symbol: c.standardSymbol("Promise"), TypeArguments: []*Type{t}}
}

// inferReturnType infers a function's return type from an expression body
// or its first return statement.
func (c *Checker) inferReturnType(fn *ast.Node) *Type {
	body := fn.ChildByField("body")
	if body == nil {
		return anyType()
	}
	if body.Kind != "statement_block" {
		return widen(c.TypeAtLocation(body))
	}
	var ret *ast.Node
	ast.Walk(body, func(n *ast.Node) bool {
		if ret != nil {
			return false
		}
		if n != body && n.Is("function_declaration", "function_expression", "function", "arrow_function",
			"method_definition", "class", "class_declaration", "generator_function", "generator_function_declaration") {
			return false
		}
		if n.Kind == "return_statement" {
			ret = n
			return false
		}
		return true
	})
	if ret == nil {
		return intrinsic(TypeVoid)
	}
	values := ret.NamedChildren()
	if len(values) == 0 {
		return intrinsic(TypeVoid)
	}
	return widen(c.TypeAtLocation(values[0]))
}
