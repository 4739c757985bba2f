package checker

import "github.com/mvp-joe/tsconcepts/internal/ast"

// bindingStep selects a property (index < 0) or an element of the
// destructured type.
type bindingStep struct {
	name  string
	index int
}

// BindingType returns the type of an identifier declared inside a
// destructuring pattern, sliced from the type of the destructured value.
func (c *Checker) BindingType(id *ast.Node) *Type {
	var steps []bindingStep
	n := id
	for n != nil && n.Parent != nil {
		p := n.Parent
		switch p.Kind {
		case "object_assignment_pattern", "assignment_pattern":
			n = p
		case "pair_pattern":
			steps = append(steps, bindingStep{name: identifierText(p.ChildByField("key")), index: -1})
			n = p.Parent
		case "object_pattern":
			steps = append(steps, bindingStep{name: bindingName(n), index: -1})
			n = p
		case "array_pattern":
			steps = append(steps, bindingStep{index: namedIndex(p, n)})
			n = p
		case "variable_declarator":
			return c.slice(c.typeOfDeclaration(p), steps)
		case "required_parameter", "optional_parameter":
			return c.slice(c.parameter(p).Type, steps)
		default:
			return anyType()
		}
	}
	return anyType()
}

// bindingIdentifier returns the identifier declaring name inside the
// destructuring pattern of decl, or nil when decl does not destructure.
func bindingIdentifier(decl *ast.Node, name string) *ast.Node {
	field := "pattern"
	if decl.Kind == "variable_declarator" {
		field = "name"
	}
	pattern := decl.ChildByField(field)
	if pattern == nil || !pattern.Is("object_pattern", "array_pattern") {
		return nil
	}
	for _, id := range PatternIdentifiers(pattern) {
		if id.Text() == name {
			return id
		}
	}
	return nil
}

func bindingName(n *ast.Node) string {
	if n.Kind == "object_assignment_pattern" {
		return n.ChildByField("left").Text()
	}
	return n.Text()
}

func namedIndex(parent, child *ast.Node) int {
	for i, c := range parent.NamedChildren() {
		if c == child {
			return i
		}
	}
	return -1
}

func (c *Checker) slice(t *Type, steps []bindingStep) *Type {
	for i := len(steps) - 1; i >= 0; i-- {
		t = c.memberType(t, steps[i])
	}
	return t
}

func (c *Checker) memberType(t *Type, s bindingStep) *Type {
	if t == nil {
		return anyType()
	}
	if t.Is(TypeUnion) {
		t = removeNullable(t)
	}
	if s.index >= 0 {
		switch {
		case t.Is(TypeTuple) && s.index < len(t.Types):
			return t.Types[s.index]
		case isArrayType(t):
			return t.TypeArguments[0]
		}
		return anyType()
	}
	for _, p := range t.Properties {
		if p.Name == s.name {
			return c.TypeOfProperty(p)
		}
	}
	if t.Symbol != nil {
		if m := c.MemberOf(t.Symbol, s.name); m != nil && m.Origin == OriginProject {
			return c.TypeOfSymbol(m)
		}
	}
	return anyType()
}
