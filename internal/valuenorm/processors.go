package valuenorm

import (
	"math/big"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
)

func valueCondition(check func(n *ast.Node) bool, kinds ...string) traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: kinds,
		Check: func(ctx *traverser.Context) bool {
			if check != nil && !check(ctx.Node) {
				return false
			}
			return InValuePosition(ctx)
		},
	}
}

// LiteralProcessor handles scalar literals, null and undefined.
type LiteralProcessor struct {
	traverser.BaseProcessor
}

func (LiteralProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "number", "string", "true", "false", "null", "undefined", "regex")
}

func (LiteralProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	n := ctx.Node
	var l concept.Literal
	switch n.Kind {
	case "null":
		return concept.Of(concept.Null("null")), nil
	case "undefined":
		return concept.Of(concept.Null("undefined")), nil
	case "true", "false":
		l = concept.BoolLiteral(n.Kind == "true")
	case "string":
		l = concept.StringLiteral(ast.StringValue(n))
	case "regex":
		pattern := n.Text()
		if p := n.ChildByField("pattern"); p != nil {
			pattern = p.Text()
		}
		l = concept.RegExpLiteral(pattern)
	case "number":
		switch v := ctx.Global.Checker.TypeAtLocation(n).Literal.(type) {
		case float64:
			l = concept.NumberLiteral(v)
		case *big.Int:
			l = concept.BigIntLiteral(v)
		default:
			return concept.Of(concept.Complex(n.Text())), nil
		}
	}
	return concept.Of(concept.LiteralOf(l)), nil
}

// IdentifierProcessor turns a reference into a declared value. Its FQN is
// taken from the checker when the symbol is known and resolved against the
// declaration index otherwise.
type IdentifierProcessor struct {
	traverser.BaseProcessor
}

func (IdentifierProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "identifier")
}

func (IdentifierProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	v, err := declaredValue(ctx, ctx.Node)
	if err != nil {
		return nil, err
	}
	return concept.Of(v), nil
}

func declaredValue(ctx *traverser.Context, n *ast.Node) (concept.Value, error) {
	name := n.Text()
	if name == "undefined" {
		return concept.Null("undefined"), nil
	}
	typ, err := typenorm.ParseNodeType(ctx, n, typenorm.Options{Excluded: name, IgnoreDependencies: true})
	if err != nil {
		return nil, err
	}
	v := concept.ValueDeclared{FQN: concept.Identifier(name), Type: typ}
	sym := ctx.Global.Checker.SymbolAtLocation(n)
	if fqn, ok := scope.SymbolFQN(ctx.Global, sym); ok && sym != nil {
		v.FQN = fqn
		return v, nil
	}
	v.Ref = scope.ScheduleFqnResolution(ctx, name)
	return v, nil
}

// MemberProcessor handles non-computed member access `a.b`. Optional
// chains are complex values.
type MemberProcessor struct {
	traverser.BaseProcessor
}

func (MemberProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(func(n *ast.Node) bool { return !isOptionalChain(n) }, "member_expression")
}

func (MemberProcessor) PreChildren(ctx *traverser.Context) error {
	EnableValues(ctx, traverser.PropObject)
	return nil
}

func (MemberProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	object, ok := TakeValue(children, traverser.PropObject)
	prop := ctx.Node.ChildByField("property")
	if !ok || prop == nil {
		return concept.Of(concept.Complex(ctx.Node.Text())), nil
	}
	typ, err := typenorm.ParseNodeType(ctx, ctx.Node, typenorm.Options{IgnoreDependencies: true})
	if err != nil {
		return nil, err
	}
	member := concept.ValueDeclared{FQN: concept.Identifier(prop.Text()), Type: typ}
	return concept.Of(concept.ValueMember{Parent: object, Member: member, Type: typ}), nil
}

func isOptionalChain(n *ast.Node) bool {
	return n.ChildByField("optional_chain") != nil || n.FirstChildOfKind("optional_chain") != nil
}

// ObjectProcessor handles object literals. The object type is synthesized
// from the literal's shape.
type ObjectProcessor struct {
	traverser.BaseProcessor
}

func (ObjectProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "object")
}

func (ObjectProcessor) PreChildren(ctx *traverser.Context) error {
	EnableValues(ctx, traverser.PropProperties)
	return nil
}

func (ObjectProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	members := map[string]concept.Value{}
	for _, p := range concept.Take[concept.ValueObjectProperty](children, traverser.PropProperties, concept.IDObjectValueProperty) {
		members[p.Name] = p.Value
	}
	children.TakeValues(traverser.PropProperties)

	typ, err := typenorm.ParseNodeType(ctx, ctx.Node, typenorm.Options{Excluded: owner(ctx)})
	if err != nil {
		return nil, err
	}
	return concept.Of(concept.ValueObject{Members: members, Type: typ}), nil
}

// ObjectPropertyProcessor handles the properties of an object literal:
// `key: value` pairs with an identifier key, shorthand properties and
// methods.
type ObjectPropertyProcessor struct {
	traverser.BaseProcessor
}

func (ObjectPropertyProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "pair", "shorthand_property_identifier", "method_definition")
}

func (ObjectPropertyProcessor) PreChildren(ctx *traverser.Context) error {
	if ctx.Node.Kind == "pair" {
		EnableValues(ctx, traverser.PropValue)
	}
	return nil
}

func (ObjectPropertyProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	switch n.Kind {
	case "shorthand_property_identifier":
		v, err := declaredValue(ctx, n)
		if err != nil {
			return nil, err
		}
		return concept.Of(concept.ValueObjectProperty{Name: n.Text(), Value: v}), nil
	case "method_definition":
		name := n.ChildByField("name")
		if name == nil || name.Kind != "property_identifier" {
			return nil, nil
		}
		typ, err := typenorm.ParseNodeType(ctx, n, typenorm.Options{})
		if err != nil {
			return nil, err
		}
		return concept.Of(concept.ValueObjectProperty{Name: name.Text(), Value: concept.ValueFunction{Type: typ}}), nil
	}

	value, ok := TakeValue(children, traverser.PropValue)
	key := n.ChildByField("key")
	if !ok || key == nil || key.Kind != "property_identifier" {
		return nil, nil
	}
	return concept.Of(concept.ValueObjectProperty{Name: key.Text(), Value: value}), nil
}

// ArrayProcessor handles array literals. Items keep their source order.
type ArrayProcessor struct {
	traverser.BaseProcessor
}

func (ArrayProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "array")
}

func (ArrayProcessor) PreChildren(ctx *traverser.Context) error {
	EnableValues(ctx, traverser.PropElements)
	return nil
}

func (ArrayProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	items := TakeOrderedValues(children, traverser.PropElements)
	typ, err := typenorm.ParseNodeType(ctx, ctx.Node, typenorm.Options{})
	if err != nil {
		return nil, err
	}
	return concept.Of(concept.ValueArray{Items: items, Type: typ}), nil
}

// CallProcessor handles plain calls. Dynamic imports, tagged templates and
// optional calls are complex values.
type CallProcessor struct {
	traverser.BaseProcessor
}

func (CallProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(func(n *ast.Node) bool { return !isComplexCall(n) }, "call_expression")
}

func isComplexCall(n *ast.Node) bool {
	if isOptionalChain(n) {
		return true
	}
	if fn := n.ChildByField("function"); fn != nil && fn.Kind == "import" {
		return true
	}
	args := n.ChildByField("arguments")
	return args == nil || args.Kind == "template_string"
}

func (CallProcessor) PreChildren(ctx *traverser.Context) error {
	EnableValues(ctx, traverser.PropFunction, traverser.PropArguments)
	return nil
}

func (CallProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	callee, _ := TakeValue(children, traverser.PropFunction)
	if callee == nil {
		callee = concept.Complex(ctx.Node.ChildByField("function").Text())
	}
	args := TakeOrderedValues(children, traverser.PropArguments)

	typeArgs := []concept.Type{}
	if ta := ctx.Node.ChildByField("type_arguments"); ta != nil {
		for _, a := range ta.NamedChildren() {
			t, err := typenorm.ParseNodeType(ctx, a, typenorm.Options{})
			if err != nil {
				return nil, err
			}
			typeArgs = append(typeArgs, t)
		}
	}
	typ, err := typenorm.ParseNodeType(ctx, ctx.Node, typenorm.Options{})
	if err != nil {
		return nil, err
	}
	return concept.Of(concept.ValueCall{Callee: callee, Arguments: args, TypeArguments: typeArgs, Type: typ}), nil
}

// FunctionProcessor handles function and arrow function expressions.
type FunctionProcessor struct {
	traverser.BaseProcessor
}

func (FunctionProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "function_expression", "function", "arrow_function", "generator_function")
}

func (FunctionProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	n := ctx.Node
	opts := typenorm.Options{}
	if n.Parent != nil && n.Parent.Kind == "variable_declarator" {
		if name := n.Parent.ChildByField("name"); name != nil && name.Kind == "identifier" {
			opts.Excluded = name.Text()
		}
	}
	typ, err := typenorm.ParseNodeType(ctx, n, opts)
	if err != nil {
		return nil, err
	}
	return concept.Of(concept.ValueFunction{ArrowFunction: n.Kind == "arrow_function", Type: typ}), nil
}

// ClassProcessor handles class expressions. They are not decomposed.
type ClassProcessor struct {
	traverser.BaseProcessor
}

func (ClassProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(nil, "class")
}

func (ClassProcessor) PostChildren(*traverser.Context, concept.Map) (concept.Map, error) {
	return concept.Of(concept.ClassExpression()), nil
}

// ComplexProcessor keeps the source text of every other expression.
// References inside still register dependencies.
type ComplexProcessor struct {
	traverser.BaseProcessor
}

var complexKinds = []string{
	"spread_element", "array_pattern", "object_pattern", "assignment_expression",
	"augmented_assignment_expression", "await_expression", "binary_expression",
	"ternary_expression", "new_expression", "sequence_expression", "template_string",
	"as_expression", "satisfies_expression", "non_null_expression", "type_assertion",
	"unary_expression", "update_expression", "yield_expression", "this", "super",
	"subscript_expression", "call_expression", "member_expression",
}

func (ComplexProcessor) Condition() traverser.ExecutionCondition {
	return valueCondition(func(n *ast.Node) bool {
		switch n.Kind {
		case "call_expression":
			return isComplexCall(n)
		case "member_expression":
			return isOptionalChain(n)
		}
		return true
	}, complexKinds...)
}

func (ComplexProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	if ctx.Node.Kind == "subscript_expression" {
		return concept.Of(concept.Complex("computed member expression")), nil
	}
	return concept.Of(concept.Complex(ctx.Node.Text())), nil
}
