package typenorm

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// ParseFunctionType returns the function type of a function declaration or
// function expression. Overloaded functions use their first overload.
func ParseFunctionType(ctx *traverser.Context, fn *ast.Node) (concept.TypeFunction, error) {
	c := ctx.Global.Checker
	sig := c.SignatureOf(fn)
	if t := c.TypeAtLocation(fn); t != nil && len(t.Signatures) > 0 {
		sig = t.Signatures[0]
	}
	n := newNormalizer(ctx, Options{})
	return n.signature(sig, 0), n.err
}

// ParseMethodType returns the function type of a class or interface
// method. Constructors return a "constructor" placeholder, getters have no
// parameters and setters return a "setter" placeholder.
func ParseMethodType(ctx *traverser.Context, method *ast.Node) (concept.TypeFunction, error) {
	c := ctx.Global.Checker
	sig := c.SignatureOf(method)
	n := newNormalizer(ctx, Options{})

	var fn concept.TypeFunction
	switch {
	case isConstructor(method):
		fn = concept.TypeFunction{
			ReturnType:     concept.NotIdentified("constructor"),
			Parameters:     n.parameters(sig, 0),
			TypeParameters: []concept.TypeParameterDeclaration{},
		}
	case method.HasToken("get"):
		fn = concept.TypeFunction{
			ReturnType:     n.parse(c.ReturnTypeOf(sig), 0),
			Parameters:     []concept.TypeFunctionParameter{},
			TypeParameters: []concept.TypeParameterDeclaration{},
		}
	case method.HasToken("set"):
		params := []concept.TypeFunctionParameter{}
		if len(sig.Parameters) > 0 {
			p := sig.Parameters[0]
			params = append(params, concept.TypeFunctionParameter{Name: p.Name, Type: n.parse(p.Type, 0)})
		}
		fn = concept.TypeFunction{
			ReturnType:     concept.NotIdentified("setter"),
			Parameters:     params,
			TypeParameters: []concept.TypeParameterDeclaration{},
		}
	default:
		fn = n.signature(sig, 0)
	}
	return fn, n.err
}

func isConstructor(method *ast.Node) bool {
	name := method.ChildByField("name")
	return name != nil && name.Text() == "constructor" && method.Kind == "method_definition"
}

// ParsePropertyType returns the type of a class property or interface
// property signature. Optional properties include undefined.
func ParsePropertyType(ctx *traverser.Context, property *ast.Node) (concept.Type, error) {
	return ParseNodeType(ctx, property, Options{})
}

// ParseTypeParameters returns the type parameters declared by a class,
// interface, type alias, function or method.
func ParseTypeParameters(ctx *traverser.Context, decl *ast.Node) ([]concept.TypeParameterDeclaration, error) {
	n := newNormalizer(ctx, Options{})
	tps := n.typeParameters(ctx.Global.Checker.TypeParametersOf(decl))
	return tps, n.err
}

// ParseBaseType returns the declared type named after `extends` or
// `implements`. typeArgs are the type argument nodes written next to an
// expression base (`extends Base<T>`); generic type nodes carry their own.
// It returns nil when the base does not normalize to a declared type.
func ParseBaseType(ctx *traverser.Context, base *ast.Node, typeArgs []*ast.Node) (*concept.TypeDeclared, error) {
	c := ctx.Global.Checker
	n := newNormalizer(ctx, Options{})
	result, ok := n.parse(c.TypeAtLocation(base), 0).(concept.TypeDeclared)
	if !ok {
		return nil, n.err
	}
	if len(typeArgs) > 0 {
		result.TypeArguments = []concept.Type{}
		for _, a := range typeArgs {
			result.TypeArguments = append(result.TypeArguments, n.parse(c.TypeFromTypeNode(a), 0))
		}
	}
	return &result, n.err
}

// IsOptionalParameter reports whether a parameter node is optional, either
// through `?` or through a default value.
func IsOptionalParameter(p *ast.Node) bool {
	return p.Kind == "optional_parameter" || p.ChildByField("value") != nil
}
