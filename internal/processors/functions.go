package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
)

// FunctionProcessor extracts functions. Overload signatures collapse into
// the implementation, or into the first signature of an ambient function.
type FunctionProcessor struct{}

func (FunctionProcessor) Condition() traverser.ExecutionCondition {
	cond := declarationCondition(
		"function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "function", "generator_function",
	)
	check := cond.Check
	cond.Check = func(ctx *traverser.Context) bool {
		return check(ctx) && !isOverloadedFunction(ctx.Node)
	}
	return cond
}

// isOverloadedFunction reports whether a function signature is an overload
// of a function declared again in the same container.
func isOverloadedFunction(fn *ast.Node) bool {
	if fn.Kind != "function_signature" {
		return false
	}
	name := declarationName(fn)
	stmt := statementOf(fn)
	if stmt.Parent == nil {
		return false
	}
	for _, sibling := range stmt.Parent.NamedChildren() {
		if sibling == stmt {
			continue
		}
		other := unwrapStatement(sibling)
		if other == nil || declarationName(other) != name {
			continue
		}
		switch other.Kind {
		case "function_declaration", "generator_function_declaration":
			return true
		case "function_signature":
			if sibling.Index() < stmt.Index() {
				return true
			}
		}
	}
	return false
}

func (FunctionProcessor) PreChildren(ctx *traverser.Context) error {
	if _, err := declare(ctx, declarationName(ctx.Node)); err != nil {
		return err
	}
	fn, err := typenorm.ParseFunctionType(ctx, ctx.Node)
	if err != nil {
		return err
	}
	functionTypeKey.Set(ctx.Locals, fn)
	return nil
}

func (FunctionProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	fn, _ := functionTypeKey.Current(ctx.Locals)
	return emit(ctx, concept.FunctionDeclaration{
		FunctionName:   scope.DeclarationIdentifier(declarationName(n)),
		FQN:            fqn,
		Parameters:     takeParameters(children),
		ReturnType:     fn.ReturnType,
		Async:          fn.Async,
		TypeParameters: fn.TypeParameters,
		Coordinates:    coordinates(ctx, n, true),
	}), nil
}
