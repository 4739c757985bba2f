package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/valuenorm"
)

// DecoratorProcessor turns a decorator into its normalized expression.
type DecoratorProcessor struct{}

func (DecoratorProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"decorator"}}
}

func (DecoratorProcessor) PreChildren(ctx *traverser.Context) error {
	valuenorm.EnableValues(ctx, traverser.PropExpression)
	return nil
}

func (DecoratorProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	v, ok := valuenorm.TakeValue(children, traverser.PropExpression)
	if !ok {
		expr := n.NamedChildren()
		if len(expr) == 0 {
			return nil, nil
		}
		v = concept.Complex(expr[0].Text())
	}
	return concept.Of(concept.Decorator{Value: v, Coordinates: coordinates(ctx, n, false)}), nil
}

// transient concepts only travel between processors. Whatever is left of
// them at the program level belongs to declarations that were not
// extracted.
var transient = []concept.ID{
	concept.IDDecorator,
	concept.IDParameterDeclaration,
	concept.IDParameterPropertyDeclaration,
	concept.IDPropertyDeclaration,
	concept.IDMethodDeclaration,
	concept.IDConstructorDeclaration,
	concept.IDAccessorProperty,
	concept.IDEnumMember,
	concept.IDTypeParameterDeclaration,
	concept.IDPrimitiveType,
	concept.IDDeclaredType,
	concept.IDUnionType,
	concept.IDIntersectionType,
	concept.IDObjectType,
	concept.IDObjectTypeMember,
	concept.IDFunctionType,
	concept.IDFunctionTypeParam,
	concept.IDTypeParameter,
	concept.IDLiteralType,
	concept.IDTupleType,
	concept.IDNotIdentifiedType,
	concept.IDNullValue,
	concept.IDLiteralValue,
	concept.IDDeclaredValue,
	concept.IDMemberValue,
	concept.IDObjectValue,
	concept.IDObjectValueProperty,
	concept.IDArrayValue,
	concept.IDCallValue,
	concept.IDFunctionValue,
	concept.IDClassValue,
	concept.IDComplexValue,
}

// CleanupProcessor drops transient concepts at the program level.
type CleanupProcessor struct{}

func (CleanupProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"program"}}
}

func (CleanupProcessor) PreChildren(*traverser.Context) error { return nil }

func (CleanupProcessor) PostChildren(_ *traverser.Context, children concept.Map) (concept.Map, error) {
	for _, id := range transient {
		children.TakeAll(id)
	}
	return nil, nil
}
