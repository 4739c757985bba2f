package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
	"github.com/mvp-joe/tsconcepts/internal/valuenorm"
)

// EnumProcessor extracts enums.
type EnumProcessor struct{}

func (EnumProcessor) Condition() traverser.ExecutionCondition {
	return declarationCondition("enum_declaration")
}

func (EnumProcessor) PreChildren(ctx *traverser.Context) error {
	if _, err := declare(ctx, declarationName(ctx.Node)); err != nil {
		return err
	}
	enumMembersKey.Set(ctx.Locals, true)
	return nil
}

func (EnumProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	return emit(ctx, concept.EnumDeclaration{
		EnumName:    declarationName(n),
		FQN:         fqn,
		Members:     concept.Take[concept.EnumMember](children, traverser.PropMembers, concept.IDEnumMember),
		Constant:    n.HasToken("const"),
		Declared:    isAmbient(n),
		Coordinates: coordinates(ctx, n, true),
	}), nil
}

func isAmbient(n *ast.Node) bool {
	for p := n.Parent; p != nil && p.Kind != "program"; p = p.Parent {
		if p.Kind == "ambient_declaration" {
			return true
		}
	}
	return n.HasToken("declare")
}

// EnumMemberProcessor extracts the members of an extracted enum. Computed
// initializers that are not normalized values keep their source text.
type EnumMemberProcessor struct{}

// enumMemberDistance is the number of frames between a member and its
// enum: member, enum body, enum.
const enumMemberDistance = 2

func (EnumMemberProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"enum_assignment", "property_identifier", "string"},
		Check: func(ctx *traverser.Context) bool {
			if ctx.Node.Parent == nil || ctx.Node.Parent.Kind != "enum_body" {
				return false
			}
			lc := ctx.Locals
			_, ok := enumMembersKey.At(lc, lc.Len()-1-enumMemberDistance)
			return ok
		},
	}
}

func enumMemberName(member *ast.Node) string {
	n := member
	if member.Kind == "enum_assignment" {
		n = member.ChildByField("name")
	}
	if n == nil {
		return ""
	}
	if n.Kind == "string" {
		return ast.StringValue(n)
	}
	return n.Text()
}

func (EnumMemberProcessor) PreChildren(ctx *traverser.Context) error {
	if ctx.Node.Kind != "enum_assignment" {
		return nil
	}
	valuenorm.EnableValues(ctx, traverser.PropValue)
	valuenorm.SetOwner(ctx, scope.ConstructDeclarationFQN(ctx, enumMemberName(ctx.Node)))
	return nil
}

func (EnumMemberProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	name := enumMemberName(n)
	member := concept.EnumMember{
		Name:        name,
		FQN:         scope.ConstructDeclarationFQN(ctx, name),
		Coordinates: coordinates(ctx, n, false),
	}
	if value := n.ChildByField("value"); value != nil {
		if v, ok := valuenorm.TakeValue(children, traverser.PropValue); ok {
			member.Init = v
		} else {
			member.Init = concept.Complex(value.Text())
		}
	}
	return concept.Of(member), nil
}

// TypeAliasProcessor extracts type aliases. The aliased type never names
// the alias itself.
type TypeAliasProcessor struct{}

func (TypeAliasProcessor) Condition() traverser.ExecutionCondition {
	return declarationCondition("type_alias_declaration")
}

func (TypeAliasProcessor) PreChildren(ctx *traverser.Context) error {
	_, err := declare(ctx, declarationName(ctx.Node))
	return err
}

func (TypeAliasProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	n := ctx.Node
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	typeParams, err := typenorm.ParseTypeParameters(ctx, n)
	if err != nil {
		return nil, err
	}
	typ, err := typenorm.ParseNodeType(ctx, n.ChildByField("value"), typenorm.Options{Excluded: fqn.Global})
	if err != nil {
		return nil, err
	}
	return emit(ctx, concept.TypeAliasDeclaration{
		TypeAliasName:  declarationName(n),
		FQN:            fqn,
		TypeParameters: typeParams,
		Type:           typ,
		Coordinates:    coordinates(ctx, n, true),
	}), nil
}
