package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
)

// ClassProcessor extracts classes, including the anonymous class of a
// default export.
type ClassProcessor struct{}

func (ClassProcessor) Condition() traverser.ExecutionCondition {
	return declarationCondition("class_declaration", "abstract_class_declaration", "class")
}

func (ClassProcessor) PreChildren(ctx *traverser.Context) error {
	if _, err := declare(ctx, declarationName(ctx.Node)); err != nil {
		return err
	}
	classLikeKey.Set(ctx.Locals, ctx.Node)
	return nil
}

func (ClassProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	typeParams, err := typenorm.ParseTypeParameters(ctx, n)
	if err != nil {
		return nil, err
	}
	extends, err := superClass(ctx, n)
	if err != nil {
		return nil, err
	}
	implements, err := baseTypes(ctx, heritage(n, "implements_clause"))
	if err != nil {
		return nil, err
	}

	class := concept.ClassDeclaration{
		ClassName:          scope.DeclarationIdentifier(declarationName(n)),
		FQN:                fqn,
		Abstract:           n.Kind == "abstract_class_declaration" || n.HasToken("abstract"),
		TypeParameters:     typeParams,
		ExtendsClass:       extends,
		Implements:         implements,
		Properties:         concept.Take[concept.PropertyDeclaration](children, traverser.PropMembers, concept.IDPropertyDeclaration),
		Methods:            concept.Take[concept.MethodDeclaration](children, traverser.PropMembers, concept.IDMethodDeclaration),
		AccessorProperties: mergeAccessors(concept.Take[concept.AccessorProperty](children, traverser.PropMembers, concept.IDAccessorProperty)),
		Decorators:         takeDecorators(children),
		Coordinates:        coordinates(ctx, n, true),
	}
	if ctor, ok := concept.TakeOne[concept.ConstructorDeclaration](children, traverser.PropMembers, concept.IDConstructorDeclaration); ok {
		class.Constructor = &ctor
	}
	return emit(ctx, class), nil
}

// heritage returns the extends or implements clause of a class.
func heritage(class *ast.Node, kind string) *ast.Node {
	h := class.FirstChildOfKind("class_heritage")
	if h == nil {
		return nil
	}
	return h.FirstChildOfKind(kind)
}

// superClass returns the declared type a class extends, or nil. Type
// arguments are written next to the base expression.
func superClass(ctx *traverser.Context, class *ast.Node) (*concept.TypeDeclared, error) {
	clause := heritage(class, "extends_clause")
	if clause == nil {
		return nil, nil
	}
	base := clause.ChildByField("value")
	if base == nil {
		return nil, nil
	}
	var typeArgs []*ast.Node
	if args := clause.ChildByField("type_arguments"); args != nil {
		typeArgs = args.NamedChildren()
	}
	return typenorm.ParseBaseType(ctx, base, typeArgs)
}

// baseTypes returns the declared types listed in an implements or interface
// extends clause. Bases that are not declared types are skipped.
func baseTypes(ctx *traverser.Context, clause *ast.Node) ([]concept.TypeDeclared, error) {
	out := []concept.TypeDeclared{}
	if clause == nil {
		return out, nil
	}
	for _, base := range clause.NamedChildren() {
		t, err := typenorm.ParseBaseType(ctx, base, nil)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

// InterfaceProcessor extracts interfaces.
type InterfaceProcessor struct{}

func (InterfaceProcessor) Condition() traverser.ExecutionCondition {
	return declarationCondition("interface_declaration")
}

func (InterfaceProcessor) PreChildren(ctx *traverser.Context) error {
	if _, err := declare(ctx, declarationName(ctx.Node)); err != nil {
		return err
	}
	classLikeKey.Set(ctx.Locals, ctx.Node)
	return nil
}

func (InterfaceProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	typeParams, err := typenorm.ParseTypeParameters(ctx, n)
	if err != nil {
		return nil, err
	}
	extends, err := baseTypes(ctx, n.FirstChildOfKind("extends_type_clause"))
	if err != nil {
		return nil, err
	}
	iface := concept.InterfaceDeclaration{
		InterfaceName:      declarationName(n),
		FQN:                fqn,
		TypeParameters:     typeParams,
		Extends:            extends,
		Properties:         concept.Take[concept.PropertyDeclaration](children, traverser.PropMembers, concept.IDPropertyDeclaration),
		Methods:            concept.Take[concept.MethodDeclaration](children, traverser.PropMembers, concept.IDMethodDeclaration),
		AccessorProperties: mergeAccessors(concept.Take[concept.AccessorProperty](children, traverser.PropMembers, concept.IDAccessorProperty)),
		Coordinates:        coordinates(ctx, n, true),
	}
	return emit(ctx, iface), nil
}
