package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
	"github.com/mvp-joe/tsconcepts/internal/valuenorm"
)

// VariableDeclarationProcessor marks the declarators of a top-level
// `var`, `let` or `const` statement for extraction.
type VariableDeclarationProcessor struct {
	traverser.BaseProcessor
}

func (VariableDeclarationProcessor) Condition() traverser.ExecutionCondition {
	return declarationCondition("lexical_declaration", "variable_declaration")
}

func (VariableDeclarationProcessor) PreChildren(ctx *traverser.Context) error {
	variableKindKey.Set(ctx.Locals, variableKind(ctx.Node))
	return nil
}

func variableKind(decl *ast.Node) concept.VariableKind {
	switch {
	case decl.HasToken("const"):
		return concept.VariableConst
	case decl.HasToken("let"):
		return concept.VariableLet
	}
	return concept.VariableVar
}

// VariableDeclaratorProcessor extracts one variable per declarator. A
// destructuring declarator declares one variable per binding, typed with
// the part of the destructured type it binds.
type VariableDeclaratorProcessor struct{}

func (VariableDeclaratorProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"variable_declarator"},
		Check: func(ctx *traverser.Context) bool {
			_, ok := variableKindKey.Parent(ctx.Locals)
			return ok
		},
	}
}

func (VariableDeclaratorProcessor) PreChildren(ctx *traverser.Context) error {
	name := ctx.Node.ChildByField("name")
	if name == nil {
		return nil
	}
	if name.Kind != "identifier" {
		for _, id := range checker.PatternIdentifiers(name) {
			fqn := scope.ConstructDeclarationFQN(ctx, id.Text())
			if err := scope.RegisterDeclaration(ctx, id.Text(), fqn, false); err != nil {
				return err
			}
		}
		return nil
	}
	fqn, err := declare(ctx, name.Text())
	if err != nil {
		return err
	}
	valuenorm.EnableValues(ctx, traverser.PropValue)
	valuenorm.SetOwner(ctx, fqn)
	return nil
}

func (VariableDeclaratorProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	kind, _ := variableKindKey.Parent(ctx.Locals)
	name := n.ChildByField("name")
	if name == nil {
		return nil, nil
	}
	if name.Kind != "identifier" {
		return destructured(ctx, name, kind)
	}

	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	typ, err := typenorm.ParseNodeType(ctx, n, typenorm.Options{Excluded: fqn.Global})
	if err != nil {
		return nil, err
	}
	v := concept.VariableDeclaration{
		VariableName: name.Text(),
		FQN:          fqn,
		Kind:         kind,
		Type:         typ,
		Coordinates:  coordinates(ctx, n, true),
	}
	if init, ok := valuenorm.TakeValue(children, traverser.PropValue); ok {
		v.InitValue = init
	}
	return emit(ctx, v), nil
}

// destructured declares the bindings of a destructuring pattern. Their
// dependencies belong to the enclosing scope.
func destructured(ctx *traverser.Context, pattern *ast.Node, kind concept.VariableKind) (concept.Map, error) {
	out := concept.Map{}
	c := ctx.Global.Checker
	for _, id := range checker.PatternIdentifiers(pattern) {
		typ, err := typenorm.ParseType(ctx, c.BindingType(id), typenorm.Options{})
		if err != nil {
			return nil, err
		}
		out.Add("", concept.VariableDeclaration{
			VariableName: id.Text(),
			FQN:          scope.ConstructDeclarationFQN(ctx, id.Text()),
			Kind:         kind,
			Type:         typ,
			Coordinates:  coordinates(ctx, id, true),
		})
	}
	return out, nil
}
