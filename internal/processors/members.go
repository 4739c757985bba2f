package processors

import (
	"sort"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/typenorm"
)

type accessorKind int

const (
	plainMethod accessorKind = iota
	getter
	setter
)

func accessorOf(method *ast.Node) accessorKind {
	switch {
	case method.HasToken("get"):
		return getter
	case method.HasToken("set"):
		return setter
	}
	return plainMethod
}

func isConstructor(method *ast.Node) bool {
	name, _, ok := memberName(method)
	return ok && name == "constructor" && method.Kind == "method_definition"
}

// isOverloadSignature reports whether a method signature is one overload of
// a method that is declared again later in the same body, either with an
// implementation or as another signature seen first.
func isOverloadSignature(member *ast.Node) bool {
	if member.Kind == "method_definition" || member.Parent == nil {
		return false
	}
	name, _, _ := memberName(member)
	kind := accessorOf(member)
	for _, sibling := range member.Parent.NamedChildren() {
		if sibling == member || !sibling.Is("method_definition", "method_signature", "abstract_method_signature") {
			continue
		}
		other, _, ok := memberName(sibling)
		if !ok || other != name || accessorOf(sibling) != kind {
			continue
		}
		if sibling.Kind == "method_definition" || sibling.Index() < member.Index() {
			return true
		}
	}
	return false
}

func memberCondition(kinds ...string) traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: kinds,
		Check: func(ctx *traverser.Context) bool {
			if _, ok := classLikeAt(ctx, memberDistance); !ok {
				return false
			}
			_, _, ok := memberName(ctx.Node)
			return ok
		},
	}
}

// MethodProcessor extracts methods, constructors, getters and setters of
// classes and interfaces. Overload signatures collapse into the first
// declaration of the method.
type MethodProcessor struct{}

func (MethodProcessor) Condition() traverser.ExecutionCondition {
	cond := memberCondition("method_definition", "method_signature", "abstract_method_signature")
	check := cond.Check
	cond.Check = func(ctx *traverser.Context) bool {
		return check(ctx) && !isOverloadSignature(ctx.Node)
	}
	return cond
}

func (MethodProcessor) PreChildren(ctx *traverser.Context) error {
	name, _, _ := memberName(ctx.Node)
	declareMember(ctx, scope.ConstructDeclarationFQN(ctx, name))
	scope.AddScopeContext(ctx, name)
	fn, err := typenorm.ParseMethodType(ctx, ctx.Node)
	if err != nil {
		return err
	}
	functionTypeKey.Set(ctx.Locals, fn)
	return nil
}

func (MethodProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	owner, _ := classLikeAt(ctx, memberDistance)
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	fn, _ := functionTypeKey.Current(ctx.Locals)
	name, jsPrivate, _ := memberName(n)
	params := takeParameters(children)
	decorators := takeDecorators(children)
	coords := coordinates(ctx, n, false)
	vis := visibility(n, jsPrivate)
	override := classFlag(owner, isOverride(n))
	abstract := classFlag(owner, isAbstractMember(n))
	static := classFlag(owner, n.HasToken("static"))

	if isConstructor(n) {
		props := concept.Take[concept.ParameterPropertyDeclaration](children, traverser.PropParameters, concept.IDParameterPropertyDeclaration)
		sort.SliceStable(props, func(i, j int) bool { return props[i].Index < props[j].Index })
		return emit(ctx, concept.ConstructorDeclaration{
			FQN:                 fqn,
			Parameters:          params,
			ParameterProperties: props,
			Coordinates:         coords,
		}), nil
	}

	switch accessorOf(n) {
	case getter:
		return emit(ctx, concept.AccessorProperty{
			FQN:          fqn,
			PropertyName: name,
			Getter: &concept.GetterDeclaration{
				ReturnType:  fn.ReturnType,
				Decorators:  decorators,
				Visibility:  vis,
				Coordinates: coords,
				Override:    override,
				Abstract:    abstract,
				IsStatic:    static,
			},
		}), nil
	case setter:
		return emit(ctx, concept.AccessorProperty{
			FQN:          fqn,
			PropertyName: name,
			Setter: &concept.SetterDeclaration{
				Parameters:  params,
				Decorators:  decorators,
				Visibility:  vis,
				Coordinates: coords,
				Override:    override,
				Abstract:    abstract,
				IsStatic:    static,
			},
		}), nil
	}

	return emit(ctx, concept.MethodDeclaration{
		MethodName:     name,
		FQN:            fqn,
		Parameters:     params,
		ReturnType:     fn.ReturnType,
		TypeParameters: fn.TypeParameters,
		Decorators:     decorators,
		Visibility:     vis,
		Async:          fn.Async,
		Coordinates:    coords,
		Override:       override,
		Abstract:       abstract,
		IsStatic:       static,
	}), nil
}

func takeParameters(children concept.Map) []concept.ParameterDeclaration {
	params := concept.Take[concept.ParameterDeclaration](children, traverser.PropParameters, concept.IDParameterDeclaration)
	sort.SliceStable(params, func(i, j int) bool { return params[i].Index < params[j].Index })
	return params
}

// PropertyProcessor extracts class fields and interface property
// signatures. `accessor` fields become auto accessors.
type PropertyProcessor struct{}

func (PropertyProcessor) Condition() traverser.ExecutionCondition {
	return memberCondition("public_field_definition", "property_signature")
}

func (PropertyProcessor) PreChildren(ctx *traverser.Context) error {
	name, _, _ := memberName(ctx.Node)
	declareMember(ctx, scope.ConstructDeclarationFQN(ctx, name))
	return nil
}

func (PropertyProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	owner, _ := classLikeAt(ctx, memberDistance)
	fqn, err := declared(ctx)
	if err != nil {
		return nil, err
	}
	typ, err := typenorm.ParsePropertyType(ctx, n)
	if err != nil {
		return nil, err
	}
	name, jsPrivate, _ := memberName(n)
	decorators := takeDecorators(children)
	coords := coordinates(ctx, n, false)

	if n.HasToken("accessor") {
		return emit(ctx, concept.AccessorProperty{
			FQN:          fqn,
			PropertyName: name,
			AutoAccessor: &concept.AutoAccessorDeclaration{
				Type:        typ,
				Decorators:  decorators,
				Visibility:  visibility(n, jsPrivate),
				Coordinates: coords,
				Override:    isOverride(n),
				Abstract:    isAbstractMember(n),
				IsStatic:    n.HasToken("static"),
			},
		}), nil
	}

	return emit(ctx, concept.PropertyDeclaration{
		PropertyName: name,
		FQN:          fqn,
		Optional:     n.HasToken("?"),
		Type:         typ,
		Decorators:   decorators,
		Visibility:   visibility(n, jsPrivate),
		Readonly:     isReadonly(n),
		Coordinates:  coords,
		Override:     classFlag(owner, isOverride(n)),
		Abstract:     classFlag(owner, isAbstractMember(n)),
		IsStatic:     classFlag(owner, n.HasToken("static")),
	}), nil
}

// ParameterProcessor extracts the parameters of extracted functions,
// methods and constructors. Constructor parameters with a modifier also
// declare a parameter property of the class.
type ParameterProcessor struct {
	traverser.BaseProcessor
}

// parameterDistance is the number of frames between a parameter and its
// function: parameter, formal parameters, function.
const parameterDistance = 2

func (ParameterProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"required_parameter", "optional_parameter"},
		Check: func(ctx *traverser.Context) bool {
			lc := ctx.Locals
			_, ok := functionTypeKey.At(lc, lc.Len()-1-parameterDistance)
			return ok
		},
	}
}

// parameterIndex returns the position of p among the parameters of its list.
func parameterIndex(p *ast.Node) int {
	i := 0
	for _, sibling := range p.Parent.NamedChildren() {
		if sibling == p {
			return i
		}
		if sibling.Is("required_parameter", "optional_parameter") {
			i++
		}
	}
	return i
}

func isParameterProperty(p *ast.Node) bool {
	return p.FirstChildOfKind("accessibility_modifier") != nil || isReadonly(p) || isOverride(p)
}

func (ParameterProcessor) PostChildren(ctx *traverser.Context, children concept.Map) (concept.Map, error) {
	n := ctx.Node
	lc := ctx.Locals
	fn, _ := functionTypeKey.At(lc, lc.Len()-1-parameterDistance)
	index := parameterIndex(n)

	var (
		name string
		typ  concept.Type
	)
	if index < len(fn.Parameters) {
		name = fn.Parameters[index].Name
		typ = fn.Parameters[index].Type
	} else {
		// a parameter missing from the first overload
		t, err := typenorm.ParseNodeType(ctx, n, typenorm.Options{})
		if err != nil {
			return nil, err
		}
		typ = t
		if pattern := n.ChildByField("pattern"); pattern != nil && pattern.Kind == "identifier" {
			name = pattern.Text()
		}
	}

	decorators := takeDecorators(children)
	coords := coordinates(ctx, n, false)
	optional := typenorm.IsOptionalParameter(n)
	out := concept.Of(concept.ParameterDeclaration{
		Index:       index,
		Name:        name,
		Type:        typ,
		Optional:    optional,
		Decorators:  decorators,
		Coordinates: coords,
	})

	method := lc.NodeAt(parameterDistance)
	if method == nil || !isConstructor(method) || !isParameterProperty(n) {
		return out, nil
	}
	if index >= len(fn.Parameters) || name == "" {
		return nil, traverser.Invariant(ctx, "parameter property %d has no matching constructor parameter", index)
	}
	class := scope.ConstructScopeFQN(ctx, false)
	class.Global = strings.TrimSuffix(class.Global, ".constructor")
	class.Local = strings.TrimSuffix(class.Local, ".constructor")
	out.Add("", concept.ParameterPropertyDeclaration{
		Index:       index,
		Name:        name,
		FQN:         class.Append(name),
		Optional:    optional,
		Type:        typ,
		Decorators:  decorators,
		Visibility:  visibility(n, false),
		Readonly:    isReadonly(n),
		Coordinates: coords,
		Override:    isOverride(n),
	})
	return out, nil
}
