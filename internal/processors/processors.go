// Package processors turns top-level declarations, their members, imports
// and exports into concepts.
//
// Declaration processors only run for declarations made at module level:
// directly in the program, behind export or declare, or in the body of a
// named namespace. Member processors only run for members of a declaration
// handled here.
package processors

import (
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

var (
	declarationKey = traverser.NewKey[concept.FQN]("declaration-fqn")
	// classLikeKey marks a class or interface whose members are extracted.
	classLikeKey = traverser.NewKey[*ast.Node]("class-like-members")
	// functionTypeKey holds the type of the function or method whose
	// parameters are extracted.
	functionTypeKey = traverser.NewKey[concept.TypeFunction]("function-type")
	variableKindKey = traverser.NewKey[concept.VariableKind]("variable-declaration-kind")
	enumMembersKey  = traverser.NewKey[bool]("enum-members")
)

// memberDistance is the number of frames between a member and its class or
// interface: member, body, declaration.
const memberDistance = 2

// atDeclarationLevel reports whether n is declared at module level.
func atDeclarationLevel(n *ast.Node) bool {
	p := n.Parent
	for p != nil && p.Is("export_statement", "ambient_declaration", "expression_statement") {
		p = p.Parent
	}
	if p == nil {
		return false
	}
	switch p.Kind {
	case "program":
		return true
	case "statement_block":
		return isNamespaceBody(p)
	}
	return false
}

// isNamespaceBody reports whether block is the body of a named namespace.
// Bodies of `declare module "x"` augmentations do not count.
func isNamespaceBody(block *ast.Node) bool {
	ns := block.Parent
	if ns == nil || !ns.Is("internal_module", "module") {
		return false
	}
	name := ns.ChildByField("name")
	return name != nil && name.Kind != "string"
}

func declarationCondition(kinds ...string) traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: kinds,
		Check: func(ctx *traverser.Context) bool {
			n := ctx.Node
			if n.Is("class", "function_expression", "function", "generator_function") && !scope.IsDefaultDeclaration(n) {
				return false
			}
			return atDeclarationLevel(n)
		},
	}
}

// declarationName returns the name of a declaration, or "" when it is
// anonymous.
func declarationName(n *ast.Node) string {
	if name := n.ChildByField("name"); name != nil {
		return name.Text()
	}
	return ""
}

// declare registers the declaration of the current node, opens its scope and
// its dependency index, and returns its FQN.
func declare(ctx *traverser.Context, name string) (concept.FQN, error) {
	fqn := scope.ConstructDeclarationFQN(ctx, name)
	if name != "" {
		if err := scope.RegisterDeclaration(ctx, name, fqn, false); err != nil {
			return fqn, err
		}
	}
	scope.AddScopeContext(ctx, scope.DeclarationIdentifier(name))
	declareMember(ctx, fqn)
	return fqn, nil
}

// declareMember opens the dependency index of a member without registering
// it as a name.
func declareMember(ctx *traverser.Context, fqn concept.FQN) {
	declarationKey.Set(ctx.Locals, fqn)
	scope.CreateDependencyIndexFor(ctx, fqn)
}

// declared returns the FQN stored by declare or declareMember.
func declared(ctx *traverser.Context) (concept.FQN, error) {
	fqn, ok := declarationKey.Current(ctx.Locals)
	if !ok {
		return concept.FQN{}, traverser.Invariant(ctx, "declaration FQN missing")
	}
	return fqn, nil
}

// emit returns c together with the dependencies registered for the current
// declaration. Only call it from nodes that opened their own index.
func emit(ctx *traverser.Context, concepts ...concept.Concept) concept.Map {
	out := concept.Of(concepts...)
	out.Merge(scope.GetRegisteredDependencies(ctx))
	return out
}

// classLikeAt returns the class or interface whose members are extracted,
// when it sits distance frames above the current node.
func classLikeAt(ctx *traverser.Context, distance int) (*ast.Node, bool) {
	lc := ctx.Locals
	return classLikeKey.At(lc, lc.Len()-1-distance)
}

// coordinates locates n. Declarations carry the graph path of their file,
// members do not.
func coordinates(ctx *traverser.Context, n *ast.Node, withFile bool) concept.CodeCoordinates {
	c := concept.CodeCoordinates{
		StartLine:   n.Start.Line + 1,
		StartColumn: n.Start.Column,
		EndLine:     n.End.Line + 1,
		EndColumn:   n.End.Column,
	}
	if withFile {
		c.FileName = paths.GraphPath(paths.Relative(ctx.Global.ProjectRoot, ctx.ModulePath()))
	}
	return c
}

// memberName returns the name of a class or interface member. ok is false
// for computed names.
func memberName(member *ast.Node) (name string, jsPrivate, ok bool) {
	n := member.ChildByField("name")
	if n == nil {
		return "", false, false
	}
	switch n.Kind {
	case "property_identifier", "identifier", "number":
		return n.Text(), false, true
	case "private_property_identifier":
		return strings.TrimPrefix(n.Text(), "#"), true, true
	case "string":
		return ast.StringValue(n), false, true
	}
	return "", false, false
}

func visibility(member *ast.Node, jsPrivate bool) concept.Visibility {
	if jsPrivate {
		return concept.VisibilityJSPrivate
	}
	if m := member.FirstChildOfKind("accessibility_modifier"); m != nil {
		switch strings.TrimSpace(m.Text()) {
		case "private":
			return concept.VisibilityPrivate
		case "protected":
			return concept.VisibilityProtected
		}
	}
	return concept.VisibilityPublic
}

func isOverride(n *ast.Node) bool {
	return n.HasToken("override") || n.FirstChildOfKind("override_modifier") != nil
}

func isReadonly(n *ast.Node) bool {
	return n.HasToken("readonly")
}

// classFlag returns flag for class members and nil for interface members.
func classFlag(owner *ast.Node, flag bool) *bool {
	if owner.Kind == "interface_declaration" {
		return nil
	}
	return concept.Bool(flag)
}

func isAbstractMember(n *ast.Node) bool {
	return n.Kind == "abstract_method_signature" || n.HasToken("abstract")
}

// mergeAccessors merges the getter, setter and auto accessor declared for
// the same property, keeping the order of first occurrence.
func mergeAccessors(list []concept.AccessorProperty) []concept.AccessorProperty {
	out := []concept.AccessorProperty{}
	pos := map[string]int{}
	for _, a := range list {
		if i, ok := pos[a.FQN.Global]; ok {
			out[i] = out[i].Merge(a)
			continue
		}
		pos[a.FQN.Global] = len(out)
		out = append(out, a)
	}
	return out
}

func takeDecorators(children concept.Map) []concept.Decorator {
	return concept.Take[concept.Decorator](children, traverser.PropDecorators, concept.IDDecorator)
}

// statementOf returns the statement that holds declaration n, climbing out
// of export and declare wrappers.
func statementOf(n *ast.Node) *ast.Node {
	for n.Parent != nil && n.Parent.Is("export_statement", "ambient_declaration", "expression_statement") {
		n = n.Parent
	}
	return n
}

// unwrapStatement returns the declaration wrapped by an export or declare
// statement.
func unwrapStatement(stmt *ast.Node) *ast.Node {
	for stmt != nil {
		switch stmt.Kind {
		case "export_statement":
			if d := stmt.ChildByField("declaration"); d != nil {
				stmt = d
				continue
			}
			return stmt.ChildByField("value")
		case "ambient_declaration", "expression_statement":
			inner := stmt.NamedChildren()
			if len(inner) == 0 {
				return nil
			}
			stmt = inner[0]
			continue
		}
		return stmt
	}
	return nil
}
