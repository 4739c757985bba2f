// Package typenorm converts checker types into normalized concept types.
//
// Declared types are named by their FQN and register a dependency from the
// current dependency source. Anonymous types are decomposed structurally.
package typenorm

import (
	"math/big"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// maxDepth bounds structural expansion of nested anonymous types.
const maxDepth = 24

var primitiveNames = map[string]bool{
	"undefined": true, "null": true, "void": true, "any": true, "unknown": true, "never": true,
	"number": true, "bigint": true, "boolean": true, "string": true, "symbol": true, "object": true,
}

// Options tune a single normalization.
type Options struct {
	// Excluded is the global FQN of a declaration whose own name must not be
	// used as declared type, e.g. a variable referring to itself.
	Excluded string
	// IgnoreDependencies disables dependency registration.
	IgnoreDependencies bool
}

type normalizer struct {
	ctx       *traverser.Context
	opts      Options
	expanding map[*checker.Type]bool
	err       error
}

func newNormalizer(ctx *traverser.Context, opts Options) *normalizer {
	return &normalizer{ctx: ctx, opts: opts, expanding: map[*checker.Type]bool{}}
}

// ParseNodeType normalizes the type of a node: an expression, a declaration
// or a type node.
func ParseNodeType(ctx *traverser.Context, n *ast.Node, opts Options) (concept.Type, error) {
	return ParseType(ctx, ctx.Global.Checker.TypeAtLocation(n), opts)
}

// ParseType normalizes a checker type.
func ParseType(ctx *traverser.Context, t *checker.Type, opts Options) (concept.Type, error) {
	n := newNormalizer(ctx, opts)
	result := n.parse(t, 0)
	return result, n.err
}

func (n *normalizer) tc() *checker.Checker {
	return n.ctx.Global.Checker
}

func (n *normalizer) parse(t *checker.Type, depth int) concept.Type {
	if t == nil {
		return concept.Primitive("any")
	}
	if depth > maxDepth {
		return concept.NotIdentified("recursive type")
	}
	switch {
	case t.Is(checker.TypeIndexedAccess):
		return concept.NotIdentified("indexed access type")
	case t.Is(checker.TypeUnsupported):
		return concept.NotIdentified(checker.TypeToString(t))
	case t.Is(checker.TypeParameter):
		return concept.TypeParameterReference{Name: t.Symbol.Name}
	}

	sym := t.AliasSymbol
	typeArgs := t.AliasTypeArguments
	if sym != nil && n.excludes(sym) {
		sym = nil
	}
	if sym == nil {
		sym = t.Symbol
		typeArgs = t.TypeArguments
	}
	if sym != nil && sym.Has(checker.SymEnumMember) && sym.Parent != nil {
		sym = sym.Parent
	}

	if sym == nil {
		if primitiveNames[checker.TypeToString(t)] && !t.Is(checker.TypeUnion) {
			return concept.Primitive(checker.TypeToString(t))
		}
		if t.AliasSymbol != nil && t.AliasSymbol.Name == "_DeepPartialObject" {
			return concept.NotIdentified("DeepPartialObject is not supported")
		}
		return n.anonymous(t, depth)
	}
	return n.declared(t, sym, typeArgs, depth)
}

// excludes reports whether sym names the excluded declaration.
func (n *normalizer) excludes(sym *checker.Symbol) bool {
	if n.opts.Excluded == "" {
		return false
	}
	fqn, _ := scope.SymbolFQN(n.ctx.Global, sym)
	return fqn.Global == n.opts.Excluded
}

func (n *normalizer) declared(t *checker.Type, sym *checker.Symbol, typeArgs []*checker.Type, depth int) concept.Type {
	c := n.tc()
	if sym.Name == "_DeepPartialObject" {
		return concept.NotIdentified("DeepPartialObject is not supported")
	}
	fqn, ok := scope.SymbolFQN(n.ctx.Global, sym)
	if fqn.IsZero() {
		return n.anonymous(t, depth)
	}
	if n.opts.Excluded != "" && fqn.Global == n.opts.Excluded {
		return n.anonymous(t, depth)
	}
	standard := c.IsStandardLibrary(c.Resolve(sym))

	result := concept.TypeDeclared{FQN: fqn, TypeArguments: []concept.Type{}}
	for _, a := range typeArgs {
		result.TypeArguments = append(result.TypeArguments, n.parse(a, depth+1))
	}

	if !n.opts.IgnoreDependencies && !standard {
		n.record(scope.RegisterDependency(n.ctx, fqn.Global, !ok))
	}
	if !ok {
		result.Ref = scope.ScheduleFqnResolution(n.ctx, fqn.Global)
	}
	return result
}

func (n *normalizer) anonymous(t *checker.Type, depth int) concept.Type {
	if n.expanding[t] {
		return concept.NotIdentified("recursive type")
	}
	n.expanding[t] = true
	defer delete(n.expanding, t)

	c := n.tc()
	switch {
	case t.Is(checker.TypeUnion):
		return concept.TypeUnion{Types: n.parseAll(t.Types, depth)}
	case t.Is(checker.TypeIntersection):
		return concept.TypeIntersection{Types: n.parseAll(t.Types, depth)}
	case len(t.Signatures) > 1:
		return concept.NotIdentified(checker.TypeToString(t))
	case len(t.Signatures) == 1:
		return n.signature(t.Signatures[0], depth)
	case t.Is(checker.TypeObject) && t.Symbol == nil:
		members := []concept.TypeObjectMember{}
		for _, p := range t.Properties {
			members = append(members, concept.TypeObjectMember{
				Name:     p.Name,
				Type:     n.parse(c.TypeOfProperty(p), depth+1),
				Optional: p.Optional,
				Readonly: p.Readonly,
			})
		}
		return concept.TypeObject{Members: members}
	case t.Is(checker.TypeLiteral):
		if l, ok := literalOf(t.Literal); ok {
			return concept.TypeLiteral{Value: l}
		}
	case t.Is(checker.TypeTuple):
		return concept.TypeTuple{Types: n.parseAll(t.Types, depth)}
	}
	return concept.NotIdentified(checker.TypeToString(t))
}

func (n *normalizer) parseAll(types []*checker.Type, depth int) []concept.Type {
	out := make([]concept.Type, 0, len(types))
	for _, m := range types {
		out = append(out, n.parse(m, depth+1))
	}
	return out
}

func (n *normalizer) signature(sig *checker.Signature, depth int) concept.TypeFunction {
	c := n.tc()
	fn := concept.TypeFunction{
		ReturnType:     n.parse(c.ReturnTypeOf(sig), depth+1),
		Parameters:     n.parameters(sig, depth),
		Async:          sig.Async,
		TypeParameters: n.typeParameters(sig.TypeParameters),
	}
	return fn
}

func (n *normalizer) parameters(sig *checker.Signature, depth int) []concept.TypeFunctionParameter {
	params := []concept.TypeFunctionParameter{}
	for i, p := range sig.Parameters {
		params = append(params, concept.TypeFunctionParameter{
			Index:    i,
			Name:     p.Name,
			Optional: p.Optional,
			Type:     n.parse(p.Type, depth+1),
		})
	}
	return params
}

// typeParameters normalizes type parameter declarations. Constraints are
// parsed without the excluded FQN; unconstrained parameters get an empty
// object type.
func (n *normalizer) typeParameters(tps []*checker.TypeParam) []concept.TypeParameterDeclaration {
	out := []concept.TypeParameterDeclaration{}
	for _, tp := range tps {
		var constraint concept.Type = concept.TypeObject{Members: []concept.TypeObjectMember{}}
		if tp.Constraint != nil {
			inner := newNormalizer(n.ctx, Options{})
			constraint = inner.parse(tp.Constraint, 0)
			n.record(inner.err)
		}
		out = append(out, concept.TypeParameterDeclaration{Name: tp.Name, Constraint: constraint})
	}
	return out
}

func (n *normalizer) record(err error) {
	if err != nil && n.err == nil {
		n.err = err
	}
}

func literalOf(v any) (concept.Literal, bool) {
	switch l := v.(type) {
	case string:
		return concept.StringLiteral(l), true
	case float64:
		return concept.NumberLiteral(l), true
	case *big.Int:
		return concept.BigIntLiteral(l), true
	case bool:
		return concept.BoolLiteral(l), true
	}
	return concept.Literal{}, false
}
