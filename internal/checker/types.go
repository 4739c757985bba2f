package checker

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
)

// TypeFlags classify a type.
type TypeFlags uint32

const (
	TypeAny TypeFlags = 1 << iota
	TypeUnknown
	TypeString
	TypeNumber
	TypeBoolean
	TypeBigInt
	TypeESSymbol
	TypeVoid
	TypeUndefined
	TypeNull
	TypeNever
	TypeNonPrimitive
	TypeStringLiteral
	TypeNumberLiteral
	TypeBigIntLiteral
	TypeBooleanLiteral
	TypeUnion
	TypeIntersection
	TypeObject
	TypeTuple
	TypeParameter
	TypeIndexedAccess
	TypeUnsupported

	TypeLiteral   = TypeStringLiteral | TypeNumberLiteral | TypeBigIntLiteral | TypeBooleanLiteral
	TypeIntrinsic = TypeAny | TypeUnknown | TypeString | TypeNumber | TypeBoolean | TypeBigInt |
		TypeESSymbol | TypeVoid | TypeUndefined | TypeNull | TypeNever | TypeNonPrimitive
)

// Type is a resolved type. Declared types carry their Symbol; anonymous
// object and function types carry Properties and Signatures instead.
type Type struct {
	Flags              TypeFlags
	Symbol             *Symbol
	AliasSymbol        *Symbol
	AliasTypeArguments []*Type
	TypeArguments      []*Type
	// Types holds union and intersection constituents and tuple elements.
	Types []*Type
	// Literal is a string, float64, *big.Int or bool.
	Literal    any
	Signatures []*Signature
	Properties []*Property

	text string
	// valueSide marks the type of a class, enum or function identifier
	// as opposed to the declared instance type.
	valueSide bool
}

// Is reports whether one of flags is set.
func (t *Type) Is(flags TypeFlags) bool {
	return t != nil && t.Flags&flags != 0
}

// Signature is a call signature.
type Signature struct {
	TypeParameters []*TypeParam
	Parameters     []*Parameter
	Async          bool
	Node           *ast.Node

	ret      *Type
	retNode  *ast.Node
	inferred bool
}

// Parameter is a positional parameter of a signature.
type Parameter struct {
	Name     string
	Optional bool
	Rest     bool
	Type     *Type
	Node     *ast.Node
}

// Property is a member of an anonymous object type.
type Property struct {
	Name     string
	Optional bool
	Readonly bool
	Node     *ast.Node

	typ *Type
	get func() *Type
}

// TypeParam is a declared type parameter. Constraint is nil when the
// parameter is unconstrained.
type TypeParam struct {
	Name       string
	Constraint *Type
}

var primitiveNames = map[TypeFlags]string{
	TypeAny:          "any",
	TypeUnknown:      "unknown",
	TypeString:       "string",
	TypeNumber:       "number",
	TypeBoolean:      "boolean",
	TypeBigInt:       "bigint",
	TypeESSymbol:     "symbol",
	TypeVoid:         "void",
	TypeUndefined:    "undefined",
	TypeNull:         "null",
	TypeNever:        "never",
	TypeNonPrimitive: "object",
}

var primitiveFlags = map[string]TypeFlags{}

func init() {
	for f, name := range primitiveNames {
		primitiveFlags[name] = f
	}
}

var intrinsicTypes = map[TypeFlags]*Type{}

func init() {
	for f := range primitiveNames {
		intrinsicTypes[f] = &Type{Flags: f}
	}
}

func intrinsic(f TypeFlags) *Type {
	return intrinsicTypes[f]
}

func anyType() *Type       { return intrinsic(TypeAny) }
func undefinedType() *Type { return intrinsic(TypeUndefined) }

func stringLiteral(s string) *Type {
	return &Type{Flags: TypeStringLiteral, Literal: s}
}

func numberLiteral(f float64) *Type {
	return &Type{Flags: TypeNumberLiteral, Literal: f}
}

func boolLiteral(b bool) *Type {
	return &Type{Flags: TypeBooleanLiteral, Literal: b}
}

func unsupported(text string) *Type {
	return &Type{Flags: TypeUnsupported, text: text}
}

// unionRank orders union constituents the way the compiler's type ids do:
// intrinsic types first, everything else in source order.
var unionRank = map[TypeFlags]int{
	TypeAny:            0,
	TypeUnknown:        1,
	TypeUndefined:      2,
	TypeNull:           3,
	TypeString:         4,
	TypeNumber:         5,
	TypeBigInt:         6,
	TypeBoolean:        7,
	TypeESSymbol:       8,
	TypeVoid:           9,
	TypeNever:          10,
	TypeNonPrimitive:   11,
	TypeStringLiteral:  12,
	TypeNumberLiteral:  12,
	TypeBigIntLiteral:  12,
	TypeBooleanLiteral: 12,
}

func rankOf(t *Type) int {
	if r, ok := unionRank[t.Flags]; ok {
		return r
	}
	return 13
}

// newUnion flattens nested unions, removes duplicates and orders the
// constituents. A union of one type is that type.
func newUnion(types []*Type) *Type {
	var flat []*Type
	seen := map[string]bool{}
	var add func(t *Type)
	add = func(t *Type) {
		if t == nil {
			return
		}
		if t.Is(TypeUnion) && t.AliasSymbol == nil {
			for _, m := range t.Types {
				add(m)
			}
			return
		}
		key := TypeToString(t)
		switch {
		case t.Symbol != nil:
			key = symbolKey(t.Symbol) + "|" + key
		case t.Is(TypeObject | TypeTuple):
			key = "#" + strconv.Itoa(len(flat))
		}
		if seen[key] {
			return
		}
		seen[key] = true
		flat = append(flat, t)
	}
	for _, t := range types {
		add(t)
	}
	switch len(flat) {
	case 0:
		return intrinsic(TypeNever)
	case 1:
		return flat[0]
	}
	sort.SliceStable(flat, func(i, j int) bool { return rankOf(flat[i]) < rankOf(flat[j]) })
	return &Type{Flags: TypeUnion, Types: flat}
}

func symbolKey(s *Symbol) string {
	if s.Origin != OriginProject {
		return s.Module + "|" + s.Path + "|" + s.Name
	}
	d := s.ValueDeclaration()
	if d == nil || s.File == nil {
		return s.Name
	}
	return s.File.Path + ":" + strconv.Itoa(d.StartByte) + ":" + s.Name
}

// optional returns t | undefined.
func optional(t *Type) *Type {
	return newUnion([]*Type{undefinedType(), t})
}

// removeNullable drops null and undefined from a union.
func removeNullable(t *Type) *Type {
	if !t.Is(TypeUnion) {
		if t.Is(TypeNull | TypeUndefined) {
			return intrinsic(TypeNever)
		}
		return t
	}
	var kept []*Type
	for _, m := range t.Types {
		if !m.Is(TypeNull | TypeUndefined) {
			kept = append(kept, m)
		}
	}
	return newUnion(kept)
}

// widen converts literal types to their primitive.
func widen(t *Type) *Type {
	if t == nil {
		return anyType()
	}
	switch {
	case t.Is(TypeStringLiteral):
		return intrinsic(TypeString)
	case t.Is(TypeNumberLiteral):
		return intrinsic(TypeNumber)
	case t.Is(TypeBigIntLiteral):
		return intrinsic(TypeBigInt)
	case t.Is(TypeBooleanLiteral):
		return intrinsic(TypeBoolean)
	case t.Is(TypeUnion) && t.AliasSymbol == nil:
		members := make([]*Type, len(t.Types))
		for i, m := range t.Types {
			members[i] = widen(m)
		}
		return newUnion(members)
	}
	return t
}

// TypeToString renders t the way it would be written in source.
func TypeToString(t *Type) string {
	return typeToString(t, 0)
}

func typeToString(t *Type, depth int) string {
	if t == nil {
		return "any"
	}
	if t.text != "" {
		return t.text
	}
	if depth > 8 {
		return "..."
	}
	if name, ok := primitiveNames[t.Flags]; ok {
		return name
	}
	switch {
	case t.AliasSymbol != nil:
		return t.AliasSymbol.Name + typeArgumentsString(t.AliasTypeArguments, depth)
	case t.Is(TypeLiteral):
		return literalString(t.Literal)
	case t.Is(TypeUnion):
		return joinTypes(t.Types, " | ", depth)
	case t.Is(TypeIntersection):
		return joinTypes(t.Types, " & ", depth)
	case t.Is(TypeTuple):
		return "[" + joinTypes(t.Types, ", ", depth) + "]"
	case t.Is(TypeParameter):
		return t.Symbol.Name
	case t.Symbol != nil:
		name := t.Symbol.Name
		if t.Symbol.Path != "" {
			name = t.Symbol.Path
		}
		if t.Symbol.Has(SymEnumMember) && t.Symbol.Parent != nil {
			name = t.Symbol.Parent.Name + "." + name
		}
		if (t.Symbol.Any(SymClass|SymEnum|SymNamespace) || t.Symbol.Has(SymFunction)) && len(t.TypeArguments) == 0 && t.valueSide {
			return "typeof " + name
		}
		if name == "Array" && len(t.TypeArguments) == 1 {
			return typeToString(t.TypeArguments[0], depth+1) + "[]"
		}
		return name + typeArgumentsString(t.TypeArguments, depth)
	case len(t.Signatures) == 1 && len(t.Properties) == 0:
		return signatureString(t.Signatures[0], depth)
	case t.Is(TypeObject):
		var b strings.Builder
		b.WriteString("{ ")
		for _, p := range t.Properties {
			if p.Readonly {
				b.WriteString("readonly ")
			}
			b.WriteString(p.Name)
			if p.Optional {
				b.WriteString("?")
			}
			b.WriteString(": ")
			if p.typ != nil {
				b.WriteString(typeToString(p.typ, depth+1))
			} else {
				b.WriteString("any")
			}
			b.WriteString("; ")
		}
		b.WriteString("}")
		return b.String()
	}
	return "any"
}

func typeArgumentsString(args []*Type, depth int) string {
	if len(args) == 0 {
		return ""
	}
	return "<" + joinTypes(args, ", ", depth) + ">"
}

func joinTypes(types []*Type, sep string, depth int) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = typeToString(t, depth+1)
	}
	return strings.Join(parts, sep)
}

func signatureString(s *Signature, depth int) string {
	parts := make([]string, len(s.Parameters))
	for i, p := range s.Parameters {
		name := p.Name
		if p.Rest {
			name = "..." + name
		}
		if p.Optional {
			name += "?"
		}
		parts[i] = name + ": " + typeToString(p.Type, depth+1)
	}
	ret := "any"
	if s.ret != nil {
		ret = typeToString(s.ret, depth+1)
	}
	return "(" + strings.Join(parts, ", ") + ") => " + ret
}

func literalString(v any) string {
	switch l := v.(type) {
	case string:
		return strconv.Quote(l)
	case float64:
		return strconv.FormatFloat(l, 'f', -1, 64)
	case *big.Int:
		return l.String() + "n"
	case bool:
		return strconv.FormatBool(l)
	}
	return "any"
}
