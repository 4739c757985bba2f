package concept

import (
	"encoding/json"
	"math/big"
)

// Type is the closed family of normalized types.
type Type interface {
	Concept
	isType()
}

// Ref is a placeholder for a name whose FQN is only known after the whole
// file (or project) has been traversed. Scopes holds the global identifiers
// of the enclosing scopes, outermost first.
type Ref struct {
	Name   string
	Scopes []string
}

// TypePrimitive is a built-in keyword type such as number or string.
type TypePrimitive struct {
	Name string `json:"name"`
}

// TypeDeclared references a named declaration, optionally with type arguments.
type TypeDeclared struct {
	FQN           FQN    `json:"fqn"`
	TypeArguments []Type `json:"typeArguments"`
	Ref           *Ref   `json:"-"`
}

// TypeUnion is a union of types.
type TypeUnion struct {
	Types []Type `json:"types"`
}

// TypeIntersection is an intersection of types.
type TypeIntersection struct {
	Types []Type `json:"types"`
}

// TypeObject is an anonymous object type.
type TypeObject struct {
	Members []TypeObjectMember `json:"members"`
}

// TypeObjectMember is one member of an anonymous object type.
type TypeObjectMember struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Optional bool   `json:"optional"`
	Readonly bool   `json:"readonly"`
}

// TypeFunction is the type of a callable.
type TypeFunction struct {
	ReturnType     Type                       `json:"returnType"`
	Parameters     []TypeFunctionParameter    `json:"parameters"`
	Async          bool                       `json:"async"`
	TypeParameters []TypeParameterDeclaration `json:"typeParameters"`
}

// TypeFunctionParameter is a positional parameter of a function type.
type TypeFunctionParameter struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
	Type     Type   `json:"type"`
}

// TypeParameterReference refers to a type parameter of an enclosing declaration.
type TypeParameterReference struct {
	Name string `json:"name"`
}

// TypeLiteral is a literal type such as 0 or "a".
type TypeLiteral struct {
	Value Literal `json:"value"`
}

// TypeTuple is a fixed-length tuple.
type TypeTuple struct {
	Types []Type `json:"types"`
}

// TypeNotIdentified is the fallback for types that could not or should not be
// decomposed. Identifier carries a diagnostic rendering.
type TypeNotIdentified struct {
	Identifier string `json:"identifier"`
}

func (TypePrimitive) ConceptID() ID          { return IDPrimitiveType }
func (TypeDeclared) ConceptID() ID           { return IDDeclaredType }
func (TypeUnion) ConceptID() ID              { return IDUnionType }
func (TypeIntersection) ConceptID() ID       { return IDIntersectionType }
func (TypeObject) ConceptID() ID             { return IDObjectType }
func (TypeObjectMember) ConceptID() ID       { return IDObjectTypeMember }
func (TypeFunction) ConceptID() ID           { return IDFunctionType }
func (TypeFunctionParameter) ConceptID() ID  { return IDFunctionTypeParam }
func (TypeParameterReference) ConceptID() ID { return IDTypeParameter }
func (TypeLiteral) ConceptID() ID            { return IDLiteralType }
func (TypeTuple) ConceptID() ID              { return IDTupleType }
func (TypeNotIdentified) ConceptID() ID      { return IDNotIdentifiedType }

func (TypePrimitive) isType()          {}
func (TypeDeclared) isType()           {}
func (TypeUnion) isType()              {}
func (TypeIntersection) isType()       {}
func (TypeObject) isType()             {}
func (TypeFunction) isType()           {}
func (TypeParameterReference) isType() {}
func (TypeLiteral) isType()            {}
func (TypeTuple) isType()              {}
func (TypeNotIdentified) isType()      {}

// QualifiedName implements Named.
func (t TypeDeclared) QualifiedName() FQN { return t.FQN }

// Primitive returns the primitive type with the given keyword.
func Primitive(name string) TypePrimitive {
	return TypePrimitive{Name: name}
}

// NotIdentified returns a placeholder type carrying a diagnostic.
func NotIdentified(identifier string) TypeNotIdentified {
	return TypeNotIdentified{Identifier: identifier}
}

// LiteralKind distinguishes the scalar kinds a Literal can hold.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBigInt
	LiteralBoolean
	LiteralRegExp
)

// Literal is a scalar literal value. Value holds a string, float64,
// *big.Int, bool or, for regular expressions, the pattern source string.
type Literal struct {
	Kind  LiteralKind
	Value any
}

// StringLiteral creates a string literal.
func StringLiteral(s string) Literal { return Literal{Kind: LiteralString, Value: s} }

// NumberLiteral creates a number literal.
func NumberLiteral(f float64) Literal { return Literal{Kind: LiteralNumber, Value: f} }

// BigIntLiteral creates an arbitrary precision integer literal.
func BigIntLiteral(i *big.Int) Literal { return Literal{Kind: LiteralBigInt, Value: i} }

// BoolLiteral creates a boolean literal.
func BoolLiteral(b bool) Literal { return Literal{Kind: LiteralBoolean, Value: b} }

// RegExpLiteral creates a regular expression literal from its source text.
func RegExpLiteral(src string) Literal { return Literal{Kind: LiteralRegExp, Value: src} }

// TypeOf returns the primitive type name of the literal as reported by typeof.
func (l Literal) TypeOf() string {
	switch l.Kind {
	case LiteralNumber:
		return "number"
	case LiteralBigInt:
		return "bigint"
	case LiteralBoolean:
		return "boolean"
	case LiteralRegExp:
		return "object"
	default:
		return "string"
	}
}

// MarshalJSON encodes big integers as decimal strings.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch v := l.Value.(type) {
	case *big.Int:
		if v == nil {
			return []byte("null"), nil
		}
		return json.Marshal(v.String())
	default:
		return json.Marshal(v)
	}
}
