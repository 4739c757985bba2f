package concept

// Value is the closed family of normalized expression values. Every value
// carries its inferred type.
type Value interface {
	Concept
	ValueType() Type
	isValue()
}

// ValueNull is null or undefined.
type ValueNull struct {
	Kind string `json:"kind"` // "null" or "undefined"
	Type Type   `json:"type"`
}

// ValueLiteral is a scalar literal.
type ValueLiteral struct {
	Value Literal `json:"value"`
	Type  Type    `json:"type"`
}

// ValueDeclared references a declaration by FQN.
type ValueDeclared struct {
	FQN  FQN  `json:"fqn"`
	Type Type `json:"type"`
	Ref  *Ref `json:"-"`
}

// ValueMember is a non-computed member access a.b.
type ValueMember struct {
	Parent Value `json:"parent"`
	Member Value `json:"member"`
	Type   Type  `json:"type"`
}

// ValueObject is an object literal.
type ValueObject struct {
	Members map[string]Value `json:"members"`
	Type    Type             `json:"type"`
}

// ValueObjectProperty is an intermediate concept produced for each property
// of an object literal and consumed by the enclosing object value.
type ValueObjectProperty struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// ValueArray is an array literal.
type ValueArray struct {
	Items []Value `json:"items"`
	Type  Type    `json:"type"`
}

// ValueCall is a call expression.
type ValueCall struct {
	Callee        Value   `json:"callee"`
	Arguments     []Value `json:"args"`
	TypeArguments []Type  `json:"typeArgs"`
	Type          Type    `json:"type"`
}

// ValueFunction is a function or arrow function expression.
type ValueFunction struct {
	ArrowFunction bool `json:"arrowFunction"`
	Type          Type `json:"type"`
}

// ValueClass is a class expression. Its type is always a placeholder.
type ValueClass struct {
	Type Type `json:"type"`
}

// ValueComplex is the opaque fallback for expressions that are not
// decomposed. Expression holds the original source text.
type ValueComplex struct {
	Expression string `json:"expression"`
	Type       Type   `json:"type"`
}

func (ValueNull) ConceptID() ID           { return IDNullValue }
func (ValueLiteral) ConceptID() ID        { return IDLiteralValue }
func (ValueDeclared) ConceptID() ID       { return IDDeclaredValue }
func (ValueMember) ConceptID() ID         { return IDMemberValue }
func (ValueObject) ConceptID() ID         { return IDObjectValue }
func (ValueObjectProperty) ConceptID() ID { return IDObjectValueProperty }
func (ValueArray) ConceptID() ID          { return IDArrayValue }
func (ValueCall) ConceptID() ID           { return IDCallValue }
func (ValueFunction) ConceptID() ID       { return IDFunctionValue }
func (ValueClass) ConceptID() ID          { return IDClassValue }
func (ValueComplex) ConceptID() ID        { return IDComplexValue }

func (v ValueNull) ValueType() Type     { return v.Type }
func (v ValueLiteral) ValueType() Type  { return v.Type }
func (v ValueDeclared) ValueType() Type { return v.Type }
func (v ValueMember) ValueType() Type   { return v.Type }
func (v ValueObject) ValueType() Type   { return v.Type }
func (v ValueArray) ValueType() Type    { return v.Type }
func (v ValueCall) ValueType() Type     { return v.Type }
func (v ValueFunction) ValueType() Type { return v.Type }
func (v ValueClass) ValueType() Type    { return v.Type }
func (v ValueComplex) ValueType() Type  { return v.Type }

func (ValueNull) isValue()     {}
func (ValueLiteral) isValue()  {}
func (ValueDeclared) isValue() {}
func (ValueMember) isValue()   {}
func (ValueObject) isValue()   {}
func (ValueArray) isValue()    {}
func (ValueCall) isValue()     {}
func (ValueFunction) isValue() {}
func (ValueClass) isValue()    {}
func (ValueComplex) isValue()  {}

// QualifiedName implements Named.
func (v ValueDeclared) QualifiedName() FQN { return v.FQN }

// Null creates a null or undefined value.
func Null(kind string) ValueNull {
	return ValueNull{Kind: kind, Type: Primitive(kind)}
}

// LiteralOf creates a literal value typed with the literal's widened
// primitive. Regular expressions are typed as the declared RegExp type.
func LiteralOf(l Literal) ValueLiteral {
	var t Type = Primitive(l.TypeOf())
	if l.Kind == LiteralRegExp {
		t = TypeDeclared{FQN: Identifier("RegExp"), TypeArguments: []Type{}}
	}
	return ValueLiteral{Value: l, Type: t}
}

// ClassExpression creates a class expression value.
func ClassExpression() ValueClass {
	return ValueClass{Type: NotIdentified("class expression")}
}

// Complex creates the opaque fallback value for expression.
func Complex(expression string) ValueComplex {
	return ValueComplex{Expression: expression, Type: NotIdentified("complex")}
}
