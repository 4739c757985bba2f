package concept

// ClassDeclaration is a top-level or exported class.
type ClassDeclaration struct {
	ClassName          string                     `json:"className"`
	FQN                FQN                        `json:"fqn"`
	Abstract           bool                       `json:"abstract"`
	TypeParameters     []TypeParameterDeclaration `json:"typeParameters"`
	ExtendsClass       *TypeDeclared              `json:"extendsClass,omitempty"`
	Implements         []TypeDeclared             `json:"implementsInterfaces"`
	Constructor        *ConstructorDeclaration    `json:"constr,omitempty"`
	Properties         []PropertyDeclaration      `json:"properties"`
	Methods            []MethodDeclaration        `json:"methods"`
	AccessorProperties []AccessorProperty         `json:"accessorProperties"`
	Decorators         []Decorator                `json:"decorators"`
	Coordinates        CodeCoordinates            `json:"coordinates"`
}

// InterfaceDeclaration is a top-level or exported interface.
type InterfaceDeclaration struct {
	InterfaceName      string                     `json:"interfaceName"`
	FQN                FQN                        `json:"fqn"`
	TypeParameters     []TypeParameterDeclaration `json:"typeParameters"`
	Extends            []TypeDeclared             `json:"extendsInterfaces"`
	Properties         []PropertyDeclaration      `json:"properties"`
	Methods            []MethodDeclaration        `json:"methods"`
	AccessorProperties []AccessorProperty         `json:"accessorProperties"`
	Coordinates        CodeCoordinates            `json:"coordinates"`
}

// FunctionDeclaration is a top-level or exported function.
type FunctionDeclaration struct {
	FunctionName   string                     `json:"functionName"`
	FQN            FQN                        `json:"fqn"`
	Parameters     []ParameterDeclaration     `json:"parameters"`
	ReturnType     Type                       `json:"returnType"`
	Async          bool                       `json:"async"`
	TypeParameters []TypeParameterDeclaration `json:"typeParameters"`
	Coordinates    CodeCoordinates            `json:"coordinates"`
}

// VariableKind is the declaration keyword of a variable.
type VariableKind string

const (
	VariableVar   VariableKind = "var"
	VariableLet   VariableKind = "let"
	VariableConst VariableKind = "const"
)

// VariableDeclaration is a top-level or exported variable.
type VariableDeclaration struct {
	VariableName string          `json:"variableName"`
	FQN          FQN             `json:"fqn"`
	Kind         VariableKind    `json:"kind"`
	Type         Type            `json:"type"`
	InitValue    Value           `json:"initValue,omitempty"`
	Coordinates  CodeCoordinates `json:"coordinates"`
}

// EnumDeclaration is a top-level or exported enum.
type EnumDeclaration struct {
	EnumName    string          `json:"enumName"`
	FQN         FQN             `json:"fqn"`
	Members     []EnumMember    `json:"members"`
	Constant    bool            `json:"constant"`
	Declared    bool            `json:"declared"`
	Coordinates CodeCoordinates `json:"coordinates"`
}

// EnumMember is one member of an enum. Init is nil when no initializer is given.
type EnumMember struct {
	Name        string          `json:"name"`
	FQN         FQN             `json:"fqn"`
	Coordinates CodeCoordinates `json:"coordinates"`
	Init        Value           `json:"init,omitempty"`
}

// TypeAliasDeclaration is a top-level or exported type alias.
type TypeAliasDeclaration struct {
	TypeAliasName  string                     `json:"typeAliasName"`
	FQN            FQN                        `json:"fqn"`
	TypeParameters []TypeParameterDeclaration `json:"typeParameters"`
	Type           Type                       `json:"type"`
	Coordinates    CodeCoordinates            `json:"coordinates"`
}

// MethodDeclaration is a method of a class or interface. Override, Abstract
// and IsStatic are nil for interface members.
type MethodDeclaration struct {
	MethodName     string                     `json:"methodName"`
	FQN            FQN                        `json:"fqn"`
	Parameters     []ParameterDeclaration     `json:"parameters"`
	ReturnType     Type                       `json:"returnType"`
	TypeParameters []TypeParameterDeclaration `json:"typeParameters"`
	Decorators     []Decorator                `json:"decorators"`
	Visibility     Visibility                 `json:"visibility"`
	Async          bool                       `json:"async"`
	Coordinates    CodeCoordinates            `json:"coordinates"`
	Override       *bool                      `json:"override,omitempty"`
	Abstract       *bool                      `json:"abstract,omitempty"`
	IsStatic       *bool                      `json:"isStatic,omitempty"`
}

// ConstructorDeclaration is a class constructor.
type ConstructorDeclaration struct {
	FQN                 FQN                            `json:"fqn"`
	Parameters          []ParameterDeclaration         `json:"parameters"`
	ParameterProperties []ParameterPropertyDeclaration `json:"parameterProperties"`
	Coordinates         CodeCoordinates                `json:"coordinates"`
}

// ParameterDeclaration is a parameter of a function, method or constructor.
type ParameterDeclaration struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Optional    bool            `json:"optional"`
	Decorators  []Decorator     `json:"decorators"`
	Coordinates CodeCoordinates `json:"coordinates"`
}

// ParameterPropertyDeclaration is a constructor parameter that also declares
// a class property (e.g. `constructor(private x: number)`).
type ParameterPropertyDeclaration struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	FQN         FQN             `json:"fqn"`
	Optional    bool            `json:"optional"`
	Type        Type            `json:"type"`
	Decorators  []Decorator     `json:"decorators"`
	Visibility  Visibility      `json:"visibility"`
	Readonly    bool            `json:"readonly"`
	Coordinates CodeCoordinates `json:"coordinates"`
	Override    bool            `json:"override"`
}

// PropertyDeclaration is a property of a class or interface.
type PropertyDeclaration struct {
	PropertyName string          `json:"propertyName"`
	FQN          FQN             `json:"fqn"`
	Optional     bool            `json:"optional"`
	Type         Type            `json:"type"`
	Decorators   []Decorator     `json:"decorators"`
	Visibility   Visibility      `json:"visibility"`
	Readonly     bool            `json:"readonly"`
	Coordinates  CodeCoordinates `json:"coordinates"`
	Override     *bool           `json:"override,omitempty"`
	Abstract     *bool           `json:"abstract,omitempty"`
	IsStatic     *bool           `json:"isStatic,omitempty"`
}

// AccessorProperty groups the getter, setter and auto accessor sharing one
// property name.
type AccessorProperty struct {
	FQN          FQN                      `json:"fqn"`
	PropertyName string                   `json:"propertyName"`
	Getter       *GetterDeclaration       `json:"getter,omitempty"`
	Setter       *SetterDeclaration       `json:"setter,omitempty"`
	AutoAccessor *AutoAccessorDeclaration `json:"autoAccessor,omitempty"`
}

// GetterDeclaration is the get accessor of a property.
type GetterDeclaration struct {
	ReturnType  Type            `json:"returnType"`
	Decorators  []Decorator     `json:"decorators"`
	Visibility  Visibility      `json:"visibility"`
	Coordinates CodeCoordinates `json:"coordinates"`
	Override    *bool           `json:"override,omitempty"`
	Abstract    *bool           `json:"abstract,omitempty"`
	IsStatic    *bool           `json:"isStatic,omitempty"`
}

// SetterDeclaration is the set accessor of a property.
type SetterDeclaration struct {
	Parameters  []ParameterDeclaration `json:"parameters"`
	Decorators  []Decorator            `json:"decorators"`
	Visibility  Visibility             `json:"visibility"`
	Coordinates CodeCoordinates        `json:"coordinates"`
	Override    *bool                  `json:"override,omitempty"`
	Abstract    *bool                  `json:"abstract,omitempty"`
	IsStatic    *bool                  `json:"isStatic,omitempty"`
}

// AutoAccessorDeclaration is an `accessor` field.
type AutoAccessorDeclaration struct {
	Type        Type            `json:"type"`
	Decorators  []Decorator     `json:"decorators"`
	Visibility  Visibility      `json:"visibility"`
	Coordinates CodeCoordinates `json:"coordinates"`
	Override    bool            `json:"override"`
	Abstract    bool            `json:"abstract"`
	IsStatic    bool            `json:"isStatic"`
}

// TypeParameterDeclaration declares a generic type parameter. An
// unconstrained parameter has an empty object type as constraint.
type TypeParameterDeclaration struct {
	Name       string `json:"name"`
	Constraint Type   `json:"constraint"`
}

// Decorator is a decorator applied to a class, member or parameter.
type Decorator struct {
	Value       Value           `json:"value"`
	Coordinates CodeCoordinates `json:"coordinates"`
}

func (ClassDeclaration) ConceptID() ID             { return IDClassDeclaration }
func (InterfaceDeclaration) ConceptID() ID         { return IDInterfaceDeclaration }
func (FunctionDeclaration) ConceptID() ID          { return IDFunctionDeclaration }
func (VariableDeclaration) ConceptID() ID          { return IDVariableDeclaration }
func (EnumDeclaration) ConceptID() ID              { return IDEnumDeclaration }
func (EnumMember) ConceptID() ID                   { return IDEnumMember }
func (TypeAliasDeclaration) ConceptID() ID         { return IDTypeAliasDeclaration }
func (MethodDeclaration) ConceptID() ID            { return IDMethodDeclaration }
func (ConstructorDeclaration) ConceptID() ID       { return IDConstructorDeclaration }
func (ParameterDeclaration) ConceptID() ID         { return IDParameterDeclaration }
func (ParameterPropertyDeclaration) ConceptID() ID { return IDParameterPropertyDeclaration }
func (PropertyDeclaration) ConceptID() ID          { return IDPropertyDeclaration }
func (AccessorProperty) ConceptID() ID             { return IDAccessorProperty }
func (GetterDeclaration) ConceptID() ID            { return IDGetterDeclaration }
func (SetterDeclaration) ConceptID() ID            { return IDSetterDeclaration }
func (AutoAccessorDeclaration) ConceptID() ID      { return IDAutoAccessorDeclaration }
func (TypeParameterDeclaration) ConceptID() ID     { return IDTypeParameterDeclaration }
func (Decorator) ConceptID() ID                    { return IDDecorator }

func (c ClassDeclaration) QualifiedName() FQN             { return c.FQN }
func (c InterfaceDeclaration) QualifiedName() FQN         { return c.FQN }
func (c FunctionDeclaration) QualifiedName() FQN          { return c.FQN }
func (c VariableDeclaration) QualifiedName() FQN          { return c.FQN }
func (c EnumDeclaration) QualifiedName() FQN              { return c.FQN }
func (c EnumMember) QualifiedName() FQN                   { return c.FQN }
func (c TypeAliasDeclaration) QualifiedName() FQN         { return c.FQN }
func (c MethodDeclaration) QualifiedName() FQN            { return c.FQN }
func (c ConstructorDeclaration) QualifiedName() FQN       { return c.FQN }
func (c ParameterPropertyDeclaration) QualifiedName() FQN { return c.FQN }
func (c PropertyDeclaration) QualifiedName() FQN          { return c.FQN }
func (c AccessorProperty) QualifiedName() FQN             { return c.FQN }

// Merge fills the accessors of p that are missing from other.
func (p AccessorProperty) Merge(other AccessorProperty) AccessorProperty {
	if p.Getter == nil {
		p.Getter = other.Getter
	}
	if p.Setter == nil {
		p.Setter = other.Setter
	}
	if p.AutoAccessor == nil {
		p.AutoAccessor = other.AutoAccessor
	}
	return p
}
