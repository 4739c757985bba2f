// Package concept defines the normalized, language-agnostic model produced by
// the extraction pipeline: declarations, types, values and dependencies.
package concept

// ID is the discriminator of a concept variant. It doubles as the key used in
// the serialized output.
type ID string

// Declaration and module-level concept identifiers.
const (
	IDClassDeclaration             ID = "class-declaration"
	IDInterfaceDeclaration         ID = "interface-declaration"
	IDFunctionDeclaration          ID = "function-declaration"
	IDVariableDeclaration          ID = "variable-declaration"
	IDEnumDeclaration              ID = "enum-declaration"
	IDEnumMember                   ID = "enum-member"
	IDTypeAliasDeclaration         ID = "type-alias-declaration"
	IDMethodDeclaration            ID = "method-declaration"
	IDConstructorDeclaration       ID = "constructor-declaration"
	IDParameterDeclaration         ID = "parameter-declaration"
	IDParameterPropertyDeclaration ID = "parameter-property-declaration"
	IDPropertyDeclaration          ID = "property-declaration"
	IDAccessorProperty             ID = "accessor-property"
	IDGetterDeclaration            ID = "getter-declaration"
	IDSetterDeclaration            ID = "setter-declaration"
	IDAutoAccessorDeclaration      ID = "auto-accessor-declaration"
	IDTypeParameterDeclaration     ID = "type-parameter-declaration"
	IDDecorator                    ID = "decorator"
	IDDependency                   ID = "dependency"
	IDExportDeclaration            ID = "export-declaration"
	IDImportDeclaration            ID = "import-declaration"
	IDExternalModule               ID = "external-module"
	IDExternalDeclaration          ID = "external-declaration"
	IDModule                       ID = "module"
	IDProject                      ID = "project"
)

// Type concept identifiers.
const (
	IDPrimitiveType     ID = "primitive-type"
	IDDeclaredType      ID = "declared-type"
	IDUnionType         ID = "union-type"
	IDIntersectionType  ID = "intersection-type"
	IDObjectType        ID = "object-type"
	IDObjectTypeMember  ID = "object-type-member"
	IDFunctionType      ID = "function-type"
	IDFunctionTypeParam ID = "function-type-parameter"
	IDTypeParameter     ID = "type-parameter"
	IDLiteralType       ID = "literal-type"
	IDTupleType         ID = "tuple-type"
	IDNotIdentifiedType ID = "not-identified-type"
)

// Value concept identifiers.
const (
	IDNullValue           ID = "null-value"
	IDLiteralValue        ID = "literal-value"
	IDDeclaredValue       ID = "declared-value"
	IDMemberValue         ID = "member-value"
	IDObjectValue         ID = "object-value"
	IDObjectValueProperty ID = "object-value-property"
	IDArrayValue          ID = "array-value"
	IDCallValue           ID = "call-value"
	IDFunctionValue       ID = "function-value"
	IDClassValue          ID = "class-value"
	IDComplexValue        ID = "complex-value"
)

// Concept is one extracted fact about the analyzed source.
type Concept interface {
	ConceptID() ID
}

// Named is a concept that owns a fully-qualified name.
type Named interface {
	Concept
	QualifiedName() FQN
}

// CodeCoordinates locate a concept in its source file. Lines are 1-based,
// columns 0-based.
type CodeCoordinates struct {
	FileName    string `json:"fileName"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
}

// Visibility of class members.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityJSPrivate Visibility = "js_private"
)

// Bool returns a pointer to b, for optional flags that are undefined outside
// of classes.
func Bool(b bool) *bool {
	return &b
}
