package traverser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Property names shared by processors.
const (
	PropStatements     = "statements"
	PropMembers        = "members"
	PropParameters     = "parameters"
	PropArguments      = "arguments"
	PropElements       = "elements"
	PropProperties     = "properties"
	PropDecorators     = "decorators"
	PropExtends        = "extends"
	PropImplements     = "implements"
	PropTypeArguments  = "typeArguments"
	PropTypeParameters = "typeParameters"
	PropDeclarations   = "declarations"
	PropSpecifiers     = "specifiers"
	PropExpression     = "expression"
	PropTypes          = "types"
	PropChildren       = "children"
)

// Field names of the grammar used as property names.
const (
	PropName        = "name"
	PropValue       = "value"
	PropBody        = "body"
	PropType        = "type"
	PropReturnType  = "return_type"
	PropObject      = "object"
	PropProperty    = "property"
	PropFunction    = "function"
	PropConstructor = "constructor"
	PropPattern     = "pattern"
	PropKey         = "key"
	PropSource      = "source"
	PropDeclaration = "declaration"
	PropAlias       = "alias"
	PropIndex       = "index"
	PropLeft        = "left"
	PropRight       = "right"
)

var fieldAliases = map[string]string{
	"decorator":       PropDecorators,
	"type_arguments":  PropTypeArguments,
	"type_parameters": PropTypeParameters,
}

var defaultProps = map[string]string{
	"program":                  PropStatements,
	"statement_block":          PropStatements,
	"class_body":               PropMembers,
	"interface_body":           PropMembers,
	"object_type":              PropMembers,
	"enum_body":                PropMembers,
	"formal_parameters":        PropParameters,
	"arguments":                PropArguments,
	"array":                    PropElements,
	"object":                   PropProperties,
	"type_arguments":           PropTypeArguments,
	"type_parameters":          PropTypeParameters,
	"implements_clause":        PropImplements,
	"extends_type_clause":      PropExtends,
	"lexical_declaration":      PropDeclarations,
	"variable_declaration":     PropDeclarations,
	"union_type":               PropTypes,
	"intersection_type":        PropTypes,
	"export_clause":            PropSpecifiers,
	"named_imports":            PropSpecifiers,
	"decorator":                PropExpression,
	"parenthesized_expression": PropExpression,
	"spread_element":           PropExpression,
	"await_expression":         PropExpression,
	"non_null_expression":      PropExpression,
}

// passThrough kinds only group children. Their children keep their own
// property names when merged into the grandparent.
var passThrough = map[string]bool{
	"class_body":          true,
	"class_heritage":      true,
	"extends_clause":      true,
	"implements_clause":   true,
	"extends_type_clause": true,
	"interface_body":      true,
	"enum_body":           true,
	"formal_parameters":   true,
	"export_clause":       true,
	"import_clause":       true,
	"named_imports":       true,
	"arguments":           true,
}

// orderedProps keep the position of each child: the concepts of the i-th
// child are stored under IndexedProp(prop, i).
var orderedProps = map[string]bool{
	PropElements:  true,
	PropArguments: true,
}

// IndexedProp returns the label of the i-th child under an ordered property.
func IndexedProp(prop string, i int) string {
	return prop + "[" + strconv.Itoa(i) + "]"
}

// IndexedProps returns the labels of the children stored under an ordered
// property, in child order.
func IndexedProps(children concept.Map, prop string) []string {
	type entry struct {
		label string
		index int
	}
	var entries []entry
	for label := range children {
		rest, ok := strings.CutPrefix(label, prop+"[")
		if !ok || !strings.HasSuffix(rest, "]") {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSuffix(rest, "]"))
		if err != nil {
			continue
		}
		entries = append(entries, entry{label, i})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].index < entries[b].index })
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.label
	}
	return out
}

// IsPassThrough reports whether kind is a grouping node whose children are
// merged into the parent under their own property names.
func IsPassThrough(kind string) bool {
	return passThrough[kind]
}

// PropertyName returns the structural property child is reached under from
// parent: the grammar field name (with a few aliases) or a per-parent default.
func PropertyName(parent, child *ast.Node) string {
	switch parent.Kind {
	case "class_heritage":
		if child.Kind == "implements_clause" {
			return PropImplements
		}
		return PropExtends
	case "extends_clause":
		if child.Field == "type_arguments" {
			return PropTypeArguments
		}
		return PropExtends
	case "extends_type_clause":
		return PropExtends
	case "implements_clause":
		return PropImplements
	case "enum_body":
		return PropMembers
	}
	if child.Field != "" {
		if alias, ok := fieldAliases[child.Field]; ok {
			return alias
		}
		return child.Field
	}
	if child.Kind == "decorator" {
		return PropDecorators
	}
	if p, ok := defaultProps[parent.Kind]; ok {
		return p
	}
	return PropChildren
}
