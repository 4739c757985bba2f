// Package valuenorm turns expressions in value positions (initializers,
// enum member values, decorator expressions) into normalized values.
//
// Value processing is opt-in: a processor calls EnableValues for the child
// properties of its node that hold values, and the value processors only run
// on nodes reached under one of those properties.
package valuenorm

import (
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

var (
	valuePropsKey = traverser.NewKey[[]string]("value-props")
	ownerKey      = traverser.NewKey[concept.FQN]("value-owner")
)

// transparent kinds only wrap an expression; the value position of the
// wrapper applies to what it wraps.
var transparent = map[string]bool{
	"parenthesized_expression": true,
	"arguments":                true,
}

// EnableValues marks the children of the current node reached under props
// as value positions.
func EnableValues(ctx *traverser.Context, props ...string) {
	valuePropsKey.Set(ctx.Locals, props)
}

// InValuePosition reports whether the current node is a value position.
func InValuePosition(ctx *traverser.Context) bool {
	lc := ctx.Locals
	for d := 1; d < lc.Len(); d++ {
		if props, ok := valuePropsKey.At(lc, lc.Len()-1-d); ok {
			prop := lc.PropAt(d - 1)
			for _, p := range props {
				if p == prop {
					return true
				}
			}
			return false
		}
		if !transparent[lc.NodeAt(d).Kind] {
			return false
		}
	}
	return false
}

// SetOwner records the declaration whose initializer is processed in the
// current subtree. Types of values never reference their owner by name.
func SetOwner(ctx *traverser.Context, fqn concept.FQN) {
	ownerKey.Set(ctx.Locals, fqn)
}

func owner(ctx *traverser.Context) string {
	fqn, _, ok := ownerKey.Next(ctx.Locals)
	if !ok {
		return ""
	}
	return fqn.Global
}

// TakeValue removes the values under prop and returns the value when there
// is exactly one.
func TakeValue(children concept.Map, prop string) (concept.Value, bool) {
	values := children.TakeValues(prop)
	if len(values) != 1 {
		return nil, false
	}
	return values[0], true
}

// TakeOrderedValues removes the values stored under an ordered property and
// returns them in child order. Children without a value are skipped.
func TakeOrderedValues(children concept.Map, prop string) []concept.Value {
	out := []concept.Value{}
	for _, label := range traverser.IndexedProps(children, prop) {
		out = append(out, children.TakeValues(label)...)
	}
	return out
}

// Processors returns the value processors in registration order.
func Processors() []traverser.Processor {
	return []traverser.Processor{
		LiteralProcessor{},
		IdentifierProcessor{},
		MemberProcessor{},
		ObjectProcessor{},
		ObjectPropertyProcessor{},
		ArrayProcessor{},
		CallProcessor{},
		FunctionProcessor{},
		ClassProcessor{},
		ComplexProcessor{},
	}
}
