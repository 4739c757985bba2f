// Package react extracts React components, useState hooks and the custom
// JSX elements each declaration renders.
package react

import (
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

const (
	IDComponent     concept.ID = "react-component"
	IDStateHook     concept.ID = "react-state-hook"
	IDJSXDependency concept.ID = "jsx-dependency"
)

// Component is a function, function-typed variable or class that renders
// JSX.
type Component struct {
	FQN            concept.FQN `json:"fqn"`
	ComponentName  string      `json:"componentName"`
	ClassComponent bool        `json:"classComponent"`
}

// StateHook is a `const [value, setValue] = useState(...)` binding.
type StateHook struct {
	ComponentFQN string `json:"componentFqn"`
	PropName     string `json:"propName"`
	SetterName   string `json:"setterName"`
}

// JSXDependency counts how often Source renders the custom element FQN.
type JSXDependency struct {
	Source      string       `json:"sourceFQN"`
	FQN         concept.FQN  `json:"fqn"`
	Name        string       `json:"name"`
	Cardinality int          `json:"cardinality"`
	Ref         *concept.Ref `json:"-"`
}

func (Component) ConceptID() concept.ID     { return IDComponent }
func (StateHook) ConceptID() concept.ID     { return IDStateHook }
func (JSXDependency) ConceptID() concept.ID { return IDJSXDependency }

func (c Component) QualifiedName() concept.FQN { return c.FQN }

// ResolveRefs replaces the element FQN once its local name is known.
func (d JSXDependency) ResolveRefs(lookup concept.Lookup) concept.Concept {
	if d.Ref == nil {
		return d
	}
	if fqn, ok := lookup(d.Ref); ok {
		d.FQN = fqn
		d.Ref = nil
	}
	return d
}

// Feature returns the React processors. It satisfies processors.Feature.
func Feature() []traverser.Processor {
	return []traverser.Processor{
		JSXElementProcessor{},
		StateHookProcessor{},
		JSXCollector{},
	}
}
