package react

import (
	"sort"

	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/postprocess"
)

var elementTypes = map[string]bool{
	`"react".React.JSX.Element`: true,
	`"react".JSX.Element`:       true,
	`React.JSX.Element`:         true,
	`JSX.Element`:               true,
}

var componentBases = map[string]bool{
	`"react".React.Component`:     true,
	`"react".Component`:           true,
	`"react".React.PureComponent`: true,
	`"react".PureComponent`:       true,
	`React.Component`:             true,
	`Component`:                   true,
}

// ComponentPostProcessor derives the components of a project from its
// function, variable and class declarations.
type ComponentPostProcessor struct{}

var _ postprocess.PostProcessor = ComponentPostProcessor{}

func (ComponentPostProcessor) PostProcess(p *postprocess.Project, _ []*postprocess.Project) []error {
	m := p.Concepts
	m.TakeAll(IDComponent)

	var found []Component
	for _, f := range concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration) {
		if rendersElement(f.ReturnType) {
			found = append(found, Component{FQN: f.FQN, ComponentName: f.FunctionName})
		}
	}
	for _, v := range concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration) {
		if fn, ok := v.Type.(concept.TypeFunction); ok && rendersElement(fn.ReturnType) {
			found = append(found, Component{FQN: v.FQN, ComponentName: v.VariableName})
		}
	}
	for _, c := range concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration) {
		if c.ExtendsClass != nil && componentBases[c.ExtendsClass.FQN.Global] {
			found = append(found, Component{FQN: c.FQN, ComponentName: c.ClassName, ClassComponent: true})
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].FQN.Global < found[j].FQN.Global })
	for _, c := range found {
		m.Add("", c)
	}
	return nil
}

func rendersElement(t concept.Type) bool {
	switch t := t.(type) {
	case concept.TypeDeclared:
		return elementTypes[t.FQN.Global]
	case concept.TypeUnion:
		// `JSX.Element | null`
		for _, member := range t.Types {
			if rendersElement(member) {
				return true
			}
		}
	}
	return false
}
