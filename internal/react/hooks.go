package react

import (
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// StateHookProcessor extracts `const [value, setValue] = useState(...)`.
// The hook belongs to the declaration dependencies are registered for,
// which for hooks inside a component body is the component.
type StateHookProcessor struct {
	traverser.BaseProcessor
}

func (StateHookProcessor) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{
		Kinds: []string{"variable_declarator"},
		Check: func(ctx *traverser.Context) bool {
			return isUseState(ctx.Node.ChildByField("value"))
		},
	}
}

func isUseState(value *ast.Node) bool {
	value = ast.Unwrap(value)
	if value == nil || value.Kind != "call_expression" {
		return false
	}
	fn := value.ChildByField("function")
	if fn == nil {
		return false
	}
	switch fn.Kind {
	case "identifier":
		return fn.Text() == "useState"
	case "member_expression":
		prop := fn.ChildByField("property")
		return prop != nil && prop.Text() == "useState"
	}
	return false
}

func (StateHookProcessor) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	pattern := ctx.Node.ChildByField("name")
	if pattern == nil || pattern.Kind != "array_pattern" {
		return nil, nil
	}
	var names []string
	for _, el := range pattern.NamedChildren() {
		if el.Kind != "identifier" {
			break
		}
		names = append(names, el.Text())
	}
	if len(names) != 2 {
		return nil, nil
	}
	source, ok := scope.DependencySource(ctx)
	if !ok {
		return nil, nil
	}
	return concept.Of(StateHook{
		ComponentFQN: source.Global,
		PropName:     names[0],
		SetterName:   names[1],
	}), nil
}
