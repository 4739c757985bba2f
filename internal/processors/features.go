package processors

import (
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
	"github.com/mvp-joe/tsconcepts/internal/valuenorm"
)

// Feature contributes processors to a traversal. Features run after the
// core processors on every node they share with them.
type Feature func() []traverser.Processor

// Core returns the processors that extract the language-level concepts.
// Order matters: the dependency resolution must open the module scope
// before anything else runs on the program, and declarations must open
// their scopes before the generic scope processors see them.
func Core(registry *scope.Registry) []traverser.Processor {
	procs := []traverser.Processor{
		scope.NewDependencyResolution(registry),
		ModuleProcessor{},
		CleanupProcessor{},
		ImportProcessor{},
		ExportProcessor{},
		NamespaceProcessor{},
		ClassProcessor{},
		InterfaceProcessor{},
		FunctionProcessor{},
		TypeAliasProcessor{},
		EnumProcessor{},
		VariableDeclarationProcessor{},
		VariableDeclaratorProcessor{},
		MethodProcessor{},
		PropertyProcessor{},
		ParameterProcessor{},
		EnumMemberProcessor{},
		DecoratorProcessor{},
		scope.ScopeProcessor{},
		scope.DeclarationScopeProcessor{},
		scope.IdentifierDependency{},
		scope.MemberExpressionDependency{},
	}
	return append(procs, valuenorm.Processors()...)
}

// Assemble builds a traverser from the core processors and the given
// features.
func Assemble(registry *scope.Registry, features ...Feature) *traverser.Traverser {
	procs := Core(registry)
	for _, f := range features {
		procs = append(procs, f()...)
	}
	return traverser.New(procs...)
}
