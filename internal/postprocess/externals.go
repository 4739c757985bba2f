package postprocess

import (
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// ExternalDependencies creates an external module for every package the
// project depends on, listing the declarations used from it.
type ExternalDependencies struct{}

func (ExternalDependencies) PostProcess(p *Project, _ []*Project) []error {
	m := p.Concepts
	var order []string
	modules := map[string]*concept.ExternalModule{}
	seen := map[string]bool{}

	module := func(fqn string) *concept.ExternalModule {
		if mod, ok := modules[fqn]; ok {
			return mod
		}
		mod := &concept.ExternalModule{FQN: concept.Identifier(fqn), Declarations: []concept.ExternalDeclaration{}}
		modules[fqn] = mod
		order = append(order, fqn)
		return mod
	}

	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		if !paths.IsNodeModuleFQN(d.Target) {
			continue
		}
		if d.TargetKind == concept.KindModule {
			module(d.Target)
			continue
		}
		mod := module(`"` + concept.ExtractPath(d.Target) + `"`)
		if seen[d.Target] {
			continue
		}
		seen[d.Target] = true
		mod.Declarations = append(mod.Declarations, concept.ExternalDeclaration{
			FQN:  concept.Identifier(d.Target),
			Name: concept.ExtractIdentifier(d.Target),
		})
	}

	m.TakeAll(concept.IDExternalModule)
	for _, fqn := range order {
		m.Add("", *modules[fqn])
	}
	return nil
}
