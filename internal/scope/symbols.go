package scope

import (
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// SymbolFQN normalizes the qualified name of a checker symbol into the FQN
// convention of the project:
//   - standard library names keep their bare name
//   - external names keep their quoted package prefix
//   - project names get the module path of their declaring file
//
// ok is false when the name can only be resolved through the declaration
// index: locals, unresolved names and script globals declared in more than
// one file. The returned FQN then carries the bare name.
func SymbolFQN(g *traverser.Global, sym *checker.Symbol) (fqn concept.FQN, ok bool) {
	c := g.Checker
	sym = c.Resolve(sym)
	if sym == nil {
		return concept.FQN{}, false
	}
	qualified := c.QualifiedName(sym)
	switch sym.Origin {
	case checker.OriginStandardLibrary, checker.OriginExternal:
		return concept.Identifier(qualified), true
	case checker.OriginUnresolved:
		return concept.Identifier(qualified), false
	}
	if sym.BlockLocal || sym.Any(checker.SymParameter|checker.SymTypeParameter) || sym.File == nil {
		return concept.Identifier(sym.Name), false
	}
	if concept.IsModule(qualified) {
		return paths.ModuleFQN(g.ProjectRoot, sym.File.Path), true
	}
	if !spansOneFile(sym) {
		return concept.Identifier(concept.ExtractIdentifier(qualified)), false
	}
	return paths.DeclarationFQN(g.ProjectRoot, sym.File.Path, concept.ExtractIdentifier(qualified)), true
}

func spansOneFile(sym *checker.Symbol) bool {
	for _, d := range sym.Decls {
		if d.File != nil && d.File != sym.File {
			return false
		}
	}
	return true
}
