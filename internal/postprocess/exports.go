package postprocess

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// indexFiles are tried, in order, when a re-export names a directory.
var indexFiles = []string{"/index.ts", "/index.tsx", "/index.mts"}

// Exports replaces re-exports with the declarations they export. A star
// re-export of a project module becomes one export per exported name of
// that module, a named re-export is linked to the original declaration, and
// re-exports of packages are linked to the external declarations known for
// them. Every resolved re-export adds a dependency of the re-exporting
// module.
type Exports struct{}

type exportIndex struct {
	byFile    map[string][]concept.ExportDeclaration
	externals map[string]concept.ExternalModule
	internal  func(path string) bool
}

func (Exports) PostProcess(p *Project, all []*Project) []error {
	m := p.Concepts
	idx := &exportIndex{
		byFile:    map[string][]concept.ExportDeclaration{},
		externals: map[string]concept.ExternalModule{},
	}
	for _, e := range concept.AllOf[concept.ExportDeclaration](m, concept.IDExportDeclaration) {
		idx.byFile[e.SourceFilePathAbsolute] = append(idx.byFile[e.SourceFilePathAbsolute], e)
	}
	for _, mod := range concept.AllOf[concept.ExternalModule](m, concept.IDExternalModule) {
		idx.externals[mod.FQN.Global] = mod
	}
	known := map[string]bool{}
	for _, other := range all {
		for _, mod := range concept.AllOf[concept.Module](other.Concepts, concept.IDModule) {
			known[concept.ExtractPath(mod.FQN.Global)] = true
		}
		for _, e := range concept.AllOf[concept.ExportDeclaration](other.Concepts, concept.IDExportDeclaration) {
			known[e.SourceFilePathAbsolute] = true
		}
	}
	idx.internal = func(path string) bool {
		return !paths.IsNodeModule(path) && known[path]
	}

	var result []concept.ExportDeclaration
	var deps []concept.Dependency
	var errs []error
	for _, file := range sortedKeys(idx.byFile) {
		exports, d, e := idx.moduleExports(file, map[string]bool{})
		result = append(result, exports...)
		deps = append(deps, d...)
		errs = append(errs, e...)
	}

	m.TakeAll(concept.IDExportDeclaration)
	for _, e := range result {
		m.Add("", e)
	}
	for _, d := range deps {
		m.Add("", d)
	}
	return errs
}

func (idx *exportIndex) resolveFile(path string) string {
	if _, ok := idx.byFile[path]; ok {
		return path
	}
	for _, index := range indexFiles {
		if _, ok := idx.byFile[path+index]; ok {
			return path + index
		}
	}
	return path
}

func moduleDependency(file, target string, kind concept.DependencyKind) concept.Dependency {
	return concept.NewDependency(concept.ModuleFQN(file, "").Global, target, kind)
}

// moduleExports returns the resolved exports of file. Re-export cycles end
// at the first module visited twice.
func (idx *exportIndex) moduleExports(file string, visiting map[string]bool) ([]concept.ExportDeclaration, []concept.Dependency, []error) {
	file = idx.resolveFile(file)
	if visiting[file] {
		return nil, nil, nil
	}
	visiting[file] = true
	defer delete(visiting, file)

	var out []concept.ExportDeclaration
	var deps []concept.Dependency
	var errs []error
	for _, exp := range idx.byFile[file] {
		if exp.ImportSource == "" {
			out = append(out, exp)
			continue
		}
		if idx.internal(idx.resolveFile(exp.ImportSource)) {
			source, d, e := idx.moduleExports(exp.ImportSource, visiting)
			deps = append(deps, d...)
			errs = append(errs, e...)
			if exp.Kind == concept.ExportNamespace {
				for _, me := range source {
					name := me.ExportedName()
					re := concept.ExportDeclaration{
						Identifier:             name,
						GlobalDeclFQN:          me.GlobalDeclFQN,
						IsDefault:              me.IsDefault,
						Kind:                   me.Kind,
						SourceFilePathAbsolute: file,
					}
					if exp.Alias != "" {
						re.Alias = exp.Alias + "." + name
					}
					out = append(out, re)
				}
				target := concept.ModuleFQN(idx.resolveFile(exp.ImportSource), "").Global
				deps = append(deps, moduleDependency(file, target, concept.KindModule))
				continue
			}
			original, ok := findExport(source, exp.Identifier)
			if !ok {
				errs = append(errs, fmt.Errorf("could not find exported declaration %q in %q (re-exported by %s)", exp.Identifier, exp.ImportSource, file))
				continue
			}
			out = append(out, concept.ExportDeclaration{
				Identifier:             exp.Identifier,
				Alias:                  exp.Alias,
				GlobalDeclFQN:          original.GlobalDeclFQN,
				IsDefault:              exp.IsDefault,
				Kind:                   original.Kind,
				SourceFilePathAbsolute: file,
			})
			if original.GlobalDeclFQN != "" {
				deps = append(deps, moduleDependency(file, original.GlobalDeclFQN, concept.KindDeclaration))
			}
			continue
		}

		ext, ok := idx.externals[`"`+exp.ImportSource+`"`]
		if !ok {
			errs = append(errs, fmt.Errorf("external module %q re-exported by %s is not used by the project", exp.ImportSource, file))
			continue
		}
		if exp.Kind == concept.ExportNamespace {
			for _, decl := range ext.Declarations {
				re := concept.ExportDeclaration{
					Identifier:             decl.Name,
					GlobalDeclFQN:          decl.FQN.Global,
					Kind:                   concept.ExportValue,
					SourceFilePathAbsolute: file,
				}
				if exp.Alias != "" {
					re.Alias = exp.Alias + "." + decl.Name
				}
				out = append(out, re)
			}
			deps = append(deps, moduleDependency(file, ext.FQN.Global, concept.KindModule))
			continue
		}
		decl, ok := findExternal(ext, exp.Identifier)
		if !ok {
			errs = append(errs, fmt.Errorf("external declaration %q of %q re-exported by %s is not used by the project", exp.Identifier, exp.ImportSource, file))
			continue
		}
		out = append(out, concept.ExportDeclaration{
			Identifier:             decl.Name,
			Alias:                  exp.Alias,
			GlobalDeclFQN:          decl.FQN.Global,
			IsDefault:              exp.IsDefault,
			Kind:                   exp.Kind,
			SourceFilePathAbsolute: file,
		})
		deps = append(deps, moduleDependency(file, decl.FQN.Global, concept.KindDeclaration))
	}
	return out, deps, errs
}

func findExport(exports []concept.ExportDeclaration, name string) (concept.ExportDeclaration, bool) {
	for _, e := range exports {
		if name == "default" {
			if e.IsDefault {
				return e, true
			}
			continue
		}
		exported := e.Identifier
		if e.Alias != "" {
			exported = e.Alias
		}
		if exported == name {
			return e, true
		}
	}
	return concept.ExportDeclaration{}, false
}

func findExternal(mod concept.ExternalModule, name string) (concept.ExternalDeclaration, bool) {
	for _, d := range mod.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	for _, d := range mod.Declarations {
		if strings.HasSuffix(d.Name, "."+name) {
			return d, true
		}
	}
	return concept.ExternalDeclaration{}, false
}
