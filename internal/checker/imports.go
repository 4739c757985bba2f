package checker

import (
	"path"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/paths"
)

// knownNamespaces maps packages whose typings declare everything inside a
// single namespace to that namespace.
var knownNamespaces = map[string]string{
	"react": "React",
}

// ResolveModule resolves an import specifier written in from. It returns
// the absolute path of the imported project file, or ok=false when the
// specifier does not name a project file.
func (c *Checker) ResolveModule(from *ast.File, spec string) (string, bool) {
	if spec == "" {
		return "", false
	}
	if !paths.IsNodeModule(spec) {
		base := spec
		if !strings.HasPrefix(spec, "/") {
			base = path.Join(path.Dir(from.Path), spec)
		}
		return c.firstExisting(base)
	}
	for pattern, targets := range c.opts.Paths {
		star, ok := matchPathPattern(pattern, spec)
		if !ok {
			continue
		}
		for _, target := range targets {
			mapped := strings.Replace(target, "*", star, 1)
			if p, ok := c.firstExisting(path.Join(c.baseURL(), mapped)); ok {
				return p, true
			}
		}
	}
	if c.opts.BaseURL != "" {
		if p, ok := c.firstExisting(path.Join(paths.Slash(c.opts.BaseURL), spec)); ok {
			return p, true
		}
	}
	return "", false
}

func (c *Checker) baseURL() string {
	if c.opts.BaseURL != "" {
		return paths.Slash(c.opts.BaseURL)
	}
	return paths.Slash(c.opts.ProjectRoot)
}

func (c *Checker) firstExisting(base string) (string, bool) {
	for _, candidate := range paths.Candidates(base) {
		if _, ok := c.files[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// matchPathPattern matches a tsconfig paths key, which may contain one "*".
func matchPathPattern(pattern, spec string) (string, bool) {
	i := strings.Index(pattern, "*")
	if i < 0 {
		return "", pattern == spec
	}
	prefix, suffix := pattern[:i], pattern[i+1:]
	if len(spec) < len(prefix)+len(suffix) || !strings.HasPrefix(spec, prefix) || !strings.HasSuffix(spec, suffix) {
		return "", false
	}
	return spec[len(prefix) : len(spec)-len(suffix)], true
}

// PackageName returns the package an external import specifier refers to.
func (c *Checker) PackageName(spec string) string {
	if c.opts.Packages != nil {
		return c.opts.Packages.ForSpecifier(c.opts.ProjectRoot, spec)
	}
	return paths.PackageOf(spec)
}

func (c *Checker) resolveImportSymbol(s *Symbol) *Symbol {
	if target, ok := c.ResolveModule(s.importFrom, s.importSpec); ok {
		f := c.files[target]
		if s.importName == "*" {
			return c.scopes[f].self
		}
		return c.exportOf(f, s.importName, map[string]bool{})
	}
	if !paths.IsNodeModule(s.importSpec) {
		return nil
	}
	return c.externalSymbol(c.PackageName(s.importSpec), s.importName)
}

// externalSymbol returns the symbol imported as name ("default", "*" or a
// named export) from an installed package.
func (c *Checker) externalSymbol(pkg, name string) *Symbol {
	ns := knownNamespaces[pkg]
	var p string
	switch name {
	case "*":
		p = ns
	case "default":
		p = ns
		if p == "" {
			p = "default"
		}
	default:
		p = name
		if ns != "" {
			p = ns + "." + name
		}
	}
	return c.librarySymbol(OriginExternal, pkg, p)
}

func libraryKey(origin Origin, module, p string) string {
	prefix := "std"
	if origin == OriginExternal {
		prefix = "ext"
	}
	return prefix + "|" + module + "|" + p
}

func (c *Checker) librarySymbol(origin Origin, module, p string) *Symbol {
	key := libraryKey(origin, module, p)
	if s, ok := c.library[key]; ok {
		return s
	}
	name := p
	if i := strings.LastIndex(p, "."); i >= 0 {
		name = p[i+1:]
	}
	if name == "" {
		name = module
	}
	s := &Symbol{Name: name, Origin: origin, Module: module, Path: p}
	c.library[key] = s
	return s
}

// exportOf returns the symbol f exports as name, following re-exports.
func (c *Checker) exportOf(f *ast.File, name string, seen map[string]bool) *Symbol {
	fs, ok := c.scopes[f]
	if !ok || seen[f.Path] {
		return nil
	}
	seen[f.Path] = true
	if sym, ok := fs.exports[name]; ok {
		return c.Resolve(sym)
	}
	if name == "default" {
		return nil
	}
	for _, spec := range fs.stars {
		if target, ok := c.ResolveModule(f, spec); ok {
			if sym := c.exportOf(c.files[target], name, seen); sym != nil {
				return sym
			}
		}
	}
	return nil
}

// Export returns the resolved symbol the file at path exports as name.
func (c *Checker) Export(path, name string) *Symbol {
	f := c.File(path)
	if f == nil {
		return nil
	}
	return c.exportOf(f, name, map[string]bool{})
}

// Exports lists the names the file exports directly, without the names of
// `export *` re-exports.
func (c *Checker) Exports(f *ast.File) map[string]*Symbol {
	fs, ok := c.scopes[f]
	if !ok {
		return nil
	}
	out := make(map[string]*Symbol, len(fs.exports))
	for name, sym := range fs.exports {
		out[name] = sym
	}
	return out
}

// ImportTarget describes what an import specifier resolves to.
type ImportTarget struct {
	// Path is the absolute path of the imported project file, or the
	// specifier for external modules.
	Path     string
	External bool
	Package  string
	Symbol   *Symbol
}

// ImportOf resolves the import or re-export declared at node (an
// import_specifier, namespace_import, import clause identifier or
// export_specifier).
func (c *Checker) ImportOf(node *ast.Node) (ImportTarget, bool) {
	sym, ok := c.symbols[node]
	if !ok || !sym.Has(SymImport) {
		return ImportTarget{}, false
	}
	t := ImportTarget{Symbol: c.Resolve(sym)}
	if p, ok := c.ResolveModule(sym.importFrom, sym.importSpec); ok {
		t.Path = p
		return t, true
	}
	t.Path = sym.importSpec
	t.External = paths.IsNodeModule(sym.importSpec)
	if t.External {
		t.Package = c.PackageName(sym.importSpec)
	}
	return t, true
}
