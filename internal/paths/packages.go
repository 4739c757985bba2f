package paths

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/maypok86/otter"
)

// PackageNames looks up the declared name of installed packages by reading
// their package.json. Lookups are cached per directory.
type PackageNames struct {
	cache otter.Cache[string, string]
}

// NewPackageNames creates a lookup with room for capacity cached directories.
func NewPackageNames(capacity int) (*PackageNames, error) {
	cache, err := otter.MustBuilder[string, string](capacity).Build()
	if err != nil {
		return nil, err
	}
	return &PackageNames{cache: cache}, nil
}

// ForSpecifier returns the package name a bare import specifier refers to.
// The installed package.json wins over the name derived from the specifier.
func (p *PackageNames) ForSpecifier(projectRoot, specifier string) string {
	pkg := PackageOf(specifier)
	dir := filepath.Join(filepath.FromSlash(projectRoot), "node_modules", filepath.FromSlash(pkg))
	if name := p.lookup(dir); name != "" {
		return name
	}
	return pkg
}

// ForPath returns the name of the package containing the file at path, or ""
// when the file is not part of an installed package.
func (p *PackageNames) ForPath(projectRoot, file string) string {
	file = Slash(file)
	idx := strings.LastIndex(file, "/node_modules/")
	if idx < 0 {
		return ""
	}
	rest := file[idx+len("/node_modules/"):]
	if strings.HasPrefix(rest, "@types/") {
		// @types/node -> node, @types/scope__pkg -> @scope/pkg
		name := PackageOf(strings.TrimPrefix(rest, "@types/"))
		if strings.Contains(name, "__") {
			name = "@" + strings.Replace(name, "__", "/", 1)
		}
		return name
	}
	pkg := PackageOf(rest)
	dir := file[:idx+len("/node_modules/")] + pkg
	if name := p.lookup(filepath.FromSlash(dir)); name != "" {
		return name
	}
	return pkg
}

func (p *PackageNames) lookup(dir string) string {
	if name, ok := p.cache.Get(dir); ok {
		return name
	}
	name := readPackageName(filepath.Join(dir, "package.json"))
	p.cache.Set(dir, name)
	return name
}

func readPackageName(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}
