// Package paths converts between file system paths, import specifiers and
// the module part of fully-qualified names.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// SourceExtensions are tried, in order, when an import specifier omits the
// file extension.
var SourceExtensions = []string{".ts", ".tsx", ".d.ts", ".mts", ".cts", ".js", ".jsx"}

// IndexFiles are tried, in order, when an import specifier names a directory.
var IndexFiles = []string{"index.ts", "index.tsx", "index.mts", "index.d.ts", "index.js"}

// Slash converts p to forward slashes and cleans it.
func Slash(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(p))
}

// Relative returns target relative to root in "./" form.
func Relative(root, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(root), filepath.FromSlash(target))
	if err != nil {
		return Slash(target)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return rel
	}
	return "./" + rel
}

// ModuleFQN returns the FQN of the module at absPath within the project root.
func ModuleFQN(root, absPath string) concept.FQN {
	abs := Slash(absPath)
	return concept.ModuleFQN(abs, Relative(root, abs))
}

// DeclarationFQN returns the FQN of a dotted declaration path inside the
// module at absPath.
func DeclarationFQN(root, absPath, dotted string) concept.FQN {
	return ModuleFQN(root, absPath).Append(dotted)
}

// LocalForm rewrites a global FQN into its project-relative form. FQNs outside
// the project are returned unchanged.
func LocalForm(root, global string) string {
	if !strings.HasPrefix(global, `"`) {
		return global
	}
	p := concept.ExtractPath(global)
	if !strings.HasPrefix(p, "/") && !isWindowsAbs(p) {
		return global
	}
	rel := Relative(root, p)
	if strings.HasPrefix(rel, "..") {
		return global
	}
	return `"` + rel + `"` + global[len(p)+2:]
}

// ToFQN builds a two-form FQN from a global FQN.
func ToFQN(root, global string) concept.FQN {
	return concept.NewFQN(global, LocalForm(root, global))
}

// GraphPath converts a "./" relative path into the graph path form.
func GraphPath(rel string) string {
	return strings.TrimPrefix(rel, ".")
}

// IsNodeModule reports whether the import specifier refers to a package
// rather than a file path.
func IsNodeModule(specifier string) bool {
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return false
	}
	return !isWindowsAbs(specifier)
}

// IsNodeModuleFQN reports whether the module part of fqn names a package.
func IsNodeModuleFQN(fqn string) bool {
	if !strings.HasPrefix(fqn, `"`) {
		return false
	}
	return IsNodeModule(concept.ExtractPath(fqn))
}

// PackageOf returns the package name part of a bare import specifier:
// "react/jsx-runtime" gives "react", "@scope/pkg/sub" gives "@scope/pkg".
func PackageOf(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// StripSourceExtension removes a TypeScript or JavaScript file extension.
func StripSourceExtension(p string) string {
	if strings.HasSuffix(p, ".d.ts") {
		return strings.TrimSuffix(p, ".d.ts")
	}
	ext := path.Ext(p)
	switch ext {
	case ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs":
		return strings.TrimSuffix(p, ext)
	}
	return p
}

// Candidates lists the files an extension-less module path may refer to,
// in resolution order.
func Candidates(modulePath string) []string {
	modulePath = Slash(modulePath)
	out := []string{modulePath}
	base := StripSourceExtension(modulePath)
	// "./a.js" may be written for a "./a.ts" source
	for _, ext := range SourceExtensions {
		out = append(out, base+ext)
	}
	for _, idx := range IndexFiles {
		out = append(out, modulePath+"/"+idx)
	}
	return out
}

func isWindowsAbs(p string) bool {
	return len(p) >= 3 && p[1] == ':' && (p[2] == '/' || p[2] == '\\')
}
