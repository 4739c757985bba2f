package project

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// compilePatterns compiles absolute include or exclude patterns. A pattern
// whose last segment has neither wildcards nor an extension names a
// directory and matches everything below it. Every `/**/` may also match
// a single separator.
func compilePatterns(patterns []string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		if isDirectoryPattern(p) {
			p = strings.TrimSuffix(p, "/") + "/**/*"
		}
		variants := []string{p}
		if collapsed := strings.ReplaceAll(p, "/**/", "/"); collapsed != p {
			variants = append(variants, collapsed)
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
	}
	return out, nil
}

func isDirectoryPattern(p string) bool {
	last := path.Base(p)
	return !strings.ContainsAny(last, "*?[{") && path.Ext(last) == ""
}

func matchAny(globs []glob.Glob, p string) bool {
	for _, g := range globs {
		if g.Match(p) {
			return true
		}
	}
	return false
}
