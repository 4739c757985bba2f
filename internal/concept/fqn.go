package concept

import (
	"regexp"
	"strings"
)

// FQN is a fully-qualified name in its two forms. Global names carry the
// absolute module path (`"/abs/src/a.ts".A.x`), local names the
// project-relative one (`"./src/a.ts".A.x`). Standard library and external
// names use the same string for both.
type FQN struct {
	Global string `json:"globalFqn"`
	Local  string `json:"localFqn"`
}

// NewFQN creates an FQN from both forms. An empty local form defaults to the
// global one.
func NewFQN(global, local string) FQN {
	if local == "" {
		local = global
	}
	return FQN{Global: global, Local: local}
}

// Identifier creates an FQN whose global and local form are the same plain
// identifier.
func Identifier(name string) FQN {
	return FQN{Global: name, Local: name}
}

// IsZero reports whether neither form is set.
func (f FQN) IsZero() bool {
	return f.Global == "" && f.Local == ""
}

// Append returns the FQN of a member named name.
func (f FQN) Append(name string) FQN {
	return FQN{Global: join(f.Global, name), Local: join(f.Local, name)}
}

// Join concatenates FQN segments with ".", skipping empty ones.
func Join(a, b FQN) FQN {
	return FQN{Global: join(a.Global, b.Global), Local: join(a.Local, b.Local)}
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "." + b
}

var indexFileRegexp = regexp.MustCompile(`/index\.\w+`)

// ModuleFQN converts an absolute and a project-relative path into the quoted
// module FQN. An index file name is stripped so that a directory import and
// an explicit index import share one FQN.
func ModuleFQN(globalPath, localPath string) FQN {
	global := `"` + strings.ReplaceAll(globalPath, `\`, "/") + `"`
	local := ""
	if localPath != "" {
		local = `"` + strings.ReplaceAll(localPath, `\`, "/") + `"`
	}
	return FQN{
		Global: indexFileRegexp.ReplaceAllString(global, ""),
		Local:  indexFileRegexp.ReplaceAllString(local, ""),
	}
}

// ExtractPath returns the quoted module path of fqn, or "" if it has none.
func ExtractPath(fqn string) string {
	if !strings.HasPrefix(fqn, `"`) {
		return ""
	}
	return fqn[1:strings.LastIndex(fqn, `"`)]
}

// ExtractIdentifier returns the dotted identifier part following the module
// path of fqn.
func ExtractIdentifier(fqn string) string {
	if !strings.HasPrefix(fqn, `"`) {
		return fqn
	}
	rest := fqn[strings.LastIndex(fqn, `"`)+1:]
	return strings.TrimPrefix(rest, ".")
}

// IsModule reports whether fqn names a module rather than a declaration.
func IsModule(fqn string) bool {
	return len(fqn) >= 2 && strings.HasPrefix(fqn, `"`) && strings.HasSuffix(fqn, `"`)
}

// IsWithin reports whether fqn equals scope or names something declared
// inside it.
func IsWithin(fqn, scope string) bool {
	if scope == "" {
		return false
	}
	return fqn == scope || strings.HasPrefix(fqn, scope+".")
}

// Parent returns the FQN of the enclosing declaration or module, or "" when
// fqn is a module or a bare identifier.
func Parent(fqn string) string {
	if IsModule(fqn) {
		return ""
	}
	start := 0
	if strings.HasPrefix(fqn, `"`) {
		start = strings.LastIndex(fqn, `"`) + 1
	}
	i := strings.LastIndex(fqn[start:], ".")
	if i < 0 {
		return ""
	}
	return fqn[:start+i]
}
