package scope

import (
	"strings"
	"sync"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Registry collects the global declarations of script files (files without
// imports or exports) across a project. References to them that a file could
// not resolve on its own are retried against the registry after the whole
// project has been traversed.
type Registry struct {
	mu    sync.RWMutex
	names map[string]concept.FQN
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]concept.FQN{}}
}

// Register records a global name. The first registration of a name wins.
func (r *Registry) Register(name string, fqn concept.FQN) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; !ok {
		r.names[name] = fqn
	}
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Lookup resolves a reference left unresolved by its file.
func (r *Registry) Lookup(ref *concept.Ref) (concept.FQN, bool) {
	if r == nil || ref == nil {
		return concept.FQN{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return resolveDotted(ref.Name, func(name string) (concept.FQN, bool) {
		fqn, ok := r.names[name]
		return fqn, ok
	})
}

// resolveDotted resolves a possibly dotted name with find. For "a.b.c" the
// prefixes "a.b.c", "a.b" and "a" are tried first; a matching prefix gets
// the rest of the name appended. Then the suffixes "c" and "b.c" are tried.
func resolveDotted(name string, find func(string) (concept.FQN, bool)) (concept.FQN, bool) {
	if !strings.Contains(name, ".") {
		return find(name)
	}
	parts := strings.Split(name, ".")
	for i := len(parts); i > 0; i-- {
		if fqn, ok := find(strings.Join(parts[:i], ".")); ok {
			if rest := strings.Join(parts[i:], "."); rest != "" {
				fqn = fqn.Append(rest)
			}
			return fqn, true
		}
	}
	for i := len(parts) - 1; i > 0; i-- {
		if fqn, ok := find(strings.Join(parts[i:], ".")); ok {
			return fqn, true
		}
	}
	return concept.FQN{}, false
}
