// Package postprocess completes the concepts of a project once all of its
// files have been traversed.
package postprocess

import (
	"sort"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// Project is the project-wide concept map of one extracted project.
type Project struct {
	Root     string
	Concepts concept.Map
}

// PostProcessor modifies or adds concepts of a project in place. Problems
// that only affect single concepts are returned and do not stop the
// remaining post-processors.
type PostProcessor interface {
	PostProcess(p *Project, all []*Project) []error
}

// Default returns the post-processors every extraction runs, in order.
func Default() []PostProcessor {
	return []PostProcessor{
		ExternalDependencies{},
		Exports{},
	}
}

// Run applies processors to every project.
func Run(projects []*Project, processors ...PostProcessor) []error {
	var errs []error
	for _, pp := range processors {
		for _, p := range projects {
			errs = append(errs, pp.PostProcess(p, projects)...)
		}
	}
	return errs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
