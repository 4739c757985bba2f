package extractor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// ProjectDocument is the serialized form of one extracted project.
type ProjectDocument struct {
	RootPath        string           `json:"rootPath"`
	ProjectPath     string           `json:"projectPath"`
	SubProjectPaths []string         `json:"subProjectPaths"`
	SourceFilePaths []string         `json:"sourceFilePaths"`
	Concepts        concept.Document `json:"concepts"`
}

// Documents converts results into their serialized form.
func Documents(results []*Result) []ProjectDocument {
	docs := make([]ProjectDocument, 0, len(results))
	for _, r := range results {
		references := r.Project.References
		if references == nil {
			references = []string{}
		}
		files := r.Project.SourceFiles
		if files == nil {
			files = []string{}
		}
		docs = append(docs, ProjectDocument{
			RootPath:        r.Project.RootPath,
			ProjectPath:     r.Project.Dir(),
			SubProjectPaths: references,
			SourceFilePaths: files,
			Concepts:        concept.NewDocument(r.Concepts),
		})
	}
	return docs
}

// WriteJSON writes the documents of results to path, creating its
// directory.
func WriteJSON(path string, results []*Result, pretty bool) error {
	docs := Documents(results)
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(docs, "", "  ")
	} else {
		data, err = json.Marshal(docs)
	}
	if err != nil {
		return fmt.Errorf("failed to encode concepts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
