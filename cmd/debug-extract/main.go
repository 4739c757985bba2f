// debug-extract prints the concepts of single TypeScript files, treating
// their directory as a project without configuration.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/extractor"
	"github.com/mvp-joe/tsconcepts/internal/processors"
	"github.com/mvp-joe/tsconcepts/internal/project"
	"github.com/mvp-joe/tsconcepts/internal/react"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: debug-extract <file.ts>...")
		os.Exit(2)
	}

	var files []string
	for _, arg := range os.Args[1:] {
		abs, err := filepath.Abs(arg)
		if err != nil {
			log.Fatal(err)
		}
		files = append(files, filepath.ToSlash(abs))
	}
	dir := filepath.ToSlash(filepath.Dir(files[0]))

	ex, err := extractor.New(extractor.Options{
		Features: []processors.Feature{react.Feature},
	})
	if err != nil {
		log.Fatal(err)
	}
	res, err := ex.ExtractProject(context.Background(), project.Info{
		RootPath:    dir,
		ConfigPath:  dir + "/tsconfig.json",
		SourceFiles: files,
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, ferr := range res.Errors {
		log.Printf("Warning: %v", ferr)
	}

	out, err := json.MarshalIndent(concept.NewDocument(res.Concepts), "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
