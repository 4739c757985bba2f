// Package extractor runs the extraction pipeline over whole projects: parse,
// traverse, resolve, post-process and aggregate.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/tsconcepts/internal/aggregate"
	"github.com/mvp-joe/tsconcepts/internal/ast"
	"github.com/mvp-joe/tsconcepts/internal/checker"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/paths"
	"github.com/mvp-joe/tsconcepts/internal/postprocess"
	"github.com/mvp-joe/tsconcepts/internal/processors"
	"github.com/mvp-joe/tsconcepts/internal/project"
	"github.com/mvp-joe/tsconcepts/internal/scope"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

const packageCacheSize = 1024

// Options configure an Extractor.
type Options struct {
	// Workers bounds the number of files parsed concurrently.
	Workers int
	// Features add processors after the core ones.
	Features []processors.Feature
	// PostProcessors run after the default ones.
	PostProcessors []postprocess.PostProcessor
	Progress       ProgressReporter
}

// FileError records a file that could not be parsed or traversed. Read and
// parse failures are collected in Result.Errors and the rest of the project
// is still extracted; a broken invariant fails the whole project.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result is the extraction of one project.
type Result struct {
	Project  project.Info
	Concepts concept.Map
	Errors   []error
}

// Extractor extracts concept maps from projects.
type Extractor struct {
	opts     Options
	parser   *ast.Parser
	packages *paths.PackageNames
}

// New creates an extractor.
func New(opts Options) (*Extractor, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	packages, err := paths.NewPackageNames(packageCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create package cache: %w", err)
	}
	return &Extractor{opts: opts, parser: ast.NewParser(), packages: packages}, nil
}

// ExtractProject extracts a single project.
func (e *Extractor) ExtractProject(ctx context.Context, info project.Info) (*Result, error) {
	results, err := e.ExtractAll(ctx, []project.Info{info})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// ExtractAll extracts every project. Post-processors see all projects at
// once so that re-exports across project references can be followed.
func (e *Extractor) ExtractAll(ctx context.Context, infos []project.Info) ([]*Result, error) {
	type extraction struct {
		result   *Result
		registry *scope.Registry
		started  time.Time
	}

	var runs []extraction
	var pps []*postprocess.Project
	for _, info := range infos {
		started := time.Now()
		e.opts.Progress.OnProjectStart(info)
		res, registry, err := e.traverseProject(ctx, info)
		if err != nil {
			return nil, err
		}
		runs = append(runs, extraction{result: res, registry: registry, started: started})
		pps = append(pps, &postprocess.Project{Root: info.RootPath, Concepts: res.Concepts})
	}

	post := append(postprocess.Default(), e.opts.PostProcessors...)
	for _, pp := range post {
		for i, p := range pps {
			runs[i].result.Errors = append(runs[i].result.Errors, pp.PostProcess(p, pps)...)
		}
	}

	results := make([]*Result, len(runs))
	for i, r := range runs {
		m := aggregate.Aggregate(pps[i].Concepts, r.registry)
		r.result.Concepts = m
		results[i] = r.result

		count := 0
		for _, list := range m.Flatten() {
			count += len(list)
		}
		e.opts.Progress.OnProjectComplete(r.result.Project, count, time.Since(r.started))
	}
	return results, nil
}

// traverseProject parses all files of a project concurrently and traverses
// them one at a time in discovery order. The returned concepts are resolved
// against the project-wide registry and merged under a single prop.
func (e *Extractor) traverseProject(ctx context.Context, info project.Info) (*Result, *scope.Registry, error) {
	res := &Result{Project: info}

	files, parseErrs, err := e.parseFiles(ctx, info)
	if err != nil {
		return nil, nil, err
	}
	res.Errors = append(res.Errors, parseErrs...)

	var parsed []*ast.File
	for _, f := range files {
		if f != nil {
			parsed = append(parsed, f)
		}
	}
	c := checker.New(parsed, checker.Options{
		ProjectRoot: info.RootPath,
		BaseURL:     info.Options.BaseURL,
		Paths:       info.Options.Paths,
		Packages:    e.packages,
	})

	registry := scope.NewRegistry()
	tr := processors.Assemble(registry, e.opts.Features...)

	all := concept.Map{}
	for _, f := range parsed {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		m, err := tr.Traverse(&traverser.Global{
			ProjectRoot: info.RootPath,
			File:        f,
			Checker:     c,
			Packages:    e.packages,
		})
		e.opts.Progress.OnFileProcessed(f.Path)
		if err != nil {
			ferr := &FileError{Path: f.Path, Err: err}
			var inv *traverser.InvariantError
			if errors.As(err, &inv) {
				return nil, nil, fmt.Errorf("project %s: %w", info.ConfigPath, ferr)
			}
			res.Errors = append(res.Errors, ferr)
			continue
		}
		all.Merge(m.Unify(f.Path))
	}

	m := concept.Resolve(all, registry.Lookup).Unify("")
	m.Add("", info.Concept())
	res.Concepts = m
	return res, registry, nil
}

// parseFiles reads and parses the source files of info with bounded
// concurrency. Files that cannot be read or parsed are reported and left
// nil; only cancellation aborts.
func (e *Extractor) parseFiles(ctx context.Context, info project.Info) ([]*ast.File, []error, error) {
	files := make([]*ast.File, len(info.SourceFiles))
	errs := make([]error, len(info.SourceFiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, path := range info.SourceFiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				errs[i] = &FileError{Path: path, Err: fmt.Errorf("failed to read file: %w", err)}
				return nil
			}
			f, err := e.parser.ParseFile(gctx, path, paths.Relative(info.RootPath, path), src)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errs[i] = &FileError{Path: path, Err: err}
				return nil
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return files, out, nil
}
