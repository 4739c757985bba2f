package extractor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/tsconcepts/internal/aggregate"
	"github.com/mvp-joe/tsconcepts/internal/concept"
	"github.com/mvp-joe/tsconcepts/internal/processors"
	"github.com/mvp-joe/tsconcepts/internal/project"
	"github.com/mvp-joe/tsconcepts/internal/traverser"
)

// Test Plan for the extractor:
// - A project is parsed, traversed, post-processed and aggregated into one
//   concept map that carries the project concept
// - Cross-file dependencies resolve to the declaring module
// - Progress is reported once per traversed file
// - Cancellation aborts the extraction
// - A broken invariant fails the project instead of being reported per file
// - Declarations of one project never share a global FQN
// - WriteJSON writes one document per project

type recordingReporter struct {
	mu        sync.Mutex
	started   int
	files     []string
	completed int
}

func (r *recordingReporter) OnProjectStart(project.Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recordingReporter) OnFileProcessed(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, path)
}

func (r *recordingReporter) OnProjectComplete(project.Info, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func setupProject(t *testing.T) project.Info {
	t.Helper()
	return writeProject(t, map[string]string{
		"tsconfig.json": `{}`,
		"src/a.ts":      "export class A {\n  run(): void {}\n}\n",
		"src/b.ts":      "import { A } from \"./a\";\nexport class B extends A {\n  go() { return new A(); }\n}\n",
	})
}

func writeProject(t *testing.T, files map[string]string) project.Info {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	infos, err := project.Discover(root, project.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	return infos[0]
}

func TestExtractProject(t *testing.T) {
	t.Parallel()

	info := setupProject(t)
	reporter := &recordingReporter{}
	ex, err := New(Options{Workers: 2, Progress: reporter})
	require.NoError(t, err)

	res, err := ex.ExtractProject(context.Background(), info)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	m := res.Concepts
	classes := concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration)
	assert.Len(t, classes, 2)

	projects := concept.AllOf[concept.Project](m, concept.IDProject)
	require.Len(t, projects, 1)
	assert.Equal(t, info.SourceFiles, projects[0].SourceFiles)

	modules := concept.AllOf[concept.Module](m, concept.IDModule)
	assert.Len(t, modules, 2)

	assert.True(t, m.Has(aggregate.Prop))

	a := `"` + info.RootPath + `/src/a.ts".A`
	b := `"` + info.RootPath + `/src/b.ts".B`
	found := false
	for _, d := range concept.AllOf[concept.Dependency](m, concept.IDDependency) {
		if d.Source == b && d.Target == a {
			found = true
		}
	}
	assert.True(t, found, "missing dependency %s -> %s", b, a)

	assert.Equal(t, 1, reporter.started)
	assert.Len(t, reporter.files, 2)
	assert.Equal(t, 1, reporter.completed)
}

func TestExtractProjectCancelled(t *testing.T) {
	t.Parallel()

	info := setupProject(t)
	ex, err := New(Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ex.ExtractProject(ctx, info)
	assert.ErrorIs(t, err, context.Canceled)
}

// brokenInvariant fails on every class declaration.
type brokenInvariant struct{}

func (brokenInvariant) Condition() traverser.ExecutionCondition {
	return traverser.ExecutionCondition{Kinds: []string{"class_declaration"}}
}

func (brokenInvariant) PreChildren(*traverser.Context) error { return nil }

func (brokenInvariant) PostChildren(ctx *traverser.Context, _ concept.Map) (concept.Map, error) {
	return nil, traverser.Invariant(ctx, "no sibling parameter")
}

func TestExtractProjectInvariantFailsProject(t *testing.T) {
	t.Parallel()

	info := setupProject(t)
	ex, err := New(Options{Features: []processors.Feature{
		func() []traverser.Processor { return []traverser.Processor{brokenInvariant{}} },
	}})
	require.NoError(t, err)

	res, err := ex.ExtractProject(context.Background(), info)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), info.ConfigPath)

	var inv *traverser.InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "no sibling parameter", inv.Message)

	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, strings.HasSuffix(ferr.Path, "/src/a.ts"), ferr.Path)
}

func TestExtractProjectUniqueFQNs(t *testing.T) {
	t.Parallel()

	decls := "export class X {\n  p = 1;\n  m(): void {}\n}\n" +
		"export interface I {\n  q: string;\n  n(): void;\n}\n" +
		"export enum E { A, B }\n" +
		"export type T = I;\n" +
		"export function f(): void {}\n" +
		"export const v = 1;\n"
	info := writeProject(t, map[string]string{
		"tsconfig.json": `{}`,
		"src/a.ts":      decls,
		"src/b.ts":      decls,
		"src/c/a.ts":    decls,
	})
	ex, err := New(Options{})
	require.NoError(t, err)
	res, err := ex.ExtractProject(context.Background(), info)
	require.NoError(t, err)
	m := res.Concepts

	values := map[string]int{}
	types := map[string]int{}
	members := map[string]int{}
	for _, c := range concept.AllOf[concept.ClassDeclaration](m, concept.IDClassDeclaration) {
		values[c.FQN.Global]++
		types[c.FQN.Global]++
		for _, p := range c.Properties {
			members[p.FQN.Global]++
		}
		for _, md := range c.Methods {
			members[md.FQN.Global]++
		}
	}
	for _, i := range concept.AllOf[concept.InterfaceDeclaration](m, concept.IDInterfaceDeclaration) {
		types[i.FQN.Global]++
		for _, p := range i.Properties {
			members[p.FQN.Global]++
		}
		for _, md := range i.Methods {
			members[md.FQN.Global]++
		}
	}
	for _, e := range concept.AllOf[concept.EnumDeclaration](m, concept.IDEnumDeclaration) {
		values[e.FQN.Global]++
		types[e.FQN.Global]++
		for _, em := range e.Members {
			members[em.FQN.Global]++
		}
	}
	for _, a := range concept.AllOf[concept.TypeAliasDeclaration](m, concept.IDTypeAliasDeclaration) {
		types[a.FQN.Global]++
	}
	for _, f := range concept.AllOf[concept.FunctionDeclaration](m, concept.IDFunctionDeclaration) {
		values[f.FQN.Global]++
	}
	for _, v := range concept.AllOf[concept.VariableDeclaration](m, concept.IDVariableDeclaration) {
		values[v.FQN.Global]++
	}

	// three files of X, E, f and v; X, I, E and T; p, m, q, n, A and B
	assert.Len(t, values, 12)
	assert.Len(t, types, 12)
	assert.Len(t, members, 18)
	for name, byFQN := range map[string]map[string]int{"value": values, "type": types, "member": members} {
		for fqn, n := range byFQN {
			assert.Equal(t, 1, n, "%s FQN %s declared %d times", name, fqn, n)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	info := setupProject(t)
	ex, err := New(Options{})
	require.NoError(t, err)
	res, err := ex.ExtractProject(context.Background(), info)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "reports", "ts-output.json")
	require.NoError(t, WriteJSON(out, []*Result{res}, true))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var docs []struct {
		RootPath        string                       `json:"rootPath"`
		SourceFilePaths []string                     `json:"sourceFilePaths"`
		Concepts        map[string][]json.RawMessage `json:"concepts"`
	}
	require.NoError(t, json.Unmarshal(data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, info.RootPath, docs[0].RootPath)
	assert.Len(t, docs[0].SourceFilePaths, 2)
	assert.Len(t, docs[0].Concepts[string(concept.IDClassDeclaration)], 2)
	assert.Len(t, docs[0].Concepts[string(concept.IDProject)], 1)
}

func TestFileError(t *testing.T) {
	t.Parallel()

	err := &FileError{Path: "/p/a.ts", Err: context.DeadlineExceeded}
	assert.Equal(t, "/p/a.ts: context deadline exceeded", err.Error())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
