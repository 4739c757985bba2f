// Package project discovers the TypeScript projects under a directory and
// the source files each of them compiles.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mvp-joe/tsconcepts/internal/concept"
)

// ErrNoProjects is returned when no tsconfig file exists under the scan
// root.
var ErrNoProjects = errors.New("no TypeScript projects found")

// Options control project discovery.
type Options struct {
	// ConfigName is the file name that marks a project directory.
	ConfigName string
	// Extensions of the source files, with leading dot.
	Extensions []string
	// Ignore holds glob patterns relative to the project directory.
	Ignore []string
	// RespectGitignore skips files matched by .gitignore rules.
	RespectGitignore bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		ConfigName:       "tsconfig.json",
		Extensions:       []string{".ts", ".tsx"},
		Ignore:           []string{"node_modules/**", ".git/**", "dist/**", "build/**"},
		RespectGitignore: true,
	}
}

// Info describes one project. All paths are absolute and slash separated.
type Info struct {
	// RootPath is the directory local FQNs are relative to. It is the
	// project directory unless the configured rootDir contains it.
	RootPath string
	// ConfigPath is the tsconfig file of the project and identifies it.
	ConfigPath string
	// SourceFiles are sorted and exclude the files of referenced projects.
	SourceFiles []string
	// References are the config paths of all referenced projects,
	// including transitive ones.
	References []string
	Options    CompilerOptions
}

// Dir returns the directory containing the config file.
func (i Info) Dir() string {
	return filepath.ToSlash(filepath.Dir(filepath.FromSlash(i.ConfigPath)))
}

// Concept returns the project concept of i.
func (i Info) Concept() concept.Project {
	return concept.Project{
		RootPath:    i.RootPath,
		ConfigPath:  i.ConfigPath,
		SourceFiles: i.SourceFiles,
		References:  i.References,
	}
}

// Discover scans root breadth-first for project directories. Directories
// below a project are not scanned for further projects, but projects
// referenced by a config are loaded wherever they live. Every project is
// returned once, referenced projects before the projects referencing them.
func Discover(root string, opts Options) ([]Info, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	d, err := newDiscoverer(root, opts)
	if err != nil {
		return nil, err
	}

	var result []Info
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		configPath := filepath.Join(dir, d.opts.ConfigName)
		if isFile(configPath) {
			infos, err := d.load(configPath, map[string]bool{})
			if err != nil {
				return nil, err
			}
			result = append(result, infos...)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() && !skippedDir(e.Name()) {
				queue = append(queue, filepath.Join(dir, e.Name()))
			}
		}
	}

	seen := map[string]bool{}
	unique := result[:0]
	for _, info := range result {
		if seen[info.ConfigPath] {
			continue
		}
		seen[info.ConfigPath] = true
		unique = append(unique, info)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoProjects, root)
	}
	return unique, nil
}

// Load reads the project of a single config file and its references.
func Load(configPath string, opts Options) ([]Info, error) {
	configPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", configPath, err)
	}
	d, err := newDiscoverer(filepath.Dir(configPath), opts)
	if err != nil {
		return nil, err
	}
	return d.load(configPath, map[string]bool{})
}

type discoverer struct {
	scanRoot   string
	opts       Options
	ignores    []glob.Glob
	gitignores map[string]*ignore.GitIgnore
}

func newDiscoverer(scanRoot string, opts Options) (*discoverer, error) {
	def := DefaultOptions()
	if opts.ConfigName == "" {
		opts.ConfigName = def.ConfigName
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = def.Extensions
	}
	d := &discoverer{scanRoot: scanRoot, opts: opts, gitignores: map[string]*ignore.GitIgnore{}}
	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignores = append(d.ignores, g)
	}
	return d, nil
}

// load returns the project of configPath preceded by the projects it
// references. Reference cycles are cut at the first repetition.
func (d *discoverer) load(configPath string, visiting map[string]bool) ([]Info, error) {
	if visiting[configPath] {
		return nil, nil
	}
	visiting[configPath] = true
	defer delete(visiting, configPath)

	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}

	var result []Info
	var references []string
	subDirs := map[string]bool{}
	for _, ref := range cfg.references {
		if !isFile(ref) {
			continue
		}
		subs, err := d.load(ref, visiting)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			references = append(references, s.ConfigPath)
			subDirs[s.Dir()] = true
		}
		result = append(result, subs...)
	}

	files, err := d.sourceFiles(cfg, subDirs)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(configPath)
	result = append(result, Info{
		RootPath:    filepath.ToSlash(rootPath(dir, cfg.options, files)),
		ConfigPath:  filepath.ToSlash(configPath),
		SourceFiles: files,
		References:  dedupe(references),
		Options:     cfg.options,
	})
	return result, nil
}

// rootPath follows the compiler: rootDir defaults to the project directory
// for composite or empty projects and to the common directory of the
// source files otherwise. It becomes the root only when it contains the
// project directory.
func rootPath(dir string, opts CompilerOptions, files []string) string {
	rootDir := opts.RootDir
	if rootDir == "" {
		if opts.Composite || len(files) == 0 {
			rootDir = dir
		} else {
			rootDir = commonDir(files)
		}
	}
	if within(filepath.ToSlash(dir), filepath.ToSlash(rootDir)) {
		return rootDir
	}
	return dir
}

// sourceFiles lists the files of a project. Directories of referenced
// projects belong to those projects and are skipped.
func (d *discoverer) sourceFiles(cfg *tsconfig, subDirs map[string]bool) ([]string, error) {
	dir := filepath.Dir(cfg.path)
	include := cfg.include
	if include == nil && cfg.files == nil {
		include = []string{filepath.ToSlash(dir) + "/**/*"}
	}
	exclude := cfg.exclude
	if exclude == nil && cfg.options.OutDir != "" {
		exclude = []string{filepath.ToSlash(cfg.options.OutDir)}
	}
	includes, err := compilePatterns(include)
	if err != nil {
		return nil, fmt.Errorf("invalid include in %s: %w", cfg.path, err)
	}
	excludes, err := compilePatterns(exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude in %s: %w", cfg.path, err)
	}

	set := map[string]bool{}
	for _, f := range cfg.files {
		if isFile(f) {
			set[f] = true
		}
	}

	if len(includes) > 0 {
		git := d.gitignoreFor(dir)
		err = filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			slashed := filepath.ToSlash(path)
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			if e.IsDir() {
				if path == dir {
					return nil
				}
				if skippedDir(e.Name()) || subDirs[slashed] || d.ignored(rel+"/**") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.hasExtension(e.Name()) || d.ignored(rel) {
				return nil
			}
			if git != nil && git.MatchesPath(rel) {
				return nil
			}
			if matchAny(includes, slashed) && !matchAny(excludes, slashed) {
				set[slashed] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (d *discoverer) hasExtension(name string) bool {
	for _, ext := range d.opts.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (d *discoverer) ignored(rel string) bool {
	for _, g := range d.ignores {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func (d *discoverer) gitignoreFor(dir string) *ignore.GitIgnore {
	if !d.opts.RespectGitignore {
		return nil
	}
	if gi, ok := d.gitignores[dir]; ok {
		return gi
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		gi = nil
	}
	d.gitignores[dir] = gi
	return gi
}

func skippedDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, strings.TrimSuffix(dir, "/")+"/")
}

func commonDir(files []string) string {
	common := strings.Split(filepath.ToSlash(filepath.Dir(files[0])), "/")
	for _, f := range files[1:] {
		segs := strings.Split(filepath.ToSlash(filepath.Dir(f)), "/")
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 1 && common[0] == "" {
		return "/"
	}
	return filepath.FromSlash(strings.Join(common, "/"))
}

func dedupe(list []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
