package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// ErrConfigCycle is returned when tsconfig files extend each other.
var ErrConfigCycle = errors.New("tsconfig extends cycle")

// CompilerOptions are the compiler options the extraction depends on.
// Paths are absolute.
type CompilerOptions struct {
	Target                 string              `json:"target,omitempty"`
	Module                 string              `json:"module,omitempty"`
	Strict                 bool                `json:"strict,omitempty"`
	ExperimentalDecorators bool                `json:"experimentalDecorators,omitempty"`
	Composite              bool                `json:"composite,omitempty"`
	RootDir                string              `json:"rootDir,omitempty"`
	OutDir                 string              `json:"outDir,omitempty"`
	BaseURL                string              `json:"baseUrl,omitempty"`
	Paths                  map[string][]string `json:"paths,omitempty"`
}

type rawCompilerOptions struct {
	Target                 *string             `json:"target"`
	Module                 *string             `json:"module"`
	Strict                 *bool               `json:"strict"`
	ExperimentalDecorators *bool               `json:"experimentalDecorators"`
	Composite              *bool               `json:"composite"`
	RootDir                *string             `json:"rootDir"`
	OutDir                 *string             `json:"outDir"`
	BaseURL                *string             `json:"baseUrl"`
	Paths                  map[string][]string `json:"paths"`
}

type rawReference struct {
	Path string `json:"path"`
}

type rawConfig struct {
	Extends         json.RawMessage    `json:"extends"`
	CompilerOptions rawCompilerOptions `json:"compilerOptions"`
	Files           []string           `json:"files"`
	Include         []string           `json:"include"`
	Exclude         []string           `json:"exclude"`
	References      []rawReference     `json:"references"`
}

// tsconfig is a config file with its extends chain applied. Include,
// exclude and files patterns are absolute.
type tsconfig struct {
	path       string
	options    CompilerOptions
	files      []string
	include    []string
	exclude    []string
	references []string
}

// readConfig reads a tsconfig file, tolerating comments and trailing
// commas, and applies the configs it extends.
func readConfig(path string) (*tsconfig, error) {
	return readConfigChain(path, map[string]bool{})
}

func readConfigChain(path string, visiting map[string]bool) (*tsconfig, error) {
	if visiting[path] {
		return nil, fmt.Errorf("%w: %s", ErrConfigCycle, path)
	}
	visiting[path] = true
	defer delete(visiting, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	var raw rawConfig
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg := &tsconfig{path: path}
	for _, base := range extendsList(raw.Extends) {
		basePath, ok := resolveExtends(dir, base)
		if !ok {
			continue
		}
		parent, err := readConfigChain(basePath, visiting)
		if err != nil {
			return nil, err
		}
		cfg.inherit(parent)
	}

	cfg.apply(dir, raw)
	return cfg, nil
}

// extendsList accepts both the string and the array form of extends.
func extendsList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// resolveExtends finds the file an extends entry points to: a relative or
// absolute path, or a config shipped in a package under node_modules.
func resolveExtends(dir, spec string) (string, bool) {
	var candidates []string
	if strings.HasPrefix(spec, ".") || filepath.IsAbs(spec) {
		p := spec
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, spec)
		}
		candidates = append(candidates, p, p+".json")
	} else {
		for d := dir; ; d = filepath.Dir(d) {
			p := filepath.Join(d, "node_modules", spec)
			candidates = append(candidates, p, p+".json", filepath.Join(p, "tsconfig.json"))
			if filepath.Dir(d) == d {
				break
			}
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

func (c *tsconfig) inherit(parent *tsconfig) {
	c.options = parent.options
	if parent.options.Paths != nil {
		c.options.Paths = make(map[string][]string, len(parent.options.Paths))
		for k, v := range parent.options.Paths {
			c.options.Paths[k] = v
		}
	}
	c.files = parent.files
	c.include = parent.include
	c.exclude = parent.exclude
}

func (c *tsconfig) apply(dir string, raw rawConfig) {
	o := raw.CompilerOptions
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}
	if o.Target != nil {
		c.options.Target = *o.Target
	}
	if o.Module != nil {
		c.options.Module = *o.Module
	}
	if o.Strict != nil {
		c.options.Strict = *o.Strict
	}
	if o.ExperimentalDecorators != nil {
		c.options.ExperimentalDecorators = *o.ExperimentalDecorators
	}
	if o.Composite != nil {
		c.options.Composite = *o.Composite
	}
	if o.RootDir != nil {
		c.options.RootDir = abs(*o.RootDir)
	}
	if o.OutDir != nil {
		c.options.OutDir = abs(*o.OutDir)
	}
	if o.BaseURL != nil {
		c.options.BaseURL = abs(*o.BaseURL)
	}
	if o.Paths != nil {
		c.options.Paths = o.Paths
		if c.options.BaseURL == "" {
			// paths without baseUrl resolve against the declaring config
			c.options.BaseURL = dir
		}
	}

	absAll := func(ps []string) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = filepath.ToSlash(abs(p))
		}
		return out
	}
	if raw.Files != nil {
		c.files = absAll(raw.Files)
	}
	if raw.Include != nil {
		c.include = absAll(raw.Include)
	}
	if raw.Exclude != nil {
		c.exclude = absAll(raw.Exclude)
	}
	c.references = nil
	for _, r := range raw.References {
		p := abs(r.Path)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			p = filepath.Join(p, "tsconfig.json")
		}
		c.references = append(c.references, p)
	}
}
