// Package config loads tsconcepts settings from .tsconcepts/config.yml with
// environment variable overrides.
package config

import "path/filepath"

// Config represents the complete tsconcepts configuration.
type Config struct {
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Graph      GraphConfig      `yaml:"graph" mapstructure:"graph"`
	Extensions ExtensionsConfig `yaml:"extensions" mapstructure:"extensions"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
}

// ScanConfig controls project discovery and parsing.
type ScanConfig struct {
	Extensions       []string `yaml:"extensions" mapstructure:"extensions"`               // source extensions with leading dot
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"`                       // glob patterns relative to the scan root
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // skip files matched by .gitignore
	TSConfig         string   `yaml:"tsconfig" mapstructure:"tsconfig"`                   // project config file name
	ParseWorkers     int      `yaml:"parse_workers" mapstructure:"parse_workers"`         // concurrent parsers per project
}

// OutputConfig defines where the JSON report goes.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // relative to the scan root unless absolute
	File   string `yaml:"file" mapstructure:"file"`
	Pretty bool   `yaml:"pretty" mapstructure:"pretty"`
}

// GraphConfig controls the SQLite projection.
type GraphConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Database string `yaml:"database" mapstructure:"database"` // relative to the scan root unless absolute
}

// ExtensionsConfig toggles optional processor sets.
type ExtensionsConfig struct {
	React bool `yaml:"react" mapstructure:"react"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:       []string{".ts", ".tsx"},
			Ignore:           []string{"node_modules/**", ".git/**", "dist/**", "build/**"},
			RespectGitignore: true,
			TSConfig:         "tsconfig.json",
			ParseWorkers:     4,
		},
		Output: OutputConfig{
			Dir:    ".reports/jqa",
			File:   "ts-output.json",
			Pretty: true,
		},
		Graph: GraphConfig{
			Enabled:  true,
			Database: ".tsconcepts/graph.db",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// OutputPath resolves the report file against root.
func (c *Config) OutputPath(root string) string {
	return resolve(root, filepath.Join(c.Output.Dir, c.Output.File))
}

// DatabasePath resolves the graph database against root.
func (c *Config) DatabasePath(root string) string {
	return resolve(root, c.Graph.Database)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
