package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that looks for .tsconcepts/config.yml under
// rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader for an explicit config file. Unlike the
// directory lookup, a missing file is an error.
func NewFileLoader(path string) Loader {
	return &loader{configFile: path}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (TSCONCEPTS_*)
// 2. Config file (.tsconcepts/config.yml or .tsconcepts/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".tsconcepts"))
	}

	v.SetEnvPrefix("TSCONCEPTS")
	v.AutomaticEnv()
	// TSCONCEPTS_GRAPH_ENABLED -> graph.enabled
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal only sees env vars for keys viper knows about
	for _, key := range []string{
		"scan.respect_gitignore",
		"scan.tsconfig",
		"scan.parse_workers",
		"output.dir",
		"output.file",
		"output.pretty",
		"graph.enabled",
		"graph.database",
		"extensions.react",
		"watch.debounce_ms",
	} {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("scan.extensions", defaults.Scan.Extensions)
	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.respect_gitignore", defaults.Scan.RespectGitignore)
	v.SetDefault("scan.tsconfig", defaults.Scan.TSConfig)
	v.SetDefault("scan.parse_workers", defaults.Scan.ParseWorkers)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.file", defaults.Output.File)
	v.SetDefault("output.pretty", defaults.Output.Pretty)

	v.SetDefault("graph.enabled", defaults.Graph.Enabled)
	v.SetDefault("graph.database", defaults.Graph.Database)

	v.SetDefault("extensions.react", defaults.Extensions.React)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// LoadConfig loads configuration rooted at the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
