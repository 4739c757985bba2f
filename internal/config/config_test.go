package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns a valid configuration with the documented defaults
// - Load() uses defaults when no config file exists
// - Load() reads .tsconcepts/config.yml and .tsconcepts/config.yaml
// - Partial config files merge with defaults
// - Environment variables override config file values and defaults
// - Load() returns an error for malformed YAML and invalid values
// - NewFileLoader() reads an explicit file and fails when it is missing
// - Validate() reports every problem and keeps the sentinels reachable
// - OutputPath() and DatabasePath() resolve relative paths against the root

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, ".tsconcepts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Scan.Extensions)
	assert.Equal(t, []string{"node_modules/**", ".git/**", "dist/**", "build/**"}, cfg.Scan.Ignore)
	assert.True(t, cfg.Scan.RespectGitignore)
	assert.Equal(t, "tsconfig.json", cfg.Scan.TSConfig)
	assert.Equal(t, 4, cfg.Scan.ParseWorkers)

	assert.Equal(t, ".reports/jqa", cfg.Output.Dir)
	assert.Equal(t, "ts-output.json", cfg.Output.File)
	assert.True(t, cfg.Output.Pretty)

	assert.True(t, cfg.Graph.Enabled)
	assert.Equal(t, ".tsconcepts/graph.db", cfg.Graph.Database)
	assert.False(t, cfg.Extensions.React)
	assert.Equal(t, 500, cfg.Watch.DebounceMS)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			writeConfig(t, root, name, `
scan:
  extensions: [".ts"]
  parse_workers: 8
  respect_gitignore: false
output:
  dir: out
  pretty: false
extensions:
  react: true
`)
			cfg, err := NewLoader(root).Load()
			require.NoError(t, err)

			assert.Equal(t, []string{".ts"}, cfg.Scan.Extensions)
			assert.Equal(t, 8, cfg.Scan.ParseWorkers)
			assert.False(t, cfg.Scan.RespectGitignore)
			assert.Equal(t, "out", cfg.Output.Dir)
			assert.False(t, cfg.Output.Pretty)
			assert.True(t, cfg.Extensions.React)

			// untouched sections keep their defaults
			assert.Equal(t, "ts-output.json", cfg.Output.File)
			assert.Equal(t, "tsconfig.json", cfg.Scan.TSConfig)
			assert.True(t, cfg.Graph.Enabled)
			assert.Equal(t, 500, cfg.Watch.DebounceMS)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
graph:
  enabled: true
watch:
  debounce_ms: 100
`)

	t.Setenv("TSCONCEPTS_GRAPH_ENABLED", "false")
	t.Setenv("TSCONCEPTS_WATCH_DEBOUNCE_MS", "250")
	t.Setenv("TSCONCEPTS_OUTPUT_FILE", "concepts.json")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.False(t, cfg.Graph.Enabled)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.Equal(t, "concepts.json", cfg.Output.File)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeConfig(t, root, "config.yml", "scan: [unclosed\n")
		_, err := NewLoader(root).Load()
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeConfig(t, root, "config.yml", "scan:\n  parse_workers: 0\n")
		_, err := NewLoader(root).Load()
		assert.ErrorIs(t, err, ErrInvalidWorkers)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yml")).Load()
		assert.Error(t, err)
	})
}

func TestNewFileLoader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph:\n  database: /tmp/g.db\n"), 0o644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/g.db", cfg.Graph.Database)
	assert.Equal(t, "/tmp/g.db", cfg.DatabasePath("/proj"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   []error
	}{
		{"no extensions", func(c *Config) { c.Scan.Extensions = nil }, []error{ErrEmptyExtensions}},
		{"extension without dot", func(c *Config) { c.Scan.Extensions = []string{"ts"} }, []error{ErrEmptyExtensions}},
		{"zero workers", func(c *Config) { c.Scan.ParseWorkers = 0 }, []error{ErrInvalidWorkers}},
		{"empty output file", func(c *Config) { c.Output.File = " " }, []error{ErrEmptyOutput}},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, []error{ErrInvalidDebounce}},
		{"empty database", func(c *Config) { c.Graph.Database = "" }, []error{ErrEmptyDatabase}},
		{
			name: "multiple problems",
			modify: func(c *Config) {
				c.Scan.ParseWorkers = -2
				c.Output.Dir = ""
				c.Watch.DebounceMS = -5
			},
			want: []error{ErrInvalidWorkers, ErrEmptyOutput, ErrInvalidDebounce},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.modify(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			for _, want := range tt.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	t.Run("disabled graph needs no database", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Graph.Enabled = false
		cfg.Graph.Database = ""
		assert.NoError(t, Validate(cfg))
	})
}

func TestPaths(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, filepath.Join("/proj", ".reports/jqa", "ts-output.json"), cfg.OutputPath("/proj"))
	assert.Equal(t, filepath.Join("/proj", ".tsconcepts/graph.db"), cfg.DatabasePath("/proj"))

	cfg.Output.Dir = "/abs"
	assert.Equal(t, "/abs/ts-output.json", cfg.OutputPath("/proj"))
}
