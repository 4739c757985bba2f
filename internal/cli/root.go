// Package cli implements the tsconcepts command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/tsconcepts/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tsconcepts",
	Short: "Extract a concept model from TypeScript projects",
	Long: `tsconcepts analyzes TypeScript projects without compiling them and
extracts their declarations, types, values and dependencies into a
normalized concept model. The model is written as JSON and projected
into a SQLite graph that can be queried for dependencies.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <path>/.tsconcepts/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the --config file when given, otherwise the config of
// the scan root.
func loadConfig(root string) (*config.Config, error) {
	loader := config.NewLoader(root)
	if cfgFile != "" {
		loader = config.NewFileLoader(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[EXTRACT DEBUG] config: %+v\n", *cfg)
	}
	return cfg, nil
}
