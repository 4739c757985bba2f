package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/tsconcepts/internal/storage"
)

var incomingFlag bool

var depsCmd = &cobra.Command{
	Use:   "deps <name|fqn>",
	Short: "Show the dependencies of a declaration",
	Long: `Deps queries the graph written by scan for the aggregated dependencies
of a declaration. The argument is a declaration name, a local FQN such as
"./src/a.ts".A or a global FQN.

Examples:
  tsconcepts deps UserService
  tsconcepts deps UserService --incoming
`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().BoolVar(&incomingFlag, "incoming", false, "Show dependents instead of dependencies")
}

func runDeps(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dbPath := cfg.DatabasePath(root)
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no graph at %s, run scan first", filepath.ToSlash(dbPath))
	}

	r, err := storage.NewGraphReader(dbPath)
	if err != nil {
		return err
	}
	defer r.Close()

	return executeDeps(cmd.OutOrStdout(), r, args[0], incomingFlag)
}

// executeDeps prints the dependencies of every node matching query.
func executeDeps(out io.Writer, r *storage.GraphReader, query string, incoming bool) error {
	nodes, err := r.FindNodes(query)
	if err != nil {
		return err
	}
	fqns := make([]string, 0, len(nodes))
	for _, n := range nodes {
		fqns = append(fqns, n.ID)
	}
	// External targets have no node but can still be queried
	if len(fqns) == 0 && strings.HasPrefix(query, `"`) {
		fqns = append(fqns, query)
	}
	if len(fqns) == 0 {
		return fmt.Errorf("no declaration matches %s", query)
	}

	for i, fqn := range fqns {
		if i > 0 {
			fmt.Fprintln(out)
		}
		deps, err := r.Dependencies(fqn, incoming)
		if err != nil {
			return err
		}
		label := "depends on"
		if incoming {
			label = "is used by"
		}
		fmt.Fprintf(out, "%s %s:\n", fqn, label)
		if len(deps) == 0 {
			fmt.Fprintln(out, "  (none)")
			continue
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, d := range deps {
			other := d.To
			if incoming {
				other = d.From
			}
			fmt.Fprintf(tw, "  %d\t%s\n", d.Cardinality, other)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
