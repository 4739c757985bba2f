package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/tsconcepts/internal/config"
	"github.com/mvp-joe/tsconcepts/internal/extractor"
	"github.com/mvp-joe/tsconcepts/internal/graph"
	"github.com/mvp-joe/tsconcepts/internal/postprocess"
	"github.com/mvp-joe/tsconcepts/internal/processors"
	"github.com/mvp-joe/tsconcepts/internal/project"
	"github.com/mvp-joe/tsconcepts/internal/react"
	"github.com/mvp-joe/tsconcepts/internal/storage"
	"github.com/mvp-joe/tsconcepts/internal/watcher"
)

var (
	quietFlag   bool
	watchFlag   bool
	reactFlag   bool
	noGraphFlag bool
	outputFlag  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Extract concepts from the TypeScript projects under path",
	Long: `Scan discovers every tsconfig.json under path (default: the current
directory), extracts the concept model of each project and writes it as
JSON. Unless disabled, the model is also projected into a SQLite graph.

Examples:
  # Scan the current directory
  tsconcepts scan

  # Include React components, state hooks and JSX dependencies
  tsconcepts scan ./web --react

  # Keep rescanning while files change
  tsconcepts scan --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	scanCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and rescan")
	scanCmd.Flags().BoolVar(&reactFlag, "react", false, "Enable the React extension")
	scanCmd.Flags().BoolVar(&noGraphFlag, "no-graph", false, "Skip the SQLite graph projection")
	scanCmd.Flags().StringVar(&outputFlag, "output", "", "Output file (default from config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling scan...")
			cancel()
		case <-ctx.Done():
		}
	}()

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve scan root: %w", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if reactFlag {
		cfg.Extensions.React = true
	}
	if noGraphFlag {
		cfg.Graph.Enabled = false
	}

	s := &scanner{
		root:     root,
		cfg:      cfg,
		output:   outputFlag,
		progress: NewCLIProgressReporter(quietFlag),
		quiet:    quietFlag,
	}

	stats, err := s.Scan(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("scan cancelled")
		}
		return err
	}
	if quietFlag {
		fmt.Printf("Scan complete: %d projects, %d concepts\n", stats.Projects, stats.Concepts)
	}

	if !watchFlag {
		return nil
	}

	if !quietFlag {
		log.Println("Starting watch mode...")
	}
	fw, err := watcher.NewFileWatcher([]string{root}, watcher.Options{
		Extensions: cfg.Scan.Extensions,
		FileNames:  []string{cfg.Scan.TSConfig, "package.json"},
		Debounce:   time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.NewWatchCoordinator(fw, s).Start(ctx); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}

// scanner runs discovery, extraction and output for one scan root. It is
// the Rescanner of watch mode and keeps the last result of every project so
// that a rescan only extracts what changed.
type scanner struct {
	root     string
	cfg      *config.Config
	output   string // overrides the configured output path
	progress extractor.ProgressReporter
	quiet    bool

	last map[string]*extractor.Result // by config path
}

func (s *scanner) projectOptions() project.Options {
	return project.Options{
		ConfigName:       s.cfg.Scan.TSConfig,
		Extensions:       s.cfg.Scan.Extensions,
		Ignore:           s.cfg.Scan.Ignore,
		RespectGitignore: s.cfg.Scan.RespectGitignore,
	}
}

func (s *scanner) extractorOptions() extractor.Options {
	opts := extractor.Options{
		Workers:  s.cfg.Scan.ParseWorkers,
		Progress: s.progress,
	}
	if s.cfg.Extensions.React {
		opts.Features = []processors.Feature{react.Feature}
		opts.PostProcessors = []postprocess.PostProcessor{react.ComponentPostProcessor{}}
	}
	return opts
}

func (s *scanner) outputPath() string {
	if s.output != "" {
		if filepath.IsAbs(s.output) {
			return s.output
		}
		return filepath.Join(s.root, s.output)
	}
	return s.cfg.OutputPath(s.root)
}

// Scan extracts every project under the root and writes the results.
func (s *scanner) Scan(ctx context.Context) (watcher.RescanStats, error) {
	infos, err := project.Discover(s.root, s.projectOptions())
	if err != nil {
		return watcher.RescanStats{}, fmt.Errorf("failed to discover projects: %w", err)
	}
	s.last = nil
	return s.extract(ctx, infos, infos)
}

// Rescan re-extracts the projects touched by changed, the projects that
// reference them and, for cross-project exports, their references.
func (s *scanner) Rescan(ctx context.Context, changed []string) (watcher.RescanStats, error) {
	if verbose {
		for _, f := range changed {
			fmt.Fprintf(os.Stderr, "[EXTRACT DEBUG] changed %s\n", f)
		}
	}
	if s.last == nil {
		stats, err := s.Scan(ctx)
		if errors.Is(err, project.ErrNoProjects) {
			log.Printf("Warning: %v", err)
			return stats, nil
		}
		return stats, err
	}

	infos, err := project.Discover(s.root, s.projectOptions())
	if errors.Is(err, project.ErrNoProjects) {
		log.Printf("Warning: %v", err)
		return watcher.RescanStats{}, nil
	}
	if err != nil {
		return watcher.RescanStats{}, fmt.Errorf("failed to discover projects: %w", err)
	}

	selected := affectedProjects(infos, s.last, changed)
	removed := false
	current := map[string]bool{}
	for _, info := range infos {
		current[info.ConfigPath] = true
	}
	for configPath := range s.last {
		if !current[configPath] {
			removed = true
		}
	}
	if len(selected) == 0 && !removed {
		return watcher.RescanStats{}, nil
	}
	return s.extract(ctx, infos, selected)
}

// affectedProjects selects the projects a batch of changes requires to
// extract again, in discovery order.
func affectedProjects(infos []project.Info, last map[string]*extractor.Result, changed []string) []project.Info {
	changedSet := make(map[string]bool, len(changed))
	for _, f := range changed {
		changedSet[filepath.ToSlash(f)] = true
	}

	byConfig := make(map[string]project.Info, len(infos))
	affected := map[string]bool{}
	for _, info := range infos {
		byConfig[info.ConfigPath] = info
		files := info.SourceFiles
		if prev, ok := last[info.ConfigPath]; ok {
			files = append(append([]string(nil), files...), prev.Project.SourceFiles...)
		} else {
			// New project
			affected[info.ConfigPath] = true
		}
		if changedSet[info.ConfigPath] || changedSet[info.Dir()+"/package.json"] {
			affected[info.ConfigPath] = true
		}
		for _, f := range files {
			if changedSet[f] {
				affected[info.ConfigPath] = true
				break
			}
		}
	}

	// Dependents see the exports of what they reference
	for grew := true; grew; {
		grew = false
		for _, info := range infos {
			if affected[info.ConfigPath] {
				continue
			}
			for _, ref := range info.References {
				if affected[ref] {
					affected[info.ConfigPath] = true
					grew = true
					break
				}
			}
		}
	}

	selected := map[string]bool{}
	for configPath := range affected {
		selected[configPath] = true
		for _, ref := range byConfig[configPath].References {
			selected[ref] = true
		}
	}

	var out []project.Info
	for _, info := range infos {
		if selected[info.ConfigPath] {
			out = append(out, info)
		}
	}
	return out
}

// extract runs the extraction of selected, merges it with the kept results
// of the other projects in infos and writes the outputs.
func (s *scanner) extract(ctx context.Context, infos, selected []project.Info) (watcher.RescanStats, error) {
	var stats watcher.RescanStats

	if verbose {
		for _, info := range selected {
			fmt.Fprintf(os.Stderr, "[EXTRACT DEBUG] project %s: %d files, root %s\n",
				info.ConfigPath, len(info.SourceFiles), info.RootPath)
		}
	}

	ex, err := extractor.New(s.extractorOptions())
	if err != nil {
		return stats, err
	}
	results, err := ex.ExtractAll(ctx, selected)
	if err != nil {
		return stats, fmt.Errorf("extraction failed: %w", err)
	}

	for _, res := range results {
		stats.Projects++
		stats.Files += len(res.Project.SourceFiles)
		for _, list := range res.Concepts.Flatten() {
			stats.Concepts += len(list)
		}
		for _, ferr := range res.Errors {
			log.Printf("Warning: %v", ferr)
		}
	}

	next := make(map[string]*extractor.Result, len(infos))
	for _, info := range infos {
		if prev, ok := s.last[info.ConfigPath]; ok {
			next[info.ConfigPath] = prev
		}
	}
	for _, res := range results {
		next[res.Project.ConfigPath] = res
	}
	all := make([]*extractor.Result, 0, len(infos))
	for _, info := range infos {
		if res, ok := next[info.ConfigPath]; ok {
			all = append(all, res)
		}
	}
	s.last = next

	out := s.outputPath()
	if err := extractor.WriteJSON(out, all, s.cfg.Output.Pretty); err != nil {
		return stats, err
	}
	if !s.quiet {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", out)
	}

	if s.cfg.Graph.Enabled {
		if err := s.writeGraph(results); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (s *scanner) writeGraph(results []*extractor.Result) error {
	dbPath := s.cfg.DatabasePath(s.root)
	w, err := storage.NewGraphWriter(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open graph database: %w", err)
	}
	defer w.Close()

	for _, res := range results {
		g := graph.Build(res.Project.ConfigPath, res.Concepts)
		ws, err := w.WriteGraphData(res.Project.RootPath, res.Project.ConfigPath, g)
		if err != nil {
			return fmt.Errorf("failed to write graph for %s: %w", res.Project.ConfigPath, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "[EXTRACT DEBUG] graph %s: %d nodes, %d edges, %d skipped\n",
				res.Project.ConfigPath, ws.Nodes, ws.Edges, ws.SkippedEdges)
		}
	}
	if !s.quiet {
		fmt.Fprintf(os.Stderr, "✓ Graph stored in %s\n", dbPath)
	}
	return nil
}
