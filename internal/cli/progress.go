package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/tsconcepts/internal/project"
)

// CLIProgressReporter shows one progress bar per project while its files
// are traversed.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
	files   int
}

// NewCLIProgressReporter creates a reporter writing to stderr.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, out: os.Stderr}
}

func (c *CLIProgressReporter) OnProjectStart(info project.Info) {
	if c.quiet {
		return
	}
	c.files = 0
	c.fileBar = progressbar.NewOptions(len(info.SourceFiles),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", info.ConfigPath)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(string) {
	if c.quiet {
		return
	}
	c.files++
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnProjectComplete(info project.Info, concepts int, elapsed time.Duration) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.out, "✓ %s: %s concepts from %s files (took %.1fs)\n",
		info.ConfigPath, formatNumber(concepts), formatNumber(len(info.SourceFiles)), elapsed.Seconds())
}

// formatNumber groups thousands with commas.
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 && n > -1000 {
		return str
	}
	var result string
	for i, c := range str {
		if i > 0 && str[i-1] != '-' && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
