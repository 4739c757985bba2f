package extractor

import (
	"time"

	"github.com/mvp-joe/tsconcepts/internal/project"
)

// ProgressReporter receives callbacks while projects are extracted.
type ProgressReporter interface {
	// OnProjectStart is called before the files of a project are parsed.
	OnProjectStart(info project.Info)

	// OnFileProcessed is called after each file has been traversed.
	OnFileProcessed(path string)

	// OnProjectComplete is called once a project has been post-processed.
	OnProjectComplete(info project.Info, concepts int, elapsed time.Duration)
}

// NoOpProgressReporter reports nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnProjectStart(project.Info)                        {}
func (NoOpProgressReporter) OnFileProcessed(string)                             {}
func (NoOpProgressReporter) OnProjectComplete(project.Info, int, time.Duration) {}
