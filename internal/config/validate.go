package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyExtensions indicates that no source extension is configured
	ErrEmptyExtensions = errors.New("empty source extensions")

	// ErrInvalidWorkers indicates a non-positive parse worker count
	ErrInvalidWorkers = errors.New("invalid parse workers")

	// ErrEmptyOutput indicates a missing output directory or file name
	ErrEmptyOutput = errors.New("empty output location")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrEmptyDatabase indicates the graph is enabled without a database path
	ErrEmptyDatabase = errors.New("empty graph database")
)

// Validate checks that the configuration is valid and complete. All
// problems are reported at once.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Scan.Extensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one extension required", ErrEmptyExtensions))
	}
	for _, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("%w: extension %q must start with a dot", ErrEmptyExtensions, ext))
		}
	}
	if strings.TrimSpace(cfg.Scan.TSConfig) == "" {
		errs = append(errs, errors.New("scan.tsconfig is required"))
	}
	if cfg.Scan.ParseWorkers <= 0 {
		errs = append(errs, fmt.Errorf("%w: parse_workers must be positive, got %d", ErrInvalidWorkers, cfg.Scan.ParseWorkers))
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output.dir is required", ErrEmptyOutput))
	}
	if strings.TrimSpace(cfg.Output.File) == "" {
		errs = append(errs, fmt.Errorf("%w: output.file is required", ErrEmptyOutput))
	}

	if cfg.Graph.Enabled && strings.TrimSpace(cfg.Graph.Database) == "" {
		errs = append(errs, fmt.Errorf("%w: graph.database is required when the graph is enabled", ErrEmptyDatabase))
	}

	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear
// formatting. errors.Is still sees every member.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error { return e.errs }
