package adapters

import (
	"fmt"
	"io"
	"os"
	"sync"

	"jobscribe/internal/logging/types"
)

// StdoutAdapter writes entries to a console stream
type StdoutAdapter struct {
	name      string
	format    string
	colorized bool
	out       io.Writer
	mu        sync.Mutex
}

// StdoutConfig represents configuration for the console adapter
type StdoutConfig struct {
	Format    string `yaml:"format"`    // json or text
	Colorized bool   `yaml:"colorized"` // ANSI colors for the level in text format
	Stream    string `yaml:"stream"`    // stdout or stderr
}

// NewStdoutAdapter creates a console adapter writing to the configured stream
func NewStdoutAdapter(name string, config StdoutConfig) *StdoutAdapter {
	var out io.Writer = os.Stdout
	if config.Stream == "stderr" {
		out = os.Stderr
	}
	return NewWriterAdapter(name, config, out)
}

// NewWriterAdapter is NewStdoutAdapter with an explicit destination
func NewWriterAdapter(name string, config StdoutConfig, out io.Writer) *StdoutAdapter {
	return &StdoutAdapter{
		name:      name,
		format:    config.Format,
		colorized: config.Colorized,
		out:       out,
	}
}

func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	line, err := formatEntry(entry, a.format, a.colorized)
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = fmt.Fprintln(a.out, line)
	return err
}

func (a *StdoutAdapter) Close() error { return nil }

func (a *StdoutAdapter) Name() string { return a.name }
