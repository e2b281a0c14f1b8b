package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// Logging configures the application logger.
//
// Name selects one of the Loggers presets; settings on the selected preset
// take precedence over the top-level ones.
type Logging struct {
	Name    string             `yaml:"name"`
	Compact bool               `yaml:"compact"`
	Bars    bool               `yaml:"bars"`
	Level   string             `yaml:"level"`
	Path    string             `yaml:"path"`
	Loggers map[string]Logging `yaml:"loggers"`
}

// selected returns the logging settings to apply, resolving the named preset.
func (l Logging) selected() Logging {
	preset, ok := l.Loggers[l.Name]
	if !ok {
		return l
	}
	if preset.Level == "" {
		preset.Level = l.Level
	}
	if preset.Path == "" {
		preset.Path = l.Path
	}
	return preset
}

// Configure builds the application logger from the logging settings.
//
// When a log file path is set, output goes to both stderr and the file; the
// path may contain a literal "{dt}" replaced with the run timestamp. The
// returned closer flushes and closes the log file and is safe to call when
// no file is configured.
func (l Logging) Configure(paths *Paths) (*log.Logger, func() error, error) {
	settings := l.selected()

	var w io.Writer = os.Stderr
	closer := func() error { return nil }

	if settings.Path != "" {
		path := strings.ReplaceAll(settings.Path, "{dt}", paths.Timestamp().Format(dtFormat))
		if !filepath.IsAbs(path) {
			path = filepath.Join(paths.Base, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f.Close
	}

	logger := shared.NewLogger(w)
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		level = log.InfoLevel
	}
	shared.SetLogLevel(logger, level)

	if settings.Compact {
		logger.SetReportCaller(false)
	}
	return logger, closer, nil
}
