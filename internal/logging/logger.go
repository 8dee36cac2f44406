package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/kingrea/waypoint/internal/config"
)

// Logger writes structured lines to .waypoint/logs/waypoint.log so users can
// inspect failures after the TUI has taken over and released the terminal.
type Logger struct {
	log.Logger
	file *log.FileWriter
	path string
}

// New creates (or reuses) the log file for the current project directory.
func New(projectDir, level string) (*Logger, error) {
	path := filepath.Join(projectDir, config.Dir, "logs", "waypoint.log")
	file := &log.FileWriter{
		Filename:     path,
		FileMode:     0o644,
		MaxSize:      10 << 20,
		MaxBackups:   3,
		EnsureFolder: true,
	}
	// open eagerly so permission problems surface at startup
	if _, err := file.Write(nil); err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{
		Logger: log.Logger{
			Level:      ParseLevel(level),
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			Writer:     &log.IOWriter{Writer: file},
		},
		file: file,
		path: path,
	}, nil
}

// NewWriter logs to w; the CLI uses it for stderr output.
func NewWriter(w io.Writer, level string) *Logger {
	return &Logger{
		Logger: log.Logger{
			Level:  ParseLevel(level),
			Writer: &log.IOWriter{Writer: w},
		},
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard, "error")
}

// ParseLevel maps a config level name onto a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single info line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.Info().Msg(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Component returns a logger whose entries carry component=name.
func (l *Logger) Component(name string) *Logger {
	if l == nil {
		return Discard()
	}
	child := *l
	child.Context = log.NewContext(nil).Str("component", name).Value()
	child.file = nil
	return &child
}
