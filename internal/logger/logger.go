// Package logger writes the application log to a file. The TUI owns the
// terminal, so nothing is logged to stdout or stderr while it runs.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFileName is the log file created in the temp dir when no path is set.
const DefaultFileName = "imagestudio.log"

// DefaultPath returns the log file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// File is an open log file with a switchable level.
type File struct {
	path   string
	level  *slog.LevelVar
	logger *slog.Logger

	mu sync.Mutex
	f  *os.File
}

// Open appends to the log file at path, creating it and its directory.
// An empty path means DefaultPath.
func Open(path string) (*File, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})

	lf := &File{path: path, level: level, logger: slog.New(handler), f: f}
	lf.logger.Debug("logger initialized", "path", path)
	return lf, nil
}

// Logger returns the file's logger.
func (l *File) Logger() *slog.Logger {
	return l.logger
}

// Path returns the log file path.
func (l *File) Path() string {
	return l.path
}

// SetDebug switches between debug and info level.
func (l *File) SetDebug(enabled bool) {
	if enabled {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelInfo)
	}
}

// Close closes the file. Logging after Close is silently dropped by the
// handler's write error.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Component returns logger with the component attribute attached.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", name))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
