// Package eventlog implements pacwrap's append-only event log: one
// timestamped line per event, written to a single well-known file for
// the lifetime of the process.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is a mutex-guarded append-only writer over a single log file.
type Logger struct {
	file   *os.File
	module string
	mu     sync.Mutex
	active bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// DefaultLogPath returns the well-known log location, honouring
// PACWRAP_DATA_DIR the same way the rest of the on-disk layout does.
func DefaultLogPath() (string, error) {
	dataDir := os.Getenv("PACWRAP_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share", "pacwrap")
	}
	return filepath.Join(dataDir, "pacwrap.log"), nil
}

// Initialize sets up the global logger at the default log path.
func Initialize(module string) error {
	path, err := DefaultLogPath()
	if err != nil {
		return err
	}
	return InitializeWithFile(module, path)
}

// InitializeWithFile sets up the global logger at an explicit path.
func InitializeWithFile(module, path string) error {
	var initErr error
	once.Do(func() {
		globalLogger = &Logger{module: module}
		initErr = globalLogger.init(path)
	})
	return initErr
}

// reinitializeForTest resets and reinitializes the logger; test-only.
func reinitializeForTest(module, path string) error {
	if globalLogger != nil {
		globalLogger.Close()
	}
	once = sync.Once{}
	return InitializeWithFile(module, path)
}

func (l *Logger) init(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	// create+append, never truncate: the log is a record across runs.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.active = true
	return nil
}

// Log appends "[timestamp] [module] msg" and fsyncs the write.
func (l *Logger) Log(msg string) error {
	if !l.active {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format(time.RFC3339), l.module, msg)
	if _, err := l.file.Write([]byte(line)); err != nil {
		return fmt.Errorf("failed to write log line: %w", err)
	}
	return l.file.Sync()
}

// Close closes the logger.
func (l *Logger) Close() error {
	if !l.active {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.active = false
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Log writes a line using the global logger, silently no-op if
// uninitialized.
func Log(msg string) error {
	if globalLogger == nil || !globalLogger.active {
		return nil
	}
	return globalLogger.Log(msg)
}

// Logf is Log with fmt.Sprintf formatting.
func Logf(format string, args ...interface{}) error {
	return Log(fmt.Sprintf(format, args...))
}

// Close closes the global logger.
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

// IsInitialized reports whether the global logger is active.
func IsInitialized() bool {
	return globalLogger != nil && globalLogger.active
}
