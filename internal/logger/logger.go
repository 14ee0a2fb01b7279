package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the structured log file inside the logs directory.
const LogFileName = "stackup.log"

var (
	// Log is the global logger instance
	Log zerolog.Logger

	// fileWriter is the file output for logging (with rotation)
	fileWriter *lumberjack.Logger

	// fileCfg and logsDir are kept so OutputWriter can open sibling files
	// with the same rotation policy.
	fileCfg *LoggingConfig
	logsDir string
	fileMu  sync.Mutex

	// runID tags every entry written during one emulator startup (optional, may be empty)
	runID   string
	runIDMu sync.RWMutex
)

// Logger is the logging surface components accept.
// *zerolog.Logger satisfies this interface directly.
// Tests use loggertest.New() or loggertest.NewNop().
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

// Default returns a Logger backed by the global logger, including the run field.
func Default() Logger { return globalLogger{} }

type globalLogger struct{}

func (globalLogger) Debug() *zerolog.Event { return Debug() }
func (globalLogger) Info() *zerolog.Event  { return Info() }
func (globalLogger) Warn() *zerolog.Event  { return Warn() }
func (globalLogger) Error() *zerolog.Event { return Error() }

// SetRun sets the run identifier added to all subsequent log entries.
// Pass an empty string to clear. Thread-safe.
func SetRun(id string) {
	runIDMu.Lock()
	defer runIDMu.Unlock()
	runID = id
}

// ClearRun clears the run identifier.
func ClearRun() {
	SetRun("")
}

func addRun(event *zerolog.Event) *zerolog.Event {
	runIDMu.RLock()
	id := runID
	runIDMu.RUnlock()
	if id != "" {
		event = event.Str("run", id)
	}
	return event
}

// LoggingConfig holds configuration for file-based logging.
// This matches internal/config.LoggingConfig but is duplicated here
// to avoid circular imports.
type LoggingConfig struct {
	FileEnabled *bool
	MaxSizeMB   int
	MaxAgeDays  int
	MaxBackups  int
}

// IsFileEnabled returns whether file logging is enabled.
// Defaults to true if not explicitly set.
func (c *LoggingConfig) IsFileEnabled() bool {
	if c.FileEnabled == nil {
		return true
	}
	return *c.FileEnabled
}

// GetMaxSizeMB returns the max size in MB, defaulting to 50 if not set.
func (c *LoggingConfig) GetMaxSizeMB() int {
	if c.MaxSizeMB <= 0 {
		return 50
	}
	return c.MaxSizeMB
}

// GetMaxAgeDays returns the max age in days, defaulting to 7 if not set.
func (c *LoggingConfig) GetMaxAgeDays() int {
	if c.MaxAgeDays <= 0 {
		return 7
	}
	return c.MaxAgeDays
}

// GetMaxBackups returns the max backups, defaulting to 3 if not set.
func (c *LoggingConfig) GetMaxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func levelFor(debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Init initializes the global logger for console-only output.
func Init(debug bool) {
	Log = zerolog.New(consoleWriter()).
		Level(levelFor(debug)).
		With().
		Timestamp().
		Logger()
}

// InitWithFile initializes the logger with optional file output.
// If dir is empty or cfg indicates file logging is disabled,
// this behaves like Init (console-only).
func InitWithFile(debug bool, dir string, cfg *LoggingConfig) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if dir == "" || cfg == nil || !cfg.IsFileEnabled() {
		Init(debug)
		fileCfg = nil
		logsDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileCfg = cfg
	logsDir = dir
	fileWriter = newRotatingFile(filepath.Join(dir, LogFileName), cfg)

	// Console uses human-readable format, file uses JSON
	multi := io.MultiWriter(consoleWriter(), fileWriter)

	Log = zerolog.New(multi).
		Level(levelFor(debug)).
		With().
		Timestamp().
		Logger()

	return nil
}

func newRotatingFile(path string, cfg *LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.GetMaxSizeMB(),  // MB
		MaxAge:     cfg.GetMaxAgeDays(), // days
		MaxBackups: cfg.GetMaxBackups(),
		LocalTime:  true,
		Compress:   false,
	}
}

// OutputWriter returns a rotated file writer named name inside the logs
// directory, for capturing raw output of child processes. When file logging
// is disabled the returned writer discards everything.
func OutputWriter(name string) io.WriteCloser {
	fileMu.Lock()
	defer fileMu.Unlock()

	if logsDir == "" || fileCfg == nil {
		return nopWriteCloser{io.Discard}
	}
	return newRotatingFile(filepath.Join(logsDir, name), fileCfg)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// CloseFileWriter closes the file writer if it exists.
// Call this on program shutdown for clean log file closure.
func CloseFileWriter() error {
	fileMu.Lock()
	defer fileMu.Unlock()

	if fileWriter != nil {
		err := fileWriter.Close()
		fileWriter = nil
		return err
	}
	return nil
}

// GetLogFilePath returns the path to the current log file, or empty string if file logging is disabled.
func GetLogFilePath() string {
	fileMu.Lock()
	defer fileMu.Unlock()

	if fileWriter != nil {
		return fileWriter.Filename
	}
	return ""
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	return addRun(Log.Debug())
}

// Info logs an info message
func Info() *zerolog.Event {
	return addRun(Log.Info())
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return addRun(Log.Warn())
}

// Error logs an error message
func Error() *zerolog.Event {
	return addRun(Log.Error())
}

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event {
	return addRun(Log.Fatal())
}

// WithField returns a logger with an additional field
func WithField(key string, value interface{}) zerolog.Logger {
	return Log.With().Interface(key, value).Logger()
}
