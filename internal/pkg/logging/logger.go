package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// Logger wraps a charmbracelet logger.
type Logger struct {
	*log.Logger
}

var (
	logger *Logger
	once   sync.Once
)

// CreateLogger sets up the process logger. DEBUG=1 turns on debug level,
// caller reporting and timestamps.
func CreateLogger() {
	once.Do(func() {
		logger = newLogger(os.Stderr, os.Getenv("DEBUG") == "1")
	})
}

func newLogger(w io.Writer, debug bool) *Logger {
	if !debug {
		base := log.NewWithOptions(w, log.Options{ReportTimestamp: true, Prefix: "filepond"})
		base.SetLevel(log.InfoLevel)
		return &Logger{Logger: base}
	}

	base := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "filepond",
	})
	base.SetLevel(log.DebugLevel)
	return &Logger{Logger: base}
}

// SetOutput replaces the process logger, mostly for tests.
func SetOutput(w io.Writer, debug bool) {
	once.Do(func() {})
	logger = newLogger(w, debug)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Debug(msg, keyvals...)
}

func Info(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Info(msg, keyvals...)
}

func Warn(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Warn(msg, keyvals...)
}

func Error(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Error(msg, keyvals...)
}

// Fatal logs and exits the program.
func Fatal(msg interface{}, keyvals ...interface{}) {
	ensureInitialized()
	logger.Fatal(msg, keyvals...)
}

// With returns a child logger that always carries keyvals.
func With(keyvals ...interface{}) *Logger {
	ensureInitialized()
	return &Logger{Logger: logger.With(keyvals...)}
}

func ensureInitialized() {
	if logger == nil {
		CreateLogger()
	}
}
