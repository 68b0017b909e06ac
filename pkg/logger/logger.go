// Package logger provides leveled component loggers for the server and client
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents logging severity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the level name as accepted by ParseLevel
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a level name to a LogLevel. Unknown names report ok=false
// and yield INFO.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	default:
		return INFO, false
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger writes leveled, printf-style records tagged with a component name
type Logger struct {
	mu        sync.RWMutex
	component string
	console   io.Writer
	file      *os.File
	zl        zerolog.Logger
}

var (
	// Server is the logger used by the game server
	Server = New("SERVER")
	// Client is the logger used by the game client
	Client = New("CLIENT")
)

// New creates a logger that writes human-readable records to stdout
func New(component string) *Logger {
	return NewWithWriter(component, zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}

// NewWithWriter creates a logger writing to w. Tests pass a buffer or io.Discard.
func NewWithWriter(component string, w io.Writer) *Logger {
	l := &Logger{component: component, console: w}
	l.rebuild()
	return l
}

// rebuild must be called with l.mu held for writing (or before l is shared).
func (l *Logger) rebuild() {
	var w io.Writer = l.console
	if l.file != nil {
		w = zerolog.MultiLevelWriter(l.console, l.file)
	}
	l.zl = zerolog.New(w).With().Timestamp().Str("component", l.component).Logger()
}

// SetOutput replaces the console sink
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
	l.rebuild()
}

// SetFile mirrors every record into the file at path (appending)
func (l *Logger) SetFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	l.rebuild()
	return nil
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.rebuild()
	return err
}

// SetGlobalLogLevel sets the minimum level for every logger
func SetGlobalLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(level.zerolog())
}

// InitializeFileLogging points the Server and Client loggers at files under dir
func InitializeFileLogging(dir string) error {
	if err := Server.SetFile(filepath.Join(dir, "server.log")); err != nil {
		return err
	}
	return Client.SetFile(filepath.Join(dir, "client.log"))
}

func (l *Logger) logger() *zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	zl := l.zl
	return &zl
}

// Debug logs a debug record
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger().Debug().Msgf(format, args...)
}

// Info logs an informational record
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger().Info().Msgf(format, args...)
}

// Warn logs a warning
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger().Warn().Msgf(format, args...)
}

// Error logs an error
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger().Error().Msgf(format, args...)
}

// Fatal logs and terminates the process
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.logger().Fatal().Msgf(format, args...)
}
