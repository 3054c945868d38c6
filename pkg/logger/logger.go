// Package logger provides a comprehensive logging system with multiple outputs.
// It supports console logging with colors, file logging, and Discord webhook logging,
// all driven through a logrus instance.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

// Entry field names attached to every record.
const (
	fieldLevel  = "pancy_level"
	fieldPrefix = "prefix"
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelSuccess:
		return "SUCCESS"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	switch l {
	case LevelCritical:
		return "\033[1;31m" // Bold Red
	case LevelError:
		return "\033[31m" // Red
	case LevelWarn:
		return "\033[33m" // Yellow
	case LevelSuccess:
		return "\033[32m" // Green
	case LevelInfo:
		return "\033[36m" // Cyan
	case LevelDebug:
		return "\033[35m" // Magenta
	case LevelSystem:
		return "\033[34m" // Blue
	default:
		return "\033[0m" // Reset
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000 // Red
	case LevelWarn:
		return 0xFFFF00 // Yellow
	case LevelSuccess:
		return 0x00FF00 // Green
	case LevelInfo:
		return 0x0000FF // Blue
	case LevelDebug:
		return 0x800080 // Purple
	case LevelSystem:
		return 0x808080 // Grey
	default:
		return 0xFFFFFF // White
	}
}

// logrusLevel maps a LogLevel onto the closest logrus level. Fatal and Panic are
// never used because logrus exits or panics on them.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical, LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

const colorReset = "\033[0m"

// Logger is the main logging structure
type Logger struct {
	logrus *logrus.Logger
	files  *fileHook
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(errorWebhook, logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger("", "")
	})
	return logger
}

// NewLogger creates a Logger writing to stdout, ./logs and the given webhooks
func NewLogger(errorWebhook, logsWebhook string) *Logger {
	return New(os.Stdout, filepath.Join(".", "logs"), errorWebhook, logsWebhook)
}

// New creates a Logger with an explicit console writer and logs directory.
// An empty logsDir disables file output.
func New(out io.Writer, logsDir, errorWebhook, logsWebhook string) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(out)
	l.logrus.SetLevel(logrus.DebugLevel)
	l.logrus.SetFormatter(&consoleFormatter{colors: true})

	if logsDir != "" {
		hook, err := newFileHook(logsDir)
		if err != nil {
			fmt.Printf("Error preparing log files: %v\n", err)
		} else {
			l.files = hook
			l.logrus.AddHook(hook)
		}
	}

	if errorWebhook != "" || logsWebhook != "" {
		l.logrus.AddHook(newWebhookHook(errorWebhook, logsWebhook))
	}

	return l
}

// Logrus exposes the underlying logrus logger
func (l *Logger) Logrus() *logrus.Logger {
	return l.logrus
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message, prefix string, fields logrus.Fields) {
	entry := l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.files != nil {
		l.files.Close()
	}
}

// Logging methods

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix, nil)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix, nil)
}

// WarnWith logs a warning message with structured context
func (l *Logger) WarnWith(message string, prefix string, fields logrus.Fields) {
	l.log(LevelWarn, message, prefix, fields)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix, nil)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix, nil)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix, nil)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix, nil)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// WarnWith logs a warning message with structured context using the global logger
func WarnWith(message string, prefix string, fields logrus.Fields) {
	Get().WarnWith(message, prefix, fields)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}
