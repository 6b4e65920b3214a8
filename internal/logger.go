package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logMu    sync.RWMutex
	logLevel = LogLevelWarn
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	logLevel = level
	logMu.Unlock()
}

// SetVerbose enables verbose (debug) logging. Without it only warnings and
// errors reach stderr so command output stays clean.
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelWarn)
	}
}

// SetLogOutput redirects log output, mainly for tests.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	logger.SetOutput(w)
	logMu.Unlock()
}

func logf(level LogLevel, tag, format string, args ...interface{}) {
	logMu.RLock()
	defer logMu.RUnlock()
	if logLevel >= level {
		logger.Printf("["+tag+"] "+format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logf(LogLevelError, "ERROR", format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logf(LogLevelWarn, "WARN", format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logf(LogLevelInfo, "INFO", format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logf(LogLevelDebug, "DEBUG", format, args...)
}

// ComponentLogger prefixes every line with a component name, e.g. "realtime".
type ComponentLogger struct {
	name string
}

// Component returns a logger for the named component.
func Component(name string) ComponentLogger {
	return ComponentLogger{name: name}
}

func (c ComponentLogger) prefix(format string) string {
	return fmt.Sprintf("%s: %s", c.name, format)
}

func (c ComponentLogger) Error(format string, args ...interface{}) {
	LogError(c.prefix(format), args...)
}

func (c ComponentLogger) Warn(format string, args ...interface{}) {
	LogWarn(c.prefix(format), args...)
}

func (c ComponentLogger) Info(format string, args ...interface{}) {
	LogInfo(c.prefix(format), args...)
}

func (c ComponentLogger) Debug(format string, args ...interface{}) {
	LogDebug(c.prefix(format), args...)
}
