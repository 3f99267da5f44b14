// Package logger provides the leveled, decorated logging front end used
// throughout Mol-MiDial. It wraps the standard library log facility; file
// rotation and persistence are left to whatever backend the host application
// attaches via SetOutput.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name (any case) to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	}
	return LevelInfo, fmt.Errorf("logger: unknown level %q", name)
}

// shim is the package-level logger instance. Not exposed; the package-level
// functions below log through it.
type shim struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

var central = &shim{
	level: LevelInfo,
	out:   log.New(os.Stdout, "", log.LstdFlags),
}

// SetLevel sets the minimum severity that will be written.
func SetLevel(l Level) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.level = l
}

// SetLevelName sets the minimum severity by name, as restored from the
// settings store.
func SetLevelName(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	SetLevel(l)
	return nil
}

// GetLevel returns the current minimum severity.
func GetLevel() Level {
	central.mu.Lock()
	defer central.mu.Unlock()
	return central.level
}

// SetOutput redirects log output. Used by tests and by hosts that attach
// their own sink.
func SetOutput(w io.Writer) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.out = log.New(w, "", log.LstdFlags)
}

func (s *shim) log(level Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.level {
		return
	}
	s.out.Printf("%-8s| %s", level.String(), decorate(msg, level))
}

// Message logs msg at an arbitrary level.
func Message(level Level, msg string) {
	central.log(level, msg)
}

// Debug logs a debug-level message.
func Debug(msg string) {
	central.log(LevelDebug, msg)
}

// Debugf logs a formatted debug-level message.
func Debugf(format string, args ...any) {
	central.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info-level message.
func Info(msg string) {
	central.log(LevelInfo, msg)
}

// Infof logs a formatted info-level message.
func Infof(format string, args ...any) {
	central.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warning logs a warning-level message.
func Warning(msg string) {
	central.log(LevelWarning, msg)
}

// Warningf logs a formatted warning-level message.
func Warningf(format string, args ...any) {
	central.log(LevelWarning, fmt.Sprintf(format, args...))
}

// Error logs an error-level message. err may be nil; when non-nil its text
// is appended to the message.
func Error(msg string, err error) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	central.log(LevelError, msg)
}

// Errorf logs a formatted error-level message.
func Errorf(format string, args ...any) {
	central.log(LevelError, fmt.Sprintf(format, args...))
}

// Critical logs a critical-level message.
func Critical(msg string) {
	central.log(LevelCritical, msg)
}

// JSON logs a value as a single compact JSON line. A value that cannot be
// serialized degrades to a warning; the call never panics.
func JSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		Error("failed to serialize JSON payload", err)
		return
	}
	central.log(LevelInfo, string(b))
}

// Parameter logs a structured one-line summary of a named value. Large
// collections are summarized rather than dumped.
func Parameter(msg string, v any) {
	central.log(LevelInfo, formatParameter(msg, v))
}
