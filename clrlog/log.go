// Package clrlog provides the small leveled-logging seam used across this
// module, in the shape of github.com/saferwall/pe/log (itself modeled on
// go-kratos/log): a minimal Logger interface, a Filter decorator that drops
// log records below a given level, and a Helper that adds printf-style
// convenience methods.
package clrlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a log severity.
type Level int

// Severity levels, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal logging interface this module depends on.
type Logger interface {
	Log(level Level, msg string)
}

// stdLogger writes records to an io.Writer via the standard library logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger that writes to w with a level prefix.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

func (s *stdLogger) Log(level Level, msg string) {
	s.l.Printf("[%s] %s", level, msg)
}

// filter wraps a Logger and drops records below a minimum level.
type filter struct {
	next Logger
	min  Level
}

// NewFilter returns a Logger that forwards to next only records at or above min.
func NewFilter(next Logger, min Level) Logger {
	return &filter{next: next, min: min}
}

func (f *filter) Log(level Level, msg string) {
	if level < f.min {
		return
	}
	f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods on top of a Logger. A nil
// *Helper, or a zero Helper with no Logger, is silent; NewHelper(nil) is
// not, since it substitutes a default logger.
type Helper struct {
	logger Logger
}

// NewHelper builds a Helper. If logger is nil, a default stdout logger
// filtered to LevelError is used.
func NewHelper(logger Logger) *Helper {
	if logger == nil {
		logger = NewFilter(NewStdLogger(os.Stdout), LevelError)
	}
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, fmt.Sprintf(format, args...))
}

// Debugf logs at debug level.
func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }

// Infof logs at info level.
func (h *Helper) Infof(format string, args ...interface{}) { h.log(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (h *Helper) Warnf(format string, args ...interface{}) { h.log(LevelWarn, format, args...) }

// Errorf logs at error level.
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }
