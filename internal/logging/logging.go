package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"sort"
	"strings"
	"sync"
)

// Level represents log levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fields represents structured logging fields
type Fields map[string]any

// Logger is the logging surface used across mngviz.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields
	WithFields(fields Fields) Logger

	SetLevel(level Level)
}

type levelBox struct {
	mu    sync.RWMutex
	level Level
}

func (b *levelBox) get() Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.level
}

func (b *levelBox) set(l Level) {
	b.mu.Lock()
	b.level = l
	b.mu.Unlock()
}

// StdLogger writes key=value lines through a *log.Logger.
type StdLogger struct {
	out    *log.Logger
	level  *levelBox
	fields Fields
}

// New returns a StdLogger writing to w at InfoLevel.
func New(w io.Writer) *StdLogger {
	return &StdLogger{
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level: &levelBox{level: InfoLevel},
	}
}

func (l *StdLogger) Debug(msg string, fields ...Fields) { l.log(DebugLevel, nil, msg, fields) }
func (l *StdLogger) Info(msg string, fields ...Fields)  { l.log(InfoLevel, nil, msg, fields) }
func (l *StdLogger) Warn(msg string, fields ...Fields)  { l.log(WarnLevel, nil, msg, fields) }

func (l *StdLogger) Error(err error, msg string, fields ...Fields) {
	l.log(ErrorLevel, err, msg, fields)
}

func (l *StdLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &StdLogger{out: l.out, level: l.level, fields: merged}
}

// SetLevel applies to this logger and every logger derived from it.
func (l *StdLogger) SetLevel(level Level) { l.level.set(level) }

func (l *StdLogger) log(level Level, err error, msg string, extra []Fields) {
	if level < l.level.get() {
		return
	}

	all := make(Fields, len(l.fields))
	maps.Copy(all, l.fields)
	for _, f := range extra {
		maps.Copy(all, f)
	}
	if err != nil {
		all["error"] = err.Error()
	}

	var sb strings.Builder
	sb.WriteString(level.String())
	sb.WriteByte(' ')
	sb.WriteString(msg)
	if len(all) > 0 {
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, all[k])
		}
	}
	l.out.Print(sb.String())
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Fields)        {}
func (NoOpLogger) Info(string, ...Fields)         {}
func (NoOpLogger) Warn(string, ...Fields)         {}
func (NoOpLogger) Error(error, string, ...Fields) {}
func (n NoOpLogger) WithFields(Fields) Logger     { return n }
func (NoOpLogger) SetLevel(Level)                 {}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = New(log.Writer())
)

// SetDefault replaces the package-level logger. A nil logger discards output.
func SetDefault(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if logger == nil {
		globalLogger = NoOpLogger{}
		return
	}
	globalLogger = logger
}

// Default returns the package-level logger.
func Default() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Component returns the default logger tagged with a component field.
func Component(name string) Logger {
	return Default().WithFields(Fields{"component": name})
}
