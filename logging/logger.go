// Package logging provides a tiny abstraction over structured loggers so
// downstream code can depend on a minimal interface (Logger) while allowing
// users to plug slog, zap or any other backend. It also offers NodeLogger, a
// wrapper with contextual helpers (component, node) and domain specific
// logging helpers for cycles, fusion updates and alarms.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from any backend.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name. Unknown names yield
// LogLevelInfo and an error.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger defines the minimal logging interface. Args are alternating
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// LoggerConfig configures construction of a slog backed NodeLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Component string
	NodeID    string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// NewLogger builds a slog backed NodeLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *NodeLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &NodeLogger{base: NewSlogAdapter(slog.New(handler)), component: cfg.Component, nodeID: cfg.NodeID}
}

// NewSlogLogger creates a slog backed NodeLogger writing to stdout.
func NewSlogLogger(level LogLevel, format string, addSource bool) *NodeLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NodeLogger wraps any Logger adding contextual cloning helpers and domain
// convenience methods. With* methods return copies; the receiver is never
// modified.
type NodeLogger struct {
	base      Logger
	context   map[string]any
	component string
	nodeID    string
}

// NewNodeLogger wraps l. A nil logger discards everything.
func NewNodeLogger(l Logger) *NodeLogger {
	if nl, ok := l.(*NodeLogger); ok {
		return nl
	}
	if l == nil {
		l = NoOpLogger{}
	}
	return &NodeLogger{base: l}
}

func (l *NodeLogger) clone() *NodeLogger {
	nl := *l
	nl.context = make(map[string]any, len(l.context))
	for k, v := range l.context {
		nl.context[k] = v
	}
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *NodeLogger) WithContext(key string, value any) *NodeLogger {
	nl := l.clone()
	nl.context[key] = value
	return nl
}

// WithComponent sets the logical component (agent, engine, runner, ...).
func (l *NodeLogger) WithComponent(c string) *NodeLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithNode attaches the node identifier.
func (l *NodeLogger) WithNode(id string) *NodeLogger {
	nl := l.clone()
	nl.nodeID = id
	return nl
}

// Component returns the component attached to the logger.
func (l *NodeLogger) Component() string { return l.component }

func (l *NodeLogger) attrs(args []any) []any {
	out := make([]any, 0, 2*len(l.context)+4+len(args))
	if l.component != "" {
		out = append(out, "component", l.component)
	}
	if l.nodeID != "" {
		out = append(out, "node_id", l.nodeID)
	}
	for k, v := range l.context {
		out = append(out, k, v)
	}
	return append(out, args...)
}

// Debug logs at debug level.
func (l *NodeLogger) Debug(msg string, args ...any) { l.base.Debug(msg, l.attrs(args)...) }

// Info logs at info level.
func (l *NodeLogger) Info(msg string, args ...any) { l.base.Info(msg, l.attrs(args)...) }

// Warn logs at warn level.
func (l *NodeLogger) Warn(msg string, args ...any) { l.base.Warn(msg, l.attrs(args)...) }

// Error logs at error level.
func (l *NodeLogger) Error(msg string, args ...any) { l.base.Error(msg, l.attrs(args)...) }

// ErrorWithStack logs an error plus a runtime stack snapshot.
func (l *NodeLogger) ErrorWithStack(err error, msg string, args ...any) {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	args = append(args, "error", err.Error(), "error_type", fmt.Sprintf("%T", err), "stack_trace", string(stack[:n]))
	l.Error(msg, args...)
}

// LogCycle records the outcome of one decision cycle.
func (l *NodeLogger) LogCycle(cycle uint64, dur time.Duration, relevance, powerIndex int, remaining float64) {
	l.Debug("Cycle completed",
		"cycle", cycle,
		"duration", dur,
		"relevance_index", relevance,
		"power_index", powerIndex,
		"remaining_charge", remaining,
	)
}

// LogFusion records a fusion update. names and gains are parallel slices.
func (l *NodeLogger) LogFusion(residual, confidence float64, names []string, gains []float64) {
	args := make([]any, 0, 4+2*len(gains))
	args = append(args, "residual", residual, "confidence", confidence)
	for i, g := range gains {
		name := fmt.Sprintf("source_%d", i)
		if i < len(names) {
			name = names[i]
		}
		args = append(args, "gain_"+name, g)
	}
	l.Debug("Power estimates fused", args...)
}

// LogAlarm records a non-fatal alarm raised by an agent.
func (l *NodeLogger) LogAlarm(agent string, code fmt.Stringer) {
	l.Warn("Agent alarm raised", "agent", agent, "alarm", code.String())
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *NodeLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

var (
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = (*NodeLogger)(nil)
	_ Logger = NoOpLogger{}
)
