// Package logger provides structured JSON logging and run metrics for the
// calendar generator.
//
// Log lines go to stderr by default so that stdout carries only the
// human-readable progress of a run. Each line is a single JSON object:
//
//	{"timestamp":"...","level":"INFO","message":"calendar written","fields":{"events":21}}
//
// Metrics are simple in-process counters and timings, dumped at the end of
// a run:
//
//	logger.IncrCounter("events.built")
//	logger.RecordTiming("fetch.schedule", time.Since(start))
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger writes structured log lines at or above a minimum level.
// It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	out      io.Writer
	now      func() time.Time
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a logger writing to out.
func New(level Level, out io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		out:      out,
		now:      time.Now,
	}
}

// SetDefault replaces the package-level logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if marshalErr != nil {
		fmt.Fprintf(l.out, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	fmt.Fprintln(l.out, string(data))
}

func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs message together with err.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

func Debug(message string, fields Fields) { defaultLogger.Debug(message, fields) }

func Info(message string, fields Fields) { defaultLogger.Info(message, fields) }

func Warn(message string, fields Fields) { defaultLogger.Warn(message, fields) }

func Error(message string, fields Fields, err error) { defaultLogger.Error(message, fields, err) }

// Metrics tracks counters and timings for a run. All operations are
// thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Counter returns the current value of a counter.
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// RecordTiming records a duration measurement.
func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

// Reset clears all counters and timings.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
	m.timings = make(map[string][]time.Duration)
}

// Fields returns a flat copy of the metrics suitable for logging. Counters
// appear under their own name; each timing adds name.count, name.total and
// name.max.
func (m *Metrics) Fields() Fields {
	m.mu.Lock()
	defer m.mu.Unlock()

	f := make(Fields, len(m.counters)+3*len(m.timings))
	for k, v := range m.counters {
		f[k] = v
	}

	names := make([]string, 0, len(m.timings))
	for name := range m.timings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		durations := m.timings[name]
		if len(durations) == 0 {
			continue
		}
		var total, max time.Duration
		for _, d := range durations {
			total += d
			if d > max {
				max = d
			}
		}
		f[name+".count"] = len(durations)
		f[name+".total"] = total.String()
		f[name+".max"] = max.String()
	}

	return f
}

// DefaultMetrics returns the package-level metrics tracker.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

func IncrCounter(name string) { defaultMetrics.IncrCounter(name) }

func RecordTiming(name string, d time.Duration) { defaultMetrics.RecordTiming(name, d) }
