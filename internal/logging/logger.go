// Package logging provides the leveled, optionally JSON-formatted logger used
// across shunctl.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents logging severity.
type Level int

const (
	// LevelDebug includes detailed resolution traces.
	LevelDebug Level = iota
	// LevelInfo includes standard operational information.
	LevelInfo
	// LevelWarn includes warnings about questionable profile content.
	LevelWarn
	// LevelError includes only error messages.
	LevelError
)

// keepRotated is how many rotated log files survive cleanup.
const keepRotated = 5

// String returns the string representation of the log level.
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

// ParseLevel parses a log level name, case-insensitively. An empty name
// means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// Options configures a Logger.
type Options struct {
	Level Level
	// FilePath sends output to a file instead of Writer.
	FilePath string
	JSON     bool
	// MaxSize is the file size in bytes that triggers rotation (0 disables it).
	MaxSize int64
	// Writer is used when FilePath is empty. Defaults to stderr.
	Writer io.Writer
}

// Logger writes leveled records with key/value fields.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	level    Level
	jsonMode bool
	fields   []any

	filePath    string
	maxSize     int64
	currentSize int64
	closer      io.Closer
}

// New creates a Logger.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		level:    opts.Level,
		jsonMode: opts.JSON,
		maxSize:  opts.MaxSize,
		writer:   opts.Writer,
	}
	if l.writer == nil {
		l.writer = os.Stderr
	}

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		// #nosec G304 - log path comes from the user's own configuration
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		if info, err := f.Stat(); err == nil {
			l.currentSize = info.Size()
		}

		l.writer = f
		l.closer = f
		l.filePath = opts.FilePath
	}

	return l, nil
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{writer: io.Discard, level: LevelError + 1}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil
		l.writer = io.Discard
		return err
	}
	return nil
}

// With returns a child logger that adds the given key/value pairs to every
// record. The child shares the parent's output.
func (l *Logger) With(kv ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{
		writer:   &sharedWriter{parent: l},
		level:    l.level,
		jsonMode: l.jsonMode,
		fields:   append(append([]any{}, l.fields...), kv...),
	}
}

// sharedWriter routes a child's output through its parent so rotation and
// locking stay in one place.
type sharedWriter struct {
	parent *Logger
}

func (w *sharedWriter) Write(p []byte) (int, error) {
	w.parent.mu.Lock()
	defer w.parent.mu.Unlock()
	w.parent.write(string(p))
	return len(p), nil
}

func (l *Logger) log(level Level, msg string, kv []any) {
	if l == nil || level < l.level {
		return
	}

	fields := l.fields
	if len(kv) > 0 {
		fields = append(append([]any{}, l.fields...), kv...)
	}
	line := l.format(time.Now(), level, msg, fields)

	if sw, ok := l.writer.(*sharedWriter); ok {
		_, _ = sw.Write([]byte(line))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.write(line)
}

func (l *Logger) format(now time.Time, level Level, msg string, fields []any) string {
	timestamp := now.Format(time.RFC3339)

	if l.jsonMode {
		entry := map[string]any{
			"time":    timestamp,
			"level":   level.String(),
			"message": msg,
		}
		for i := 0; i < len(fields); i += 2 {
			key := fmt.Sprint(fields[i])
			if key == "time" || key == "level" || key == "message" {
				key = "field." + key
			}
			entry[key] = fieldValue(fields, i+1)
		}
		b, err := json.Marshal(entry)
		if err == nil {
			return string(b) + "\n"
		}
		// Fall back to the text form if a field cannot be marshalled.
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", timestamp, level.String(), msg)
	for i := 0; i < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fieldValue(fields, i+1))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func fieldValue(fields []any, i int) any {
	if i >= len(fields) {
		return "(MISSING)"
	}
	switch v := fields[i].(type) {
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

// write must be called with l.mu held.
func (l *Logger) write(line string) {
	if l.maxSize > 0 && l.filePath != "" {
		l.currentSize += int64(len(line))
		if l.currentSize > l.maxSize {
			l.rotate()
			l.currentSize = int64(len(line))
		}
	}

	// Write errors are non-fatal; there is nowhere left to report them.
	_, _ = io.WriteString(l.writer, line)
}

func (l *Logger) rotate() {
	if l.closer != nil {
		_ = l.closer.Close()
	}

	rotatedPath := l.filePath + "." + time.Now().Format("20060102-150405.000000")
	_ = os.Rename(l.filePath, rotatedPath)

	// #nosec G304 - same path the logger was opened with
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.writer = os.Stderr
		l.closer = nil
		l.filePath = ""
		return
	}

	l.writer = f
	l.closer = f
	l.cleanupOldLogs()
}

func (l *Logger) cleanupOldLogs() {
	matches, err := filepath.Glob(l.filePath + ".*")
	if err != nil || len(matches) <= keepRotated {
		return
	}

	// Timestamps sort lexically, so the oldest come first.
	sort.Strings(matches)
	for _, m := range matches[:len(matches)-keepRotated] {
		_ = os.Remove(m)
	}
}

// Debug logs a debug message with optional key/value pairs.
func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }

// Info logs an info message with optional key/value pairs.
func (l *Logger) Info(msg string, kv ...any) { l.log(LevelInfo, msg, kv) }

// Warn logs a warning message with optional key/value pairs.
func (l *Logger) Warn(msg string, kv ...any) { l.log(LevelWarn, msg, kv) }

// Error logs an error message with optional key/value pairs.
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

// Level returns the current log level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel sets the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}
