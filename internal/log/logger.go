package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jt-lab-com/docs/internal/stats"
)

type Level int

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
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel maps a config value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Fields is the optional structured payload of an entry.
type Fields map[string]any

type Options struct {
	Dir       string
	Level     Level
	ToFile    bool
	ToConsole bool
	// Console defaults to os.Stdout.
	Console io.Writer
}

type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	path    string
	level   Level
	styles  map[Level]lipgloss.Style
	now     func() time.Time

	// first failed file write, reported by Close
	writeErr error
}

// New creates the log directory and opens a timestamped log file for this run.
func New(opts Options) (*Logger, error) {
	l := &Logger{
		level: opts.Level,
		now:   time.Now,
	}

	if opts.ToConsole {
		l.console = opts.Console
		if l.console == nil {
			l.console = os.Stdout
		}
		l.styles = severityStyles(lipgloss.NewRenderer(l.console))
	}

	if opts.ToFile {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, err
		}

		l.path = filepath.Join(opts.Dir, "thumbnails-"+fileTimestamp(l.now())+".log")
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		l.file = file
	}

	return l, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{level: LevelError + 1, now: time.Now}
}

// Close closes the log file. It reports the first failed write, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return l.writeErr
	}
	closeErr := l.file.Close()
	if l.writeErr != nil {
		return fmt.Errorf("failed to write log file %s: %w", l.path, l.writeErr)
	}
	return closeErr
}

// Path is the log file of this run, empty when file logging is off.
func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(LevelDebug, msg, merge(fields))
}

func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(LevelInfo, msg, merge(fields))
}

func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(LevelWarn, msg, merge(fields))
}

// Error always reaches the sinks; err is added to the payload under "error".
func (l *Logger) Error(msg string, err error, fields ...Fields) {
	var payload Fields
	if err != nil || len(fields) > 0 {
		payload = Fields{}
		for _, f := range fields {
			for k, v := range f {
				payload[k] = v
			}
		}
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	l.write(LevelError, msg, payload)
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	if !l.Enabled(level) {
		return
	}
	l.write(level, msg, fields)
}

func (l *Logger) write(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := FormatLine(l.now(), level, msg, fields)

	if l.console != nil {
		style, ok := l.styles[level]
		if ok {
			fmt.Fprintln(l.console, style.Render(line))
		} else {
			fmt.Fprintln(l.console, line)
		}
	}

	if l.file != nil {
		if _, err := l.file.WriteString(line + "\n"); err != nil && l.writeErr == nil {
			l.writeErr = err
		}
	}
}

// FormatLine renders "[<ISO-8601>] [<LEVEL>] <message> | <json>".
func FormatLine(ts time.Time, level Level, msg string, fields Fields) string {
	line := fmt.Sprintf("[%s] [%s] %s", isoTimestamp(ts), level, msg)
	if len(fields) == 0 {
		return line
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return line + " | " + fmt.Sprintf("%v", map[string]any(fields))
	}
	return line + " | " + string(data)
}

// Summary prints a human-readable run summary to the console.
func (l *Logger) Summary(s stats.RunStatistics) {
	if l.console == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, "\n=== Thumbnail Summary ===")
	fmt.Fprintf(l.console, "Processed:  %d\n", s.Processed)
	fmt.Fprintf(l.console, "Created:    %d\n", s.Created)
	fmt.Fprintf(l.console, "Skipped:    %d\n", s.Skipped)
	fmt.Fprintf(l.console, "Errors:     %d\n", s.Errors)
	fmt.Fprintf(l.console, "Duration:   %.2fs\n", s.Duration().Seconds())
	if s.LogFile != "" {
		fmt.Fprintf(l.console, "Log file:   %s\n", s.LogFile)
	}
	fmt.Fprintln(l.console, "=========================")
}

func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func fileTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15-04-05")
}

func merge(fields []Fields) Fields {
	switch len(fields) {
	case 0:
		return nil
	case 1:
		return fields[0]
	}
	out := Fields{}
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
