package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jt-lab-com/docs/internal/stats"
)

// TestLogger_WritesFormattedLinesToFile checks the file sink and line format.
func TestLogger_WritesFormattedLinesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := New(Options{Dir: dir, Level: LevelInfo, ToFile: true})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Info("hello")
	logger.Info("with data", Fields{"source": "a.png"})
	logger.Error("failed op", errors.New("boom"), Fields{"thumbnail": "a-thumb.png"})

	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	if filepath.Dir(logger.Path()) != dir {
		t.Fatalf("log file outside logs dir: %s", logger.Path())
	}
	if !strings.HasPrefix(filepath.Base(logger.Path()), "thumbnails-") {
		t.Fatalf("unexpected log file name: %s", logger.Path())
	}

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "[INFO] hello\n") {
		t.Fatalf("missing plain info line: %s", text)
	}
	if !strings.Contains(text, `[INFO] with data | {"source":"a.png"}`) {
		t.Fatalf("missing payload line: %s", text)
	}
	if !strings.Contains(text, `[ERROR] failed op | {"error":"boom","thumbnail":"a-thumb.png"}`) {
		t.Fatalf("missing error line: %s", text)
	}
}

// TestLogger_LevelFiltering checks that the minimum severity is honored.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: LevelWarn, ToConsole: true, Console: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Debug("debug-msg")
	logger.Info("info-msg")
	logger.Warn("warn-msg")
	logger.Error("error-msg", nil)

	out := buf.String()
	if strings.Contains(out, "debug-msg") || strings.Contains(out, "info-msg") {
		t.Fatalf("entries below WARN leaked: %s", out)
	}
	if !strings.Contains(out, "[WARN] warn-msg") || !strings.Contains(out, "[ERROR] error-msg") {
		t.Fatalf("missing WARN/ERROR entries: %s", out)
	}
	if logger.Path() != "" {
		t.Fatalf("expected no log file, got %s", logger.Path())
	}
}

// TestLogger_DebugEnabled checks that DEBUG level lets metadata entries through.
func TestLogger_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: ParseLevel("debug"), ToConsole: true, Console: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Debug("metadata", Fields{"width": 200})
	if !strings.Contains(buf.String(), `[DEBUG] metadata | {"width":200}`) {
		t.Fatalf("missing debug entry: %s", buf.String())
	}
	if !logger.Enabled(LevelDebug) {
		t.Fatal("expected debug to be enabled")
	}
}

// TestLogger_ErrorDoesNotMutateCallerFields guards the caller's payload map.
func TestLogger_ErrorDoesNotMutateCallerFields(t *testing.T) {
	logger := Nop()
	fields := Fields{"source": "a.png"}
	logger.Error("failed", errors.New("boom"), fields)

	if _, ok := fields["error"]; ok {
		t.Fatalf("caller fields were modified: %v", fields)
	}
}

// TestFormatLine_Layout pins the timestamp and separator layout.
func TestFormatLine_Layout(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC)

	got := FormatLine(ts, LevelInfo, "msg", nil)
	if got != "[2024-05-06T07:08:09.123Z] [INFO] msg" {
		t.Fatalf("unexpected line: %s", got)
	}

	got = FormatLine(ts, LevelWarn, "msg", Fields{"b": 2, "a": "x"})
	if got != `[2024-05-06T07:08:09.123Z] [WARN] msg | {"a":"x","b":2}` {
		t.Fatalf("unexpected line with payload: %s", got)
	}
}

// TestParseLevel covers accepted spellings and the default.
func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"Warn":    LevelWarn,
		"warning": LevelWarn,
		"ERROR":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

// TestLogger_SummaryWritesToConsole checks the human summary block.
func TestLogger_SummaryWritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: LevelInfo, ToConsole: true, Console: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	logger.Summary(stats.RunStatistics{Processed: 3, Created: 2, Skipped: 1, DurationMs: 2500, LogFile: "/tmp/x.log"})

	out := buf.String()
	if !strings.Contains(out, "Thumbnail Summary") {
		t.Fatalf("missing summary header: %s", out)
	}
	if !strings.Contains(out, "Created:    2") || !strings.Contains(out, "Duration:   2.50s") {
		t.Fatalf("unexpected summary body: %s", out)
	}
}

// TestLogger_CloseWithNilFile checks Close on a console-only logger.
func TestLogger_CloseWithNilFile(t *testing.T) {
	logger := &Logger{}
	if err := logger.Close(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// TestLogger_CloseReportsWriteError checks that a lost log line surfaces on Close.
func TestLogger_CloseReportsWriteError(t *testing.T) {
	logger, err := New(Options{Dir: t.TempDir(), Level: LevelInfo, ToFile: true})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	logger.file.Close()

	logger.Info("first")
	logger.Info("second")

	err = logger.Close()
	if err == nil {
		t.Fatal("expected write error from Close")
	}
	if !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected os.ErrClosed, got %v", err)
	}
}

// TestNew_FailsWhenLogDirIsAFile checks that an unusable logs dir is reported.
func TestNew_FailsWhenLogDirIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}

	if _, err := New(Options{Dir: filepath.Join(blocker, "logs"), ToFile: true}); err == nil {
		t.Fatal("expected logger init error")
	}
}
