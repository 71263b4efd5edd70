package pipeline

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/scanner"
	"github.com/jt-lab-com/docs/internal/stats"
	"github.com/jt-lab-com/docs/internal/thumbnail"
	"github.com/jt-lab-com/docs/pkg/types"
)

// newTestConfig builds a validated config for a site rooted at root.
func newTestConfig(t *testing.T, root string, o config.Overrides) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig(root)
	cfg.LogToConsole = false
	cfg.Apply(o)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func runGenerator(t *testing.T, cfg *config.Config, opts ...Option) (*stats.RunStatistics, *Generator, error) {
	t.Helper()
	g, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	st, err := g.Run()
	return st, g, err
}

func readLog(t *testing.T, g *Generator) string {
	t.Helper()
	data, err := os.ReadFile(g.LogFile())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

func imageSize(t *testing.T, path string) (int, int, string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height, format
}

type brokenEngine struct{}

func (brokenEngine) Name() string    { return "broken" }
func (brokenEngine) SelfTest() error { return errors.New("codec unavailable") }
func (brokenEngine) Render(string, string, types.RenderOptions) error {
	return errors.New("unreachable")
}

type panicEngine struct{}

func (panicEngine) Name() string    { return "panicky" }
func (panicEngine) SelfTest() error { return nil }
func (panicEngine) Render(string, string, types.RenderOptions) error {
	panic("decoder exploded")
}

// TestGeneratorRun_FiltersAndCreates covers a mixed source directory.
func TestGeneratorRun_FiltersAndCreates(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writePNG(t, filepath.Join(cfg.SourceDir, "a.png"), 200, 100)
	writeFile(t, filepath.Join(cfg.SourceDir, "b.svg"), "<svg/>")
	writeFile(t, filepath.Join(cfg.SourceDir, "notes.txt"), "notes")

	st, g, err := runGenerator(t, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if st.Processed != 1 || st.Created != 1 || st.Skipped != 0 || st.Errors != 0 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if !st.Accounted() {
		t.Fatalf("counters do not add up: %+v", st)
	}
	if g.State() != StateDone {
		t.Fatalf("expected done state, got %s", g.State())
	}

	w, h, format := imageSize(t, filepath.Join(cfg.ThumbnailsDir, "a-thumb.png"))
	if w != 300 || h != 200 || format != "jpeg" {
		t.Fatalf("expected 300x200 jpeg, got %dx%d %s", w, h, format)
	}

	saved, err := stats.Load(cfg.StatsFile())
	if err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if saved.RunID != st.RunID || saved.Created != 1 || saved.EndTime < saved.StartTime {
		t.Fatalf("unexpected saved stats: %+v", saved)
	}

	text := readLog(t, g)
	if !strings.Contains(text, "[INFO] Found 1 images to process") {
		t.Fatalf("missing scan entry: %s", text)
	}
	if !strings.Contains(text, "[INFO] Thumbnail generation completed") {
		t.Fatalf("missing completion entry: %s", text)
	}
	if strings.Contains(text, "[DEBUG]") {
		t.Fatalf("debug entries at info level: %s", text)
	}
}

// TestGeneratorRun_SecondRunSkips checks existing thumbnails are left alone.
func TestGeneratorRun_SecondRunSkips(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writePNG(t, filepath.Join(cfg.SourceDir, "a.png"), 40, 40)
	writePNG(t, filepath.Join(cfg.SourceDir, "b.png"), 40, 40)

	if _, _, err := runGenerator(t, cfg); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	thumbPath := filepath.Join(cfg.ThumbnailsDir, "a-thumb.png")
	before, err := os.Stat(thumbPath)
	if err != nil {
		t.Fatalf("missing thumbnail: %v", err)
	}

	st, g, err := runGenerator(t, cfg)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if st.Created != 0 || st.Skipped != 2 || st.Processed != 2 {
		t.Fatalf("expected all skipped, got %+v", st)
	}
	if !strings.Contains(readLog(t, g), "[INFO] Thumbnail already exists, skipping") {
		t.Fatalf("skip entry should be logged at INFO")
	}

	after, err := os.Stat(thumbPath)
	if err != nil {
		t.Fatalf("thumbnail disappeared: %v", err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatalf("thumbnail was rewritten")
	}
}

// TestGeneratorRun_NoImages checks the empty directory path.
func TestGeneratorRun_NoImages(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writeFile(t, filepath.Join(cfg.SourceDir, "readme.txt"), "nothing here")

	st, g, err := runGenerator(t, cfg)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if st.Processed != 0 || st.Created != 0 || st.Skipped != 0 || st.Errors != 0 {
		t.Fatalf("expected zero counters, got %+v", st)
	}
	if _, err := os.Stat(cfg.StatsFile()); !os.IsNotExist(err) {
		t.Fatalf("stats file should not be written, stat err: %v", err)
	}
	if _, err := os.Stat(cfg.ThumbnailsDir); err != nil {
		t.Fatalf("thumbnails dir should exist: %v", err)
	}
	if !strings.Contains(readLog(t, g), "[WARN] No images found to process") {
		t.Fatalf("missing warning entry")
	}
}

// TestGeneratorRun_MissingSourceIsFatal checks the configuration error path.
func TestGeneratorRun_MissingSourceIsFatal(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})

	st, g, err := runGenerator(t, cfg)
	if err == nil {
		t.Fatal("expected error for missing source dir")
	}
	if st != nil {
		t.Fatalf("expected nil stats, got %+v", st)
	}
	if !errors.Is(err, scanner.ErrSourceMissing) {
		t.Fatalf("expected ErrSourceMissing, got %v", err)
	}
	var verr *config.ValidationError
	if !errors.As(err, &verr) || verr.Field != "source_dir" {
		t.Fatalf("expected source_dir validation error, got %v", err)
	}
	if g.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", g.State())
	}
	if _, err := os.Stat(cfg.SourceDir); !os.IsNotExist(err) {
		t.Fatalf("source dir must not be created, stat err: %v", err)
	}
	if _, err := os.Stat(cfg.ThumbnailsDir); !os.IsNotExist(err) {
		t.Fatalf("thumbnails dir must not be created, stat err: %v", err)
	}
	text := readLog(t, g)
	if !strings.Contains(text, "[ERROR] Thumbnail generation failed") || !strings.Contains(text, `"stack":`) {
		t.Fatalf("missing fatal entry with stack: %s", text)
	}
}

// TestGeneratorRun_CorruptImageContinues checks per-item failures do not abort the batch.
func TestGeneratorRun_CorruptImageContinues(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writeFile(t, filepath.Join(cfg.SourceDir, "broken.jpg"), "definitely not a jpeg")
	writePNG(t, filepath.Join(cfg.SourceDir, "good.png"), 50, 50)

	st, g, err := runGenerator(t, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if st.Processed != 2 || st.Created != 1 || st.Errors != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if _, err := os.Stat(filepath.Join(cfg.ThumbnailsDir, "good-thumb.png")); err != nil {
		t.Fatalf("good thumbnail missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ThumbnailsDir, "broken-thumb.jpg")); !os.IsNotExist(err) {
		t.Fatalf("broken thumbnail should not exist")
	}
	if !strings.Contains(readLog(t, g), `[ERROR] Failed to create thumbnail | {"error":`) {
		t.Fatalf("missing per-item error entry")
	}
}

// TestGeneratorRun_SelfTestFailureStopsEarly checks nothing is scanned or written.
func TestGeneratorRun_SelfTestFailureStopsEarly(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writePNG(t, filepath.Join(cfg.SourceDir, "a.png"), 10, 10)

	_, g, err := runGenerator(t, cfg, WithEngine(brokenEngine{}))
	var capErr *thumbnail.CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected capability error, got %v", err)
	}
	if _, err := os.Stat(cfg.ThumbnailsDir); !os.IsNotExist(err) {
		t.Fatalf("thumbnails dir should not be created")
	}
	if strings.Contains(readLog(t, g), "Found ") {
		t.Fatalf("scan ran after failed self-test")
	}
}

// TestGeneratorRun_RecoversPanic checks a panic becomes a returned error.
func TestGeneratorRun_RecoversPanic(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writePNG(t, filepath.Join(cfg.SourceDir, "a.png"), 10, 10)

	st, g, err := runGenerator(t, cfg, WithEngine(panicEngine{}))
	if err == nil || !strings.Contains(err.Error(), "decoder exploded") {
		t.Fatalf("expected recovered panic error, got %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil stats after panic")
	}
	if g.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", g.State())
	}
}

// TestGeneratorRun_OverridesAndDebug checks flag overrides reach the output and log.
func TestGeneratorRun_OverridesAndDebug(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{Debug: true, Width: 400, Height: 300, Quality: 90})
	writePNG(t, filepath.Join(cfg.SourceDir, "wide.png"), 120, 40)

	_, g, err := runGenerator(t, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	w, h, _ := imageSize(t, filepath.Join(cfg.ThumbnailsDir, "wide-thumb.png"))
	if w != 400 || h != 300 {
		t.Fatalf("expected 400x300, got %dx%d", w, h)
	}

	text := readLog(t, g)
	if !strings.Contains(text, "[DEBUG] Image metadata") {
		t.Fatalf("missing debug metadata entry: %s", text)
	}
	if !strings.Contains(text, `"quality":90`) {
		t.Fatalf("missing quality in start entry: %s", text)
	}
}

// TestGeneratorRun_ProgressUpdates checks the callback sequence.
func TestGeneratorRun_ProgressUpdates(t *testing.T) {
	root := t.TempDir()
	cfg := newTestConfig(t, root, config.Overrides{})
	writePNG(t, filepath.Join(cfg.SourceDir, "a.png"), 20, 20)
	writePNG(t, filepath.Join(cfg.SourceDir, "b.png"), 20, 20)

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}
	defer g.Close()

	var updates []ProgressUpdate
	g.SetProgressCallback(func(u ProgressUpdate) {
		updates = append(updates, u)
	})

	if _, err := g.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var progress int
	for _, u := range updates {
		if u.Type == UpdateProgress {
			progress++
			if u.Total != 2 || u.Action != types.ThumbnailActionCreated {
				t.Fatalf("unexpected progress update: %+v", u)
			}
		}
	}
	if progress != 2 {
		t.Fatalf("expected 2 progress updates, got %d", progress)
	}

	last := updates[len(updates)-1]
	if last.Type != UpdateComplete || last.Stats == nil || last.Stats.Created != 2 || last.State != StateDone {
		t.Fatalf("unexpected final update: %+v", last)
	}
}
