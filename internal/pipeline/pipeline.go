package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/log"
	"github.com/jt-lab-com/docs/internal/planner"
	"github.com/jt-lab-com/docs/internal/scanner"
	"github.com/jt-lab-com/docs/internal/stats"
	"github.com/jt-lab-com/docs/internal/thumbnail"
	"github.com/jt-lab-com/docs/pkg/types"
)

// Generator runs one thumbnail batch over the configured source directory.
type Generator struct {
	cfg              *config.Config
	scanner          *scanner.Scanner
	planner          *planner.Planner
	engine           thumbnail.Engine
	creator          *thumbnail.Creator
	logger           *log.Logger
	progressCallback ProgressCallback

	mu    sync.RWMutex
	state State
}

type Option func(*options)

type options struct {
	engine  thumbnail.Engine
	console io.Writer
}

// WithEngine replaces the engine named in the config.
func WithEngine(e thumbnail.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithConsole redirects console log output, which defaults to stdout.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// New expects a validated config.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	engine := o.engine
	if engine == nil {
		var err error
		engine, err = thumbnail.NewEngine(cfg.Engine)
		if err != nil {
			return nil, err
		}
	}

	logger, err := log.New(log.Options{
		Dir:       cfg.LogsDir,
		Level:     log.ParseLevel(cfg.LogLevel),
		ToFile:    cfg.LogToFile,
		ToConsole: cfg.LogToConsole,
		Console:   o.console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	renderOpts := types.RenderOptions{
		Size:    types.Size{Width: cfg.Width, Height: cfg.Height},
		Quality: cfg.Quality,
	}

	return &Generator{
		cfg:     cfg,
		scanner: scanner.New(cfg.SupportedFormats, cfg.ExcludePatterns),
		planner: planner.New(cfg.ThumbnailsDir),
		engine:  engine,
		creator: thumbnail.NewCreator(engine, renderOpts, logger),
		logger:  logger,
		state:   StateIdle,
	}, nil
}

func (g *Generator) SetProgressCallback(cb ProgressCallback) {
	g.progressCallback = cb
}

func (g *Generator) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// LogFile is the log written by this generator, empty when file logging is off.
func (g *Generator) LogFile() string {
	return g.logger.Path()
}

func (g *Generator) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
	g.logger.Debug("State changed", log.Fields{"state": string(s)})
}

func (g *Generator) emit(update ProgressUpdate) {
	if g.progressCallback == nil {
		return
	}
	update.State = g.State()
	g.progressCallback(update)
}

// Run executes the batch. Per-file failures are counted in the returned
// statistics; only fatal errors are returned.
func (g *Generator) Run() (result *stats.RunStatistics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = g.fail(fmt.Errorf("unexpected panic: %v", r), debug.Stack())
			result = nil
		}
	}()

	start := time.Now()
	st := stats.New(uuid.NewString(), start)
	st.Config = g.cfg
	st.LogFile = g.logger.Path()
	st.Engine = g.engine.Name()

	g.setState(StateInitializing)
	g.logger.Info("Starting thumbnail generation", log.Fields{
		"runId":         st.RunID,
		"sourceDir":     g.cfg.SourceDir,
		"thumbnailsDir": g.cfg.ThumbnailsDir,
		"size":          types.Size{Width: g.cfg.Width, Height: g.cfg.Height}.String(),
		"quality":       g.cfg.Quality,
		"engine":        st.Engine,
	})
	g.emit(ProgressUpdate{Type: UpdateStatus, Message: "Starting thumbnail generation"})

	g.setState(StateVerifyingProcessor)
	if err := thumbnail.Check(g.engine); err != nil {
		return nil, g.fail(err, debug.Stack())
	}
	g.logger.Debug("Image engine is working", log.Fields{"engine": st.Engine})

	g.setState(StateEnsuringOutputDir)
	// The default thumbnails dir lives inside the source dir, so MkdirAll
	// would otherwise create a missing source.
	if err := scanner.CheckSource(g.cfg.SourceDir); err != nil {
		return nil, g.fail(sourceError(err), debug.Stack())
	}
	if err := g.ensureOutputDir(); err != nil {
		return nil, g.fail(err, debug.Stack())
	}

	g.setState(StateScanning)
	g.emit(ProgressUpdate{Type: UpdateStatus, Message: "Scanning " + g.cfg.SourceDir})
	files, err := g.scanner.Scan(g.cfg.SourceDir)
	if err != nil {
		return nil, g.fail(sourceError(err), debug.Stack())
	}

	g.logger.Info("Found "+strconv.Itoa(len(files))+" images to process", log.Fields{"count": len(files)})

	if len(files) == 0 {
		g.logger.Warn("No images found to process", log.Fields{"sourceDir": g.cfg.SourceDir})
		st.Finish(time.Now())
		g.setState(StateDone)
		g.emit(ProgressUpdate{Type: UpdateComplete, Stats: st})
		return st, nil
	}

	g.setState(StateProcessing)
	for i, file := range files {
		st.Processed++
		task := g.planner.Plan(file)

		if g.planner.Exists(task) {
			task.Action = types.ThumbnailActionSkipped
			st.Skipped++
			g.logger.Info("Thumbnail already exists, skipping", log.Fields{
				"source":    file.Name,
				"thumbnail": task.ThumbnailName,
			})
		} else {
			g.logger.Info(fmt.Sprintf("Processing image %d/%d", i+1, len(files)), log.Fields{
				"source":    file.Name,
				"thumbnail": task.ThumbnailName,
			})
			if err := g.creator.Create(&task); err != nil {
				st.Errors++
			} else {
				st.Created++
			}
		}

		g.emit(ProgressUpdate{
			Type:     UpdateProgress,
			Current:  i + 1,
			Total:    len(files),
			Filename: file.Name,
			Action:   task.Action,
			Error:    task.Error,
		})
	}

	g.setState(StateSummarizing)
	st.Finish(time.Now())
	g.logger.Info("Thumbnail generation completed", log.Fields{
		"processed": st.Processed,
		"created":   st.Created,
		"skipped":   st.Skipped,
		"errors":    st.Errors,
		"duration":  fmt.Sprintf("%.2fs", st.Duration().Seconds()),
	})

	if err := st.Save(g.cfg.StatsFile()); err != nil {
		return nil, g.fail(fmt.Errorf("failed to save run statistics: %w", err), debug.Stack())
	}
	g.logger.Debug("Run statistics saved", log.Fields{"path": g.cfg.StatsFile()})

	g.logger.Summary(*st)
	g.setState(StateDone)
	g.emit(ProgressUpdate{Type: UpdateComplete, Stats: st})

	return st, nil
}

func (g *Generator) ensureOutputDir() error {
	dir := g.cfg.ThumbnailsDir
	_, statErr := os.Stat(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbnails directory: %w", err)
	}
	if os.IsNotExist(statErr) {
		g.logger.Info("Created thumbnails directory", log.Fields{"path": dir})
	}
	return nil
}

func sourceError(err error) error {
	if errors.Is(err, scanner.ErrSourceMissing) {
		return &config.ValidationError{Field: "source_dir", Message: err.Error(), Err: err}
	}
	return err
}

func (g *Generator) fail(err error, stack []byte) error {
	g.mu.Lock()
	g.state = StateFailed
	g.mu.Unlock()

	g.logger.Error("Thumbnail generation failed", err, log.Fields{"stack": string(stack)})
	g.emit(ProgressUpdate{Type: UpdateError, Error: err.Error()})
	return err
}

func (g *Generator) Close() error {
	return g.logger.Close()
}
