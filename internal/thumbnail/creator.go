package thumbnail

import (
	"errors"
	"fmt"
	"os"

	"github.com/jt-lab-com/docs/internal/log"
	"github.com/jt-lab-com/docs/internal/metadata"
	"github.com/jt-lab-com/docs/internal/verify"
	"github.com/jt-lab-com/docs/pkg/types"
)

// Creator renders one thumbnail at a time through an Engine.
type Creator struct {
	engine   Engine
	opts     types.RenderOptions
	meta     *metadata.Extractor
	verifier *verify.Verifier
	logger   *log.Logger
}

func NewCreator(engine Engine, opts types.RenderOptions, logger *log.Logger) *Creator {
	if logger == nil {
		logger = log.Nop()
	}
	return &Creator{
		engine:   engine,
		opts:     opts,
		meta:     metadata.New(),
		verifier: verify.New(true),
		logger:   logger,
	}
}

func (c *Creator) Engine() Engine {
	return c.engine
}

// Create writes the thumbnail for task and records the outcome on it.
// The returned error is per-item; callers decide whether to continue.
func (c *Creator) Create(task *types.ThumbnailTask) error {
	c.logger.Debug("Creating thumbnail", log.Fields{
		"source":        task.Source.Name,
		"thumbnail":     task.ThumbnailName,
		"sourcePath":    task.Source.Path,
		"thumbnailPath": task.ThumbnailPath,
	})

	meta, thumbSize, err := c.create(task)
	if err != nil {
		task.Action = types.ThumbnailActionFailed
		task.Error = err.Error()
		c.logger.Error("Failed to create thumbnail", err, log.Fields{
			"source":    task.Source.Name,
			"thumbnail": task.ThumbnailName,
		})
		return err
	}

	task.Action = types.ThumbnailActionCreated
	c.logger.Info("Thumbnail created", log.Fields{
		"source":              task.Source.Name,
		"thumbnail":           task.ThumbnailName,
		"originalSize":        meta.Size,
		"thumbnailSize":       thumbSize,
		"compressionRatio":    compressionRatio(meta.Size, thumbSize),
		"originalDimensions":  meta.Dimensions(),
		"thumbnailDimensions": c.opts.Size.String(),
	})
	return nil
}

func (c *Creator) create(task *types.ThumbnailTask) (types.ImageMetadata, int64, error) {
	meta, err := c.meta.Probe(task.Source.Path)
	if err != nil {
		return meta, 0, err
	}

	if c.logger.Enabled(log.LevelDebug) {
		fields := log.Fields{
			"source": task.Source.Name,
			"width":  meta.Width,
			"height": meta.Height,
			"format": meta.Format,
			"size":   meta.Size,
		}
		if meta.Orientation != 0 {
			fields["orientation"] = meta.Orientation
		}
		if meta.Camera != "" {
			fields["camera"] = meta.Camera
		}
		c.logger.Debug("Image metadata", fields)
	}

	partPath := task.ThumbnailPath + ".part"

	if err := c.atomicRender(task.Source.Path, partPath, task.ThumbnailPath); err != nil {
		os.Remove(partPath)
		return meta, 0, err
	}

	size, err := c.verifier.Verify(task.ThumbnailPath, c.opts.Size)
	if err != nil {
		if !errors.Is(err, verify.ErrOutputMissing) {
			os.Remove(task.ThumbnailPath)
		}
		return meta, 0, err
	}

	return meta, size, nil
}

func (c *Creator) atomicRender(src, partDest, finalDest string) error {
	if err := c.engine.Render(src, partDest, c.opts); err != nil {
		return err
	}
	if _, err := os.Stat(partDest); err != nil {
		return fmt.Errorf("%w: %s", verify.ErrOutputMissing, finalDest)
	}
	return os.Rename(partDest, finalDest)
}

func compressionRatio(original, thumb int64) string {
	if original <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(original-thumb)/float64(original)*100)
}
