//go:build vips

package thumbnail

import (
	"fmt"
	"os"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/jt-lab-com/docs/pkg/types"
)

const VipsEngineName = "libvips"

var vipsStartup sync.Once

func init() {
	engines[VipsEngineName] = func() (Engine, error) { return NewVipsEngine(), nil }
}

// VipsEngine renders through libvips and writes progressive JPEG.
type VipsEngine struct{}

func NewVipsEngine() *VipsEngine {
	vipsStartup.Do(func() {
		vips.LoggingSettings(func(string, vips.LogLevel, string) {}, vips.LogLevelError)
		vips.Startup(&vips.Config{
			ConcurrencyLevel: 1,
			MaxCacheMem:      50 * 1024 * 1024,
			MaxCacheSize:     100,
		})
	})
	return &VipsEngine{}
}

func (e *VipsEngine) Name() string {
	return VipsEngineName
}

func (e *VipsEngine) SelfTest() error {
	data, err := selfTestImage()
	if err != nil {
		return err
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	defer ref.Close()

	if err := ref.Thumbnail(1, 1, vips.InterestingNone); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if _, _, err := ref.ExportJpeg(vips.NewJpegExportParams()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func (e *VipsEngine) Render(src, dst string, opts types.RenderOptions) error {
	ref, err := vips.LoadImageFromFile(src, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return fmt.Errorf("vips rotate failed: %w", err)
	}
	// Centre crop after scaling to cover the box.
	if err := ref.Thumbnail(opts.Size.Width, opts.Size.Height, vips.InterestingCentre); err != nil {
		return fmt.Errorf("vips resize failed: %w", err)
	}

	data, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        opts.Quality,
		Interlace:      true,
		OptimizeCoding: true,
		StripMetadata:  true,
	})
	if err != nil {
		return fmt.Errorf("vips export failed: %w", err)
	}

	return os.WriteFile(dst, data, 0644)
}
