package thumbnail

import (
	"bytes"
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	// imaging registers bmp and tiff itself; webp needs an explicit decoder.
	_ "golang.org/x/image/webp"

	"github.com/jt-lab-com/docs/pkg/types"
)

const ImagingEngineName = "imaging"

// ImagingEngine is the pure Go engine. The standard JPEG encoder only writes
// baseline JPEG, so output is not progressive.
type ImagingEngine struct{}

func NewImagingEngine() *ImagingEngine {
	return &ImagingEngine{}
}

func (e *ImagingEngine) Name() string {
	return ImagingEngineName
}

func (e *ImagingEngine) SelfTest() error {
	data, err := selfTestImage()
	if err != nil {
		return err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	resized := imaging.Resize(img, 1, 1, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func (e *ImagingEngine) Render(src, dst string, opts types.RenderOptions) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	// Fill scales to cover the box and crops the overflow around the center.
	thumb := imaging.Fill(img, opts.Size.Width, opts.Size.Height, imaging.Center, imaging.Lanczos)

	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	err = imaging.Encode(f, thumb, imaging.JPEG, imaging.JPEGQuality(opts.Quality))
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}
