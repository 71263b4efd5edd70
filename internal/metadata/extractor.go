package metadata

import (
	"fmt"
	"image"
	"os"

	// Decoders for every supported source format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jt-lab-com/docs/pkg/types"
)

// Extractor reads the header-level metadata of a source image without decoding pixels.
type Extractor struct {
	exif *EXIFExtractor
}

func New() *Extractor {
	return &Extractor{exif: NewEXIFExtractor()}
}

func (e *Extractor) Probe(path string) (types.ImageMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ImageMetadata{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return types.ImageMetadata{}, err
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return types.ImageMetadata{Size: fi.Size()}, fmt.Errorf("unreadable image header: %w", err)
	}

	meta := types.ImageMetadata{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   fi.Size(),
	}

	if format == "jpeg" || format == "tiff" {
		info := e.exif.Extract(path)
		meta.Orientation = info.Orientation
		meta.Camera = info.Camera
		meta.CaptureTime = info.CaptureTime
	}

	return meta, nil
}
