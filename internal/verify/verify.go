package verify

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"

	"github.com/jt-lab-com/docs/pkg/types"
)

// ErrOutputMissing means the encoder returned without leaving a file behind.
var ErrOutputMissing = errors.New("thumbnail file was not created")

type Verifier struct {
	checkDimensions bool
}

func New(checkDimensions bool) *Verifier {
	return &Verifier{checkDimensions: checkDimensions}
}

// Verify checks the written thumbnail and returns its size in bytes.
func (v *Verifier) Verify(path string, want types.Size) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: %s", ErrOutputMissing, path)
	}
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("thumbnail is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("thumbnail is empty: %s", path)
	}

	if !v.checkDimensions {
		return info.Size(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("thumbnail is not a readable image: %w", err)
	}
	if format != "jpeg" {
		return 0, fmt.Errorf("thumbnail format mismatch: expected jpeg, got %s", format)
	}
	if cfg.Width != want.Width || cfg.Height != want.Height {
		return 0, fmt.Errorf("dimension mismatch: expected %s, got %dx%d", want, cfg.Width, cfg.Height)
	}

	return info.Size(), nil
}
