package thumbnail

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/jt-lab-com/docs/pkg/types"
)

// Engine turns one source image into a cover-cropped JPEG thumbnail.
type Engine interface {
	Name() string
	// SelfTest exercises decode, resize and encode on a tiny embedded image.
	SelfTest() error
	// Render writes the thumbnail for src to dst.
	Render(src, dst string, opts types.RenderOptions) error
}

type engineFactory func() (Engine, error)

var engines = map[string]engineFactory{
	ImagingEngineName: func() (Engine, error) { return NewImagingEngine(), nil },
}

// NewEngine returns the engine registered under name.
func NewEngine(name string) (Engine, error) {
	factory, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown image engine %q (available: %s)", name, strings.Join(Engines(), ", "))
	}
	return factory()
}

// Engines lists the engine names compiled into this binary.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CapabilityError means the image engine itself is not functional.
type CapabilityError struct {
	Engine string
	Err    error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("image engine %s is not working: %v", e.Engine, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Check runs the engine self-test and wraps a failure in a CapabilityError.
func Check(e Engine) error {
	if err := e.SelfTest(); err != nil {
		return &CapabilityError{Engine: e.Name(), Err: err}
	}
	return nil
}

// 1x1 PNG used by the self-tests.
const selfTestPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func selfTestImage() ([]byte, error) {
	return base64.StdEncoding.DecodeString(selfTestPNG)
}
