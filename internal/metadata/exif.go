package metadata

import (
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFInfo holds the EXIF fields worth logging for a thumbnail source.
type EXIFInfo struct {
	Orientation int
	Camera      string
	CaptureTime *time.Time
	// Source names the tag the capture time came from.
	Source string
	Error  string
}

type EXIFExtractor struct{}

func NewEXIFExtractor() *EXIFExtractor {
	return &EXIFExtractor{}
}

func (e *EXIFExtractor) Extract(path string) EXIFInfo {
	f, err := os.Open(path)
	if err != nil {
		return EXIFInfo{Error: err.Error()}
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return EXIFInfo{Error: "no EXIF data: " + err.Error()}
	}

	var info EXIFInfo

	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			info.Orientation = v
		}
	}

	maker := stringTag(x, exif.Make)
	model := stringTag(x, exif.Model)
	switch {
	case maker != "" && model != "" && !strings.HasPrefix(model, maker):
		info.Camera = maker + " " + model
	case model != "":
		info.Camera = model
	default:
		info.Camera = maker
	}

	if t, err := x.DateTime(); err == nil {
		info.CaptureTime = &t
		info.Source = "EXIF:DateTimeOriginal"
		return info
	}

	if s := stringTag(x, exif.DateTimeDigitized); s != "" {
		if t, err := time.ParseInLocation("2006:01:02 15:04:05", s, time.Local); err == nil {
			info.CaptureTime = &t
			info.Source = "EXIF:DateTimeDigitized"
		}
	}

	return info
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
