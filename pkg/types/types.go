// Package types defines core data structures shared by the thumbnail tooling.
package types

import (
	"time"
)

// ImageFile represents a source image found by the scanner.
type ImageFile struct {
	// Name is the base filename (e.g., "chart.png").
	Name string
	// Path is the full path to the source file.
	Path string
	// Extension is the file extension as it appears in Name, including the dot.
	Extension string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the file modification time.
	ModTime time.Time
}

// ImageMetadata describes a source image before it is processed.
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
	// Orientation is the EXIF orientation tag (1-8), 0 when absent.
	Orientation int    `json:"orientation,omitempty"`
	Camera      string `json:"camera,omitempty"`
	// CaptureTime is nil when the image carries no EXIF date.
	CaptureTime *time.Time `json:"captureTime,omitempty"`
}

// Dimensions formats width and height as "WxH".
func (m ImageMetadata) Dimensions() string {
	return formatDimensions(m.Width, m.Height)
}

// ThumbnailTask represents a planned thumbnail for one source image.
type ThumbnailTask struct {
	// Source is the scanned source image.
	Source ImageFile
	// ThumbnailName is the derived "<base>-thumb<ext>" filename.
	ThumbnailName string
	// ThumbnailPath is the full target path inside the thumbnails directory.
	ThumbnailPath string
	// Action records what happened to the task.
	Action ThumbnailAction
	// Error contains the error message if the task failed.
	Error string
}

// ThumbnailAction represents the outcome for a source image.
type ThumbnailAction string

const (
	ThumbnailActionPending ThumbnailAction = "pending"
	ThumbnailActionCreated ThumbnailAction = "created"
	ThumbnailActionSkipped ThumbnailAction = "skipped"
	ThumbnailActionFailed  ThumbnailAction = "failed"
)

// Size is a target box in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return formatDimensions(s.Width, s.Height)
}

// RenderOptions controls how a thumbnail is produced.
type RenderOptions struct {
	Size    Size
	Quality int
}
