package pipeline

import (
	"github.com/jt-lab-com/docs/internal/stats"
	"github.com/jt-lab-com/docs/pkg/types"
)

type ProgressCallback func(update ProgressUpdate)

// Update types sent to the progress callback.
const (
	UpdateStatus   = "status"
	UpdateProgress = "progress"
	UpdateComplete = "complete"
	UpdateError    = "error"
)

type ProgressUpdate struct {
	Type     string                `json:"type"`
	State    State                 `json:"state,omitempty"`
	Message  string                `json:"message,omitempty"`
	Current  int                   `json:"current,omitempty"`
	Total    int                   `json:"total,omitempty"`
	Filename string                `json:"filename,omitempty"`
	Action   types.ThumbnailAction `json:"action,omitempty"`
	Stats    *stats.RunStatistics  `json:"stats,omitempty"`
	Error    string                `json:"error,omitempty"`
}
