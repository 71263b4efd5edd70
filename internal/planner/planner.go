package planner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jt-lab-com/docs/pkg/types"
)

const thumbSuffix = "-thumb"

type Planner struct {
	thumbnailsDir string
}

func New(thumbnailsDir string) *Planner {
	return &Planner{thumbnailsDir: thumbnailsDir}
}

// ThumbnailName derives "<basename>-thumb<ext>", keeping the extension as written.
func ThumbnailName(filename string) string {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + thumbSuffix + ext
}

func (p *Planner) Plan(file types.ImageFile) types.ThumbnailTask {
	name := ThumbnailName(file.Name)
	return types.ThumbnailTask{
		Source:        file,
		ThumbnailName: name,
		ThumbnailPath: filepath.Join(p.thumbnailsDir, name),
		Action:        types.ThumbnailActionPending,
	}
}

// Exists reports whether the task's thumbnail is already on disk.
func (p *Planner) Exists(task types.ThumbnailTask) bool {
	_, err := os.Stat(task.ThumbnailPath)
	return err == nil
}
