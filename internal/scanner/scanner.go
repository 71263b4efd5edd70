package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jt-lab-com/docs/pkg/types"
)

// ErrSourceMissing is returned when the source directory does not exist.
var ErrSourceMissing = errors.New("source image directory not found")

type Scanner struct {
	formats  []string
	excludes []string
}

func New(formats, excludePatterns []string) *Scanner {
	return &Scanner{formats: formats, excludes: excludePatterns}
}

// Scan lists the regular files directly inside dir that pass both filters.
// Order follows directory enumeration.
func (s *Scanner) Scan(dir string) ([]types.ImageFile, error) {
	if err := CheckSource(dir); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []types.ImageFile
	for _, d := range dirEntries {
		name := d.Name()
		if !IsSupportedFormat(name, s.formats) || ShouldExclude(name, s.excludes) {
			continue
		}

		// Follows symlinks; dangling links are skipped.
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		files = append(files, types.ImageFile{
			Name:      name,
			Path:      filepath.Join(dir, name),
			Extension: filepath.Ext(name),
			Size:      fi.Size(),
			ModTime:   fi.ModTime(),
		})
	}

	return files, nil
}

// CheckSource returns ErrSourceMissing unless dir exists and is a directory.
func CheckSource(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, dir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, dir)
	}
	return nil
}

// IsSupportedFormat reports whether the extension of name is in formats (case-insensitive).
func IsSupportedFormat(name string, formats []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, f := range formats {
		if strings.ToLower(f) == ext {
			return true
		}
	}
	return false
}

// ShouldExclude reports whether name contains any of patterns (case-insensitive).
func ShouldExclude(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
