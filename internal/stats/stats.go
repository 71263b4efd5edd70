package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jt-lab-com/docs/internal/config"
)

// RunStatistics is owned by a single generator run and persisted when it ends.
type RunStatistics struct {
	RunID      string         `json:"runId"`
	Processed  int            `json:"processed"`
	Created    int            `json:"created"`
	Skipped    int            `json:"skipped"`
	Errors     int            `json:"errors"`
	StartTime  int64          `json:"startTime"`
	EndTime    int64          `json:"endTime,omitempty"`
	DurationMs int64          `json:"durationMs"`
	Config     *config.Config `json:"config,omitempty"`
	LogFile    string         `json:"logFile,omitempty"`
	Engine     string         `json:"engine"`
}

func New(runID string, start time.Time) *RunStatistics {
	return &RunStatistics{
		RunID:     runID,
		StartTime: start.UnixMilli(),
	}
}

// Accounted reports whether every processed file landed in exactly one bucket.
func (s *RunStatistics) Accounted() bool {
	return s.Created+s.Skipped+s.Errors == s.Processed
}

// Finish stamps the end time and elapsed duration.
func (s *RunStatistics) Finish(end time.Time) {
	s.EndTime = end.UnixMilli()
	s.DurationMs = s.EndTime - s.StartTime
}

func (s *RunStatistics) Duration() time.Duration {
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Save writes the statistics as indented JSON, replacing any previous summary.
func (s *RunStatistics) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func Load(path string) (*RunStatistics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s RunStatistics
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}
