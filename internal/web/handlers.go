package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/pipeline"
	"github.com/jt-lab-com/docs/internal/planner"
	"github.com/jt-lab-com/docs/internal/preview"
	"github.com/jt-lab-com/docs/internal/scanner"
	"github.com/jt-lab-com/docs/internal/stats"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIErrorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIErrorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusBadRequest, ValidationError{Field: field, Message: message})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

type StatusResponse struct {
	Running bool           `json:"running"`
	State   pipeline.State `json:"state"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.stateMu.RLock()
	running, state := s.running, s.state
	s.stateMu.RUnlock()
	if state == "" {
		state = pipeline.StateIdle
	}

	writeJSON(w, http.StatusOK, StatusResponse{Running: running, State: state})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := stats.Load(s.cfg.StatsFile())
	if errors.Is(err, os.ErrNotExist) {
		writeAPIError(w, http.StatusNotFound, "no completed run yet")
		return
	}
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleRun starts a generator run with the request's overrides applied on
// top of the server config. An empty body runs with the defaults.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.beginRun() {
		writeAPIError(w, http.StatusConflict, "thumbnail generation already running")
		return
	}

	var overrides config.Overrides
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		s.endRun()
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.cfg.Clone()
	cfg.Apply(overrides)
	if err := cfg.Validate(); err != nil {
		s.endRun()
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.runWG.Add(1)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})

	go s.run(cfg)
}

func (s *Server) run(cfg *config.Config) {
	defer s.runWG.Done()
	defer s.endRun()
	defer func() {
		if r := recover(); r != nil {
			s.report(pipeline.ProgressUpdate{
				Type:  pipeline.UpdateError,
				State: pipeline.StateFailed,
				Error: fmt.Sprintf("internal server error: %v", r),
			})
		}
	}()

	g, err := pipeline.New(cfg)
	if err != nil {
		s.report(pipeline.ProgressUpdate{Type: pipeline.UpdateError, State: pipeline.StateFailed, Error: err.Error()})
		return
	}
	defer g.Close()

	g.SetProgressCallback(s.report)

	// Fatal errors reach the dashboard through the callback.
	g.Run()
}

// beginRun claims the single run slot.
func (s *Server) beginRun() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Server) endRun() {
	s.stateMu.Lock()
	s.running = false
	s.stateMu.Unlock()
}

// report is the progress callback for API runs.
func (s *Server) report(update pipeline.ProgressUpdate) {
	if update.State != "" {
		s.stateMu.Lock()
		s.state = update.State
		s.stateMu.Unlock()
	}
	s.metrics.Record(update)
	s.broadcastProgress(update)
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.hub.broadcast <- data
}

func (s *Server) broadcastProgress(update pipeline.ProgressUpdate) {
	s.broadcastJSON(update)
}

type galleryItem struct {
	Name      string
	Image     string
	Thumbnail string
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Thumbnails</title>
<style>
.gallery { display: flex; flex-wrap: wrap; gap: 12px; }
.gallery img { display: block; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Thumbnails</h1>
{{if .}}<div class="gallery">{{range .}}
<a href="{{.Image}}" target="_blank"><img src="{{.Thumbnail}}" alt="{{.Name}}"></a>{{end}}
</div>{{else}}<p>No thumbnails yet.</p>{{end}}
</body>
</html>
`))

// galleryURL escapes name the same way for page links and ?preview= lookups.
func galleryURL(prefix, name string) string {
	return (&url.URL{Path: prefix + name}).String()
}

// handleGallery lists every source image that has a thumbnail. Each link
// opens in the preview modal; ?preview=<name> renders the page with that
// image already open.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	files, err := scanner.New(s.cfg.SupportedFormats, s.cfg.ExcludePatterns).Scan(s.cfg.SourceDir)
	if err != nil && !errors.Is(err, scanner.ErrSourceMissing) {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p := planner.New(s.cfg.ThumbnailsDir)
	var items []galleryItem
	for _, f := range files {
		task := p.Plan(f)
		if !p.Exists(task) {
			continue
		}
		items = append(items, galleryItem{
			Name:      f.Name,
			Image:     galleryURL("/images/", f.Name),
			Thumbnail: galleryURL("/thumbnails/", task.ThumbnailName),
		})
	}

	var buf bytes.Buffer
	if err := galleryTemplate.Execute(&buf, items); err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	page, err := preview.Parse(&buf)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if name := r.URL.Query().Get("preview"); name != "" {
		if link := page.Anchor(galleryURL("/images/", name)); link != nil {
			page.Click(link)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page.Render(w)
}
