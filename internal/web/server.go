package web

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jt-lab-com/docs/internal/config"
	"github.com/jt-lab-com/docs/internal/metrics"
	"github.com/jt-lab-com/docs/internal/pipeline"
)

type Server struct {
	router   *mux.Router
	hub      *Hub
	version  string
	cfg      *config.Config
	metrics  *metrics.Recorder
	upgrader websocket.Upgrader

	runWG sync.WaitGroup

	// stateMu guards running, which is set for the whole of a generator run.
	stateMu sync.RWMutex
	running bool
	state   pipeline.State
}

// NewServer serves runs based on cfg, which must already be validated.
func NewServer(cfg *config.Config) *Server {
	s := newServer(cfg)
	go s.hub.Run()
	return s
}

func newServer(cfg *config.Config) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		hub:     NewHub(),
		version: "unknown",
		cfg:     cfg,
		metrics: metrics.NewRecorder(nil),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/run", s.handleRun).Methods("POST")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/ws", s.handleWebSocket)

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	s.router.PathPrefix("/thumbnails/").Handler(
		http.StripPrefix("/thumbnails/", http.FileServer(http.Dir(s.cfg.ThumbnailsDir))))
	s.router.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(s.cfg.SourceDir))))
	s.router.HandleFunc("/", s.handleGallery).Methods("GET")
}

// Wait blocks until a run started through the API has finished.
func (s *Server) Wait() {
	s.runWG.Wait()
}

func (s *Server) Start(addr string) error {
	fmt.Printf("Starting thumbnail dashboard at http://%s\n", addr)
	return http.ListenAndServe(addr, s.router)
}
