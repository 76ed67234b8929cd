// Package api exposes discovery and the catalog over HTTP
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/pbaille/toolscout/internal/domain"
	"github.com/pbaille/toolscout/internal/pipeline"
	"github.com/pbaille/toolscout/internal/store"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Discoverer is the part of the pipeline the server drives
type Discoverer interface {
	Discover(ctx context.Context, sources []domain.Source) (*pipeline.Result, error)
	Inspect(ctx context.Context, sources []domain.Source) (*pipeline.Inspection, error)
	Status() pipeline.Status
}

// Server handles HTTP requests for the discovery API
type Server struct {
	pipeline Discoverer
	catalog  store.Catalog
	addr     string
	logger   *zap.Logger
}

// New creates a new API server. A nil catalog serves the starter tools.
func New(p Discoverer, catalog store.Catalog, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{pipeline: p, catalog: catalog, addr: addr, logger: logger}
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Discovery
	mux.HandleFunc("POST /discover", s.discover)
	mux.HandleFunc("GET /discover/status", s.status)

	// Catalog
	mux.HandleFunc("GET /tools", s.listTools)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server and shuts it down when ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DiscoverRequest is the request body for a discovery run
type DiscoverRequest struct {
	Sources []string `json:"sources,omitempty"`
	Debug   bool     `json:"debug,omitempty"`
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sources := make([]domain.Source, 0, len(req.Sources))
	for _, name := range req.Sources {
		src, ok := domain.ParseSource(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown source: "+name)
			return
		}
		sources = append(sources, src)
	}

	if req.Debug {
		insp, err := s.pipeline.Inspect(r.Context(), sources)
		if err != nil {
			s.failDiscover(w, err)
			return
		}
		writeJSON(w, http.StatusOK, insp)
		return
	}

	result, err := s.pipeline.Discover(r.Context(), sources)
	if err != nil {
		s.failDiscover(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) failDiscover(w http.ResponseWriter, err error) {
	if eris.Is(err, pipeline.ErrUnknownSource) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("discover failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Failed to discover tools",
		"details": err.Error(),
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Category:   domain.Category(q.Get("category")),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
	}

	tools := store.FilterTools(store.StarterTools(), filter)
	if s.catalog != nil {
		listed, err := s.catalog.List(r.Context(), filter)
		if err != nil {
			s.logger.Error("list tools failed, serving starter set", zap.Error(err))
		} else {
			tools = listed
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
		"total": len(tools),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
