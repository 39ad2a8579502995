// Package server provides the HTTP API for the dashboard UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/filmlens/filmlens/pkg/config"
	"github.com/filmlens/filmlens/pkg/memo"
	"github.com/filmlens/filmlens/pkg/pipeline"
)

// Server handles HTTP requests for the dashboard.
type Server struct {
	cfg      config.ServerConfig
	memo     *memo.Memo
	sessions *SessionStore
	broker   *SSEBroker
	mux      *http.ServeMux
}

// NewServer creates a new HTTP server over the given memo backend.
func NewServer(cfg config.ServerConfig, m *memo.Memo) *Server {
	s := &Server{
		cfg:      cfg,
		memo:     m,
		sessions: NewSessionStore(),
		broker:   NewSSEBroker(),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures HTTP handlers.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/session/", s.handleSession)
	s.mux.HandleFunc("/api/events", s.broker.SSEHandler(func(id string) interface{} {
		sess, err := s.sessions.Get(id)
		if err != nil {
			return nil
		}
		return sess.snapshot()
	}))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers for development
	origin := "*"
	if len(s.cfg.CORSOrigins) > 0 {
		origin = s.cfg.CORSOrigins[0]
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleHealth reports liveness and session count.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleUpload receives a dataset and starts cleaning in the background.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxUpload := s.cfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		jsonError(w, "Failed to parse upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	sess := s.sessions.Create(header.Filename, int64(len(data)))
	go s.runCleaning(sess, data)

	jsonResponse(w, map[string]interface{}{
		"session_id": sess.ID,
		"file_name":  sess.FileName,
		"file_size":  sess.FileSize,
		"status":     sess.Status,
	})
}

// runCleaning cleans an upload, consulting the memo first.
func (s *Server) runCleaning(sess *Session, data []byte) {
	sess.mu.Lock()
	sess.Status = StatusRunning
	sess.mu.Unlock()
	s.broker.PublishProgress(sess.ID, "parsing", 0)

	ctx := context.Background()

	if res, ok := s.memo.Get(ctx, data); ok {
		sess.complete(res.Table, res.Summary, true)
		s.broker.PublishComplete(sess.ID, sess.snapshot())
		return
	}

	table, summary, err := pipeline.Prepare(ctx, data, sess.FileName)
	if err != nil {
		sess.fail(err)
		s.broker.PublishError(sess.ID, err)
		return
	}
	s.broker.PublishProgress(sess.ID, "cleaned", table.Len())

	// Best effort: a memo write failure never fails the upload.
	s.memo.Put(ctx, data, &memo.Result{Table: table, Summary: summary})

	sess.complete(table, summary, false)
	s.broker.PublishComplete(sess.ID, sess.snapshot())
}

// Helper functions

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
