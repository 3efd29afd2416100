// Package httpapi exposes the daemon's command surface over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Ariyanaktar101/ar-music-sub000/internal/ipc"
)

const (
	maxBodySize    = 1 << 20
	requestTimeout = 15 * time.Second
)

// Server serves the HTTP control API over an ipc.Handler
type Server struct {
	handler ipc.Handler
	logger  *zap.Logger
	srv     *http.Server
}

// NewServer creates an HTTP API server listening on addr
func NewServer(addr string, handler ipc.Handler, logger *zap.Logger) *Server {
	s := &Server{
		handler: handler,
		logger:  logger.Named("http"),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.query(ipc.CmdStatus))
		r.Get("/lyrics", s.query(ipc.CmdLyrics))
		r.Get("/playlists", s.query(ipc.CmdPlaylists))
		r.With(middleware.AllowContentType("application/json")).Post("/command", s.handleCommand)
	})
	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("HTTP API listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP API stopped", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "armusicd"})
}

// query serves a read-only command as a GET endpoint
func (s *Server) query(cmd ipc.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := s.handler.Dispatch(r.Context(), &ipc.Request{Cmd: cmd})
		if !resp.Success {
			writeError(w, http.StatusInternalServerError, resp.Error)
			return
		}
		writeRaw(w, http.StatusOK, resp.Data)
	}
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req ipc.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	if req.Cmd == "" {
		writeError(w, http.StatusBadRequest, "cmd is required")
		return
	}

	resp := s.handler.Dispatch(r.Context(), &req)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// requestLogger logs each request through zap
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Debug("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, data json.RawMessage) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
