// Package rpcserver exposes the onboard-status RPCs named in spec.md §6
// (TTSStatus, AIStatus, AvatarFace, ModeStatus, Config) as JSON over HTTP,
// alongside the Prometheus /metrics endpoint, grounded on the teacher's
// internal/gateway/http_server.go: a single http.ServeMux, a
// promhttp.Handler mount, and a graceful net.Listen/Serve/Shutdown pair
// rather than the bare http.ListenAndServe shorthand.
package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/windlgrass/om1agent/internal/providers"
	"github.com/windlgrass/om1agent/internal/wire"
)

// StatusFunc reports the runtime tick loop's health, matching
// runtime.Runtime.Status.
type StatusFunc func() (running bool, lastTick time.Time, lastErr string)

// Server serves onboard-status RPCs and Prometheus metrics over HTTP.
type Server struct {
	logger     *slog.Logger
	tts        *providers.TTSProvider
	avatarFace *providers.AvatarFaceProvider
	status     StatusFunc
	config     wire.ConfigPayload
	modes      wire.ModeStatusPayload

	httpServer *http.Server
	listener   net.Listener
}

// New builds a Server. config and modes are fixed at construction time —
// this process serves one configuration for its lifetime, so Config and
// ModeStatus report a static snapshot rather than a live switch.
func New(logger *slog.Logger, tts *providers.TTSProvider, avatarFace *providers.AvatarFaceProvider, status StatusFunc, config wire.ConfigPayload, modes wire.ModeStatusPayload) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		tts:        tts,
		avatarFace: avatarFace,
		status:     status,
		config:     config,
		modes:      modes,
	}
}

// Start binds addr and begins serving in a background goroutine. Empty
// addr disables the server entirely, matching the teacher's
// config.Server.HTTPPort == 0 guard.
func (s *Server) Start(addr string) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status/tts", s.handleTTSStatus)
	mux.HandleFunc("/status/ai", s.handleAIStatus)
	mux.HandleFunc("/status/avatar", s.handleAvatarFace)
	mux.HandleFunc("/status/mode", s.handleModeStatus)
	mux.HandleFunc("/status/config", s.handleConfig)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcserver: listen %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("rpcserver: serve error", "error", err)
		}
	}()

	s.logger.Info("rpcserver: listening", "addr", addr)
	return nil
}

// Stop gracefully shuts down the HTTP server, if one was started.
func (s *Server) Stop(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("rpcserver: shutdown error", "error", err)
	}
}

func (s *Server) handleTTSStatus(w http.ResponseWriter, r *http.Request) {
	pending, _ := s.tts.Peek()
	resp := wire.NewEnvelope(requestID(r), wire.CodeOK, wire.TTSStatusPayload{
		Speaking:    s.tts.Len() > 0,
		PendingText: pending,
	})
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleAIStatus(w http.ResponseWriter, r *http.Request) {
	running, lastTick, lastErr := s.status()
	resp := wire.NewEnvelope(requestID(r), wire.CodeOK, wire.AIStatusPayload{
		Running:          running,
		LastTickUnixNano: lastTick.UnixNano(),
		LastError:        lastErr,
	})
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleAvatarFace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req wire.AvatarFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		resp := wire.NewEnvelope(requestID(r), wire.CodeError, wire.AvatarFacePayload{})
		writeJSON(w, s.logger, http.StatusBadRequest, resp)
		return
	}
	s.avatarFace.Enqueue(providers.AvatarExpression{Emotion: req.Emotion, Viseme: req.Viseme})
	resp := wire.NewEnvelope(req.RequestID, wire.CodeOK, wire.AvatarFacePayload{Applied: true})
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleModeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req wire.ModeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RequestedMode != "" && req.RequestedMode != s.modes.ActiveMode {
			resp := wire.NewEnvelope(req.RequestID, wire.CodeError, s.modes)
			writeJSON(w, s.logger, http.StatusConflict, resp)
			return
		}
	}
	resp := wire.NewEnvelope(requestID(r), wire.CodeOK, s.modes)
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	resp := wire.NewEnvelope(requestID(r), wire.CodeOK, s.config)
	writeJSON(w, s.logger, http.StatusOK, resp)
}

// requestID returns the caller-supplied X-Request-Id header, or a fresh
// uuid when absent.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("rpcserver: response write failed", "error", err)
	}
}
