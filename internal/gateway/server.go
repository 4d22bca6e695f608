// Package gateway exposes the office over HTTP and a WebSocket event
// stream.
package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/logging"
	"github.com/officedhq/officed/internal/office"
	"github.com/officedhq/officed/internal/roster"
	"github.com/officedhq/officed/internal/store"
	"github.com/officedhq/officed/internal/version"
)

// Server is the officed HTTP + WebSocket gateway.
type Server struct {
	cfg     config.GatewayConfig
	log     *logging.Logger
	office  *office.Office
	roster  *roster.Roster
	threads store.Threads
	plans   store.Plans
	feed    store.Feed
	hub     *Hub

	startedAt  time.Time
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a gateway server and subscribes its event hub to the
// office.
func New(cfg config.GatewayConfig, o *office.Office, ros *roster.Roster, threads store.Threads, plans store.Plans, feed store.Feed, log *logging.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log.Sub("gateway"),
		office:  o,
		roster:  ros,
		threads: threads,
		plans:   plans,
		feed:    feed,
		hub:     NewHub(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	o.Subscribe(s.hub)
	return s
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /api/roster", s.handleRoster)

	mux.HandleFunc("GET /api/threads", s.handleListThreads)
	mux.HandleFunc("POST /api/threads", s.handleCreateThread)
	mux.HandleFunc("GET /api/threads/{id}", s.handleGetThread)
	mux.HandleFunc("PUT /api/threads/{id}", s.handleUpdateThread)

	mux.HandleFunc("POST /api/threads/{id}/workflow", s.handleWorkflow)
	mux.HandleFunc("POST /api/threads/{id}/chat", s.handleChat)
	mux.HandleFunc("POST /api/threads/{id}/plans/{member}/execute", s.handleExecutePlan)

	mux.HandleFunc("GET /api/threads/{id}/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/threads/{id}/alerts", s.handleListAlerts)
	mux.HandleFunc("GET /api/threads/{id}/turns", s.handleListTurns)
	mux.HandleFunc("GET /api/threads/{id}/messages", s.handleListMessages)
	mux.HandleFunc("GET /api/threads/{id}/reports", s.handleListReports)

	return s.withAuth(s.withLogging(mux))
}

// Start begins serving and blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)
	s.startedAt = time.Now()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // long-lived workflow requests and websockets
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("gateway listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// withAuth enforces the bearer token on every route except /health. An
// empty configured token disables auth (validation restricts that to
// loopback binds). WebSocket clients may pass the token as a query
// parameter since browsers cannot set headers on upgrade requests.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Auth.Token == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Auth.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"version": version.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
		"offline": s.office.Offline(),
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	s.hub.attach(conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
