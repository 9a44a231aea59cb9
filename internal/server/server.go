// Package server is the realtime gateway: it accepts websocket clients,
// validates and routes their events into the session directory and pushes
// room and game updates back out through the hub.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/millebornes/internal/cards"
	"github.com/lox/millebornes/internal/protocol"
	"github.com/lox/millebornes/internal/records"
	"github.com/lox/millebornes/internal/session"
)

// Server is the HTTP and websocket front end of the game service.
type Server struct {
	cfg       Config
	logger    zerolog.Logger
	clock     quartz.Clock
	rng       cards.Shuffler
	store     records.Store
	hub       *Hub
	dir       *session.Directory
	validator *protocol.Validator
	upgrader  websocket.Upgrader
	mux       *http.ServeMux

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
	handlers   sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithConfig sets the server configuration
func WithConfig(cfg Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithStore sets the record store. The server closes it on shutdown.
func WithStore(store records.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithClock sets the clock used for envelope and record timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server that shuffles decks with rng. Without WithStore
// game records are kept in memory.
func NewServer(logger zerolog.Logger, rng cards.Shuffler, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    DefaultConfig(),
		logger: logger.With().Str("component", "server").Logger(),
		clock:  quartz.NewReal(),
		rng:    rng,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = records.NewMemoryStore()
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load message schemas: %w", err)
	}
	s.validator = validator

	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	s.hub = NewHub(logger, s.clock)
	s.dir = session.New(logger, s.hub, s.store, s.cfg.Session(),
		session.WithClock(s.clock),
		session.WithShuffler(s.rng),
	)

	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/rooms", s.handleRooms)
	return s, nil
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler { return s.mux }

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed at once if Shutdown already ran.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("Starting WebSocket server")
	return srv.ListenAndServe()
}

// Shutdown stops accepting clients, closes every connection, waits for
// their rooms to be cleaned up and closes the record store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.closed = true
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	s.hub.CloseAll()
	drained := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for connections to drain")
	}

	s.dir.Close()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.logger.Info().Msg("Server stopped")
	return errors.Join(errs...)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(allowed, origin)
}

// handleWebSocket upgrades the request and runs the connection until the
// client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	c := NewConnection(uuid.NewString(), ws, s.logger)
	s.hub.Register(c)

	s.handlers.Add(2)
	go func() {
		defer s.handlers.Done()
		c.writePump()
	}()
	go func() {
		defer s.handlers.Done()
		c.readPump(func(frame []byte) { s.dispatch(c, frame) })
		s.disconnect(c)
	}()
}

// disconnect treats a closed connection as leaving all of its rooms.
func (s *Server) disconnect(c *Connection) {
	if !s.hub.Unregister(c) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.dir.Disconnect(ctx, c.ID()); err != nil {
		s.logger.Error().Err(err).Str("conn_id", c.ID()).Msg("Failed to clean up disconnected client")
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// handleRooms lists live rooms as JSON.
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rooms, err := s.dir.Rooms(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list rooms")
		http.Error(w, "failed to list rooms", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write room list")
	}
}
