package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/protocol"
	"github.com/lox/blackjack/internal/randutil"
)

// Server is the websocket front end. It owns the room registry and routes
// outbound messages to connections by id.
type Server struct {
	cfg      Config
	clock    quartz.Clock
	rngs     *randutil.Source
	shoes    ShoeFactory
	logger   *log.Logger
	upgrader websocket.Upgrader

	registry *Registry
	service  *Service
	router   *mux.Router

	mu          sync.RWMutex
	connections map[string]*Connection
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock driving dealer pacing and room expiry.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithRNG sets the source for shuffles and room codes.
func WithRNG(src *randutil.Source) Option {
	return func(s *Server) { s.rngs = src }
}

// WithShoes overrides shoe construction for every room.
func WithShoes(f ShoeFactory) Option {
	return func(s *Server) { s.shoes = f }
}

// NewServer creates a server for cfg.
func NewServer(cfg Config, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		clock:  quartz.NewReal(),
		shoes:  DefaultShoeFactory,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		connections: make(map[string]*Connection),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rngs == nil {
		s.rngs = randutil.NewSource(time.Now().UnixNano())
	}

	s.registry = NewRegistry(cfg.Rules, s, logger,
		WithRegistryClock(s.clock),
		WithRandSource(s.rngs),
		WithShoeFactory(s.shoes),
		WithIdleTimeout(cfg.Rooms.IdleTimeout),
	)
	s.service = NewService(s.registry, s, logger)

	s.router = mux.NewRouter()
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/rooms", s.handleRooms).Methods(http.MethodGet)
	s.router.HandleFunc("/rooms/{code}", s.handleRoom).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry exposes the room registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = hs
	s.mu.Unlock()

	s.logger.Info("Starting blackjack server", "addr", ln.Addr().String())
	return hs.Serve(ln)
}

// RunSweeper expires idle rooms until ctx is done.
func (s *Server) RunSweeper(ctx context.Context) error {
	return s.registry.Run(ctx, s.cfg.Rooms.SweepInterval)
}

// Shutdown stops accepting connections, closes open ones and stops every
// room's dealer sequence.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	hs := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if hs != nil {
		err = hs.Shutdown(ctx)
	}
	for _, c := range conns {
		_ = c.Close()
	}
	s.registry.Close()
	s.logger.Info("Server stopped")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Send implements Broadcaster. Messages to unknown connections are dropped.
func (s *Server) Send(connID string, msg *protocol.Message) {
	s.mu.RLock()
	c, ok := s.connections[connID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.SendMessage(msg); err != nil {
		s.logger.Debug("Failed to send message", "conn", connID, "type", msg.Type, "error", err)
	}
}

// ConnectionCount returns the number of open websocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(uuid.NewString(), ws, s.service, s.logger)
	s.mu.Lock()
	s.connections[conn.ID()] = conn
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "conn", conn.ID(), "total", total)

	conn.Start()
	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn.ID())
		total := len(s.connections)
		s.mu.Unlock()
		s.service.Disconnect(conn.ID())
		s.logger.Info("Client disconnected", "conn", conn.ID(), "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	t, err := s.registry.Get(mux.Vars(r)["code"])
	if err != nil {
		code, text := errorReply(err)
		writeJSON(w, http.StatusNotFound, protocol.Error{Code: code, Message: text})
		return
	}
	writeJSON(w, http.StatusOK, t.View(""))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
