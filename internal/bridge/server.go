package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/powerpack/internal/discovery"
	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/metrics"
	"github.com/muurk/powerpack/internal/routes"
	"github.com/muurk/powerpack/internal/version"
)

// ShellPath is where host shells open their WebSocket
const ShellPath = "/shell"

// changeBuffer is how many host route changes may queue before the
// console reads them.
const changeBuffer = 16

// Config holds the bridge configuration
type Config struct {
	Addr      string // Listen address, e.g. "127.0.0.1:7419"
	Advertise bool   // Announce the bridge over mDNS
	Instance  string // Platform instance name, advertised in TXT records
	BaseURL   string // Platform base URL, advertised in TXT records

	// CheckOrigin vets WebSocket upgrades. Nil allows same-host origins only.
	CheckOrigin func(r *http.Request) bool
}

// Server connects host shells to the console. It implements console.Host.
type Server struct {
	config   Config
	router   chi.Router
	upgrader websocket.Upgrader
	changes  chan routes.Change

	mu    sync.RWMutex
	hosts map[string]*hostConn
	ready bool
	path  string

	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// New creates a bridge. Nothing listens until Start.
func New(config Config) *Server {
	s := &Server{
		config:  config,
		changes: make(chan routes.Change, changeBuffer),
		hosts:   make(map[string]*hostConn),
		path:    routes.PathHome,
		done:    make(chan struct{}),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     config.CheckOrigin,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(ShellPath, s.handleShell)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r

	return s
}

// Handler returns the bridge's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Changes delivers route changes requested by host shells
func (s *Server) Changes() <-chan routes.Change {
	return s.changes
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Bridge listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("advertise", s.config.Advertise),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Bridge server stopped", zap.Error(err))
		}
	}()

	if s.config.Advertise {
		if err := s.advertise(); err != nil {
			// Host shells can still connect by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	return nil
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// advertise registers the bridge as an mDNS service
func (s *Server) advertise() error {
	_, portStr, err := net.SplitHostPort(s.Addr())
	if err != nil {
		return fmt.Errorf("invalid bridge address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid bridge port: %w", err)
	}

	name := "powerpack"
	if s.config.Instance != "" {
		name += "-" + s.config.Instance
	}
	name += "-" + portStr

	txt := discovery.TXTRecords(map[string]string{
		"instance": s.config.Instance,
		"base_url": s.config.BaseURL,
		"version":  version.Version,
		"path":     ShellPath,
	})

	server, err := zeroconf.Register(name, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	s.mdns = server

	logging.Info("Bridge advertised",
		zap.String("name", name),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// Shutdown stops advertising, closes every host connection and stops the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	s.mu.Lock()
	for _, h := range s.hosts {
		h.close()
	}
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		logging.Info("Bridge stopped")
	case <-ctx.Done():
		logging.Warn("Bridge shutdown timeout, some connections may not have closed cleanly")
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// HostCount returns the number of connected host shells
func (s *Server) HostCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hosts)
}

// Ready tells every host shell the console finished booting. Hosts that
// connect later are told on connect.
func (s *Server) Ready() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	s.broadcast(Message{Type: TypeReady})
}

// Navigated tells every host shell the operator moved to path
func (s *Server) Navigated(path string) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	s.broadcast(Message{Type: TypeNavigate, Path: path})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"booting"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
