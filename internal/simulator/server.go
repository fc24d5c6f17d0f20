package simulator

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/wave/internal/discovery"
	"github.com/muurk/wave/internal/logging"
	"github.com/muurk/wave/internal/painter"
)

const (
	// DefaultPort is the port wave-sim listens on
	DefaultPort = 8080

	// DefaultShutdownTimeout bounds graceful shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// maxBodySize bounds a POSTed params document
	maxBodySize = 1 << 20
)

// Config holds the simulator configuration
type Config struct {
	Host string
	Port int // 0 picks a free port

	// Path of the params resource (default "/api")
	Path string

	// Initial params (default painter.Defaults())
	Initial *painter.Params

	// Advertise registers the simulator over mDNS
	Advertise bool

	// Instance is the mDNS instance name (default "wave-sim")
	Instance string

	// CertPath and KeyPath serve HTTPS when both are set
	CertPath string
	KeyPath  string

	ShutdownTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Path == "" {
		out.Path = discovery.DefaultPath
	}
	if !strings.HasPrefix(out.Path, "/") {
		out.Path = "/" + out.Path
	}
	if out.Instance == "" {
		out.Instance = "wave-sim"
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = DefaultShutdownTimeout
	}
	return out
}

// Server is a simulated painter
type Server struct {
	config Config
	id     string
	store  *Store
	hub    *hub

	upgrader websocket.Upgrader

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	adv        *discovery.Advertisement
}

// New creates a Server. Nothing listens until Start.
func New(config *Config) *Server {
	cfg := config.withDefaults()

	initial := painter.Defaults()
	if cfg.Initial != nil {
		initial = cfg.Initial.Clone()
	}

	return &Server{
		config: cfg,
		id:     uuid.NewString(),
		store:  NewStore(initial),
		hub:    newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ID returns the instance id advertised in the TXT record
func (s *Server) ID() string {
	return s.id
}

// Store exposes the simulated painter state
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the HTTP handler serving the params resource and its
// websocket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleParams)
	mux.HandleFunc(strings.TrimSuffix(s.config.Path, "/")+"/ws", s.handleWatch)
	return withRequestLogging(mux)
}

// Listen binds the listener without serving. Start calls it when needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.config.CertPath != "" && s.config.KeyPath != "" {
		tlsConfig, err := NewTLSConfig(s.config.CertPath, s.config.KeyPath)
		if err != nil {
			_ = listener.Close()
			return err
		}
		listener = tls.NewListener(listener, tlsConfig)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// URL returns the params URL clients should use
func (s *Server) URL() string {
	addr := s.Addr()
	if addr == nil {
		return ""
	}
	scheme := "http"
	if s.config.CertPath != "" && s.config.KeyPath != "" {
		scheme = "https"
	}
	host := addr.String()
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		host = net.JoinHostPort("127.0.0.1", strconv.Itoa(tcp.Port))
	}
	return scheme + "://" + host + s.config.Path
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	listener := s.listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	logging.Info("Starting painter simulator",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", s.config.Path),
		zap.String("id", s.id),
		zap.String("painter", s.store.Get().Painter),
	)

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		adv, err := discovery.Advertise(s.config.Instance, port, s.id, s.config.Path)
		if err != nil {
			// the API still works without discovery
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.mu.Lock()
			s.adv = adv
			s.mu.Unlock()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping simulator...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops advertising, closes watchers and waits for requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	adv, httpServer := s.adv, s.httpServer
	s.adv = nil
	s.mu.Unlock()

	adv.Shutdown()

	var err error
	if httpServer != nil {
		if err = httpServer.Shutdown(ctx); err != nil {
			logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
			_ = httpServer.Close()
		}
	}

	done := make(chan struct{})
	go func() {
		s.hub.closeAll()
		close(done)
	}()
	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Watchers still open at shutdown deadline")
	}

	logging.Sync()
	return err
}

// GetActiveConnections returns the number of websocket watchers
func (s *Server) GetActiveConnections() int {
	return s.hub.count()
}
