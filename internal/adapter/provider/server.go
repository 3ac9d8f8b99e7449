package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/davmount/internal/bytesize"
	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/metrics"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Config holds the provider server's transport settings.
type Config struct {
	// Listen is the host:port to listen on. The protocol carries no
	// authentication, so this should stay on loopback.
	Listen string `mapstructure:"listen" json:"listen" yaml:"listen"`

	// MaxFrameBytes bounds a single request or response frame.
	MaxFrameBytes bytesize.ByteSize `mapstructure:"max_frame_bytes" json:"max_frame_bytes" yaml:"max_frame_bytes"`

	// MaxConnections limits concurrent host connections. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections"`

	// MaxRequestsPerConnection limits requests in flight on one
	// connection.
	MaxRequestsPerConnection int `mapstructure:"max_requests_per_connection" json:"max_requests_per_connection" yaml:"max_requests_per_connection"`

	// ShutdownTimeout is how long Stop waits for in-flight requests
	// before force-closing connections.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Defaults for Config fields left zero.
const (
	DefaultListen                   = "127.0.0.1:7070"
	DefaultMaxRequestsPerConnection = 64
	DefaultShutdownTimeout          = 10 * time.Second
)

// Server accepts host connections and serves the provider protocol.
//
// It also implements registry.Events: mount lifecycle changes are pushed
// to every connected host as unsolicited Event frames.
//
// Thread Safety:
// All exported methods are safe for concurrent use. Shutdown is idempotent
// via sync.Once.
type Server struct {
	config     Config
	dispatcher *Dispatcher
	metrics    metrics.ProviderMetrics

	listener   net.Listener
	listenerMu sync.RWMutex

	// ListenerReady is closed once the listener accepts connections.
	// Tests use it to synchronize with startup.
	ListenerReady chan struct{}

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// shutdownCtx is cancelled during shutdown to abort in-flight
	// requests on every connection.
	shutdownCtx    context.Context
	cancelRequests context.CancelFunc

	activeConns   sync.WaitGroup
	connCount     atomic.Int32
	connSemaphore chan struct{}

	// conns tracks live connections by remote address, for event
	// broadcast and forced closure.
	conns sync.Map
}

// NewServer creates a provider server. Zero config fields take defaults;
// metrics may be nil.
func NewServer(config Config, d *Dispatcher, m metrics.ProviderMetrics) *Server {
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.MaxFrameBytes == 0 {
		config.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if config.MaxRequestsPerConnection <= 0 {
		config.MaxRequestsPerConnection = DefaultMaxRequestsPerConnection
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultShutdownTimeout
	}

	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &Server{
		config:         config,
		dispatcher:     d,
		metrics:        m,
		ListenerReady:  make(chan struct{}),
		shutdown:       make(chan struct{}),
		shutdownCtx:    shutdownCtx,
		cancelRequests: cancelRequests,
		connSemaphore:  connSemaphore,
	}
}

// maxFrame returns the frame bound clamped to the prefix range.
func (s *Server) maxFrame() uint32 {
	if s.config.MaxFrameBytes > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s.config.MaxFrameBytes)
}

// Serve runs the accept loop until ctx is cancelled or Stop is called.
// Returns nil on graceful shutdown.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("provider listener on %q: %w", s.config.Listen, err)
	}

	s.listenerMu.Lock()
	s.listener = listener
	s.listenerMu.Unlock()
	close(s.ListenerReady)

	logger.Info("provider server listening", logger.KeyListen, listener.Addr().String())

	go func() {
		<-ctx.Done()
		s.initiateShutdown()
	}()

	for {
		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			case <-s.shutdown:
				return s.gracefulShutdown()
			}
		}

		tcpConn, err := listener.Accept()
		if err != nil {
			if s.connSemaphore != nil {
				<-s.connSemaphore
			}
			select {
			case <-s.shutdown:
				// Listener closed by shutdown.
				return s.gracefulShutdown()
			default:
				logger.Debug("error accepting provider connection", logger.Err(err))
				continue
			}
		}

		if tcp, ok := tcpConn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("failed to set TCP_NODELAY", logger.Err(err))
			}
		}

		s.activeConns.Add(1)
		active := s.connCount.Add(1)

		if s.metrics != nil {
			s.metrics.RecordConnectionAccepted()
			s.metrics.SetActiveConnections(active)
		}

		addr := tcpConn.RemoteAddr().String()
		conn := newConnection(s, tcpConn)
		s.conns.Store(addr, conn)

		logger.Debug("provider connection accepted",
			logger.KeyClientAddr, addr, "active", active)

		go func(addr string) {
			defer func() {
				s.conns.Delete(addr)
				s.activeConns.Done()
				remaining := s.connCount.Add(-1)
				if s.connSemaphore != nil {
					<-s.connSemaphore
				}
				if s.metrics != nil {
					s.metrics.RecordConnectionClosed()
					s.metrics.SetActiveConnections(remaining)
				}
				logger.Debug("provider connection closed",
					logger.KeyClientAddr, addr, "active", remaining)
			}()

			conn.serve(s.shutdownCtx)
		}(addr)
	}
}

// initiateShutdown begins shutdown: stop accepting, unblock reads, cancel
// in-flight requests. Idempotent.
func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.listenerMu.Lock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("error closing provider listener", logger.Err(err))
			}
		}
		s.listenerMu.Unlock()

		// A short deadline unblocks connections parked in ReadFrame.
		deadline := time.Now().Add(100 * time.Millisecond)
		s.conns.Range(func(_, value any) bool {
			if c, ok := value.(*connection); ok {
				_ = c.conn.SetReadDeadline(deadline)
			}
			return true
		})

		s.cancelRequests()
	})
}

// gracefulShutdown waits for active connections to drain, force-closing
// them after the configured timeout.
func (s *Server) gracefulShutdown() error {
	active := s.connCount.Load()
	logger.Info("provider server shutting down",
		"active", active, "timeout", s.config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("provider server shutdown complete")
		return nil

	case <-time.After(s.config.ShutdownTimeout):
		remaining := s.connCount.Load()
		s.conns.Range(func(_, value any) bool {
			if c, ok := value.(*connection); ok {
				_ = c.conn.Close()
			}
			return true
		})
		return fmt.Errorf("provider shutdown timeout: %d connections force-closed", remaining)
	}
}

// Stop initiates graceful shutdown and waits for connections to drain.
// Safe to call multiple times and concurrently with Serve. A nil ctx waits
// for the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.initiateShutdown()

	if ctx == nil {
		return s.gracefulShutdown()
	}

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the bound listen address. Blocks until the listener is
// ready, making it safe for tests that listen on port 0.
func (s *Server) Addr() string {
	<-s.ListenerReady

	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ============================================================================
// Mount Events
// ============================================================================

// MountAdded pushes a mount_added event to every connected host.
// Implements registry.Events; never blocks the registry.
func (s *Server) MountAdded(m *registry.Mount) {
	s.broadcast(&Event{
		Event: EventMountAdded,
		Mount: MountInfo{
			ID:       m.ID.String(),
			Name:     m.Name,
			URL:      m.URL,
			Username: m.Username,
			Writable: m.Writable,
		},
	})
}

// MountRemoved pushes a mount_removed event to every connected host.
func (s *Server) MountRemoved(id mounts.MountID, name string) {
	s.broadcast(&Event{
		Event: EventMountRemoved,
		Mount: MountInfo{ID: id.String(), Name: name},
	})
}

// broadcast marshals the event once and writes it to each connection from
// its own goroutine, so one slow host never delays the registry or the
// other hosts.
func (s *Server) broadcast(ev *Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("failed to encode mount event", logger.Err(err))
		return
	}

	if s.metrics != nil {
		s.metrics.RecordEvent(ev.Event)
	}

	s.conns.Range(func(_, value any) bool {
		c, ok := value.(*connection)
		if !ok {
			return true
		}
		go func() {
			if err := c.writeFrame(payload); err != nil {
				logger.Debug("failed to push mount event",
					logger.KeyClientAddr, c.conn.RemoteAddr().String(), logger.Err(err))
			}
		}()
		return true
	})
}
