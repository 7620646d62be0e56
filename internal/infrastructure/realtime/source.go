// Package realtime maintains the push connection to the backend and delivers
// task events to registered handlers. Events missed while disconnected are
// not buffered; after a reconnect the caller must refresh the full list.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taskflow/client/domain"
)

// Config controls the reconnect policy.
type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PingInterval time.Duration
}

// Source is a session-scoped websocket connection with bounded reconnection.
type Source struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	handlers  map[string]func(domain.TaskEvent)
	token     string
	connected bool
	exhausted bool
	stopCh    chan struct{}
}

// New creates a disconnected source.
func New(cfg Config, logger *zap.Logger) *Source {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		cfg:      cfg,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   logger,
		handlers: make(map[string]func(domain.TaskEvent)),
	}
}

// Connect establishes the connection with the given bearer token. No-op when
// already connected.
func (s *Source) Connect(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return nil
	}

	conn, err := s.dial(ctx, token)
	if err != nil {
		return domain.WrapError(domain.ErrCodeNetwork, "realtime connect", err)
	}

	s.conn = conn
	s.token = token
	s.connected = true
	s.exhausted = false
	s.stopCh = make(chan struct{})

	go s.readLoop(conn, s.stopCh)
	go s.pingLoop(conn, s.stopCh)

	s.logger.Info("realtime connected", zap.String("url", s.cfg.URL))
	return nil
}

// Disconnect tears the connection down and discards all subscriptions.
func (s *Source) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connected = false
	s.exhausted = false
	s.token = ""
	s.handlers = make(map[string]func(domain.TaskEvent))
	s.logger.Info("realtime disconnected")
}

// OnEvent registers a handler for all event kinds and returns its
// unsubscribe function.
func (s *Source) OnEvent(handler func(domain.TaskEvent)) func() {
	if handler == nil {
		return func() {}
	}
	handle := uuid.NewString()

	s.mu.Lock()
	s.handlers[handle] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, handle)
		s.mu.Unlock()
	}
}

// IsConnected reports whether the connection is currently live.
func (s *Source) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Exhausted reports whether reconnection attempts ran out. Once true, the
// connection stays abandoned until the next explicit Connect.
func (s *Source) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}

func (s *Source) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, header)
	return conn, err
}

func (s *Source) readLoop(conn *websocket.Conn, stop chan struct{}) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if stopped(stop) {
				return
			}
			s.logger.Warn("realtime read failed", zap.Error(err))
			conn = s.reconnect(stop)
			if conn == nil {
				return
			}
			continue
		}

		ev, err := decodeEvent(payload)
		if err != nil {
			s.logger.Warn("undecodable push event", zap.Error(err))
			continue
		}
		s.dispatch(ev)
	}
}

// reconnect retries with fixed backoff up to the configured attempt budget.
// Returns the new connection, or nil once the budget is exhausted or the
// source was stopped.
func (s *Source) reconnect(stop chan struct{}) *websocket.Conn {
	s.mu.Lock()
	s.connected = false
	token := s.token
	s.mu.Unlock()

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		select {
		case <-stop:
			return nil
		case <-time.After(s.cfg.RetryBackoff):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := s.dial(ctx, token)
		cancel()
		if err != nil {
			s.logger.Warn("realtime reconnect failed",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", s.cfg.MaxRetries),
				zap.Error(err))
			continue
		}

		s.mu.Lock()
		if stopped(stop) {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conn = conn
		s.connected = true
		s.mu.Unlock()

		s.logger.Info("realtime reconnected", zap.Int("attempt", attempt))
		return conn
	}

	s.mu.Lock()
	s.exhausted = true
	s.conn = nil
	s.mu.Unlock()
	s.logger.Error("realtime reconnection attempts exhausted, connection abandoned")
	return nil
}

func (s *Source) dispatch(ev domain.TaskEvent) {
	s.mu.Lock()
	handlers := make([]func(domain.TaskEvent), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (s *Source) pingLoop(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			current := s.conn
			s.mu.Unlock()
			if current == nil {
				return
			}
			deadline := time.Now().Add(5 * time.Second)
			if err := current.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("realtime ping failed", zap.Error(err))
			}
		}
	}
}

func stopped(stop chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
