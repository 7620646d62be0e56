// Package monitor polls the health of the client's three external
// touchpoints: the backend API, the realtime connection, and the local
// state store.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/client/internal/infrastructure/backend"
	"github.com/taskflow/client/internal/infrastructure/realtime"
	"github.com/taskflow/client/internal/infrastructure/storage"
)

type Monitor struct {
	backend *backend.Client
	source  *realtime.Source
	store   *storage.Store

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(api *backend.Client, source *realtime.Source, store *storage.Store, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		backend:  api,
		source:   source,
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether the backend is reachable.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Backend
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Backend:   m.checkBackend(),
		Realtime:  m.source != nil && m.source.IsConnected(),
		Store:     m.store != nil && m.store.Healthy(),
		Stale:     m.source != nil && m.source.Exhausted(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if status.Stale && !prev.Stale {
		m.logger.Warn("realtime connection abandoned, task view may be stale until next refresh")
	}
}

func (m *Monitor) checkBackend() bool {
	if m.backend == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.backend.Healthy(ctx)
}
