// Package services hosts the background orchestration around the task cache.
package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refreshable is the slice of the task use case the refresher drives.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Connectivity abstracts the realtime source's connection state.
type Connectivity interface {
	IsConnected() bool
}

// RefresherConfig controls the schedule.
type RefresherConfig struct {
	Interval time.Duration
}

// Refresher keeps the cache converged: a periodic full-list refresh, plus an
// immediate refresh whenever the realtime connection comes back. Events
// missed while disconnected are unknowable, so the full list is the only
// correct recovery.
type Refresher struct {
	tasks  Refreshable
	source Connectivity
	logger *zap.Logger
	cron   *cron.Cron
	cfg    RefresherConfig

	wasConnected atomic.Bool
}

func NewRefresher(tasks Refreshable, source Connectivity, logger *zap.Logger, cfg RefresherConfig) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Refresher{
		tasks:  tasks,
		source: source,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = r.cron.AddFunc(schedule, r.periodic)
	// connectivity transitions are checked on a much tighter cadence than
	// the full refresh interval
	_, _ = r.cron.AddFunc("@every 5s", r.checkReconnect)

	return r
}

// Start launches the cron scheduler.
func (r *Refresher) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.wasConnected.Store(r.source != nil && r.source.IsConnected())
	r.cron.Start()
	r.logger.Info("refresher started", zap.Duration("interval", r.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (r *Refresher) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("refresher stopped")
}

func (r *Refresher) periodic() {
	r.refresh("periodic")
}

// checkReconnect fires a refresh on the offline-to-online transition. Cron
// runs each job in its own goroutine, so the flag is atomic.
func (r *Refresher) checkReconnect() {
	if r.source == nil {
		return
	}
	connected := r.source.IsConnected()
	was := r.wasConnected.Swap(connected)
	if connected && !was {
		r.refresh("reconnect")
	}
}

func (r *Refresher) refresh(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.tasks.Refresh(ctx); err != nil {
		r.logger.Warn("cache refresh failed", zap.String("reason", reason), zap.Error(err))
		return
	}
	r.logger.Debug("cache refresh completed", zap.String("reason", reason))
}
