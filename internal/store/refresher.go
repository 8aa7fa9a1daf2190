package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// RefresherConfig holds configuration for the periodic refresher.
type RefresherConfig struct {
	// Interval is how often to refetch the full state (default: 30s).
	Interval time.Duration

	// Timeout bounds each refresh round trip (default: 10s).
	Timeout time.Duration
}

// DefaultRefresherConfig returns sensible defaults.
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Refresher periodically refetches transactions and categories into the
// store. Dropped write responses leave local state behind the server's;
// the refresher closes that window on its next pass.
type Refresher struct {
	store  *Store
	config RefresherConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefresher(store *Store, config RefresherConfig) *Refresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefresherConfig().Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRefresherConfig().Timeout
	}
	return &Refresher{store: store, config: config}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.runLoop(ctx)

	slog.InfoContext(ctx, "Refresher started", "interval", r.config.Interval)
	return nil
}

// Stop gracefully stops the refresher and waits for completion.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	close(r.stopCh)

	select {
	case <-r.doneCh:
		slog.InfoContext(ctx, "Refresher stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresher stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	return nil
}

// IsRunning returns whether the refresher is currently running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	r.refresh(ctx)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// refresh refetches transactions and categories concurrently. Failures are
// already reflected in the store's error flag, so they are only logged here.
func (r *Refresher) refresh(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error { return r.store.FetchTransactions(gctx) })
	g.Go(func() error { return r.store.FetchCategories(gctx) })

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Refresh pass failed", "error", err)
	}
}
