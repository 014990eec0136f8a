// Package worker keeps the obligation forecast fresh: it recomputes on
// transaction change notifications and on a periodic refresh.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"scadenze/internal/amqp"
	"scadenze/internal/cache"
	"scadenze/internal/services"
)

// Forecaster computes a forecast as of now. *services.ForecastService implements it.
type Forecaster interface {
	Run(ctx context.Context, now time.Time) (services.Result, error)
}

// ChangeConsumer delivers transaction change notifications. *amqp.Client implements it.
type ChangeConsumer interface {
	ConsumeTransactionChanges(ctx context.Context, handler func(context.Context, *amqp.TransactionChangedMessage) error) error
}

// Config holds configuration for the forecast worker
type Config struct {
	// RefreshInterval is how often to recompute without notifications (default: 1h)
	RefreshInterval time.Duration

	// CacheSweepInterval is how often expired cache entries are dropped (default: 10m)
	CacheSweepInterval time.Duration

	// RunOnStart computes a forecast as soon as the worker starts
	RunOnStart bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RefreshInterval:    time.Hour,
		CacheSweepInterval: 10 * time.Minute,
		RunOnStart:         true,
	}
}

// Deps are the collaborators of a ForecastWorker. Only Forecaster is required.
type Deps struct {
	Forecaster Forecaster
	Consumer   ChangeConsumer
	Caches     *cache.Manager
	// Invalidate drops cached feed data before a change-triggered run.
	Invalidate func()
}

// ForecastWorker serializes forecast runs. Change notifications arriving
// while a run is pending coalesce into that run.
type ForecastWorker struct {
	deps    Deps
	config  Config
	now     func() time.Time
	trigger chan struct{}

	mu      sync.Mutex
	running bool
	last    services.Result
	hasLast bool
}

func NewForecastWorker(deps Deps, config Config) *ForecastWorker {
	def := DefaultConfig()
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = def.RefreshInterval
	}
	if config.CacheSweepInterval <= 0 {
		config.CacheSweepInterval = def.CacheSweepInterval
	}
	return &ForecastWorker{
		deps:    deps,
		config:  config,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
}

// HandleChange processes a single transaction change message from AMQP.
func (w *ForecastWorker) HandleChange(ctx context.Context, msg *amqp.TransactionChangedMessage) error {
	slog.InfoContext(ctx, "Transaction changed, scheduling forecast",
		"transaction_id", msg.TransactionID,
		"op", msg.Op)

	if w.deps.Invalidate != nil {
		w.deps.Invalidate()
	}
	w.Trigger()
	return nil
}

// Trigger requests a recomputation without blocking.
func (w *ForecastWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Last returns the most recent successful forecast.
func (w *ForecastWorker) Last() (services.Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.hasLast
}

// IsRunning returns whether the worker is currently running
func (w *ForecastWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run blocks until ctx is cancelled or a component fails.
func (w *ForecastWorker) Run(ctx context.Context) error {
	if w.deps.Forecaster == nil {
		return errors.New("forecast worker not properly initialized")
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("forecast worker is already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	slog.InfoContext(ctx, "Forecast worker started",
		"refresh_interval", w.config.RefreshInterval,
		"consumer", w.deps.Consumer != nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.loop(gctx)
		return nil
	})

	if w.deps.Consumer != nil {
		g.Go(func() error {
			err := w.deps.Consumer.ConsumeTransactionChanges(gctx, w.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume transaction changes: %w", err)
			}
			return nil
		})
	}

	if w.deps.Caches != nil {
		g.Go(func() error {
			return w.deps.Caches.Run(gctx, w.config.CacheSweepInterval)
		})
	}

	err := g.Wait()
	slog.InfoContext(ctx, "Forecast worker stopped", "error", err)
	return err
}

func (w *ForecastWorker) loop(ctx context.Context) {
	if w.config.RunOnStart {
		w.Trigger()
	}

	ticker := time.NewTicker(w.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

func (w *ForecastWorker) runOnce(ctx context.Context) {
	res, err := w.deps.Forecaster.Run(ctx, w.now())
	if err != nil {
		if ctx.Err() == nil {
			slog.ErrorContext(ctx, "Forecast run failed", "error", err)
		}
		return
	}

	w.mu.Lock()
	w.last = res
	w.hasLast = true
	w.mu.Unlock()
}
