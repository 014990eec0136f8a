package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"scadenze/internal/amqp"
	"scadenze/internal/cache"
	"scadenze/internal/services"
)

type countingForecaster struct {
	calls atomic.Int32
	err   error
	ran   chan struct{}
}

func newCountingForecaster() *countingForecaster {
	return &countingForecaster{ran: make(chan struct{}, 16)}
}

func (f *countingForecaster) Run(_ context.Context, now time.Time) (services.Result, error) {
	f.calls.Add(1)
	defer func() { f.ran <- struct{}{} }()
	if f.err != nil {
		return services.Result{}, f.err
	}
	return services.Result{GeneratedAt: now}, nil
}

func waitRun(t *testing.T, f *countingForecaster) {
	t.Helper()
	select {
	case <-f.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("forecast did not run")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RefreshInterval != time.Hour {
		t.Errorf("expected RefreshInterval 1h, got %v", cfg.RefreshInterval)
	}
	if cfg.CacheSweepInterval != 10*time.Minute {
		t.Errorf("expected CacheSweepInterval 10m, got %v", cfg.CacheSweepInterval)
	}
	if !cfg.RunOnStart {
		t.Error("expected RunOnStart by default")
	}
}

func TestTrigger_Coalesces(t *testing.T) {
	w := NewForecastWorker(Deps{Forecaster: newCountingForecaster()}, Config{})
	for i := 0; i < 5; i++ {
		w.Trigger()
	}
	if got := len(w.trigger); got != 1 {
		t.Errorf("pending triggers = %d, want 1", got)
	}
}

func TestHandleChange_InvalidatesAndTriggers(t *testing.T) {
	var invalidated int
	w := NewForecastWorker(Deps{
		Forecaster: newCountingForecaster(),
		Invalidate: func() { invalidated++ },
	}, Config{})

	msg := amqp.NewTransactionChangedMessage("tx-1", amqp.OpInsert)
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}
	if invalidated != 1 {
		t.Errorf("invalidate called %d times, want 1", invalidated)
	}
	if len(w.trigger) != 1 {
		t.Error("HandleChange should schedule a run")
	}
}

func TestRun_RequiresForecaster(t *testing.T) {
	w := NewForecastWorker(Deps{}, Config{})
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error without forecaster")
	}
}

func TestRun_RunsOnStartAndOnTrigger(t *testing.T) {
	f := newCountingForecaster()
	w := NewForecastWorker(Deps{Forecaster: f, Caches: cache.NewManager()}, Config{RunOnStart: true})
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitRun(t, f)
	w.Trigger()
	waitRun(t, f)

	if !w.IsRunning() {
		t.Error("worker should report running")
	}
	res, ok := w.Last()
	if !ok || !res.GeneratedAt.Equal(fixed) {
		t.Errorf("Last() = %+v, %v", res, ok)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if w.IsRunning() {
		t.Error("worker should not be running after Run returns")
	}
}

func TestRun_FailedRunKeepsWorkerAlive(t *testing.T) {
	f := newCountingForecaster()
	f.err = errors.New("feed down")
	w := NewForecastWorker(Deps{Forecaster: f}, Config{RunOnStart: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitRun(t, f)
	if _, ok := w.Last(); ok {
		t.Error("failed run must not be recorded")
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

type fakeConsumer struct {
	once sync.Once
	err  error
}

func (c *fakeConsumer) ConsumeTransactionChanges(ctx context.Context, handler func(context.Context, *amqp.TransactionChangedMessage) error) error {
	c.once.Do(func() {
		_ = handler(ctx, amqp.NewTransactionChangedMessage("tx-9", amqp.OpUpdate))
	})
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRun_ConsumerTriggersRun(t *testing.T) {
	f := newCountingForecaster()
	w := NewForecastWorker(Deps{Forecaster: f, Consumer: &fakeConsumer{}}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitRun(t, f)
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestRun_ConsumerFailureStopsWorker(t *testing.T) {
	f := newCountingForecaster()
	w := NewForecastWorker(Deps{Forecaster: f, Consumer: &fakeConsumer{err: errors.New("message channel closed")}}, Config{})

	select {
	case err := <-runAsync(w):
		if err == nil {
			t.Error("expected consumer error to stop the worker")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after consumer failure")
	}
}

func runAsync(w *ForecastWorker) <-chan error {
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	return done
}
