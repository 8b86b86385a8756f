package shutdown

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// InFlightTracker tracks in-flight requests so shutdown can wait for
// gateway calls that already reached the processor
type InFlightTracker struct {
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
	logger *zap.Logger
	name   string
}

// NewInFlightTracker creates a new in-flight request tracker
func NewInFlightTracker(name string, logger *zap.Logger) *InFlightTracker {
	return &InFlightTracker{
		logger: logger,
		name:   name,
	}
}

// Add registers one unit of work.
// Returns false once shutdown has started.
func (ift *InFlightTracker) Add() bool {
	ift.mu.RLock()
	defer ift.mu.RUnlock()

	if ift.closed {
		return false
	}
	ift.wg.Add(1)
	return true
}

// Done marks one unit of work as complete
func (ift *InFlightTracker) Done() {
	ift.wg.Done()
}

// Middleware rejects new requests with 503 once shutdown has started
func (ift *InFlightTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ift.Add() {
			w.Header().Set("Connection", "close")
			http.Error(w, "Service is shutting down", http.StatusServiceUnavailable)
			return
		}
		defer ift.Done()

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops accepting work and waits for in-flight work to finish
func (ift *InFlightTracker) Shutdown(ctx context.Context) error {
	ift.mu.Lock()
	ift.closed = true
	ift.mu.Unlock()

	ift.logger.Info("Waiting for in-flight requests", zap.String("tracker", ift.name))

	done := make(chan struct{})
	go func() {
		ift.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		ift.logger.Info("All in-flight requests completed", zap.String("tracker", ift.name))
		return nil
	case <-ctx.Done():
		ift.logger.Warn("Shutdown timeout - some requests may be incomplete",
			zap.String("tracker", ift.name),
		)
		return ctx.Err()
	}
}

// IsShuttingDown reports whether shutdown has started
func (ift *InFlightTracker) IsShuttingDown() bool {
	ift.mu.RLock()
	defer ift.mu.RUnlock()
	return ift.closed
}

// PeriodicWorker runs a function on an interval until stopped
type PeriodicWorker struct {
	name     string
	interval time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewPeriodicWorker creates a new periodic worker
func NewPeriodicWorker(name string, interval time.Duration, logger *zap.Logger) *PeriodicWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &PeriodicWorker{
		name:     name,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs work immediately and then on every tick.
// work should return promptly when ctx is cancelled.
func (pw *PeriodicWorker) Start(work func(ctx context.Context)) {
	pw.wg.Add(1)

	go func() {
		defer pw.wg.Done()

		ticker := time.NewTicker(pw.interval)
		defer ticker.Stop()

		pw.logger.Info("Periodic worker started",
			zap.String("worker", pw.name),
			zap.Duration("interval", pw.interval),
		)

		work(pw.ctx)
		for {
			select {
			case <-pw.ctx.Done():
				pw.logger.Info("Periodic worker stopped", zap.String("worker", pw.name))
				return
			case <-ticker.C:
				work(pw.ctx)
			}
		}
	}()
}

// Shutdown cancels the worker and waits for the current run to return
func (pw *PeriodicWorker) Shutdown(ctx context.Context) error {
	pw.once.Do(pw.cancel)

	done := make(chan struct{})
	go func() {
		pw.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		pw.logger.Warn("Periodic worker shutdown timeout", zap.String("worker", pw.name))
		return ctx.Err()
	}
}
