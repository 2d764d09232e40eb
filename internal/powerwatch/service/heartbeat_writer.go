package service

import (
	"context"
	"log"
	"time"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/observability/metrics"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

// DefaultHeartbeatInterval bounds how much of an outage can go unseen:
// a restart can misjudge the outage by at most one interval.
const DefaultHeartbeatInterval = time.Minute

// HeartbeatWriter periodically stamps "process alive now" into the store so
// the next start can measure how long the process was gone.  It runs as a
// background goroutine until its context is cancelled or Stop is called.
type HeartbeatWriter struct {
	state    *store.State
	clock    clock.Clock
	interval time.Duration
	logger   *log.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// HeartbeatConfig holds the parameters for NewHeartbeatWriter.
type HeartbeatConfig struct {
	// Interval between writes.  Defaults to DefaultHeartbeatInterval.
	Interval time.Duration

	// Clock defaults to the system clock.
	Clock clock.Clock
}

// NewHeartbeatWriter creates a writer but does not start it.
func NewHeartbeatWriter(st *store.State, cfg HeartbeatConfig, logger *log.Logger) *HeartbeatWriter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}

	return &HeartbeatWriter{
		state:    st,
		clock:    clk,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop.  The first write happens one interval
// after Start; the reconciliation that precedes Start has just established
// the current baseline.
func (w *HeartbeatWriter) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go w.loop(ctx)

	w.logger.Printf("heartbeat writer started (interval=%s)", w.interval)
}

// Stop signals the loop to exit and waits for it.  Safe to call more than
// once; a no-op if Start was never called.
func (w *HeartbeatWriter) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Beat writes one heartbeat.
func (w *HeartbeatWriter) Beat(ctx context.Context) error {
	now := w.clock.Now()
	err := w.state.SetHeartbeat(ctx, now)
	metrics.ObserveHeartbeat(err, now)
	return err
}

func (w *HeartbeatWriter) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A missed beat only widens the next outage estimate by one
			// interval; try again on the next tick.
			if err := w.Beat(ctx); err != nil && ctx.Err() == nil {
				w.logger.Printf("heartbeat write error: %v", err)
			}
		}
	}
}
