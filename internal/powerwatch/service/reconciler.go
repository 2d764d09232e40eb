package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/observability/metrics"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

// BriefRestartThreshold separates a redeploy of the bot from a real outage.
// Gaps shorter than this (but not zero) are not treated as power loss.
const BriefRestartThreshold = time.Minute

// Reporter delivers the startup report to the reporting chat.
type Reporter interface {
	SendTo(ctx context.Context, chatID int64, text string) error
}

// Report is the outcome of one reconciliation.
type Report struct {
	Now    time.Time
	Stored time.Time // last heartbeat, or Now when none was readable
	WakeUp time.Time // previous power-resumed instant, or Now

	TimeOff      time.Duration
	TimeOn       time.Duration
	BriefRestart bool
	Text         string
}

// ReconcilerConfig holds the parameters for NewReconciler.  Clock defaults
// to the system clock.
type ReconcilerConfig struct {
	ReportChatID int64
	Clock        clock.Clock
}

// Reconciler runs once at startup: it compares the last heartbeat with the
// current time, reports how long power was off and on, and moves the
// power-resumed baseline forward.
type Reconciler struct {
	state    *store.State
	reporter Reporter
	chatID   int64
	clock    clock.Clock
	logger   *log.Logger
}

// NewReconciler creates a reconciler that reports to cfg.ReportChatID.
func NewReconciler(st *store.State, r Reporter, cfg ReconcilerConfig, logger *log.Logger) *Reconciler {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &Reconciler{
		state:    st,
		reporter: r,
		chatID:   cfg.ReportChatID,
		clock:    clk,
		logger:   logger,
	}
}

// Reconcile must complete before the heartbeat writer and the dispatcher
// start.  A failed send, or a failed baseline update after the send, is
// returned; the caller should treat it as a failed startup.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	now := r.clock.Now()
	stored := r.readOrNow(ctx, "heartbeat", r.state.Heartbeat, now)
	wakeUp := r.readOrNow(ctx, "power resumed", r.state.PowerResumed, now)

	// A heartbeat ahead of the clock counts as no outage at all; clamping
	// after the subtraction would inflate the on-time instead.
	off := nonNegative(now.Sub(stored))
	on := nonNegative(now.Sub(wakeUp) - off)

	rep := Report{
		Now:     now,
		Stored:  stored,
		WakeUp:  wakeUp,
		TimeOff: off,
		TimeOn:  on,
	}
	rep.BriefRestart = rep.TimeOff > 0 && rep.TimeOff < BriefRestartThreshold

	if rep.BriefRestart {
		rep.Text = briefRestartText(rep.TimeOn)
	} else {
		rep.Text = outageText(rep.TimeOff, rep.TimeOn)
	}

	if err := r.reporter.SendTo(ctx, r.chatID, rep.Text); err != nil {
		return rep, fmt.Errorf("send startup report: %w", err)
	}

	kind := metrics.KindOutage
	if rep.BriefRestart {
		// Nothing really went down, so the baseline stays where it was.
		kind = metrics.KindBriefRestart
	} else if err := r.state.SetPowerResumed(ctx, now); err != nil {
		return rep, fmt.Errorf("update power resumed: %w", err)
	}

	metrics.ObserveReconciliation(kind, rep.TimeOff, rep.TimeOn)
	r.logger.Printf("reconcile: kind=%s off=%s on=%s heartbeat=%s resumed=%s",
		kind, rep.TimeOff, rep.TimeOn,
		stored.Format(time.RFC3339), wakeUp.Format(time.RFC3339))

	return rep, nil
}

// readOrNow substitutes now for a missing or unreadable timestamp, which
// makes a first run (or a broken store) look like "no outage".
func (r *Reconciler) readOrNow(
	ctx context.Context,
	what string,
	read func(context.Context) (time.Time, error),
	now time.Time,
) time.Time {
	t, err := read(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Printf("reconcile: read %s: %v (using now)", what, err)
		}
		return now
	}
	return t
}

func briefRestartText(on time.Duration) string {
	return fmt.Sprintf(
		"Less than 1 minute bot outage. Probably updating the bot. The power was on for %s\n",
		FormatDuration(on),
	)
}

func outageText(off, on time.Duration) string {
	return fmt.Sprintf(
		"The power was off for %s.\nThe power was on for %s\n",
		FormatDuration(off), FormatDuration(on),
	)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
