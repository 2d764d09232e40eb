package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/service"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/memory"
)

const reportChat int64 = -100123

var t0 = time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)

// seed writes the two timestamp slots; a zero time leaves the slot empty.
func seed(t *testing.T, st *store.State, heartbeat, resumed time.Time) {
	t.Helper()
	ctx := context.Background()
	if !heartbeat.IsZero() {
		require.NoError(t, st.SetHeartbeat(ctx, heartbeat))
	}
	if !resumed.IsZero() {
		require.NoError(t, st.SetPowerResumed(ctx, resumed))
	}
}

func newTestReconciler(st *store.State, rep service.Reporter, clk clock.Clock) *service.Reconciler {
	return service.NewReconciler(st, rep, service.ReconcilerConfig{
		ReportChatID: reportChat,
		Clock:        clk,
	}, silentLogger())
}

func powerResumed(t *testing.T, st *store.State) time.Time {
	t.Helper()
	got, err := st.PowerResumed(context.Background())
	require.NoError(t, err)
	return got
}

// ── End-to-end scenarios ─────────────────────────────────────────────────────

func TestReconcile_FiveMinuteOutage(t *testing.T) {
	st := store.NewState(memory.New())
	seed(t, st, t0, t0)
	rep := &fakeReporter{}
	clk := clock.NewManual(t0.Add(5 * time.Minute))

	report, err := newTestReconciler(st, rep, clk).Reconcile(context.Background())
	require.NoError(t, err)

	assert.False(t, report.BriefRestart)
	assert.Equal(t, 5*time.Minute, report.TimeOff)
	assert.Equal(t, time.Duration(0), report.TimeOn)

	sent := rep.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, reportChat, sent[0].ChatID)
	assert.Equal(t, "The power was off for 5 minutes .\nThe power was on for \n", sent[0].Text)

	assert.True(t, powerResumed(t, st).Equal(t0.Add(5*time.Minute)))
}

func TestReconcile_TenSecondRestart_KeepsBaseline(t *testing.T) {
	st := store.NewState(memory.New())
	resumed := t0.Add(-2 * time.Hour)
	seed(t, st, t0, resumed)
	rep := &fakeReporter{}
	clk := clock.NewManual(t0.Add(10 * time.Second))

	report, err := newTestReconciler(st, rep, clk).Reconcile(context.Background())
	require.NoError(t, err)

	assert.True(t, report.BriefRestart)
	assert.Equal(t, 2*time.Hour, report.TimeOn)

	sent := rep.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t,
		"Less than 1 minute bot outage. Probably updating the bot. The power was on for 2 hours \n",
		sent[0].Text)
	assert.NotContains(t, sent[0].Text, "was off")

	assert.True(t, powerResumed(t, st).Equal(resumed), "baseline must not move on a brief restart")
}

func TestReconcile_LongOutageReportsBothSpans(t *testing.T) {
	st := store.NewState(memory.New())
	// Power came back at t0-1d, stayed on until the last heartbeat at t0,
	// then was off for 3h15m.
	seed(t, st, t0, t0.Add(-24*time.Hour))
	rep := &fakeReporter{}
	clk := clock.NewManual(t0.Add(3*time.Hour + 15*time.Minute))

	_, err := newTestReconciler(st, rep, clk).Reconcile(context.Background())
	require.NoError(t, err)

	sent := rep.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "The power was off for 3 hours 15 minutes .\nThe power was on for 1 days \n", sent[0].Text)
}

// ── Classification boundary ──────────────────────────────────────────────────

func TestReconcile_Classification(t *testing.T) {
	cases := []struct {
		off   time.Duration
		brief bool
	}{
		{0, false},
		{time.Millisecond, true},
		{30 * time.Second, true},
		{59 * time.Second, true},
		{59*time.Second + 999*time.Millisecond, true},
		{time.Minute, false},
		{61 * time.Second, false},
		{48 * time.Hour, false},
	}

	for _, tc := range cases {
		t.Run(tc.off.String(), func(t *testing.T) {
			st := store.NewState(memory.New())
			resumed := t0.Add(-time.Hour)
			seed(t, st, t0, resumed)
			now := t0.Add(tc.off)

			report, err := newTestReconciler(st, &fakeReporter{}, clock.NewManual(now)).
				Reconcile(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tc.brief, report.BriefRestart)
			if tc.brief {
				assert.True(t, powerResumed(t, st).Equal(resumed))
			} else {
				assert.True(t, powerResumed(t, st).Equal(now))
			}
		})
	}
}

// ── Missing and odd data ─────────────────────────────────────────────────────

func TestReconcile_FirstRunTreatsMissingAsNow(t *testing.T) {
	st := store.NewState(memory.New())
	rep := &fakeReporter{}
	clk := clock.NewManual(t0)

	report, err := newTestReconciler(st, rep, clk).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), report.TimeOff)
	assert.Equal(t, time.Duration(0), report.TimeOn)
	assert.False(t, report.BriefRestart)
	assert.Equal(t, "The power was off for .\nThe power was on for \n", rep.Sent()[0].Text)
	assert.True(t, powerResumed(t, st).Equal(t0))
}

func TestReconcile_UnreadableTimestampsTreatedAsNow(t *testing.T) {
	kv := memory.New()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, store.HeartbeatKey, "garbage"))
	require.NoError(t, kv.Set(ctx, store.PowerResumedKey, "also garbage"))
	st := store.NewState(kv)

	report, err := newTestReconciler(st, &fakeReporter{}, clock.NewManual(t0)).Reconcile(ctx)
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), report.TimeOff)
	assert.True(t, report.Stored.Equal(t0))
	assert.True(t, report.WakeUp.Equal(t0))
}

func TestReconcile_HeartbeatInFutureClampedToZero(t *testing.T) {
	st := store.NewState(memory.New())
	// Store was reset externally and holds instants ahead of the clock.
	seed(t, st, t0.Add(time.Hour), t0.Add(2*time.Hour))

	report, err := newTestReconciler(st, &fakeReporter{}, clock.NewManual(t0)).
		Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), report.TimeOff)
	assert.Equal(t, time.Duration(0), report.TimeOn)
	assert.False(t, report.BriefRestart)
	assert.NotContains(t, report.Text, "-")
}

func TestReconcile_HeartbeatAheadDoesNotInflateUptime(t *testing.T) {
	st := store.NewState(memory.New())
	seed(t, st, t0.Add(10*time.Minute), t0.Add(-time.Hour))

	report, err := newTestReconciler(st, &fakeReporter{}, clock.NewManual(t0)).
		Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), report.TimeOff)
	assert.Equal(t, time.Hour, report.TimeOn)
	assert.Equal(t, "The power was off for .\nThe power was on for 1 hours \n", report.Text)
	assert.True(t, powerResumed(t, st).Equal(t0))
}

// ── Idempotence ──────────────────────────────────────────────────────────────

func TestReconcile_BackToBackRunsAreBriefRestarts(t *testing.T) {
	st := store.NewState(memory.New())
	resumed := t0.Add(-30 * time.Minute)
	seed(t, st, t0, resumed)
	rep := &fakeReporter{}
	clk := clock.NewManual(t0.Add(time.Second))
	r := newTestReconciler(st, rep, clk)

	first, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	clk.Advance(time.Second)
	second, err := r.Reconcile(context.Background())
	require.NoError(t, err)

	assert.True(t, first.BriefRestart)
	assert.True(t, second.BriefRestart)
	assert.Equal(t, 2*time.Second, second.TimeOff)
	assert.True(t, powerResumed(t, st).Equal(resumed))
	assert.Len(t, rep.Sent(), 2)
}

// ── Failures ─────────────────────────────────────────────────────────────────

func TestReconcile_SendFailureIsFatalAndKeepsBaseline(t *testing.T) {
	st := store.NewState(memory.New())
	seed(t, st, t0, t0)
	rep := &fakeReporter{err: errors.New("telegram down")}

	_, err := newTestReconciler(st, rep, clock.NewManual(t0.Add(time.Hour))).
		Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, rep.err)

	assert.True(t, powerResumed(t, st).Equal(t0))
}

func TestReconcile_BaselineWriteFailureIsFatal(t *testing.T) {
	mem := memory.New()
	seed(t, store.NewState(mem), t0, t0)
	boom := errors.New("read-only replica")
	st := store.NewState(failingSetKV{Store: mem, err: boom})
	rep := &fakeReporter{}

	_, err := newTestReconciler(st, rep, clock.NewManual(t0.Add(time.Hour))).
		Reconcile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The report had already gone out.
	assert.Len(t, rep.Sent(), 1)
}

func TestReconcile_BriefRestartDoesNotWrite(t *testing.T) {
	mem := memory.New()
	seed(t, store.NewState(mem), t0, t0.Add(-time.Hour))
	st := store.NewState(failingSetKV{Store: mem, err: errors.New("must not write")})

	report, err := newTestReconciler(st, &fakeReporter{}, clock.NewManual(t0.Add(5*time.Second))).
		Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, report.BriefRestart)
}
