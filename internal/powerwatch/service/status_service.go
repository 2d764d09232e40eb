package service

import (
	"context"
	"errors"
	"time"

	"github.com/BrandonDHaskell/powerwatch/internal/clock"
	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

// Status answers "how long has the light been on".
type Status struct {
	PowerResumedAt time.Time
	OnFor          time.Duration
	// Known is false when no readable power-resumed instant exists; OnFor
	// is then zero.
	Known bool
}

// StatusService reads the live power-resumed instant on every call rather
// than a startup snapshot.
type StatusService struct {
	state *store.State
	clock clock.Clock
}

// NewStatusService measures against clk, or the system clock when clk is nil.
func NewStatusService(st *store.State, clk clock.Clock) *StatusService {
	if clk == nil {
		clk = clock.System{}
	}
	return &StatusService{state: st, clock: clk}
}

// LightOn returns the time elapsed since power last resumed.  A missing or
// malformed value yields a zero, unknown Status and a nil error; backend
// failures yield the same Status together with the error.
func (s *StatusService) LightOn(ctx context.Context) (Status, error) {
	now := s.clock.Now()

	resumed, err := s.state.PowerResumed(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrMalformed) {
			return Status{PowerResumedAt: now}, nil
		}
		return Status{PowerResumedAt: now}, err
	}

	return Status{
		PowerResumedAt: resumed,
		OnFor:          nonNegative(now.Sub(resumed)),
		Known:          true,
	}, nil
}
