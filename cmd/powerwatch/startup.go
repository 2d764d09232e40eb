package main

import (
	"context"
	"fmt"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/service"
)

type outageReconciler interface {
	Reconcile(ctx context.Context) (service.Report, error)
}

type backgroundWriter interface {
	Start(ctx context.Context)
	Stop()
}

type messageLoop interface {
	Run(ctx context.Context)
}

// startup runs the reconciliation to completion and only then launches the
// heartbeat writer and the dispatcher.  If reconciliation fails neither is
// started.  The returned channel closes when the dispatcher has returned.
func startup(ctx context.Context, rec outageReconciler, hb backgroundWriter, d messageLoop) (<-chan struct{}, error) {
	if _, err := rec.Reconcile(ctx); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	hb.Start(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()
	return done, nil
}
