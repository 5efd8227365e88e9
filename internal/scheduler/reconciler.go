package scheduler

import (
	"context"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"
)

type bookingReconciler interface {
	ReconcileBookings(ctx context.Context) (int, error)
}

// Reconciler periodically re-derives booking statuses from their dates.
type Reconciler struct {
	service  bookingReconciler
	interval time.Duration
	clock    clock.Clock
	logger   *zap.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(service bookingReconciler, interval time.Duration, clk clock.Clock, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		service:  service,
		interval: interval,
		clock:    clk,
		logger:   logger,
	}
}

// Start blocks, reconciling once per interval until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("reconciler started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-r.clock.After(r.interval):
			r.tick(ctx)
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) {
	changed, err := r.service.ReconcileBookings(ctx)
	if err != nil {
		r.logger.Error("failed to reconcile bookings", zap.Error(err))
		return
	}
	if changed > 0 {
		r.logger.Info("booking statuses corrected", zap.Int("changed", changed))
	}
}
