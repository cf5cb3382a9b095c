package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 30 * time.Second

type paymentReconciler interface {
	ReconcilePendingPayments(ctx context.Context, olderThan time.Duration) (int, error)
}

// Reconciler periodically settles orders whose payment was never recorded,
// for example because the process stopped between checkout and charging.
type Reconciler struct {
	cron        *cron.Cron
	orders      paymentReconciler
	gracePeriod time.Duration
	log         *slog.Logger
}

// NewReconciler schedules a run on schedule, a six-field cron expression.
func NewReconciler(orders paymentReconciler, schedule string, gracePeriod time.Duration, log *slog.Logger) (*Reconciler, error) {
	r := &Reconciler{
		cron:        cron.New(cron.WithSeconds()),
		orders:      orders,
		gracePeriod: gracePeriod,
		log:         log,
	}
	if _, err := r.cron.AddFunc(schedule, r.Run); err != nil {
		return nil, fmt.Errorf("schedule reconciler %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Reconciler) Start() {
	r.cron.Start()
	r.log.Info("payment reconciler started")
}

// Stop waits for a running reconciliation to finish.
func (r *Reconciler) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reconciler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	settled, err := r.orders.ReconcilePendingPayments(ctx, r.gracePeriod)
	if err != nil {
		r.log.Error("reconcile payments", "error", err)
		return
	}
	if settled > 0 {
		r.log.Info("reconciled payments", "settled", settled)
	}
}
