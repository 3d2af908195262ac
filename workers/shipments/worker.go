// Package shipments holds the site's periodic shipment jobs.
package shipments

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"parcel-shipping-service/shipments/models"
)

type OpenShipmentLister interface {
	GetOpenShipments(ctx context.Context) ([]models.Shipment, error)
}

// Sweep is the outcome of one overdue pass.
type Sweep struct {
	CheckedAt time.Time `json:"checked_at"`
	Open      int       `json:"open"`
	Overdue   []string  `json:"overdue"`
}

// OverdueWorker flags open shipments whose expected delivery date has passed.
type OverdueWorker struct {
	logger   *zap.Logger
	repo     OpenShipmentLister
	schedule string
	timeout  time.Duration
	now      func() time.Time

	mu   sync.Mutex
	busy bool
	last *Sweep
}

func NewOverdueWorker(logger *zap.Logger, repo OpenShipmentLister, schedule string) *OverdueWorker {
	return &OverdueWorker{
		logger:   logger,
		repo:     repo,
		schedule: schedule,
		timeout:  time.Minute,
		now:      time.Now,
	}
}

func (w *OverdueWorker) Name() string {
	return "overdue-shipments"
}

func (w *OverdueWorker) Schedule() string {
	return w.schedule
}

func (w *OverdueWorker) Ready(time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.busy
}

func (w *OverdueWorker) Execute() {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	w.logger.Info("Starting overdue shipment sweep.")

	shipments, err := w.repo.GetOpenShipments(ctx)
	if err != nil {
		w.logger.Error("Failed to load open shipments", zap.Error(err))
		return
	}

	now := w.now()
	sweep := &Sweep{CheckedAt: now, Open: len(shipments), Overdue: []string{}}

	for _, sh := range shipments {
		if !sh.IsOverdue(now) {
			continue
		}
		sweep.Overdue = append(sweep.Overdue, sh.TrackingNumber)
		w.logger.Warn("Shipment is past its expected delivery date",
			zap.String("tracking_number", sh.TrackingNumber),
			zap.String("status", string(sh.Status)),
			zap.Timep("expected_delivery_date", sh.ExpectedDeliveryDate),
		)
	}

	w.mu.Lock()
	w.last = sweep
	w.mu.Unlock()

	w.logger.Info("Overdue shipment sweep completed",
		zap.Int("open", sweep.Open),
		zap.Int("overdue", len(sweep.Overdue)),
	)
}

// LastSweep returns a copy of the most recent sweep, or nil before the first run.
func (w *OverdueWorker) LastSweep() *Sweep {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return nil
	}
	cp := *w.last
	cp.Overdue = append([]string(nil), w.last.Overdue...)
	return &cp
}
