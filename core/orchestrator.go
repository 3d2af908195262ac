package core

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Orchestrator struct {
	workers []Worker
	logger  *zap.Logger
	now     func() time.Time
}

func NewOrchestrator(logger *zap.Logger, workers []Worker) *Orchestrator {
	return &Orchestrator{
		workers: workers,
		logger:  logger,
		now:     time.Now,
	}
}

// Start schedules every worker and starts the cron runner. The runner is stopped when ctx is done;
// callers may also wait on the returned cron's Stop context to drain running jobs.
func (o *Orchestrator) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	for _, worker := range o.workers {
		_, err := c.AddFunc(worker.Schedule(), func() {
			if !worker.Ready(o.now()) {
				o.logger.Debug("Worker busy, skipping run", zap.String("worker", worker.Name()))
				return
			}
			worker.Execute()
		})

		if err != nil {
			return nil, fmt.Errorf("failed to schedule worker %s: %w", worker.Name(), err)
		}

		o.logger.Info("Worker scheduled",
			zap.String("worker", worker.Name()),
			zap.String("schedule", worker.Schedule()),
		)
	}

	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()

	return c, nil
}

// RunNow executes every ready worker once, synchronously.
func (o *Orchestrator) RunNow() {
	for _, worker := range o.workers {
		if worker.Ready(o.now()) {
			worker.Execute()
		}
	}
}
