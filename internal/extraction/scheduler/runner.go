package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/eventbus"
	"rta-sync/internal/shared/logger"
	"rta-sync/internal/shared/utils"

	"github.com/google/uuid"
)

// Runner executes dispatched jobs concurrently. Each dispatch gets its own
// goroutine and its own error boundary, so a failing or panicking job never
// reaches the scheduler loop or another job.
type Runner struct {
	log logger.Logger
	bus eventbus.EventBusInterface
	wg  sync.WaitGroup
}

// NewRunner creates a Runner. bus may be nil.
func NewRunner(log logger.Logger, bus eventbus.EventBusInterface) *Runner {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Runner{log: log.WithComponent("runner"), bus: bus}
}

// Dispatch starts job in the background and returns immediately
func (r *Runner) Dispatch(ctx context.Context, job Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(ctx, job)
	}()
}

// Wait blocks until every dispatched job has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}

// execute runs job once and returns its report
func (r *Runner) execute(ctx context.Context, job Job) (report RunReport) {
	d := job.Descriptor
	report = RunReport{
		RunID:     uuid.NewString(),
		Job:       d.Name,
		Kind:      d.Kind,
		Partition: d.Dataset.Partition,
		StartedAt: time.Now(),
	}

	ctx = utils.WithRun(ctx, d.Name, report.RunID)
	ctx = utils.WithPartition(ctx, d.Dataset.Partition)
	ctx = utils.WithOperation(ctx, string(d.Kind))
	log := r.log.WithContext(ctx)

	r.publish(ctx, eventbus.EventTypeJobDispatched, report)

	defer func() {
		if rec := recover(); rec != nil {
			report.Err = apperrors.NewInternalError(fmt.Sprintf("job %s panicked: %v", d.Name, rec)).
				WithComponent("runner")
		}
		report.Duration = time.Since(report.StartedAt)

		if report.Err != nil {
			log.WithFields(map[string]interface{}{"counts": report.Counts}).
				Errorf("Job failed after %.2f seconds: %v", report.Duration.Seconds(), report.Err)
			r.publish(ctx, eventbus.EventTypeJobFailed, report)
			return
		}
		log.WithFields(map[string]interface{}{"counts": report.Counts}).
			Infof("Job finished in %.2f seconds", report.Duration.Seconds())
		r.publish(ctx, eventbus.EventTypeJobSucceeded, report)
	}()

	report.Counts, report.Err = job.Run(ctx)
	return report
}

func (r *Runner) publish(ctx context.Context, eventType string, report RunReport) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventType, report, "runner")); err != nil {
		r.log.WithContext(ctx).Warnf("Failed to publish %s: %v", eventType, err)
	}
}
