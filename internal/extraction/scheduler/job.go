package scheduler

import (
	"context"
	"time"

	"rta-sync/internal/extraction/domain/model"
)

// Func is the deferred body of a job. It is called once per dispatch and never
// at registration time.
type Func func(ctx context.Context) (model.Counts, error)

// Job pairs an inert descriptor with the function it runs.
type Job struct {
	Descriptor model.JobDescriptor
	Run        Func
}

// Name returns the descriptor name
func (j Job) Name() string {
	return j.Descriptor.Name
}

// RunReport is published on the event bus for every dispatch
type RunReport struct {
	RunID     string
	Job       string
	Kind      model.JobKind
	Partition string
	StartedAt time.Time
	Duration  time.Duration
	Counts    model.Counts
	Err       error
}

// Succeeded reports whether the run finished without error
func (r RunReport) Succeeded() bool {
	return r.Err == nil
}
