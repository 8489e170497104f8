// Package scheduler drives recurring extraction and purge jobs. A single tick
// loop decides which triggers are due; the Runner executes each dispatch on its
// own goroutine.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rta-sync/internal/shared/logger"
)

// DefaultTickInterval is how often the loop checks triggers
const DefaultTickInterval = time.Second

// Dispatcher starts a job without waiting for it
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job)
}

// Scheduler owns the triggers and the tick loop.
type Scheduler struct {
	mu         sync.Mutex
	triggers   []*trigger
	names      map[string]struct{}
	dispatcher Dispatcher
	log        logger.Logger
	now        func() time.Time
	tick       time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithTickInterval sets the loop period
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// New creates a scheduler that hands due jobs to dispatcher
func New(dispatcher Dispatcher, log logger.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Scheduler{
		names:      make(map[string]struct{}),
		dispatcher: dispatcher,
		log:        log.WithComponent("scheduler"),
		now:        time.Now,
		tick:       DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterOption adjusts a single registration
type RegisterOption func(*trigger, time.Time)

// Immediately makes the trigger due at the first tick instead of after one
// full period.
func Immediately() RegisterOption {
	return func(t *trigger, now time.Time) { t.next = now }
}

// Register adds a trigger for job. It only does bookkeeping: the schedule is
// parsed and the first occurrence computed; job.Run is not called.
func (s *Scheduler) Register(job Job, opts ...RegisterOption) error {
	if job.Run == nil {
		return fmt.Errorf("scheduler: job %q has no function", job.Name())
	}
	sched, err := cronSchedule(job.Descriptor.Schedule)
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule for job %q: %w", job.Name(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[job.Name()]; exists {
		return fmt.Errorf("scheduler: duplicate job name %q", job.Name())
	}

	now := s.now()
	t := &trigger{job: job, schedule: sched, state: StateIdle, next: sched.Next(now)}
	for _, opt := range opts {
		opt(t, now)
	}

	s.names[job.Name()] = struct{}{}
	s.triggers = append(s.triggers, t)
	s.log.WithFields(map[string]interface{}{
		"job":      job.Name(),
		"schedule": job.Descriptor.Schedule.String(),
		"next":     t.next.Format(time.RFC3339),
	}).Info("Registered job")
	return nil
}

// Tick dispatches every trigger due at now and returns how many were
// dispatched. A trigger does not wait for its previous dispatch to finish.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []*trigger
	for _, t := range s.triggers {
		if t.state == StateIdle && t.due(now) {
			t.state = StateDue
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		s.mu.Lock()
		t.state = StateDispatched
		job := t.job
		s.mu.Unlock()

		s.dispatcher.Dispatch(ctx, job)

		s.mu.Lock()
		t.advance(now)
		s.mu.Unlock()
	}
	return len(due)
}

// Run ticks until ctx is cancelled. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.log.Infof("Scheduler started with %d jobs, ticking every %s", s.Len(), s.tick)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			if n := s.Tick(ctx, s.now()); n > 0 {
				s.log.Debugf("Dispatched %d job(s)", n)
			}
		}
	}
}

// Len returns the number of registered triggers
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

// Status lists every trigger sorted by name
func (s *Scheduler) Status() []TriggerStatus {
	s.mu.Lock()
	out := make([]TriggerStatus, 0, len(s.triggers))
	for _, t := range s.triggers {
		out = append(out, t.status())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
