package scheduler

import (
	"fmt"
	"time"

	"rta-sync/internal/extraction/domain/model"

	"github.com/robfig/cron/v3"
)

// State is where a trigger sits in its Idle -> Due -> Dispatched -> Idle cycle
type State int

const (
	StateIdle State = iota
	StateDue
	StateDispatched
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDue:
		return "due"
	case StateDispatched:
		return "dispatched"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// trigger tracks the next occurrence of one registered job
type trigger struct {
	job          Job
	schedule     cron.Schedule
	state        State
	next         time.Time
	lastDispatch time.Time
	dispatches   int
}

// due reports whether the trigger's occurrence has arrived at now
func (t *trigger) due(now time.Time) bool {
	return !now.Before(t.next)
}

// advance moves the trigger past now and back to idle
func (t *trigger) advance(now time.Time) {
	t.lastDispatch = now
	t.dispatches++
	t.next = t.schedule.Next(now)
	t.state = StateIdle
}

// cronSchedule converts a model schedule into a robfig/cron schedule. Daily
// schedules follow the location of the times they are evaluated against.
func cronSchedule(s model.Schedule) (cron.Schedule, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Every > 0 {
		return cron.Every(s.Every), nil
	}
	hour, minute, err := model.ParseClock(s.DailyAt)
	if err != nil {
		return nil, err
	}
	return cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
}

// TriggerStatus is a read-only view of a trigger for diagnostics
type TriggerStatus struct {
	Name         string        `json:"name"`
	Kind         model.JobKind `json:"kind"`
	Partition    string        `json:"partition"`
	Schedule     string        `json:"schedule"`
	State        string        `json:"state"`
	Next         time.Time     `json:"next"`
	LastDispatch time.Time     `json:"last_dispatch,omitempty"`
	Dispatches   int           `json:"dispatches"`
}

func (t *trigger) status() TriggerStatus {
	d := t.job.Descriptor
	return TriggerStatus{
		Name:         d.Name,
		Kind:         d.Kind,
		Partition:    d.Dataset.Partition,
		Schedule:     d.Schedule.String(),
		State:        t.state.String(),
		Next:         t.next,
		LastDispatch: t.lastDispatch,
		Dispatches:   t.dispatches,
	}
}
