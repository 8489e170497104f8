package repository

import (
	"context"
	"time"
)

// RunEntry records the outcome of one dispatched job
type RunEntry struct {
	RunID     string        `json:"run_id"`
	Job       string        `json:"job"`
	Kind      string        `json:"kind"`
	Partition string        `json:"partition"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Summary   string        `json:"summary,omitempty"`
}

// RunJournal keeps a bounded history of job runs
type RunJournal interface {
	Append(ctx context.Context, entry RunEntry) error
	Recent(ctx context.Context, n int64) ([]RunEntry, error)
}
