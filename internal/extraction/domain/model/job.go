package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "rta-sync/internal/shared/errors"
)

// JobKind selects the operation a descriptor runs
type JobKind string

const (
	JobKindLoad  JobKind = "load"
	JobKindPurge JobKind = "purge"
)

// Schedule is either a fixed interval or a daily wall-clock time. Exactly one
// of the two is set.
type Schedule struct {
	Every   time.Duration `json:"every,omitempty"`
	DailyAt string        `json:"daily_at,omitempty"`
}

// EverySchedule returns a fixed-interval schedule
func EverySchedule(d time.Duration) Schedule {
	return Schedule{Every: d}
}

// DailySchedule returns a once-a-day schedule at HH:MM
func DailySchedule(hhmm string) Schedule {
	return Schedule{DailyAt: hhmm}
}

// Validate checks that exactly one form is set and well formed
func (s Schedule) Validate() error {
	switch {
	case s.Every > 0 && s.DailyAt != "":
		return apperrors.NewValidationError("schedule sets both an interval and a daily time")
	case s.Every > 0:
		if s.Every < time.Second {
			return apperrors.NewValidationError("schedule interval must be at least one second")
		}
		return nil
	case s.DailyAt != "":
		_, _, err := ParseClock(s.DailyAt)
		return err
	default:
		return apperrors.NewValidationError("schedule sets neither an interval nor a daily time")
	}
}

// String renders the schedule for logs and the admin API
func (s Schedule) String() string {
	if s.DailyAt != "" {
		return "daily at " + s.DailyAt
	}
	return "every " + s.Every.String()
}

// ParseClock parses an HH:MM wall-clock time
func ParseClock(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, apperrors.NewValidationError(fmt.Sprintf("time %q is not HH:MM", hhmm))
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, apperrors.NewValidationError(fmt.Sprintf("time %q is not HH:MM", hhmm))
	}
	return hour, minute, nil
}

// JobDescriptor is the inert definition of one recurring unit of work. It is
// built once from configuration and never mutated.
type JobDescriptor struct {
	Name     string   `json:"name"`
	Kind     JobKind  `json:"kind"`
	Dataset  Dataset  `json:"dataset"`
	Schedule Schedule `json:"schedule"`
}

// JobName derives the conventional descriptor name, e.g. "load:labs_json"
func JobName(kind JobKind, partition string) string {
	return string(kind) + ":" + partition
}
