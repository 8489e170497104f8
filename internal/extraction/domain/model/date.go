package model

import (
	"fmt"
	"time"

	apperrors "rta-sync/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format of the indexed date fields (UTC, second precision).
const DateLayout = "2006-01-02T15:04:05Z"

// acceptedLayouts are tried in order. RFC3339 covers upstreams that send an
// explicit offset or fractional seconds for the same instant.
var acceptedLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseRecordDate converts a stored date field into a time. Strings must match
// one of the accepted layouts; BSON datetimes and time values pass through.
// Anything else wraps ErrUnparseableDate.
func ParseRecordDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case string:
		for _, layout := range acceptedLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrUnparseableDate, d)
	case primitive.DateTime:
		return d.Time().UTC(), nil
	case time.Time:
		return d, nil
	case nil:
		return time.Time{}, fmt.Errorf("%w: field missing", apperrors.ErrUnparseableDate)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", apperrors.ErrUnparseableDate, v)
	}
}

// Cutoff is the purge boundary: midnight of now's day, minus one day, in now's
// location. Records dated on or before it are purge-eligible.
func Cutoff(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}

// Expired reports whether date falls on or before cutoff.
func Expired(date, cutoff time.Time) bool {
	return !date.After(cutoff)
}
