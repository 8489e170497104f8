package repository

import (
	"context"

	"rta-sync/internal/extraction/domain/model"
)

// DatedID pairs a document identifier with the raw value of its date field
type DatedID struct {
	ID   interface{}
	Date interface{}
}

// RecordStore is the document store as seen by the loader, purger and viewer.
// Implementations must be safe for concurrent use; single-document atomicity
// is all that is expected.
type RecordStore interface {
	// InsertOne appends a record to the partition as a single document.
	InsertOne(ctx context.Context, partition string, record model.Record) error

	// EnsureIndex creates the compound (date, id) ascending index. Calling it
	// again with the same spec is a no-op.
	EnsureIndex(ctx context.Context, partition string, spec model.IndexSpec) error

	// ScanDates reads the id and date field of every document. The scan cursor
	// is closed before it returns, so callers may delete freely afterwards.
	ScanDates(ctx context.Context, partition, dateField string) ([]DatedID, error)

	// DeleteByID removes exactly one document by identifier.
	DeleteByID(ctx context.Context, partition string, id interface{}) error

	// Sample returns up to limit documents for inspection.
	Sample(ctx context.Context, partition string, limit int64) ([]model.Record, error)

	// Count returns the number of documents in the partition.
	Count(ctx context.Context, partition string) (int64, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
