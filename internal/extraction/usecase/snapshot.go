package usecase

import (
	"context"
	"fmt"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"
)

// DefaultSampleSize is how many rows a snapshot materializes when the caller
// does not say.
const DefaultSampleSize int64 = 20

// SnapshotViewer materializes a partition for diagnostics. It only reads.
type SnapshotViewer struct {
	store repository.RecordStore
	log   logger.Logger
}

// NewSnapshotViewer creates a SnapshotViewer
func NewSnapshotViewer(store repository.RecordStore, log logger.Logger) *SnapshotViewer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SnapshotViewer{store: store, log: log.WithComponent("snapshot")}
}

// Snapshot counts the partition and summarizes up to sampleSize of its rows.
func (v *SnapshotViewer) Snapshot(ctx context.Context, partition string, sampleSize int64) (*model.Snapshot, error) {
	if partition == "" {
		return nil, apperrors.NewValidationError("snapshot needs a partition").WithCause(apperrors.ErrPartitionEmpty)
	}
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	rows, err := v.store.Count(ctx, partition)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", partition, err)
	}
	sample, err := v.store.Sample(ctx, partition, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", partition, err)
	}

	snap := &model.Snapshot{
		Partition: partition,
		Rows:      rows,
		Columns:   model.Summarize(sample),
		Sample:    sample,
	}
	v.log.Debugf("Snapshot of %s: %d rows, %d columns", partition, rows, len(snap.Columns))
	return snap, nil
}
