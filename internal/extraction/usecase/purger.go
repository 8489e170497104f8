package usecase

import (
	"context"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"
	"rta-sync/internal/shared/utils"
)

// Clock returns the current time
type Clock func() time.Time

// Purger enforces the rolling retention window on a partition.
type Purger struct {
	store repository.RecordStore
	log   logger.Logger
	now   Clock
}

// NewPurger creates a Purger. A nil clock means time.Now in UTC.
func NewPurger(store repository.RecordStore, log logger.Logger, now Clock) *Purger {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Purger{
		store: store,
		log:   log.WithComponent("purger"),
		now:   now,
	}
}

// Purge deletes every record in partition whose dateField is on or before
// model.Cutoff(now). Identifiers are collected first and the scan is closed
// before any delete is issued. Records with an unparseable date are reported
// and kept; a failed delete is reported and the rest still go ahead.
func (p *Purger) Purge(ctx context.Context, partition, dateField string) (model.PurgeResult, error) {
	ctx = utils.WithPartition(ctx, partition)
	log := p.log.WithContext(ctx)

	var result model.PurgeResult
	if partition == "" {
		return result, apperrors.NewValidationError("purge needs a partition").WithCause(apperrors.ErrPartitionEmpty)
	}

	start := time.Now()
	cutoff := model.Cutoff(p.now())
	defer func() {
		log.WithFields(map[string]interface{}{
			"cutoff":      cutoff.Format(model.DateLayout),
			"scanned":     result.Scanned,
			"deleted":     result.Deleted,
			"unparseable": result.Unparseable,
			"failed":      result.Failed,
		}).Infof("Spent %.2f seconds clearing the data from %s.", time.Since(start).Seconds(), partition)
	}()

	candidates, err := p.store.ScanDates(ctx, partition, dateField)
	if err != nil {
		log.Errorf("Failed to scan partition: %v", err)
		return result, err
	}
	result.Scanned = len(candidates)

	expired := make([]interface{}, 0, len(candidates))
	for _, c := range candidates {
		date, err := model.ParseRecordDate(c.Date)
		if err != nil {
			result.Unparseable++
			log.WithFields(map[string]interface{}{"id": c.ID, "field": dateField}).
				Warnf("Skipping record with unparseable date: %v", err)
			continue
		}
		if model.Expired(date, cutoff) {
			expired = append(expired, c.ID)
		}
	}

	for _, id := range expired {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := p.store.DeleteByID(ctx, partition, id); err != nil {
			result.Failed++
			log.WithFields(map[string]interface{}{"id": id}).Warnf("Failed to delete record: %v", err)
			continue
		}
		result.Deleted++
	}

	return result, nil
}
