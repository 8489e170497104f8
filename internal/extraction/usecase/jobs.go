package usecase

import (
	"context"
	"fmt"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/scheduler"
)

// DefaultPurgeAt is the daily wall-clock time purges run at
const DefaultPurgeAt = "23:59"

// BuildDescriptors returns one load and one purge descriptor per dataset, in
// dataset order with the loads first. Loads repeat every dataset.Frequency;
// purges run daily at purgeAt.
func BuildDescriptors(datasets []model.Dataset, purgeAt string) []model.JobDescriptor {
	if purgeAt == "" {
		purgeAt = DefaultPurgeAt
	}
	out := make([]model.JobDescriptor, 0, 2*len(datasets))
	for _, ds := range datasets {
		out = append(out, model.JobDescriptor{
			Name:     model.JobName(model.JobKindLoad, ds.Partition),
			Kind:     model.JobKindLoad,
			Dataset:  ds,
			Schedule: model.EverySchedule(ds.Frequency),
		})
	}
	for _, ds := range datasets {
		out = append(out, model.JobDescriptor{
			Name:     model.JobName(model.JobKindPurge, ds.Partition),
			Kind:     model.JobKindPurge,
			Dataset:  ds,
			Schedule: model.DailySchedule(purgeAt),
		})
	}
	return out
}

// Bind attaches the operation a descriptor names. Nothing is fetched, written
// or deleted here; the returned closure does the work when the scheduler
// dispatches it.
func Bind(desc model.JobDescriptor, loader *Loader, purger *Purger, creds model.Credentials) (scheduler.Job, error) {
	var run scheduler.Func
	switch desc.Kind {
	case model.JobKindLoad:
		if loader == nil {
			return scheduler.Job{}, fmt.Errorf("job %s needs a loader", desc.Name)
		}
		ds := desc.Dataset
		run = func(ctx context.Context) (model.Counts, error) {
			res, err := loader.Load(ctx, ds, creds)
			return res.Counts(), err
		}
	case model.JobKindPurge:
		if purger == nil {
			return scheduler.Job{}, fmt.Errorf("job %s needs a purger", desc.Name)
		}
		partition, dateField := desc.Dataset.Partition, desc.Dataset.Index.DateField
		run = func(ctx context.Context) (model.Counts, error) {
			res, err := purger.Purge(ctx, partition, dateField)
			return res.Counts(), err
		}
	default:
		return scheduler.Job{}, fmt.Errorf("job %s has unknown kind %q", desc.Name, desc.Kind)
	}
	return scheduler.Job{Descriptor: desc, Run: run}, nil
}
