package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/domain/repository"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/logger"
	"rta-sync/internal/shared/utils"
)

// Loader copies one paginated dataset from the remote source into its partition.
type Loader struct {
	source   repository.SourceClient
	store    repository.RecordStore
	log      logger.Logger
	maxPages int
}

// NewLoader creates a Loader. maxPages caps a single run; 0 means unlimited.
func NewLoader(source repository.SourceClient, store repository.RecordStore, log logger.Logger, maxPages int) *Loader {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Loader{
		source:   source,
		store:    store,
		log:      log.WithComponent("loader"),
		maxPages: maxPages,
	}
}

// Load follows continuation links from dataset.SourceURL until a page has no
// "next" link. Every item is inserted as its own document, without
// deduplication, and the partition index is ensured once per page.
//
// A fetch or decode failure stops pagination and is returned; records already
// inserted stay. Insert and index failures are logged and counted, and the run
// carries on.
func (l *Loader) Load(ctx context.Context, dataset model.Dataset, creds model.Credentials) (model.LoadResult, error) {
	ctx = utils.WithPartition(ctx, dataset.Partition)
	log := l.log.WithContext(ctx)

	var result model.LoadResult
	start := time.Now()
	defer func() {
		log.WithFields(map[string]interface{}{
			"pages":    result.Pages,
			"inserted": result.Inserted,
			"failed":   result.Failed,
		}).Infof("Spent %.2f seconds loading data into %s.", time.Since(start).Seconds(), dataset.Partition)
	}()

	visited := make(map[string]struct{})
	next := dataset.SourceURL
	for next != "" {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, seen := visited[next]; seen {
			return result, apperrors.NewFetchError(fmt.Sprintf("page %s was already fetched in this run", next)).
				WithCause(apperrors.ErrPaginationCycle).
				WithComponent("loader")
		}
		if l.maxPages > 0 && result.Pages >= l.maxPages {
			return result, apperrors.NewFetchError(fmt.Sprintf("stopped after %d pages", result.Pages)).
				WithCause(apperrors.ErrPageLimit).
				WithComponent("loader")
		}
		visited[next] = struct{}{}

		page, err := l.source.FetchPage(ctx, next, creds)
		if err != nil {
			log.WithFields(map[string]interface{}{"url": next, "page": result.Pages + 1}).
				Errorf("Fetch failed, abandoning the remaining pages: %v", err)
			return result, fmt.Errorf("page %d of %s: %w", result.Pages+1, dataset.Partition, err)
		}
		result.Pages++

		if err := l.insertPage(ctx, log, dataset.Partition, page.Items, &result); err != nil {
			return result, err
		}

		if err := l.store.EnsureIndex(ctx, dataset.Partition, dataset.Index); err != nil {
			log.WithFields(map[string]interface{}{"index": dataset.Index.Name()}).
				Warnf("Failed to ensure index: %v", err)
		}

		href, ok := page.Next()
		if !ok {
			break
		}
		next = resolveLink(next, href)
	}

	return result, nil
}

// insertPage stops early only when ctx is done; insert failures are counted.
func (l *Loader) insertPage(ctx context.Context, log logger.Logger, partition string, items []model.Record, result *model.LoadResult) error {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			log.Warnf("Stopping mid-page with %d of %d items left: %v", len(items)-i, len(items), err)
			return err
		}
		if err := l.store.InsertOne(ctx, partition, item); err != nil {
			result.Failed++
			log.WithFields(map[string]interface{}{"page": result.Pages, "item": i}).
				Warnf("Failed to insert record: %v", err)
			continue
		}
		result.Inserted++
	}
	return nil
}

// resolveLink resolves href against the page it was found on so relative
// continuation links work. Unparseable input is returned unchanged and will
// fail at fetch time.
func resolveLink(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
