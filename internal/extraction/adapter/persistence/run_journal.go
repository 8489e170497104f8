package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rta-sync/internal/extraction/domain/repository"
	"rta-sync/internal/extraction/scheduler"
	"rta-sync/internal/shared/eventbus"
	"rta-sync/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// DefaultJournalStream is the stream key run entries are appended to
const DefaultJournalStream = "rta-sync:runs"

// RedisRunJournal keeps recent job runs in a capped Redis stream.
type RedisRunJournal struct {
	client *redis.Client
	stream string
	maxLen int64
	logger logger.Logger
}

var _ repository.RunJournal = (*RedisRunJournal)(nil)

// NewRedisRunJournal creates a journal on stream, trimmed to about maxLen entries
func NewRedisRunJournal(client *redis.Client, stream string, maxLen int64, log logger.Logger) *RedisRunJournal {
	if stream == "" {
		stream = DefaultJournalStream
	}
	if maxLen <= 0 {
		maxLen = 10000
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisRunJournal{client: client, stream: stream, maxLen: maxLen, logger: log.WithComponent("run_journal")}
}

// Append adds entry to the stream
func (j *RedisRunJournal) Append(ctx context.Context, entry repository.RunEntry) error {
	_, err := j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Approx: true,
		Values: entryValues(entry),
	}).Result()
	if err != nil {
		return fmt.Errorf("append run %s: %w", entry.RunID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first
func (j *RedisRunJournal) Recent(ctx context.Context, n int64) ([]repository.RunEntry, error) {
	msgs, err := j.client.XRevRangeN(ctx, j.stream, "+", "-", n).Result()
	if err != nil {
		if err == redis.Nil {
			return []repository.RunEntry{}, nil
		}
		return nil, fmt.Errorf("read run journal: %w", err)
	}
	out := make([]repository.RunEntry, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, parseEntry(msg))
	}
	return out, nil
}

// Subscribe appends an entry for every finished run published on bus
func (j *RedisRunJournal) Subscribe(bus eventbus.EventBusInterface) {
	handler := func(ctx context.Context, event eventbus.Event) error {
		report, ok := event.Data().(scheduler.RunReport)
		if !ok {
			return nil
		}
		return j.Append(ctx, EntryFromReport(report))
	}
	bus.Subscribe(eventbus.EventTypeJobSucceeded, handler)
	bus.Subscribe(eventbus.EventTypeJobFailed, handler)
}

// EntryFromReport flattens a run report into a journal entry
func EntryFromReport(r scheduler.RunReport) repository.RunEntry {
	entry := repository.RunEntry{
		RunID:     r.RunID,
		Job:       r.Job,
		Kind:      string(r.Kind),
		Partition: r.Partition,
		Status:    "succeeded",
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Summary:   summarize(r.Counts),
	}
	if r.Err != nil {
		entry.Status = "failed"
		entry.Error = r.Err.Error()
	}
	return entry
}

func entryValues(e repository.RunEntry) map[string]interface{} {
	return map[string]interface{}{
		"runId":     e.RunID,
		"job":       e.Job,
		"kind":      e.Kind,
		"partition": e.Partition,
		"status":    e.Status,
		"error":     e.Error,
		"startedAt": e.StartedAt.UnixNano(),
		"duration":  int64(e.Duration),
		"summary":   e.Summary,
	}
}

// parseEntry converts a stream message back into an entry. Missing or
// malformed fields are left zero.
func parseEntry(msg redis.XMessage) repository.RunEntry {
	str := func(key string) string {
		s, _ := msg.Values[key].(string)
		return s
	}
	entry := repository.RunEntry{
		RunID:     str("runId"),
		Job:       str("job"),
		Kind:      str("kind"),
		Partition: str("partition"),
		Status:    str("status"),
		Error:     str("error"),
		Summary:   str("summary"),
	}
	if ns, err := strconv.ParseInt(str("startedAt"), 10, 64); err == nil {
		entry.StartedAt = time.Unix(0, ns).UTC()
	}
	if d, err := strconv.ParseInt(str("duration"), 10, 64); err == nil {
		entry.Duration = time.Duration(d)
	}
	return entry
}
