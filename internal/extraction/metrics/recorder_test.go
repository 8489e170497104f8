package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/scheduler"
	"rta-sync/internal/shared/eventbus"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(job string, err error, counts model.Counts) scheduler.RunReport {
	return scheduler.RunReport{
		RunID:    "run",
		Job:      job,
		Kind:     model.JobKindLoad,
		Duration: 2 * time.Second,
		Counts:   counts,
		Err:      err,
	}
}

func TestRecorder_CountsOutcomes(t *testing.T) {
	r := NewRecorder(nil)

	r.Dispatched(report("load:labs_json", nil, nil))
	r.Dispatched(report("load:labs_json", nil, nil))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.inFlight.WithLabelValues("load:labs_json")))

	r.Finished(report("load:labs_json", nil, model.Counts{"inserted": 40, "failed": 0}))
	r.Finished(report("load:labs_json", errors.New("503"), model.Counts{"inserted": 5}))

	assert.Equal(t, 0.0, testutil.ToFloat64(r.inFlight.WithLabelValues("load:labs_json")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("load:labs_json", "load", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("load:labs_json", "load", "failed")))
	assert.Equal(t, 45.0, testutil.ToFloat64(r.items.WithLabelValues("load:labs_json", "inserted")))
	// zero tallies do not create series
	assert.Equal(t, 1, testutil.CollectAndCount(r.items))
}

func TestRecorder_SubscribesToBus(t *testing.T) {
	r := NewRecorder(nil)
	bus := eventbus.NewEventBus(nil)
	r.Subscribe(bus)

	ctx := context.Background()
	rep := report("purge:meds_json", nil, model.Counts{"deleted": 3})
	rep.Kind = model.JobKindPurge
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeJobDispatched, rep, "test")))
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeJobSucceeded, rep, "test")))
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeJobSucceeded, "not a report", "test")))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("purge:meds_json", "purge", "succeeded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.items.WithLabelValues("purge:meds_json", "deleted")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder(nil)
	r.Finished(report("load:labs_json", nil, model.Counts{"inserted": 1}))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `rta_sync_job_runs_total{job="load:labs_json",kind="load",status="succeeded"} 1`))
	assert.Contains(t, body, "rta_sync_job_duration_seconds_bucket")
}
