package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/testutil"
	"rta-sync/internal/extraction/usecase"
	apperrors "rta-sync/internal/shared/errors"
	"rta-sync/internal/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestClient_FetchPage(t *testing.T) {
	srv := testutil.NewPageServer(testutil.LabRecords(3, "a"), testutil.LabRecords(1, "b"))
	defer srv.Close()

	page, err := NewClient(time.Second, nil).FetchPage(context.Background(), srv.FirstURL(), testutil.Credentials())

	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	next, ok := page.Next()
	assert.True(t, ok)
	assert.Equal(t, srv.URL+"/page/1", next)
}

func TestClient_PropagatesRunID(t *testing.T) {
	srv := testutil.NewPageServer(testutil.LabRecords(1, "a"))
	defer srv.Close()
	client := NewClient(time.Second, nil)

	_, err := client.FetchPage(context.Background(), srv.FirstURL(), testutil.Credentials())
	require.NoError(t, err)
	assert.Empty(t, srv.LastRequestID())

	ctx := utils.WithRun(context.Background(), "load:labs_json", "run-77")
	_, err = client.FetchPage(ctx, srv.FirstURL(), testutil.Credentials())
	require.NoError(t, err)
	assert.Equal(t, "run-77", srv.LastRequestID())
}

func TestClient_SendsBasicAuth(t *testing.T) {
	srv := testutil.NewPageServer(testutil.LabRecords(1, "a"))
	defer srv.Close()

	_, err := NewClient(time.Second, nil).FetchPage(context.Background(), srv.FirstURL(), model.Credentials{Username: "reader", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
	assert.Contains(t, err.Error(), "401")
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, nil).FetchPage(context.Background(), srv.URL, testutil.Credentials())

	assert.True(t, apperrors.IsFetch(err))
}

func TestClient_PreservesNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"empi":9007199254740993,"count":7,"value":4.25,"lab_date":"2024-03-10T08:00:00Z"}],"links":[]}`))
	}))
	defer srv.Close()

	page, err := NewClient(time.Second, nil).FetchPage(context.Background(), srv.URL, testutil.Credentials())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	item := page.Items[0]

	assert.Equal(t, json.Number("9007199254740993"), item["empi"])
	assert.Equal(t, json.Number("7"), item["count"])

	raw, err := bson.Marshal(bson.M(item.Document()))
	require.NoError(t, err)
	var stored bson.M
	require.NoError(t, bson.Unmarshal(raw, &stored))
	assert.Equal(t, int64(9007199254740993), stored["empi"])
	assert.Equal(t, int64(7), stored["count"])
	assert.Equal(t, 4.25, stored["value"])
}

func TestClient_UnsupportedScheme(t *testing.T) {
	_, err := NewClient(time.Second, nil).FetchPage(context.Background(), "ftp://rta.example.com/ords/labs", testutil.Credentials())

	require.Error(t, err)
	assert.True(t, apperrors.IsFetch(err))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, nil).FetchPage(context.Background(), srv.URL, testutil.Credentials())

	assert.True(t, apperrors.IsParse(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(50*time.Millisecond, nil).FetchPage(context.Background(), srv.URL, testutil.Credentials())

	assert.True(t, apperrors.IsFetch(err))
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(time.Second, nil).FetchPage(ctx, "http://127.0.0.1:1/", testutil.Credentials())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_LoaderFollowsServerPages(t *testing.T) {
	srv := testutil.NewPageServer(testutil.LabRecords(25, "a"), testutil.LabRecords(25, "b"), testutil.LabRecords(7, "c"))
	defer srv.Close()
	store := testutil.NewFakeRecordStore()

	loader := usecase.NewLoader(NewClient(time.Second, nil), store, nil, 0)
	res, err := loader.Load(context.Background(), testutil.LabsDataset(srv.FirstURL()), testutil.Credentials())

	require.NoError(t, err)
	assert.Equal(t, model.LoadResult{Pages: 3, Inserted: 57}, res)
	assert.Equal(t, 3, srv.TotalHits())
	assert.Equal(t, 1, srv.Hits("/page/2"))
	assert.Len(t, store.Indexes("labs_json"), 1)
}
