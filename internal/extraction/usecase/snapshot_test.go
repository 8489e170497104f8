package usecase_test

import (
	"context"
	"testing"

	"rta-sync/internal/extraction/domain/model"
	"rta-sync/internal/extraction/testutil"
	"rta-sync/internal/extraction/usecase"
	apperrors "rta-sync/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_SummarizesPartition(t *testing.T) {
	store := testutil.NewFakeRecordStore()
	store.Seed("labs_json",
		testutil.LabRecord("E1", "2024-03-10T08:00:00Z"),
		model.Record{"empi": "E2", "lab_date": nil},
		model.Record{"empi": "E3"},
	)

	snap, err := usecase.NewSnapshotViewer(store, nil).Snapshot(context.Background(), "labs_json", 0)

	require.NoError(t, err)
	assert.Equal(t, "labs_json", snap.Partition)
	assert.EqualValues(t, 3, snap.Rows)
	assert.Len(t, snap.Sample, 3)

	nonNull := map[string]int{}
	for _, c := range snap.Columns {
		nonNull[c.Name] = c.NonNull
	}
	assert.Equal(t, 3, nonNull["empi"])
	assert.Equal(t, 1, nonNull["lab_date"])
	assert.Equal(t, 1, nonNull["result"])
}

func TestSnapshot_SampleIsBounded(t *testing.T) {
	store := testutil.NewFakeRecordStore()
	store.Seed("labs_json", testutil.LabRecords(30, "a")...)

	snap, err := usecase.NewSnapshotViewer(store, nil).Snapshot(context.Background(), "labs_json", 5)

	require.NoError(t, err)
	assert.EqualValues(t, 30, snap.Rows)
	assert.Len(t, snap.Sample, 5)
}

func TestSnapshot_DoesNotModify(t *testing.T) {
	store := testutil.NewFakeRecordStore()
	store.Seed("labs_json", testutil.LabRecords(4, "a")...)

	_, err := usecase.NewSnapshotViewer(store, nil).Snapshot(context.Background(), "labs_json", 2)
	require.NoError(t, err)

	assert.Len(t, store.Records("labs_json"), 4)
	assert.Zero(t, store.Inserts)
	assert.Zero(t, store.DeleteCalls)
}

func TestSnapshot_EmptyPartitionName(t *testing.T) {
	_, err := usecase.NewSnapshotViewer(testutil.NewFakeRecordStore(), nil).Snapshot(context.Background(), "", 0)
	assert.True(t, apperrors.IsValidation(err))
}
