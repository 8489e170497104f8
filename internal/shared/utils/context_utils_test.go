package utils

import (
	"context"
	"testing"

	"rta-sync/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestGetSetContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRun(ctx, "load:labs_json", "run-1")
	ctx = WithPartition(ctx, "labs_json")
	ctx = WithOperation(ctx, "load")

	jobName, err := GetJobNameFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "load:labs_json", jobName)

	runID, err := GetRunIDFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	partition, err := GetPartitionFromContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "labs_json", partition)

	assert.Equal(t, "load", ctx.Value(contextkeys.OperationKey))
}

func TestContextValues_Missing(t *testing.T) {
	ctx := context.Background()

	_, err := GetJobNameFromContext(ctx)
	assert.ErrorIs(t, err, ErrJobNameNotFound)

	_, err = GetRunIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRunIDNotFound)

	_, err = GetPartitionFromContext(ctx)
	assert.ErrorIs(t, err, ErrPartitionNotFound)
}

func TestContextValues_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), contextkeys.RunIDKey, 42)

	_, err := GetRunIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrRunIDNotString)
}
