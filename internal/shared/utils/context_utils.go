package utils

import (
	"context"
	"errors"

	"rta-sync/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrJobNameNotFound    = errors.New("jobName not found in context")
	ErrJobNameNotString   = errors.New("jobName in context is not a string")
	ErrRunIDNotFound      = errors.New("runID not found in context")
	ErrRunIDNotString     = errors.New("runID in context is not a string")
	ErrPartitionNotFound  = errors.New("partition not found in context")
	ErrPartitionNotString = errors.New("partition in context is not a string")
)

// WithRun returns a context carrying the job name and run id of a dispatch.
func WithRun(ctx context.Context, jobName, runID string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.JobNameKey, jobName)
	return context.WithValue(ctx, contextkeys.RunIDKey, runID)
}

// WithPartition returns a context carrying the partition being worked on.
func WithPartition(ctx context.Context, partition string) context.Context {
	return context.WithValue(ctx, contextkeys.PartitionKey, partition)
}

// WithOperation returns a context carrying the operation kind.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, contextkeys.OperationKey, operation)
}

// GetJobNameFromContext retrieves the job name from the context.
func GetJobNameFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.JobNameKey, ErrJobNameNotFound, ErrJobNameNotString)
}

// GetRunIDFromContext retrieves the run id from the context.
func GetRunIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.RunIDKey, ErrRunIDNotFound, ErrRunIDNotString)
}

// GetPartitionFromContext retrieves the partition name from the context.
func GetPartitionFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.PartitionKey, ErrPartitionNotFound, ErrPartitionNotString)
}

func stringValue(ctx context.Context, key interface{}, notFound, notString error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", notFound
	}
	s, ok := val.(string)
	if !ok {
		return "", notString
	}
	return s, nil
}
