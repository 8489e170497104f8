package database

import (
	"context"
	"testing"
	"time"

	apperrors "rta-sync/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_UnreachableStoreIsConnectionFailure(t *testing.T) {
	cfg := MongoConfig{
		URI:            "mongodb://127.0.0.1:1/?directConnection=true",
		ConnectTimeout: 100 * time.Millisecond,
		MaxAttempts:    2,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
	}

	client, err := Connect(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, apperrors.IsConnection(err))
	assert.Contains(t, err.Error(), "after 2 attempt(s)")
}

func TestConnect_MalformedURIIsNotRetried(t *testing.T) {
	cfg := MongoConfig{
		URI:            "not-a-mongodb-uri",
		ConnectTimeout: 100 * time.Millisecond,
		MaxAttempts:    5,
		InitialBackoff: time.Second,
	}

	start := time.Now()
	_, err := Connect(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConnection(err))
	assert.Contains(t, err.Error(), "after 1 attempt(s)")
	assert.Less(t, time.Since(start), time.Second)
}
