package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"rta-sync/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_BACKEND", "ZAP")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("ENVIRONMENT", "production")

	opts := OptionsFromEnv()
	assert.Equal(t, BackendZap, opts.Backend)
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, FormatJSON, opts.Format)

	t.Setenv("ENVIRONMENT", "dev")
	assert.Equal(t, FormatText, OptionsFromEnv().Format)
}

func TestNewLogger_SelectsBackend(t *testing.T) {
	t.Setenv("LOG_BACKEND", "zap")
	_, ok := NewLogger().(*ZapLogger)
	assert.True(t, ok)

	t.Setenv("LOG_BACKEND", "")
	_, ok = NewLogger().(*LogrusLogger)
	assert.True(t, ok)
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, contextkeys.JobNameKey, "load:labs_json")
	ctx = context.WithValue(ctx, contextkeys.RunIDKey, "run-1")
	ctx = context.WithValue(ctx, contextkeys.PartitionKey, "")

	fields := fieldsFromContext(ctx)
	assert.Equal(t, "load:labs_json", fields["job"])
	assert.Equal(t, "run-1", fields["run_id"])
	_, hasPartition := fields["partition"]
	assert.False(t, hasPartition, "empty values are skipped")
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogrusLogger_JSONCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Backend: BackendLogrus, Level: "info", Format: FormatJSON, Output: &buf})

	ctx := context.WithValue(context.Background(), contextkeys.RunIDKey, "run-2")
	log.WithComponent("loader").WithContext(ctx).Infof("Loaded %d pages", 3)

	line := decodeLine(t, &buf)
	assert.Equal(t, "Loaded 3 pages", line["message"])
	assert.Equal(t, "loader", line["component"])
	assert.Equal(t, "run-2", line["run_id"])
}

func TestZapLogger_JSONCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Backend: BackendZap, Level: "not-a-level", Format: FormatJSON, Output: &buf})

	log.Debug("dropped at info")
	assert.Zero(t, buf.Len())

	log.WithComponent("purger").WithFields(map[string]interface{}{"deleted": 4}).Warn("Purge finished")
	line := decodeLine(t, &buf)
	assert.Equal(t, "Purge finished", line["message"])
	assert.Equal(t, "purger", line["component"])
	assert.EqualValues(t, 4, line["deleted"])
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.WithComponent("x").WithContext(context.Background()).Error("nothing")
}
