package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	assert.Equal(t, "rta-sync context key runID", RunIDKey.String())
}

func TestContextKeys_DoNotCollideWithStrings(t *testing.T) {
	ctx := context.WithValue(context.Background(), RunIDKey, "run-456")
	assert.Equal(t, "run-456", ctx.Value(RunIDKey))
	assert.Nil(t, ctx.Value("runID"))
}
