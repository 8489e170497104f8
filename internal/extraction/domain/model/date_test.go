package model

import (
	"testing"
	"time"

	apperrors "rta-sync/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCutoff_IsYesterdayMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), Cutoff(now))

	justAfterMidnight := time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Cutoff(justAfterMidnight))
}

func TestCutoff_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2024, 3, 10, 1, 30, 0, 0, loc)
	cutoff := Cutoff(now)
	assert.Equal(t, loc, cutoff.Location())
	assert.Equal(t, 9, cutoff.Day())
}

func TestExpired_RetentionBoundary(t *testing.T) {
	cutoff := Cutoff(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	cases := []struct {
		name    string
		date    string
		expired bool
	}{
		{"a minute before cutoff", "2024-03-08T23:59:00Z", true},
		{"exactly at cutoff", "2024-03-09T00:00:00Z", true},
		{"an hour after cutoff", "2024-03-09T01:00:00Z", false},
		{"today", "2024-03-10T11:00:00Z", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseRecordDate(tc.date)
			require.NoError(t, err)
			assert.Equal(t, tc.expired, Expired(d, cutoff))
		})
	}
}

func TestParseRecordDate(t *testing.T) {
	want := time.Date(2024, 3, 8, 23, 59, 0, 0, time.UTC)

	got, err := ParseRecordDate("2024-03-08T23:59:00Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = ParseRecordDate("2024-03-08T18:59:00-05:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = ParseRecordDate(primitive.NewDateTimeFromTime(want))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = ParseRecordDate(want)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestParseRecordDate_Failures(t *testing.T) {
	for _, v := range []interface{}{"03/08/2024", "2024-03-08", "", nil, 1710000000, true} {
		_, err := ParseRecordDate(v)
		assert.Error(t, err, "%v", v)
		assert.True(t, apperrors.IsParse(err))
	}
}
