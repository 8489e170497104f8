package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	sample := []Record{
		{"empi": "E1", "lab_date": "2024-03-09T01:00:00Z", "note": nil},
		{"empi": "E2", "lab_date": "2024-03-09T02:00:00Z", "value": 1.5},
	}

	cols := Summarize(sample)
	assert.Equal(t, []ColumnSummary{
		{Name: "empi", NonNull: 2},
		{Name: "lab_date", NonNull: 2},
		{Name: "note", NonNull: 0},
		{Name: "value", NonNull: 1},
	}, cols)

	snap := &Snapshot{Columns: cols}
	assert.Equal(t, []string{"empi", "lab_date", "note", "value"}, snap.ColumnNames())
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}
