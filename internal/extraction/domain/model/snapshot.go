package model

import "sort"

// ColumnSummary counts how many sampled rows carry a non-null value for a column
type ColumnSummary struct {
	Name    string `json:"name"`
	NonNull int    `json:"non_null"`
}

// Snapshot is a read-only tabular view of a partition
type Snapshot struct {
	Partition string          `json:"partition"`
	Rows      int64           `json:"rows"`
	Columns   []ColumnSummary `json:"columns"`
	Sample    []Record        `json:"sample"`
}

// Summarize builds column summaries over the sampled rows, sorted by name.
func Summarize(sample []Record) []ColumnSummary {
	counts := make(map[string]int)
	for _, r := range sample {
		for k, v := range r {
			if _, seen := counts[k]; !seen {
				counts[k] = 0
			}
			if v != nil {
				counts[k]++
			}
		}
	}

	cols := make([]ColumnSummary, 0, len(counts))
	for name, n := range counts {
		cols = append(cols, ColumnSummary{Name: name, NonNull: n})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols
}

// ColumnNames returns the column names in display order
func (s *Snapshot) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
