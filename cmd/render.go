package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"rta-sync/internal/extraction/domain/model"
)

// maxCell keeps wide values from wrecking the table
const maxCell = 32

func renderSnapshot(w io.Writer, snap *model.Snapshot) error {
	fmt.Fprintf(w, "Partition %s: %d rows, showing %d\n\n", snap.Partition, snap.Rows, len(snap.Sample))

	cols := snap.ColumnNames()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, row := range snap.Sample {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(row[c])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tNON-NULL")
	for _, c := range snap.Columns {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.NonNull)
	}
	return tw.Flush()
}

func renderJobs(w io.Writer, descs []model.JobDescriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tPARTITION\tSCHEDULE\tSOURCE")
	for _, d := range descs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Kind, d.Dataset.Partition, d.Schedule, d.Dataset.SourceURL)
	}
	return tw.Flush()
}

func cell(v interface{}) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprint(v)
	s = strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
	if len(s) > maxCell {
		s = s[:maxCell-3] + "..."
	}
	return s
}
