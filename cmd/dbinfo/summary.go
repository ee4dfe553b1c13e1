package main

import (
	"fmt"
	"io"

	"github.com/goliatone/go-dbinfo/command"
	"github.com/goliatone/go-dbinfo/export"
	"github.com/jedib0t/go-pretty/v6/table"
)

// outcome is the result of processing one database file.
type outcome struct {
	Path   string
	Result command.DumpResult
	Err    error
}

// Failed reports whether the file or any of its tables failed.
func (o outcome) Failed() bool {
	return o.Err != nil || len(o.Result.Failures()) > 0
}

// fatal returns the error that stopped the file, or nil when Err only joins
// the table failures already listed in the report.
func (o outcome) fatal() error {
	if o.Err == nil {
		return nil
	}
	if reportErr := o.Result.Report.Err(); reportErr != nil && reportErr.Error() == o.Err.Error() {
		return nil
	}
	return o.Err
}

func renderSummary(w io.Writer, outcomes []outcome) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Database", "Table", "Rows", "Output", "Status"})

	var total export.Report
	fatal := 0
	for _, o := range outcomes {
		total.Merge(o.Result.Report)
		db := o.Result.Database
		if db == "" {
			db = o.Path
		}
		for _, a := range o.Result.Report.Artifacts {
			rows := fmt.Sprintf("%d", a.Rows)
			if a.Truncated {
				rows = fmt.Sprintf("%d of %d", a.Rows, a.TotalRows)
			}
			output := a.Path
			if a.Sheet != "" {
				output = fmt.Sprintf("%s [%s]", a.Path, a.Sheet)
			}
			t.AppendRow(table.Row{db, a.Table, rows, output, "ok"})
		}
		for _, f := range o.Result.Failures() {
			t.AppendRow(table.Row{db, f.Table, "", "", fmt.Sprintf("skipped (%s): %v", f.Stage, f.Err)})
		}
		if err := o.fatal(); err != nil {
			fatal++
			t.AppendRow(table.Row{db, "", "", "", "failed: " + err.Error()})
		}
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d databases, %d files, %d tables written, %d failed databases)\n",
		len(outcomes), len(total.Files), len(total.Artifacts), fatal)
}
