package main

import (
	"bytes"
	"testing"

	"github.com/goliatone/go-dbinfo/command"
	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-dbinfo/export"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummary_WorkbookFailureAfterExtraction(t *testing.T) {
	buf := &bytes.Buffer{}
	renderSummary(buf, []outcome{{
		Path: "sales.db",
		Result: command.DumpResult{
			RunID:    "run-1",
			Database: "sales",
			Report:   export.Report{Format: export.FormatXLSX},
		},
		Err: dbinfo.NewError(dbinfo.KindWrite, "cannot write workbook", nil),
	}})

	out := buf.String()
	assert.Contains(t, out, "failed: ")
	assert.Contains(t, out, "cannot write workbook")
	assert.Contains(t, out, "(1 databases, 0 files, 0 tables written, 1 failed databases)")
}

func TestRenderSummary_TableFailuresAreNotRepeated(t *testing.T) {
	report := export.Report{
		Format:    export.FormatCSV,
		Files:     []string{"out/sales/Customers.csv"},
		Artifacts: []export.Artifact{{Database: "sales", Table: "Customers", Path: "out/sales/Customers.csv", Rows: 2, TotalRows: 2}},
		Failures: dbinfo.Failures{{
			Database: "sales",
			Table:    "Orders",
			Stage:    dbinfo.StageExport,
			Err:      dbinfo.NewError(dbinfo.KindWrite, "disk full", nil),
		}},
	}
	hr := export.Report{
		Format:    export.FormatCSV,
		Files:     []string{"out/hr/Staff.csv"},
		Artifacts: []export.Artifact{{Database: "hr", Table: "Staff", Path: "out/hr/Staff.csv", Rows: 1, TotalRows: 1}},
	}

	buf := &bytes.Buffer{}
	renderSummary(buf, []outcome{
		{Path: "sales.db", Result: command.DumpResult{RunID: "run-1", Database: "sales", Report: report}, Err: report.Err()},
		{Path: "hr.db", Result: command.DumpResult{RunID: "run-2", Database: "hr", Report: hr}},
	})

	out := buf.String()
	assert.Contains(t, out, "skipped (export)")
	assert.NotContains(t, out, "failed: ")
	assert.Contains(t, out, "(2 databases, 2 files, 2 tables written, 0 failed databases)")
}
