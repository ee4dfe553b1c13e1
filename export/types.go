package export

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// Format is the export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	// DefaultSeparator is the CSV field separator.
	DefaultSeparator = ','
	// DefaultMaxRecordsPerTable caps data rows per workbook sheet.
	DefaultMaxRecordsPerTable = 50000
	// DefaultIndexSheetName names the first workbook sheet.
	DefaultIndexSheetName = "Index"
	// DefaultDateTimeLayout renders datetime values in text output.
	DefaultDateTimeLayout = time.RFC3339
)

// FormatOptions controls how values are rendered.
type FormatOptions struct {
	// Timezone is an IANA name applied to datetime values.
	Timezone string
	// DateTimeLayout is a Go time layout for text output.
	DateTimeLayout string
}

// CSVOptions configures the CSV exporter.
type CSVOptions struct {
	Separator rune
	Format    FormatOptions
}

// XLSXOptions configures the workbook exporter.
type XLSXOptions struct {
	IncludeRecordCount bool
	// MaxRecordsPerTable caps data rows per sheet. Zero or less selects
	// DefaultMaxRecordsPerTable. The value is clamped to the sheet row limit.
	MaxRecordsPerTable int
	IndexSheetName     string
	Format             FormatOptions
}

// RenderStats captures output stats for a single table.
type RenderStats struct {
	Rows  int64
	Bytes int64
}

// Artifact describes one written table.
type Artifact struct {
	Database string
	Table    string
	// Sheet is the workbook sheet name; empty for CSV artifacts.
	Sheet string
	Path  string
	// Rows is the number of data rows written.
	Rows int64
	// TotalRows is the table's row count before truncation.
	TotalRows int64
	Bytes     int64
	Truncated bool
}

// Report summarizes a dump run.
type Report struct {
	Format    Format
	Files     []string
	Artifacts []Artifact
	Failures  dbinfo.Failures
}

// Err joins every recorded failure into one error, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return dbinfo.NewError(dbinfo.KindWrite, "export finished with failures", r.Failures.Err())
}

// Merge appends the artifacts, files and failures of other.
func (r *Report) Merge(other Report) {
	if r.Format == "" {
		r.Format = other.Format
	}
	r.Files = append(r.Files, other.Files...)
	r.Artifacts = append(r.Artifacts, other.Artifacts...)
	r.Failures = append(r.Failures, other.Failures...)
}

// Dumper writes an extraction result below an output directory.
type Dumper interface {
	Dump(ctx context.Context, result *dbinfo.Result, outputDir string) (Report, error)
}

// DumperFunc adapts a function to a Dumper.
type DumperFunc func(ctx context.Context, result *dbinfo.Result, outputDir string) (Report, error)

func (f DumperFunc) Dump(ctx context.Context, result *dbinfo.Result, outputDir string) (Report, error) {
	if f == nil {
		return Report{}, dbinfo.NewError(dbinfo.KindNotImpl, "dumper function is nil", nil)
	}
	return f(ctx, result, outputDir)
}

func validateResult(result *dbinfo.Result, outputDir string) error {
	if result == nil {
		return dbinfo.NewError(dbinfo.KindValidation, "extraction result is required", nil)
	}
	if outputDir == "" {
		return dbinfo.NewError(dbinfo.KindValidation, "output directory is required", nil)
	}
	return nil
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dbinfo.NewError(dbinfo.KindTimeout, "export interrupted", err)
		}
		return dbinfo.NewError(dbinfo.KindCanceled, "export interrupted", err)
	}
	return nil
}
