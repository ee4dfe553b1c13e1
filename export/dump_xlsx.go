package export

import (
	"context"
	"io"

	storefs "github.com/goliatone/go-dbinfo/adapters/store/fs"
	"github.com/goliatone/go-dbinfo/dbinfo"
)

// XLSXDumper writes one workbook per database to outputDir/<db>.xlsx.
type XLSXDumper struct {
	Options  XLSXOptions
	Renderer XLSXRenderer
	Logger   dbinfo.Logger
}

// NewXLSXDumper creates a workbook dumper.
func NewXLSXDumper(includeRecordCount bool, maxRecordsPerTable int) *XLSXDumper {
	return &XLSXDumper{
		Options: XLSXOptions{
			IncludeRecordCount: includeRecordCount,
			MaxRecordsPerTable: maxRecordsPerTable,
		},
		Logger: dbinfo.NopLogger{},
	}
}

// DumpDBInfoToExcel writes result as one workbook per database below
// outputDir.
func DumpDBInfoToExcel(ctx context.Context, result *dbinfo.Result, outputDir string, includeRecordCount bool, maxRecordsPerTable int) (Report, error) {
	return NewXLSXDumper(includeRecordCount, maxRecordsPerTable).Dump(ctx, result, outputDir)
}

// Dump writes a workbook for every database of result. Failing to produce a
// workbook file stops the run and is returned as is. Tables whose sheet could
// not be written are recorded and joined into the returned error.
func (d *XLSXDumper) Dump(ctx context.Context, result *dbinfo.Result, outputDir string) (Report, error) {
	report := Report{Format: FormatXLSX}
	if err := validateResult(result, outputDir); err != nil {
		return report, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := d.logger()

	store := storefs.NewStore(outputDir)
	used := make(map[string]struct{})
	for _, db := range result.Databases() {
		if err := interrupted(ctx); err != nil {
			return report, err
		}
		set, _ := result.Tables(db)

		key := uniqueKey(used, "", fileName(db), ".xlsx")
		var stats WorkbookStats
		info, err := store.Write(ctx, key, func(w io.Writer) error {
			var rerr error
			stats, rerr = d.Renderer.Render(ctx, db, set.Tables(), w, d.Options)
			return rerr
		})
		if err != nil {
			logger.Errorf("db=%s workbook write failed: %v", db, err)
			return report, err
		}

		for _, sheet := range stats.Sheets {
			sheet.Path = info.Path
			if sheet.Truncated {
				logger.Infof("db=%s table=%s truncated to %d of %d rows", db, sheet.Table, sheet.Rows, sheet.TotalRows)
			}
			report.Artifacts = append(report.Artifacts, sheet)
		}
		for _, failure := range stats.Failures {
			logger.Errorf("db=%s table=%s sheet skipped: %v", db, failure.Table, failure.Err)
		}
		report.Failures = append(report.Failures, stats.Failures...)
		report.Files = append(report.Files, info.Path)
		logger.Debugf("db=%s sheets=%d bytes=%d path=%s", db, len(stats.Sheets), info.Size, info.Path)
	}

	logger.Infof("xlsx export wrote %d workbooks with %d failures", len(report.Files), len(report.Failures))
	return report, report.Err()
}

func (d *XLSXDumper) logger() dbinfo.Logger {
	if d == nil || d.Logger == nil {
		return dbinfo.NopLogger{}
	}
	return d.Logger
}
