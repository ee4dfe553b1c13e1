package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	storefs "github.com/goliatone/go-dbinfo/adapters/store/fs"
	"github.com/goliatone/go-dbinfo/dbinfo"
)

// CSVDumper writes one CSV file per table to outputDir/<db>/<table>.csv.
type CSVDumper struct {
	Options  CSVOptions
	Renderer CSVRenderer
	Logger   dbinfo.Logger
}

// NewCSVDumper creates a CSV dumper for the given separator.
func NewCSVDumper(separator rune) *CSVDumper {
	return &CSVDumper{Options: CSVOptions{Separator: separator}, Logger: dbinfo.NopLogger{}}
}

// DumpDBInfoToCSV writes result as a CSV tree below outputDir.
func DumpDBInfoToCSV(ctx context.Context, result *dbinfo.Result, outputDir string, separator rune) (Report, error) {
	return NewCSVDumper(separator).Dump(ctx, result, outputDir)
}

// Dump writes every table of result. A table that cannot be written is
// recorded and the next table is attempted; the returned error joins all
// recorded failures.
func (d *CSVDumper) Dump(ctx context.Context, result *dbinfo.Result, outputDir string) (Report, error) {
	report := Report{Format: FormatCSV}
	if err := validateResult(result, outputDir); err != nil {
		return report, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	opts := d.Options
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	if err := ValidateSeparator(opts.Separator); err != nil {
		return report, err
	}
	if _, err := newFormatContext(opts.Format); err != nil {
		return report, err
	}
	logger := d.logger()

	store := storefs.NewStore(outputDir)
	for _, db := range result.Databases() {
		set, _ := result.Tables(db)
		dir := fileName(db)
		if _, err := store.EnsureDir(ctx, dir); err != nil {
			if ctxErr := interrupted(ctx); ctxErr != nil {
				return report, ctxErr
			}
			logger.Errorf("db=%s cannot create output directory: %v", db, err)
			for _, table := range set.Tables() {
				report.Failures = append(report.Failures, writeFailure(db, table.Name, err))
			}
			continue
		}

		used := make(map[string]struct{})
		for _, table := range set.Tables() {
			if err := interrupted(ctx); err != nil {
				return report, err
			}

			key := uniqueKey(used, dir, fileName(table.Name), ".csv")
			var stats RenderStats
			info, err := store.Write(ctx, key, func(w io.Writer) error {
				var rerr error
				stats, rerr = d.Renderer.Render(ctx, table, w, opts)
				return rerr
			})
			if err != nil {
				if ctxErr := interrupted(ctx); ctxErr != nil {
					return report, ctxErr
				}
				logger.Errorf("db=%s table=%s csv write failed: %v", db, table.Name, err)
				report.Failures = append(report.Failures, writeFailure(db, table.Name, err))
				continue
			}

			logger.Debugf("db=%s table=%s rows=%d bytes=%d path=%s", db, table.Name, stats.Rows, info.Size, info.Path)
			report.Files = append(report.Files, info.Path)
			report.Artifacts = append(report.Artifacts, Artifact{
				Database:  db,
				Table:     table.Name,
				Path:      info.Path,
				Rows:      stats.Rows,
				TotalRows: int64(table.Len()),
				Bytes:     info.Size,
			})
		}
	}

	logger.Infof("csv export wrote %d files with %d failures", len(report.Files), len(report.Failures))
	return report, report.Err()
}

func (d *CSVDumper) logger() dbinfo.Logger {
	if d == nil || d.Logger == nil {
		return dbinfo.NopLogger{}
	}
	return d.Logger
}

// uniqueKey returns dir/name+ext, suffixing the name when another table of the
// same database already mapped to that file. File names compare
// case-insensitively.
func uniqueKey(used map[string]struct{}, dir, name, ext string) string {
	candidate := name
	for i := 2; ; i++ {
		lower := strings.ToLower(candidate)
		if _, ok := used[lower]; !ok {
			used[lower] = struct{}{}
			return fileKey(dir, candidate+ext)
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
}

func writeFailure(db, table string, err error) dbinfo.Failure {
	if !dbinfo.IsKind(err, dbinfo.KindWrite) {
		err = dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot export table %q", table), err)
	}
	return dbinfo.Failure{
		Database: db,
		Table:    table,
		Stage:    dbinfo.StageExport,
		Err:      err,
	}
}
