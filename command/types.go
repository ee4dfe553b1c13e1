package command

import (
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-dbinfo/export"
	"github.com/goliatone/go-errors"
)

// DumpDatabase extracts a database file and writes the result to OutputDir.
type DumpDatabase struct {
	Path      string            `json:"path"`
	Kind      dbinfo.ResultKind `json:"kind"`
	Format    export.Format     `json:"format"`
	OutputDir string            `json:"output_dir"`
	Result    *DumpResult       `json:"-"`
}

// DumpResult summarizes a dump run.
type DumpResult struct {
	RunID    string
	Database string
	Kind     dbinfo.ResultKind
	Tables   int
	Skipped  dbinfo.Failures
	Report   export.Report
}

// Failures lists extraction and export failures together.
func (r DumpResult) Failures() dbinfo.Failures {
	out := make(dbinfo.Failures, 0, len(r.Skipped)+len(r.Report.Failures))
	out = append(out, r.Skipped...)
	return append(out, r.Report.Failures...)
}

func (DumpDatabase) Type() string { return "dbinfo:dump" }

func (msg DumpDatabase) Validate() error {
	if strings.TrimSpace(msg.Path) == "" {
		return errors.New("database path is required", errors.CategoryValidation).
			WithTextCode("PATH_REQUIRED")
	}
	if strings.TrimSpace(msg.OutputDir) == "" {
		return errors.New("output directory is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_DIR_REQUIRED")
	}
	switch msg.Kind {
	case "", dbinfo.ResultMetadata, dbinfo.ResultData:
	default:
		return errors.New("kind must be metadata or data", errors.CategoryValidation).
			WithTextCode("KIND_INVALID")
	}
	return nil
}
