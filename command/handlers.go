package command

import (
	"context"
	"fmt"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/goliatone/go-dbinfo/export"
	"github.com/goliatone/go-errors"
)

// Extractor builds results from database files. *dbinfo.Extractor
// implements it.
type Extractor interface {
	Extract(ctx context.Context, kind dbinfo.ResultKind, path string) (*dbinfo.Result, error)
}

// DumpDatabaseHandler extracts a database and writes it with the dumper
// registered for the requested format.
type DumpDatabaseHandler struct {
	Extractor Extractor
	Dumpers   *export.DumperRegistry
}

func NewDumpDatabaseHandler(extractor Extractor, dumpers *export.DumperRegistry) *DumpDatabaseHandler {
	return &DumpDatabaseHandler{Extractor: extractor, Dumpers: dumpers}
}

// Execute stores the DumpResult even when the dumper reports failures; the
// returned error then aggregates them.
func (h *DumpDatabaseHandler) Execute(ctx context.Context, msg DumpDatabase) error {
	if h == nil || h.Extractor == nil {
		return errors.New("extractor is required", errors.CategoryInternal).
			WithTextCode("EXTRACTOR_REQUIRED")
	}
	if h.Dumpers == nil {
		return errors.New("dumper registry is required", errors.CategoryInternal).
			WithTextCode("DUMPERS_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	dumper, ok := h.Dumpers.Resolve(msg.Format)
	if !ok {
		return errors.New(fmt.Sprintf("no dumper registered for format %q", export.NormalizeFormat(msg.Format)), errors.CategoryValidation).
			WithTextCode("FORMAT_UNSUPPORTED")
	}

	kind := msg.Kind
	if kind == "" {
		kind = dbinfo.ResultMetadata
	}
	result, err := h.Extractor.Extract(ctx, kind, msg.Path)
	if err != nil {
		return err
	}

	report, dumpErr := dumper.Dump(ctx, result, msg.OutputDir)
	out := DumpResult{
		RunID:   result.RunID,
		Kind:    kind,
		Skipped: result.Skipped,
		Report:  report,
	}
	for _, id := range result.Databases() {
		out.Database = id
		if set, ok := result.Tables(id); ok {
			out.Tables += set.Len()
		}
	}

	if msg.Result != nil {
		*msg.Result = out
	}
	if res := gcmd.ResultFromContext[DumpResult](ctx); res != nil {
		res.Store(out)
	}
	return dumpErr
}
