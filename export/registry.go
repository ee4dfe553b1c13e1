package export

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// DumperRegistry stores dumpers by format.
type DumperRegistry struct {
	mu      sync.RWMutex
	dumpers map[Format]Dumper
}

// NewDumperRegistry creates a registry.
func NewDumperRegistry() *DumperRegistry {
	return &DumperRegistry{dumpers: make(map[Format]Dumper)}
}

// DefaultDumperRegistry registers the CSV and workbook dumpers.
func DefaultDumperRegistry(csvOpts CSVOptions, xlsxOpts XLSXOptions, logger dbinfo.Logger) *DumperRegistry {
	if logger == nil {
		logger = dbinfo.NopLogger{}
	}
	reg := NewDumperRegistry()
	_ = reg.Register(FormatCSV, &CSVDumper{Options: csvOpts, Logger: logger})
	_ = reg.Register(FormatXLSX, &XLSXDumper{Options: xlsxOpts, Logger: logger})
	return reg
}

// Register adds a dumper for a format.
func (r *DumperRegistry) Register(format Format, dumper Dumper) error {
	format = NormalizeFormat(format)
	if dumper == nil {
		return dbinfo.NewError(dbinfo.KindValidation, "dumper is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dumpers[format]; exists {
		return dbinfo.NewError(dbinfo.KindValidation, fmt.Sprintf("dumper for %q already registered", format), nil)
	}
	r.dumpers[format] = dumper
	return nil
}

// Resolve returns the dumper for the format.
func (r *DumperRegistry) Resolve(format Format) (Dumper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dumper, ok := r.dumpers[NormalizeFormat(format)]
	return dumper, ok
}

// Formats lists registered formats.
func (r *DumperRegistry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.dumpers))
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		if _, ok := r.dumpers[format]; ok {
			out = append(out, format)
		}
	}
	for format := range r.dumpers {
		if format != FormatCSV && format != FormatXLSX {
			out = append(out, format)
		}
	}
	return out
}
