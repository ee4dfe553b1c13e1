package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// CSVRenderer renders a single table as CSV.
type CSVRenderer struct{}

// Render writes a header line of column names followed by one line per row.
func (r CSVRenderer) Render(ctx context.Context, table *dbinfo.Table, w io.Writer, opts CSVOptions) (RenderStats, error) {
	if table == nil {
		return RenderStats{}, dbinfo.NewError(dbinfo.KindValidation, "table is required", nil)
	}
	separator := opts.Separator
	if separator == 0 {
		separator = DefaultSeparator
	}
	if err := ValidateSeparator(separator); err != nil {
		return RenderStats{}, err
	}

	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	writer := csv.NewWriter(cw)
	writer.Comma = separator

	if err := writer.Write(table.ColumnNames()); err != nil {
		return RenderStats{}, err
	}

	stats := RenderStats{}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if len(row) != len(table.Columns) {
			return stats, dbinfo.NewError(dbinfo.KindValidation, "row length does not match columns", nil)
		}
		for i, value := range row {
			record[i] = formatter.formatText(value)
		}
		if err := writer.Write(record); err != nil {
			return stats, err
		}
		stats.Rows++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, err
	}

	stats.Bytes = cw.count
	return stats, nil
}

// ValidateSeparator rejects field separators encoding/csv cannot round-trip.
func ValidateSeparator(r rune) error {
	if r == '\r' || r == '\n' || r == '"' || r == utf8.RuneError || !utf8.ValidRune(r) {
		return dbinfo.NewError(dbinfo.KindValidation, fmt.Sprintf("invalid csv separator %q", r), nil)
	}
	return nil
}

// ParseSeparator reads a separator from configuration. Empty input selects
// DefaultSeparator; "\t" and "tab" select a tab.
func ParseSeparator(raw string) (rune, error) {
	switch raw {
	case "":
		return DefaultSeparator, nil
	case `\t`, "tab", "TAB":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(raw)
	if size != len(raw) {
		return 0, dbinfo.NewError(dbinfo.KindValidation, fmt.Sprintf("csv separator %q must be a single character", raw), nil)
	}
	if err := ValidateSeparator(r); err != nil {
		return 0, err
	}
	return r, nil
}
