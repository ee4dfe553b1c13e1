package export

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/xuri/excelize/v2"
)

const (
	excelMaxRows      = 1048576
	defaultDateTime   = "yyyy-mm-dd hh:mm:ss"
	headerFillColor   = "D9D9D9"
	headerFontSize    = 12
	linkFontColor     = "0563C1"
	minColumnWidth    = 8
	maxColumnWidth    = 100
	headerWidthFactor = 1.5
	indexTableHeader  = "Table"
	indexCountHeader  = "Records"
)

// WorkbookStats describes a rendered workbook.
type WorkbookStats struct {
	Sheets   []Artifact
	Failures dbinfo.Failures
	Bytes    int64
}

// XLSXRenderer renders the tables of one database into a workbook.
type XLSXRenderer struct{}

// Render writes an index sheet followed by one sheet per table. A table that
// cannot be written is removed from the workbook and recorded in
// WorkbookStats.Failures; the remaining sheets are still written to w.
func (r XLSXRenderer) Render(ctx context.Context, database string, tables []*dbinfo.Table, w io.Writer, opts XLSXOptions) (WorkbookStats, error) {
	wb, err := newWorkbook(opts)
	if err != nil {
		return WorkbookStats{}, err
	}
	defer func() {
		_ = wb.file.Close()
	}()

	stats := WorkbookStats{}
	for _, table := range tables {
		if err := interrupted(ctx); err != nil {
			return stats, err
		}
		if table == nil {
			continue
		}
		artifact, err := wb.addTable(ctx, table)
		if err != nil {
			if ctxErr := interrupted(ctx); ctxErr != nil {
				return stats, ctxErr
			}
			stats.Failures = append(stats.Failures, dbinfo.Failure{
				Database: database,
				Table:    table.Name,
				Stage:    dbinfo.StageExport,
				Err:      dbinfo.NewError(dbinfo.KindWrite, fmt.Sprintf("cannot write sheet for table %q", table.Name), err),
			})
			continue
		}
		artifact.Database = database
		stats.Sheets = append(stats.Sheets, artifact)
	}

	if err := wb.writeIndex(stats.Sheets); err != nil {
		return stats, dbinfo.NewError(dbinfo.KindWrite, "cannot write index sheet", err)
	}

	cw := &countingWriter{w: w}
	if _, err := wb.file.WriteTo(cw); err != nil {
		return stats, dbinfo.NewError(dbinfo.KindWrite, "cannot write workbook", err)
	}
	stats.Bytes = cw.count
	return stats, nil
}

type workbook struct {
	file         *excelize.File
	styles       *xlsxStyles
	namer        *sheetNamer
	formatter    formatContext
	indexSheet   string
	includeCount bool
	maxRows      int
}

func newWorkbook(opts XLSXOptions) (*workbook, error) {
	formatter, err := newFormatContext(opts.Format)
	if err != nil {
		return nil, err
	}

	indexName := opts.IndexSheetName
	if indexName == "" {
		indexName = DefaultIndexSheetName
	}
	indexName = SanitizeSheetName(indexName)

	file := excelize.NewFile()
	if defaultSheet := file.GetSheetName(0); defaultSheet != indexName {
		file.SetSheetName(defaultSheet, indexName)
	}

	styles, err := buildXLSXStyles(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &workbook{
		file:         file,
		styles:       styles,
		namer:        newSheetNamer(indexName),
		formatter:    formatter,
		indexSheet:   indexName,
		includeCount: opts.IncludeRecordCount,
		maxRows:      sheetRowCap(opts.MaxRecordsPerTable),
	}, nil
}

// sheetRowCap returns the number of data rows a sheet may hold. One sheet row
// is taken by the header.
func sheetRowCap(requested int) int {
	if requested <= 0 {
		requested = DefaultMaxRecordsPerTable
	}
	if requested > excelMaxRows-1 {
		requested = excelMaxRows - 1
	}
	return requested
}

func (wb *workbook) addTable(ctx context.Context, table *dbinfo.Table) (Artifact, error) {
	sheet := wb.namer.next(table.Name)
	if _, err := wb.file.NewSheet(sheet); err != nil {
		wb.namer.release(sheet)
		return Artifact{}, err
	}

	rows := table.Head(wb.maxRows)
	written, err := wb.streamSheet(ctx, sheet, table.Columns, rows)
	if err != nil {
		wb.discard(sheet)
		return Artifact{}, err
	}

	total := int64(table.Len())
	return Artifact{
		Table:     table.Name,
		Sheet:     sheet,
		Rows:      written,
		TotalRows: total,
		Truncated: written < total,
	}, nil
}

func (wb *workbook) streamSheet(ctx context.Context, sheet string, columns []dbinfo.Column, rows []dbinfo.Row) (int64, error) {
	stream, err := wb.file.NewStreamWriter(sheet)
	if err != nil {
		return 0, err
	}

	for i, width := range wb.columnWidths(columns, rows) {
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			_ = stream.Flush()
			return 0, err
		}
	}

	if len(columns) > 0 {
		header := make([]interface{}, len(columns))
		for i, col := range columns {
			header[i] = excelize.Cell{StyleID: wb.styles.headerID, Value: col.Name}
		}
		if err := stream.SetRow("A1", header); err != nil {
			_ = stream.Flush()
			return 0, err
		}
	}

	var written int64
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			_ = stream.Flush()
			return written, err
		}
		if len(row) != len(columns) {
			_ = stream.Flush()
			return written, dbinfo.NewError(dbinfo.KindValidation, "row length does not match columns", nil)
		}
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = wb.cell(value)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = stream.Flush()
			return written, err
		}
		if err := stream.SetRow(cell, cells); err != nil {
			_ = stream.Flush()
			return written, err
		}
		written++
	}

	if err := stream.Flush(); err != nil {
		return written, err
	}
	if len(columns) > 0 {
		if err := wb.file.AutoFilter(sheet, filterRange(len(columns), written), nil); err != nil {
			return written, err
		}
	}
	return written, nil
}

// filterRange covers the header and every written row.
func filterRange(columns int, rows int64) string {
	lastCol, _ := excelize.ColumnNumberToName(columns)
	return fmt.Sprintf("A1:%s%d", lastCol, rows+1)
}

func (wb *workbook) cell(value dbinfo.Value) excelize.Cell {
	styleID := 0
	if value.Type() == dbinfo.TypeDateTime {
		styleID = wb.styles.dateTimeID
	}
	return excelize.Cell{StyleID: styleID, Value: wb.formatter.cellValue(value)}
}

func (wb *workbook) discard(sheet string) {
	wb.file.DeleteSheet(sheet)
	wb.namer.release(sheet)
}

// columnWidths sizes each column from its header and the rows being written.
func (wb *workbook) columnWidths(columns []dbinfo.Column, rows []dbinfo.Row) []float64 {
	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = float64(textWidth(col.Name)) * headerWidthFactor
	}
	for _, row := range rows {
		for i, value := range row {
			if i >= len(widths) {
				break
			}
			if w := float64(textWidth(wb.formatter.formatText(value))); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, w := range widths {
		widths[i] = math.Min(math.Max(w+2, minColumnWidth), maxColumnWidth)
	}
	return widths
}

// writeIndex fills the index sheet with one row per written table, each name
// linked to its sheet.
func (wb *workbook) writeIndex(sheets []Artifact) error {
	header := []interface{}{indexTableHeader}
	lastCol := "A"
	if wb.includeCount {
		header = append(header, indexCountHeader)
		lastCol = "B"
	}
	if err := wb.file.SetSheetRow(wb.indexSheet, "A1", &header); err != nil {
		return err
	}
	if err := wb.file.SetCellStyle(wb.indexSheet, "A1", lastCol+"1", wb.styles.headerID); err != nil {
		return err
	}

	nameWidth := float64(textWidth(indexTableHeader)) * headerWidthFactor
	for i, artifact := range sheets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{artifact.Table}
		if wb.includeCount {
			row = append(row, artifact.TotalRows)
		}
		if err := wb.file.SetSheetRow(wb.indexSheet, cell, &row); err != nil {
			return err
		}
		if err := wb.file.SetCellHyperLink(wb.indexSheet, cell, sheetRef(artifact.Sheet), "Location"); err != nil {
			return err
		}
		if err := wb.file.SetCellStyle(wb.indexSheet, cell, cell, wb.styles.linkID); err != nil {
			return err
		}
		if w := float64(textWidth(artifact.Table)); w > nameWidth {
			nameWidth = w
		}
	}

	if err := wb.file.SetColWidth(wb.indexSheet, "A", "A", math.Min(nameWidth+2, maxColumnWidth)); err != nil {
		return err
	}
	if wb.includeCount {
		if err := wb.file.SetColWidth(wb.indexSheet, "B", "B", float64(textWidth(indexCountHeader))*headerWidthFactor+2); err != nil {
			return err
		}
	}
	if len(sheets) > 0 {
		if err := wb.file.AutoFilter(wb.indexSheet, filterRange(len(header), int64(len(sheets))), nil); err != nil {
			return err
		}
	}
	wb.file.SetActiveSheet(0)
	return nil
}

type xlsxStyles struct {
	headerID   int
	dateTimeID int
	linkID     int
}

func buildXLSXStyles(file *excelize.File) (*xlsxStyles, error) {
	headerID, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: headerFontSize},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return nil, err
	}

	format := defaultDateTime
	dateTimeID, err := file.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return nil, err
	}

	linkID, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: linkFontColor, Underline: "single"},
	})
	if err != nil {
		return nil, err
	}

	return &xlsxStyles{
		headerID:   headerID,
		dateTimeID: dateTimeID,
		linkID:     linkID,
	}, nil
}
