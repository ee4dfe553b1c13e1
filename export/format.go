package export

import "strings"

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatCSV), "text", "txt":
		return FormatCSV
	case string(FormatXLSX), "excel", "xls", "workbook":
		return FormatXLSX
	default:
		return Format(normalized)
	}
}
