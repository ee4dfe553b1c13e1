package export

import (
	"fmt"
	"strings"
)

const (
	maxSheetNameLength = 31
	fallbackSheetName  = "Sheet"
)

// SanitizeSheetName maps a table name onto the workbook sheet-name rules:
// no `: \ / ? * [ ]`, no leading or trailing apostrophe, at most 31 characters.
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	name = truncateRunes(name, maxSheetNameLength)
	name = strings.TrimRight(name, "'")
	if strings.TrimSpace(name) == "" {
		return fallbackSheetName
	}
	return name
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// sheetNamer hands out unique sheet names. Sheet names compare
// case-insensitively.
type sheetNamer struct {
	used map[string]struct{}
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: make(map[string]struct{})}
	for _, name := range reserved {
		n.used[strings.ToLower(name)] = struct{}{}
	}
	return n
}

func (n *sheetNamer) next(table string) string {
	base := SanitizeSheetName(table)
	candidate := base
	for i := 2; n.taken(candidate); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = strings.TrimRight(truncateRunes(base, maxSheetNameLength-len(suffix)), "'") + suffix
	}
	n.used[strings.ToLower(candidate)] = struct{}{}
	return candidate
}

func (n *sheetNamer) release(name string) {
	delete(n.used, strings.ToLower(name))
}

func (n *sheetNamer) taken(name string) bool {
	_, ok := n.used[strings.ToLower(name)]
	return ok
}

// sheetRef builds a workbook location reference to cell A1 of sheet.
func sheetRef(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!A1"
}
