package export

import (
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}

// fileName makes a table or database name safe for use as a single path
// element.
func fileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}

func fileKey(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, fileName(part))
	}
	return filepath.ToSlash(filepath.Join(clean...))
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s)
}
