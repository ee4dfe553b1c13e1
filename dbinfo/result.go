package dbinfo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResultKind tells which kind of tables a Result holds.
type ResultKind string

const (
	ResultMetadata ResultKind = "metadata"
	ResultData     ResultKind = "data"
)

// TableSet is an insertion-ordered mapping of table name to Table.
type TableSet struct {
	names  []string
	tables map[string]*Table
}

func newTableSet() *TableSet {
	return &TableSet{tables: make(map[string]*Table)}
}

// Add appends a table. Names must be unique within the set.
func (s *TableSet) Add(t *Table) error {
	if t == nil {
		return NewError(KindValidation, "table is required", nil)
	}
	if _, exists := s.tables[t.Name]; exists {
		return NewError(KindValidation, fmt.Sprintf("table %q already present", t.Name), nil)
	}
	s.names = append(s.names, t.Name)
	s.tables[t.Name] = t
	return nil
}

func (s *TableSet) Get(name string) (*Table, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.tables[name]
	return t, ok
}

// Names returns table names in insertion order.
func (s *TableSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Tables returns tables in insertion order.
func (s *TableSet) Tables() []*Table {
	if s == nil {
		return nil
	}
	out := make([]*Table, len(s.names))
	for i, name := range s.names {
		out[i] = s.tables[name]
	}
	return out
}

func (s *TableSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Result maps database identifiers to their tables.
type Result struct {
	Kind    ResultKind
	RunID   string
	Skipped Failures

	order []string
	sets  map[string]*TableSet
}

// NewResult creates an empty result.
func NewResult(kind ResultKind) *Result {
	return &Result{Kind: kind, sets: make(map[string]*TableSet)}
}

// Database returns the table set for id, creating it when missing.
func (r *Result) Database(id string) *TableSet {
	if r.sets == nil {
		r.sets = make(map[string]*TableSet)
	}
	if set, ok := r.sets[id]; ok {
		return set
	}
	set := newTableSet()
	r.order = append(r.order, id)
	r.sets[id] = set
	return set
}

// Tables returns the table set for id.
func (r *Result) Tables(id string) (*TableSet, bool) {
	if r == nil {
		return nil, false
	}
	set, ok := r.sets[id]
	return set, ok
}

// Databases returns database identifiers in insertion order.
func (r *Result) Databases() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DatabaseID derives the database identifier from a file path: the base name
// without its extension.
func DatabaseID(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
