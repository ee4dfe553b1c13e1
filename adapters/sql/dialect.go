package dbinfosql

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// Dialect holds the catalog statements and quoting rules for a driver family.
type Dialect struct {
	Name string
	// TablesQuery returns one column of user table names in enumeration order.
	TablesQuery string
	// KeysQuery, when set, takes the table name as its only argument and
	// returns (column_name, constraint_type, constraint_name) rows for
	// PRIMARY KEY and UNIQUE constraints.
	KeysQuery string
	// Quote quotes a table name for SELECT statements.
	Quote func(name string) string
}

const (
	DialectAccess = "access"
	DialectANSI   = "ansi"
)

// AccessDialect reads the Jet/ACE system catalog. Type 1 rows are local
// tables and a zero Flags value excludes system and hidden tables.
var AccessDialect = Dialect{
	Name:        DialectAccess,
	TablesQuery: `SELECT Name FROM MSysObjects WHERE Type = 1 AND Flags = 0 ORDER BY Name`,
	Quote:       dbinfo.QuoteBracketIdentifier,
}

// ANSIDialect reads information_schema.
var ANSIDialect = Dialect{
	Name: DialectANSI,
	TablesQuery: `SELECT table_name FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('information_schema', 'pg_catalog', 'sys')
ORDER BY table_name`,
	KeysQuery: `SELECT kcu.column_name, tc.constraint_type, tc.constraint_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_name = kcu.table_name
WHERE tc.table_name = ? AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')`,
	Quote: dbinfo.QuoteIdentifier,
}

// DialectRegistry stores dialects by name.
type DialectRegistry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}

// NewDialectRegistry creates a registry holding the built-in dialects.
func NewDialectRegistry() *DialectRegistry {
	reg := &DialectRegistry{dialects: make(map[string]Dialect)}
	reg.dialects[DialectAccess] = AccessDialect
	reg.dialects[DialectANSI] = ANSIDialect
	return reg
}

// Register adds a dialect.
func (r *DialectRegistry) Register(d Dialect) error {
	name := strings.ToLower(strings.TrimSpace(d.Name))
	if name == "" {
		return dbinfo.NewError(dbinfo.KindValidation, "dialect name is required", nil)
	}
	if d.TablesQuery == "" {
		return dbinfo.NewError(dbinfo.KindValidation, "tables query is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.dialects[name]; exists {
		return dbinfo.NewError(dbinfo.KindValidation, fmt.Sprintf("dialect %q already registered", name), nil)
	}
	r.dialects[name] = d
	return nil
}

// Resolve returns a dialect by name.
func (r *DialectRegistry) Resolve(name string) (Dialect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dialects[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}
