// Package dbinfosqlite opens SQLite database files for go-dbinfo.
//
// Files are opened read-only through bun's sqliteshim driver. Register the
// provider for the extensions it should handle:
//
//	reg := dbinfo.NewProviderRegistry()
//	_ = reg.Register(dbinfosqlite.NewProvider(), ".db", ".sqlite", ".sqlite3")
//
// User tables are listed in creation order; sqlite_* internal tables are
// skipped.
package dbinfosqlite
