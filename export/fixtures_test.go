package export

import (
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

func mustTable(t *testing.T, name string, columns ...dbinfo.Column) *dbinfo.Table {
	t.Helper()
	table, err := dbinfo.NewTable(name, columns...)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return table
}

func mustAppend(t *testing.T, table *dbinfo.Table, values ...dbinfo.Value) {
	t.Helper()
	if err := table.Append(dbinfo.Row(values)); err != nil {
		t.Fatalf("append: %v", err)
	}
}

// salesResult mirrors a sales database with a populated Customers table and
// an empty Orders table.
func salesResult(t *testing.T) *dbinfo.Result {
	t.Helper()
	customers := mustTable(t, "Customers",
		dbinfo.Column{Name: "ID", Type: dbinfo.TypeInteger},
		dbinfo.Column{Name: "Name", Type: dbinfo.TypeText},
		dbinfo.Column{Name: "City", Type: dbinfo.TypeText},
	)
	mustAppend(t, customers, dbinfo.Integer(1), dbinfo.Text("Ada"), dbinfo.Text("London"))
	mustAppend(t, customers, dbinfo.Integer(2), dbinfo.Text("Grace"), dbinfo.Null())

	orders := mustTable(t, "Orders",
		dbinfo.Column{Name: "ID", Type: dbinfo.TypeInteger},
		dbinfo.Column{Name: "CustomerID", Type: dbinfo.TypeInteger},
		dbinfo.Column{Name: "Total", Type: dbinfo.TypeFloat},
		dbinfo.Column{Name: "PlacedAt", Type: dbinfo.TypeDateTime},
	)

	result := dbinfo.NewResult(dbinfo.ResultData)
	set := result.Database("sales")
	if err := set.Add(customers); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := set.Add(orders); err != nil {
		t.Fatalf("add: %v", err)
	}
	return result
}

func numberedTable(t *testing.T, name string, rows int) *dbinfo.Table {
	t.Helper()
	table := mustTable(t, name,
		dbinfo.Column{Name: "n", Type: dbinfo.TypeInteger},
		dbinfo.Column{Name: "label", Type: dbinfo.TypeText},
		dbinfo.Column{Name: "at", Type: dbinfo.TypeDateTime},
	)
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	for i := 1; i <= rows; i++ {
		mustAppend(t, table,
			dbinfo.Integer(int64(i)),
			dbinfo.Text(fmt.Sprintf("row %d", i)),
			dbinfo.DateTime(base.Add(time.Duration(i)*time.Hour)),
		)
	}
	return table
}

func singleTableResult(t *testing.T, db string, table *dbinfo.Table) *dbinfo.Result {
	t.Helper()
	result := dbinfo.NewResult(dbinfo.ResultData)
	if err := result.Database(db).Add(table); err != nil {
		t.Fatalf("add: %v", err)
	}
	return result
}
