package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-dbinfo/dbinfo"
	dbinfocallback "github.com/goliatone/go-dbinfo/sources/callback"
)

func inventoryExtractor() *dbinfo.Extractor {
	return dbinfo.NewExtractor(dbinfocallback.NewStaticProvider(dbinfocallback.Fixtures{
		"inventory": {
			{
				Name: "Items",
				Columns: []dbinfo.ColumnInfo{
					{Name: "sku", DataType: "VARCHAR(12)", PrimaryKey: true},
					{Name: "qty", DataType: "INTEGER", Nullable: true},
				},
				Rows: []dbinfo.Row{{dbinfo.Text("A-1"), dbinfo.Integer(4)}},
			},
		},
	}))
}

func TestInspectDatabaseHandler_Metadata(t *testing.T) {
	handler := NewInspectDatabaseHandler(inventoryExtractor())
	result, err := handler.Query(context.Background(), InspectDatabase{Path: "inventory.mdb"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.Kind != dbinfo.ResultMetadata {
		t.Fatalf("expected metadata result, got %q", result.Kind)
	}
	set, ok := result.Tables("inventory")
	if !ok {
		t.Fatalf("expected inventory database")
	}
	items, _ := set.Get("Items")
	if items.Len() != 2 {
		t.Fatalf("expected 2 metadata rows, got %d", items.Len())
	}
}

func TestInspectDatabaseHandler_Data(t *testing.T) {
	handler := NewInspectDatabaseHandler(inventoryExtractor())
	result, err := handler.Query(context.Background(), InspectDatabase{Path: "inventory.mdb", Kind: dbinfo.ResultData})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	set, _ := result.Tables("inventory")
	items, _ := set.Get("Items")
	if qty, ok := items.Rows[0][1].AsInteger(); !ok || qty != 4 {
		t.Fatalf("unexpected qty %v", items.Rows[0][1])
	}
}

func TestInspectDatabaseHandler_Validation(t *testing.T) {
	handler := NewInspectDatabaseHandler(inventoryExtractor())
	if _, err := handler.Query(context.Background(), InspectDatabase{}); err == nil {
		t.Fatalf("expected path error")
	}
	if _, err := handler.Query(context.Background(), InspectDatabase{Path: "inventory.mdb", Kind: "rows"}); err == nil {
		t.Fatalf("expected kind error")
	}
	if _, err := (&InspectDatabaseHandler{}).Query(context.Background(), InspectDatabase{Path: "x.db"}); err == nil {
		t.Fatalf("expected extractor error")
	}
}
