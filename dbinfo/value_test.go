package dbinfo

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestValue_String(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cases := []struct {
		value Value
		want  string
	}{
		{Null(), ""},
		{Text("alice"), "alice"},
		{Integer(-42), "-42"},
		{Float(12.5), "12.5"},
		{Float(3), "3"},
		{Boolean(true), "true"},
		{DateTime(ts), "2024-01-02T03:04:05Z"},
	}
	for _, tc := range cases {
		if got := tc.value.String(); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.value.Type(), tc.want, got)
		}
	}
}

func TestValueOf_DriverValues(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		raw  any
		want Value
	}{
		{nil, Null()},
		{[]byte("abc"), Text("abc")},
		{"abc", Text("abc")},
		{int32(7), Integer(7)},
		{uint16(7), Integer(7)},
		{int64(9), Integer(9)},
		{float32(1.5), Float(1.5)},
		{true, Boolean(true)},
		{ts, DateTime(ts)},
		{sql.NullString{}, Null()},
		{sql.NullInt64{Int64: 3, Valid: true}, Integer(3)},
		{struct{ A int }{A: 1}, Text("{1}")},
	}
	for _, tc := range cases {
		got := ValueOf(tc.raw)
		if !got.Equal(tc.want) {
			t.Fatalf("ValueOf(%#v): expected %s %q, got %s %q", tc.raw, tc.want.Type(), tc.want, got.Type(), got)
		}
	}
}

func TestValueOfType_CoercesDeclaredTypes(t *testing.T) {
	if got := ValueOfType(int64(1), TypeBoolean); !got.Equal(Boolean(true)) {
		t.Fatalf("expected boolean true, got %s %q", got.Type(), got)
	}
	if got := ValueOfType("2024-03-04 10:11:12", TypeDateTime); got.Type() != TypeDateTime {
		t.Fatalf("expected datetime, got %s", got.Type())
	}
	if got := ValueOfType("not a date", TypeDateTime); !got.Equal(Text("not a date")) {
		t.Fatalf("expected text fallback, got %s %q", got.Type(), got)
	}
	if got := ValueOfType([]byte("12"), TypeInteger); !got.Equal(Integer(12)) {
		t.Fatalf("expected integer 12, got %s %q", got.Type(), got)
	}
	if got := ValueOfType(nil, TypeInteger); !got.IsNull() {
		t.Fatalf("expected null, got %s", got.Type())
	}
	if got := ValueOfType(float64(math.MinInt64), TypeInteger); !got.Equal(Integer(math.MinInt64)) {
		t.Fatalf("expected smallest int64, got %s %q", got.Type(), got)
	}
	if got := ValueOfType(1e20, TypeInteger); !got.Equal(Float(1e20)) {
		t.Fatalf("expected float kept for out of range integer, got %s %q", got.Type(), got)
	}
	if got := ValueOfType(float64(1<<63), TypeInteger); got.Type() != TypeFloat {
		t.Fatalf("expected 2^63 kept as float, got %s %q", got.Type(), got)
	}
	for _, raw := range []string{"1e20", "-1e20", "170141183460469231731687303715884105727"} {
		if got := ValueOfType(raw, TypeInteger); !got.Equal(Text(raw)) {
			t.Fatalf("%s: expected text kept, got %s %q", raw, got.Type(), got)
		}
	}
	if got := ValueOfType(json.Number("1e20"), TypeInteger); got.Type() == TypeInteger {
		t.Fatalf("expected json number 1e20 not to become an integer, got %q", got)
	}
}

type failingValuer struct{}

func (failingValuer) Value() (driver.Value, error) { return nil, errors.New("boom") }

func TestValueOf_UnwrapsValuers(t *testing.T) {
	if got := ValueOf(sql.NullInt16{Int16: 5, Valid: true}); !got.Equal(Integer(5)) {
		t.Fatalf("expected integer 5, got %s %q", got.Type(), got)
	}
	if got := ValueOf(sql.NullByte{Byte: 7, Valid: true}); !got.Equal(Integer(7)) {
		t.Fatalf("expected integer 7, got %s %q", got.Type(), got)
	}
	if got := ValueOf(sql.NullInt16{}); !got.IsNull() {
		t.Fatalf("expected null for invalid NullInt16, got %s %q", got.Type(), got)
	}
	if got := ValueOf(failingValuer{}); !got.Equal(Text("{}")) {
		t.Fatalf("expected text fallback for failing valuer, got %s %q", got.Type(), got)
	}
}

func TestTypeFromDatabaseType(t *testing.T) {
	cases := map[string]ValueType{
		"INTEGER":       TypeInteger,
		"bigint":        TypeInteger,
		"COUNTER":       TypeInteger,
		"VARCHAR(50)":   TypeText,
		"TEXT":          TypeText,
		"MEMO":          TypeText,
		"DOUBLE":        TypeFloat,
		"DECIMAL(10,2)": TypeFloat,
		"CURRENCY":      TypeFloat,
		"BOOLEAN":       TypeBoolean,
		"YESNO":         TypeBoolean,
		"DATETIME":      TypeDateTime,
		"TIMESTAMP":     TypeDateTime,
		"":              TypeNull,
		"BLOB":          TypeNull,
	}
	for decl, want := range cases {
		if got := TypeFromDatabaseType(decl); got != want {
			t.Fatalf("%q: expected %s, got %s", decl, want, got)
		}
	}
}

func TestDeclaredLength(t *testing.T) {
	if n, ok := DeclaredLength("VARCHAR(50)"); !ok || n != 50 {
		t.Fatalf("expected 50, got %d %v", n, ok)
	}
	if n, ok := DeclaredLength("DECIMAL(10, 2)"); !ok || n != 10 {
		t.Fatalf("expected 10, got %d %v", n, ok)
	}
	if _, ok := DeclaredLength("TEXT"); ok {
		t.Fatalf("expected no length for TEXT")
	}
}
