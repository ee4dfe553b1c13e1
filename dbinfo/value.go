package dbinfo

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType is the closed set of cell types a Table can hold.
type ValueType uint8

const (
	// TypeNull is the type of a null value. On a Column it marks an untyped
	// column whose values keep the type the driver reported.
	TypeNull ValueType = iota
	TypeText
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeDateTime
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Value is a single cell.
type Value struct {
	typ ValueType
	s   string
	i   int64
	f   float64
	b   bool
	t   time.Time
}

func Null() Value                { return Value{} }
func Text(s string) Value        { return Value{typ: TypeText, s: s} }
func Integer(i int64) Value      { return Value{typ: TypeInteger, i: i} }
func Float(f float64) Value      { return Value{typ: TypeFloat, f: f} }
func Boolean(b bool) Value       { return Value{typ: TypeBoolean, b: b} }
func DateTime(t time.Time) Value { return Value{typ: TypeDateTime, t: t} }

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }

func (v Value) AsText() (string, bool)        { return v.s, v.typ == TypeText }
func (v Value) AsInteger() (int64, bool)      { return v.i, v.typ == TypeInteger }
func (v Value) AsFloat() (float64, bool)      { return v.f, v.typ == TypeFloat }
func (v Value) AsBoolean() (bool, bool)       { return v.b, v.typ == TypeBoolean }
func (v Value) AsDateTime() (time.Time, bool) { return v.t, v.typ == TypeDateTime }

// Interface returns nil, string, int64, float64, bool or time.Time.
func (v Value) Interface() any {
	switch v.typ {
	case TypeText:
		return v.s
	case TypeInteger:
		return v.i
	case TypeFloat:
		return v.f
	case TypeBoolean:
		return v.b
	case TypeDateTime:
		return v.t
	default:
		return nil
	}
}

// String renders the canonical textual form. Null renders as "".
func (v Value) String() string {
	switch v.typ {
	case TypeText:
		return v.s
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeDateTime:
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// Equal compares type and payload.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeText:
		return v.s == other.s
	case TypeInteger:
		return v.i == other.i
	case TypeFloat:
		return v.f == other.f
	case TypeBoolean:
		return v.b == other.b
	case TypeDateTime:
		return v.t.Equal(other.t)
	default:
		return true
	}
}

type float64er interface {
	Float64() float64
}

// ValueOf converts a driver value into a Value.
func ValueOf(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return Text(v)
	case []byte:
		if v == nil {
			return Null()
		}
		return Text(string(v))
	case bool:
		return Boolean(v)
	case int:
		return Integer(int64(v))
	case int8:
		return Integer(int64(v))
	case int16:
		return Integer(int64(v))
	case int32:
		return Integer(int64(v))
	case int64:
		return Integer(v)
	case uint8:
		return Integer(int64(v))
	case uint16:
		return Integer(int64(v))
	case uint32:
		return Integer(int64(v))
	case uint:
		if uint64(v) > 1<<63-1 {
			return Text(strconv.FormatUint(uint64(v), 10))
		}
		return Integer(int64(v))
	case uint64:
		if v > 1<<63-1 {
			return Text(strconv.FormatUint(v, 10))
		}
		return Integer(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case time.Time:
		return DateTime(v)
	case *string:
		if v == nil {
			return Null()
		}
		return Text(*v)
	case *int64:
		if v == nil {
			return Null()
		}
		return Integer(*v)
	case *float64:
		if v == nil {
			return Null()
		}
		return Float(*v)
	case *bool:
		if v == nil {
			return Null()
		}
		return Boolean(*v)
	case *time.Time:
		if v == nil {
			return Null()
		}
		return DateTime(*v)
	case sql.NullString:
		if !v.Valid {
			return Null()
		}
		return Text(v.String)
	case sql.NullInt64:
		if !v.Valid {
			return Null()
		}
		return Integer(v.Int64)
	case sql.NullInt32:
		if !v.Valid {
			return Null()
		}
		return Integer(int64(v.Int32))
	case sql.NullFloat64:
		if !v.Valid {
			return Null()
		}
		return Float(v.Float64)
	case sql.NullBool:
		if !v.Valid {
			return Null()
		}
		return Boolean(v.Bool)
	case sql.NullTime:
		if !v.Valid {
			return Null()
		}
		return DateTime(v.Time)
	case float64er:
		return Float(v.Float64())
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return Text(fmt.Sprint(v))
		}
		if _, nested := inner.(driver.Valuer); nested {
			return Text(fmt.Sprint(inner))
		}
		return ValueOf(inner)
	default:
		return Text(fmt.Sprint(v))
	}
}

// ValueOfType coerces a driver value toward the declared column type and
// falls back to ValueOf when the value does not fit.
func ValueOfType(raw any, hint ValueType) Value {
	if raw == nil {
		return Null()
	}
	if b, ok := raw.([]byte); ok {
		if b == nil {
			return Null()
		}
		raw = string(b)
	}
	switch hint {
	case TypeText:
		if s, ok := raw.(string); ok {
			return Text(s)
		}
	case TypeInteger:
		if i, ok := coerceInt(raw); ok {
			return Integer(i)
		}
	case TypeFloat:
		if f, ok := coerceFloat(raw); ok {
			return Float(f)
		}
	case TypeBoolean:
		if b, ok := coerceBool(raw); ok {
			return Boolean(b)
		}
	case TypeDateTime:
		if t, ok := coerceTime(raw); ok {
			return DateTime(t)
		}
	}
	return ValueOf(raw)
}

// TypeFromDatabaseType maps a driver-reported declared type to a ValueType.
// Unknown or empty declarations map to TypeNull.
func TypeFromDatabaseType(decl string) ValueType {
	normalized := strings.ToUpper(strings.TrimSpace(decl))
	if idx := strings.IndexByte(normalized, '('); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	switch normalized {
	case "":
		return TypeNull
	case "BOOL", "BOOLEAN", "BIT", "YESNO", "LOGICAL":
		return TypeBoolean
	case "DATE", "TIME", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE", "TIMETZ", "SMALLDATETIME", "DATETIME2":
		return TypeDateTime
	case "COUNTER", "AUTOINCREMENT", "BYTE", "LONG", "SHORT", "HUGEINT", "UBIGINT", "UINTEGER", "USMALLINT", "UTINYINT":
		return TypeInteger
	case "CURRENCY", "MONEY", "SINGLE", "DOUBLE", "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DECIMAL", "NUMERIC", "NUMBER":
		return TypeFloat
	}
	switch {
	case strings.Contains(normalized, "INT"):
		return TypeInteger
	case strings.Contains(normalized, "CHAR"), strings.Contains(normalized, "TEXT"),
		strings.Contains(normalized, "CLOB"), strings.Contains(normalized, "MEMO"),
		strings.Contains(normalized, "STRING"), strings.Contains(normalized, "UUID"):
		return TypeText
	case strings.Contains(normalized, "REAL"), strings.Contains(normalized, "FLOA"),
		strings.Contains(normalized, "DOUB"), strings.Contains(normalized, "DEC"):
		return TypeFloat
	case strings.HasPrefix(normalized, "TIMESTAMP"), strings.HasPrefix(normalized, "DATE"):
		return TypeDateTime
	default:
		return TypeNull
	}
}

// DeclaredLength extracts n from declarations such as VARCHAR(n) or
// DECIMAL(n,s).
func DeclaredLength(decl string) (int64, bool) {
	open := strings.IndexByte(decl, '(')
	if open < 0 {
		return 0, false
	}
	end := strings.IndexAny(decl[open+1:], ",)")
	if end < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(decl[open+1:open+1+end]), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
