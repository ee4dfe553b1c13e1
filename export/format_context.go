package export

import (
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

type formatContext struct {
	location *time.Location
	layout   string
}

func newFormatContext(opts FormatOptions) (formatContext, error) {
	ctx := formatContext{location: time.UTC, layout: strings.TrimSpace(opts.DateTimeLayout)}
	if ctx.layout == "" {
		ctx.layout = DefaultDateTimeLayout
	}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return formatContext{}, dbinfo.NewError(dbinfo.KindValidation, "invalid timezone", err)
		}
		ctx.location = loc
	}
	return ctx, nil
}

// applyTimezone moves value into the configured zone, UTC when none is set.
func (f formatContext) applyTimezone(value time.Time) time.Time {
	if f.location == nil {
		return value.UTC()
	}
	return value.In(f.location)
}

// formatText renders a value in its canonical text form. Null renders empty.
func (f formatContext) formatText(value dbinfo.Value) string {
	if t, ok := value.AsDateTime(); ok {
		return f.applyTimezone(t).Format(f.layout)
	}
	return value.String()
}

// cellValue converts a value to the type excelize writes natively. Datetimes
// keep their wall clock in the configured zone.
func (f formatContext) cellValue(value dbinfo.Value) any {
	switch value.Type() {
	case dbinfo.TypeNull:
		return nil
	case dbinfo.TypeFloat:
		n, _ := value.AsFloat()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return value.String()
		}
		return n
	case dbinfo.TypeDateTime:
		t, _ := value.AsDateTime()
		t = f.applyTimezone(t)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	default:
		return value.Interface()
	}
}
