package jseval

import (
	"fmt"
	"time"

	"github.com/domharness/domharness/internal/jsvalue"
)

func (it *Interp) dateMethod(o *jsvalue.Object, method string, args []jsvalue.Value) (jsvalue.Value, bool, error) {
	t := time.UnixMilli(int64(o.DateMs)).UTC()
	switch method {
	case "getTime", "valueOf":
		return jsvalue.Number(o.DateMs), true, nil
	case "getFullYear", "getUTCFullYear":
		return jsvalue.Number(t.Year()), true, nil
	case "getMonth", "getUTCMonth":
		return jsvalue.Number(int(t.Month()) - 1), true, nil
	case "getDate", "getUTCDate":
		return jsvalue.Number(t.Day()), true, nil
	case "getDay", "getUTCDay":
		return jsvalue.Number(int(t.Weekday())), true, nil
	case "getHours", "getUTCHours":
		return jsvalue.Number(t.Hour()), true, nil
	case "getMinutes", "getUTCMinutes":
		return jsvalue.Number(t.Minute()), true, nil
	case "getSeconds", "getUTCSeconds":
		return jsvalue.Number(t.Second()), true, nil
	case "getMilliseconds", "getUTCMilliseconds":
		return jsvalue.Number(t.Nanosecond() / 1e6), true, nil
	case "getTimezoneOffset":
		return jsvalue.Number(0), true, nil
	case "setFullYear":
		o.DateMs = setDatePart(t, 0, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setMonth":
		o.DateMs = setDatePart(t, 1, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setDate":
		o.DateMs = setDatePart(t, 2, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setHours":
		o.DateMs = setDatePart(t, 3, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setMinutes":
		o.DateMs = setDatePart(t, 4, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setSeconds":
		o.DateMs = setDatePart(t, 5, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setMilliseconds":
		o.DateMs = setDatePart(t, 6, args)
		return jsvalue.Number(o.DateMs), true, nil
	case "setTime":
		o.DateMs = jsvalue.ToNumber(arg0(args))
		return jsvalue.Number(o.DateMs), true, nil
	case "toISOString", "toJSON":
		return jsvalue.String(t.Format("2006-01-02T15:04:05.000Z")), true, nil
	case "toDateString":
		return jsvalue.String(t.Format("Mon Jan 02 2006")), true, nil
	case "toTimeString":
		return jsvalue.String(t.Format("15:04:05 GMT+0000 (Coordinated Universal Time)")), true, nil
	case "toString":
		return jsvalue.String(t.Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")), true, nil
	case "toLocaleDateString":
		return jsvalue.String(t.Format("1/2/2006")), true, nil
	case "toLocaleTimeString":
		return jsvalue.String(t.Format("3:04:05 PM")), true, nil
	case "toLocaleString":
		return jsvalue.String(t.Format("1/2/2006, 3:04:05 PM")), true, nil
	}
	return nil, false, nil
}

// setDatePart rebuilds t with one field replaced, applying the rest of
// args as the lower fields Date.prototype.setX also accepts (e.g.
// setHours(h, m, s, ms)) and returns the new millisecond timestamp.
func setDatePart(t time.Time, field int, args []jsvalue.Value) float64 {
	year, month, day := t.Year(), int(t.Month())-1, t.Day()
	hour, min, sec, ms := t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/1e6
	vals := []*int{&year, &month, &day, &hour, &min, &sec, &ms}
	for i := field; i < len(vals) && i-field < len(args); i++ {
		*vals[i] = int(jsvalue.ToNumber(args[i-field]))
	}
	nt := time.Date(year, time.Month(month+1), day, hour, min, sec, ms*1e6, time.UTC)
	return float64(nt.UnixMilli())
}

// parseDate supports the subset of date strings this evaluator's Date
// constructor accepts: ISO 8601 and a couple of common fallbacks.
func parseDate(s string) (float64, error) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli()), nil
		}
	}
	return 0, fmt.Errorf("invalid date string %q", s)
}
