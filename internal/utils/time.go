package utils

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layouts accepted for ISO-like timestamps, tried in order. Layouts without a
// zone are interpreted in the caller's location.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns [midnight, next midnight) for the day containing t
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// DaysBetween returns the signed number of calendar days from a to b, comparing
// dates in loc. It is unaffected by DST shifts.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ParseTime parses an ISO-like timestamp in loc
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

// NormalizeTime accepts the shapes a loosely-typed document may hold for a date:
// a driver timestamp, a native time, a unix-millis number or an ISO-like string.
func NormalizeTime(v interface{}, loc *time.Location) (*time.Time, error) {
	var t time.Time
	switch value := v.(type) {
	case nil:
		return nil, fmt.Errorf("missing time")
	case time.Time:
		t = value
	case *time.Time:
		if value == nil {
			return nil, fmt.Errorf("missing time")
		}
		t = *value
	case primitive.DateTime:
		t = value.Time()
	case primitive.Timestamp:
		t = time.Unix(int64(value.T), 0)
	case int64:
		t = time.UnixMilli(value)
	case float64:
		t = time.UnixMilli(int64(value))
	case string:
		parsed, err := ParseTime(value, loc)
		if err != nil {
			return nil, err
		}
		t = parsed
	default:
		return nil, fmt.Errorf("unsupported time type %T", v)
	}
	if t.IsZero() {
		return nil, fmt.Errorf("zero time")
	}
	t = t.In(loc)
	return &t, nil
}

// ClockToday returns today's date in loc at the "HH:MM" clock time
func ClockToday(clock string, now time.Time, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
