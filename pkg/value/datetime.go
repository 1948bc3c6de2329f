package value

import (
	"strings"
	"time"
)

// DateTimeKind distinguishes full timestamps from date-only and time-only values.
type DateTimeKind string

const (
	DateTimeFull DateTimeKind = "datetime"
	DateTimeDate DateTimeKind = "date"
	DateTimeTime DateTimeKind = "time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// DateTime is a point in time, a calendar date or a time of day. The three
// sub-kinds are disjoint: a date never equals a timestamp at midnight.
type DateTime struct {
	t    time.Time
	kind DateTimeKind
}

// NewDateTime wraps a full timestamp.
func NewDateTime(t time.Time) DateTime {
	return DateTime{t: t, kind: DateTimeFull}
}

// NewDate returns a date-only value.
func NewDate(year int, month time.Month, day int) DateTime {
	return DateTime{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), kind: DateTimeDate}
}

// NewTimeOfDay returns a time-only value.
func NewTimeOfDay(hour, minute, sec, nsec int) DateTime {
	return DateTime{t: time.Date(0, 1, 1, hour, minute, sec, nsec, time.UTC), kind: DateTimeTime}
}

// ParseDateTime accepts RFC 3339 timestamps, YYYY-MM-DD dates and
// HH:MM:SS[.fraction] times.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "T") || strings.Contains(s, "t"):
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return DateTime{}, wrapError(ErrorInvalidDateTime, err, "cannot parse %q as RFC 3339 timestamp", s)
		}
		return NewDateTime(t), nil
	case strings.Contains(s, ":"):
		t, err := time.Parse("15:04:05.999999999", s)
		if err != nil {
			return DateTime{}, wrapError(ErrorInvalidTime, err, "cannot parse %q as HH:MM:SS", s)
		}
		return NewTimeOfDay(t.Hour(), t.Minute(), t.Second(), t.Nanosecond()), nil
	default:
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return DateTime{}, wrapError(ErrorInvalidDate, err, "cannot parse %q as YYYY-MM-DD", s)
		}
		return DateTime{t: t, kind: DateTimeDate}, nil
	}
}

// Kind returns the sub-kind.
func (d DateTime) Kind() DateTimeKind {
	if d.kind == "" {
		return DateTimeFull
	}
	return d.kind
}

// Time returns the underlying time. Date-only values are midnight UTC and
// time-only values sit on January 1st of year 0.
func (d DateTime) Time() time.Time {
	return d.t
}

// String renders the value in its canonical wire format.
func (d DateTime) String() string {
	switch d.Kind() {
	case DateTimeDate:
		return d.t.Format(dateLayout)
	case DateTimeTime:
		if d.t.Nanosecond() != 0 {
			return d.t.Format("15:04:05.999999999")
		}
		return d.t.Format(timeLayout)
	default:
		return d.t.Format(time.RFC3339Nano)
	}
}

// Equal reports whether both values have the same sub-kind and instant.
func (d DateTime) Equal(o DateTime) bool {
	return d.Kind() == o.Kind() && d.t.Equal(o.t)
}

// Compare orders two values of the same sub-kind.
func (d DateTime) Compare(o DateTime) (int, bool) {
	if d.Kind() != o.Kind() {
		return 0, false
	}
	return d.t.Compare(o.t), true
}
