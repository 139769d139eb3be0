package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day (the unit history is frozen in)
// =============================================================================

// Date is a calendar day with no time-of-day component. It is a plain value
// type so it can be compared with == and used as a map key. Days are anchored
// in UTC throughout the ledger; the Clock is the only place a local calendar
// enters the system.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustDate is ParseDate for literals in tests and fixtures.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }
func (d Date) Next() Date         { return d.AddDays(1) }
func (d Date) Prev() Date         { return d.AddDays(-1) }

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }
func (d Date) After(other Date) bool  { return d.Time().After(other.Time()) }
func (d Date) IsZero() bool           { return d == Date{} }

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.Time().Format(dateLayout) }

// MarshalText lets Date serve as a JSON value and as a JSON map key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// TIMESTAMP - Milliseconds since epoch (the log's ordering key)
// =============================================================================

// Timestamp is a wall-clock instant in milliseconds since the Unix epoch.
// It is the sole ordering key of the event log; ties are broken by append
// order (stable sort), never by semantic priority.
type Timestamp int64

// MigrationEpoch is the reserved sentinel timestamp of the single settings
// event the migration constructs. It guarantees that event sorts first no
// matter when migration actually runs. No other event may carry it; see
// events.go.
const MigrationEpoch Timestamp = 0

func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UTC().UnixMilli())
}

func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

func (ts Timestamp) Date() Date { return DateOf(ts.Time()) }

// StartOfDay is the timestamp of midnight UTC on date. Used to pin the
// replay cutoff: events up to but excluding StartOfDay(date.Next()) belong
// to date or earlier.
func StartOfDay(date Date) Timestamp {
	return TimestampOf(date.Time())
}
