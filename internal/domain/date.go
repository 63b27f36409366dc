package domain

import (
	"fmt"
	"strings"
	"time"
)

// ISODateLayout is the calendar-day wire format used across the API.
const ISODateLayout = "2006-01-02"

// ISODate is a calendar day that marshals as "YYYY-MM-DD".
// The embedded time is always midnight UTC.
type ISODate struct {
	time.Time
}

// NewISODate truncates t to its UTC calendar day.
func NewISODate(t time.Time) ISODate {
	return ISODate{Time: DayOf(t)}
}

// DayOf returns midnight UTC of the calendar day containing t.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseISODate parses "YYYY-MM-DD" into a calendar day.
func ParseISODate(s string) (ISODate, error) {
	t, err := time.Parse(ISODateLayout, s)
	if err != nil {
		return ISODate{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return ISODate{Time: t.UTC()}, nil
}

// MarshalJSON renders the date as a quoted "YYYY-MM-DD" string.
func (d ISODate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(ISODateLayout) + `"`), nil
}

// UnmarshalJSON accepts a quoted "YYYY-MM-DD" string.
func (d *ISODate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseISODate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
