package valueobject

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"time"
)

// Period identifies the billing month a charge or recurring instance
// belongs to, formatted as "YYYY-MM".
type Period string

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// NewPeriod builds a Period from a year and month
func NewPeriod(year int, month time.Month) Period {
	return Period(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// PeriodOf returns the Period containing the given time
func PeriodOf(t time.Time) Period {
	return NewPeriod(t.Year(), t.Month())
}

// ParsePeriod validates and returns a Period from its string form
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period(s), nil
}

// IsValid reports whether the period is well-formed
func (p Period) IsValid() bool {
	return periodPattern.MatchString(string(p))
}

// String returns the YYYY-MM representation
func (p Period) String() string {
	return string(p)
}

// Year returns the period's year
func (p Period) Year() int {
	var y, m int
	fmt.Sscanf(string(p), "%04d-%02d", &y, &m)
	return y
}

// Month returns the period's month
func (p Period) Month() time.Month {
	var y, m int
	fmt.Sscanf(string(p), "%04d-%02d", &y, &m)
	return time.Month(m)
}

// Start returns midnight on the first day of the period (UTC)
func (p Period) Start() time.Time {
	return time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month (exclusive bound)
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Days returns the number of calendar days in the period
func (p Period) Days() int {
	return int(p.End().Sub(p.Start()).Hours() / 24)
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && t.Before(p.End())
}

// Next returns the period one month later
func (p Period) Next() Period {
	return PeriodOf(p.End())
}

// Value implements driver.Valuer for database storage
func (p Period) Value() (driver.Value, error) {
	return string(p), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Period) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*p = Period(v)
	case []byte:
		*p = Period(v)
	default:
		return fmt.Errorf("cannot scan %T into Period", value)
	}
	return nil
}
