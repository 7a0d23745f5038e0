// Package period parses calendar dates and month filters used by the
// ledgers and the statistics.
package period

import (
	"strconv"
	"strings"
	"time"

	"github.com/samhans17/delivery-tracker/internal/apperr"
)

const DateLayout = "2006-01-02"

// Month is one calendar month. Dates are stored as UTC midnights.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year, month int) (Month, error) {
	if year < 2000 || year > 2100 {
		return Month{}, apperr.Validation("year is invalid")
	}
	if month < 1 || month > 12 {
		return Month{}, apperr.Validation("month is invalid")
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// Range returns [first day, first day of next month).
func (m Month) Range() (time.Time, time.Time) {
	from := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ParseMonth reads the month/year query pair. Both empty means no filter;
// only one of them set is rejected.
func ParseMonth(monthStr, yearStr string) (*Month, error) {
	monthStr = strings.TrimSpace(monthStr)
	yearStr = strings.TrimSpace(yearStr)
	if monthStr == "" && yearStr == "" {
		return nil, nil
	}
	if monthStr == "" || yearStr == "" {
		return nil, apperr.Validation("month and year must be given together")
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return nil, apperr.Validation("month is invalid")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil, apperr.Validation("year is invalid")
	}

	m, err := NewMonth(year, month)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("%s is required", field)
	}
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be in YYYY-MM-DD format", field)
	}
	return d, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
