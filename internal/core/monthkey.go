package core

import "fmt"

// MonthKey identifies one calendar (year, month) aggregation bucket.
type MonthKey struct {
	Year  int
	Month int // 1-12
}

// NewMonthKey validates its arguments before constructing a key. The year
// floor of 13 exists to catch accidentally transposed year/month arguments,
// not as a calendar bound. Valid calendar arithmetic never trips this; an
// ErrInvalidKey from aggregation indicates a programming error.
func NewMonthKey(year, month int) (MonthKey, error) {
	if year <= 12 {
		return MonthKey{}, fmt.Errorf("%w: year %d", ErrInvalidKey, year)
	}
	if month < 1 || month > 12 {
		return MonthKey{}, fmt.Errorf("%w: month %d", ErrInvalidKey, month)
	}
	return MonthKey{Year: year, Month: month}, nil
}

// String renders the key as YYYY-MM with a zero-padded month.
func (k MonthKey) String() string {
	return fmt.Sprintf("%d-%02d", k.Year, k.Month)
}

// Before reports whether k precedes o chronologically.
func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}
