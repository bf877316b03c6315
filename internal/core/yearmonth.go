package core

import (
	"fmt"
	"time"
)

// YearMonth identifies one calendar month, serialized as YYYY-MM.
// It is the ledger key: every payment collection hangs off one of these.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, ErrInvalidYearMonth
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// CurrentYearMonth returns the month containing now.
func CurrentYearMonth(now time.Time) YearMonth {
	return YearMonth{Year: now.Year(), Month: int(now.Month())}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Label renders the Korean display form, e.g. "2024년 11월".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%d년 %d월", ym.Year, ym.Month)
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Next returns the following calendar month, rolling the year at
// December.
func (ym YearMonth) Next() YearMonth {
	if ym.Month >= 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Before reports whether ym precedes other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// MonthsBetween enumerates every month of the inclusive range
// [start, end] in order. Year boundaries roll correctly:
// 2024-11..2025-01 yields 2024-11, 2024-12, 2025-01.
// An inverted range yields nil.
func MonthsBetween(start, end YearMonth) []YearMonth {
	if end.Before(start) {
		return nil
	}
	var months []YearMonth
	for cur := start; !end.Before(cur); cur = cur.Next() {
		months = append(months, cur)
	}
	return months
}
