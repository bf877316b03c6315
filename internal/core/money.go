// Package core provides the tuition domain model: students, classes,
// monthly payment records and the money/date value types they share.
//
// This file contains amount parsing and formatting. Tuition amounts
// have no minor unit, so Amount counts whole won directly.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Amount is a monetary value in whole won.
type Amount int64

// ParseAmount converts a decimal string to a whole-won amount with
// half-up rounding on the fractional part.
//
// It accepts both dot (12000.5) and comma (12000,5) decimal separators.
// Negative values and malformed input are rejected; zero is allowed
// (discounts and book fees default to zero).
//
// Examples:
//
//	ParseAmount("95000")   -> 95000, nil
//	ParseAmount("100.4")   -> 100, nil (rounds down)
//	ParseAmount("100.5")   -> 101, nil (rounds up)
//	ParseAmount("-1")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	// A bare separator carries no digits at all.
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Half-up rounding on the first fractional digit
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		iv++
	}
	return Amount(iv), nil
}

// CoerceAmount parses like ParseAmount but maps any failure to zero.
// This reproduces the lenient numeric handling of form and CSV input;
// callers that want to reject bad input use ParseAmount instead.
func CoerceAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		return 0
	}
	return a
}

// Won returns the raw won value.
func (a Amount) Won() int64 {
	return int64(a)
}

// String formats the amount with thousands separators and the won
// suffix, the way every table and report displays money.
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + "원"
}
