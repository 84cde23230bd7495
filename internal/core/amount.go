// Package core provides the journal's table model, derived metrics and
// statistics.
//
// This file contains lenient parsing of monetary and numeric cells.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a numeric cell. It accepts a leading sign, a decimal
// comma or dot, thousand separators (spaces, non-breaking spaces, or the
// other punctuation mark), and a trailing or leading euro sign. When both
// '.' and ',' appear, the last one is the decimal separator.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34, true
//	ParseAmount("12,34 €")   -> 12.34, true
//	ParseAmount("1 234,5")   -> 1234.5, true
//	ParseAmount("1.234,50")  -> 1234.5, true
//	ParseAmount("1,234.50")  -> 1234.5, true
//	ParseAmount("-5")        -> -5, true
//	ParseAmount("abc")       -> 0, false
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '€':
			return -1
		}
		return r
	}, s)
	s = normalizeSeparators(s)
	if s == "" || s == "+" || s == "-" {
		return decimal.Zero, false
	}
	for i, r := range s {
		if (r == '+' || r == '-') && i == 0 {
			continue
		}
		if r != '.' && (r < '0' || r > '9') {
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// normalizeSeparators rewrites s so that '.' is the only, optional,
// decimal separator. A mark repeated with no other mark present is a
// thousand separator.
func normalizeSeparators(s string) string {
	dot, comma := strings.LastIndexByte(s, '.'), strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(s, ",", ".")
	case dot >= 0 && strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
