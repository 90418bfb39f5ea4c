// Package dateutil parses validity dates and converts user-facing date
// formats to Go layouts.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors.
var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidDate       = errors.New("invalid date")
)

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// dateTokens maps format tokens to Go layout components, longest first so
// matching is greedy.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common formats.
var Presets = map[string]string{
	"iso":    "YYYY-MM-DD",
	"german": "DD.MM.YYYY",
	"long":   "D. MMMM YYYY",
}

// Layout resolves a preset name or a token format to a Go time layout.
func Layout(format string) (string, error) {
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}
	return ParseDateFormat(format)
}

// ParseDateFormat converts a token format (YYYY, YY, MMMM, MMM, MM, M, DD,
// D) to a Go layout. Text in brackets is copied literally, as is any other
// character outside a token.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			literal, after, ok := strings.Cut(rest[1:], "]")
			if !ok {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(literal)
			rest = after
			continue
		}
		rest = writeToken(&b, rest)
	}
	return b.String(), nil
}

// writeToken writes the layout of the token at the start of s, or its first
// byte, and returns the remainder.
func writeToken(b *strings.Builder, s string) string {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.goFmt)
			return s[len(t.token):]
		}
	}
	b.WriteByte(s[0])
	return s[1:]
}

// inputLayouts are the accepted spellings of a date on the command line.
var inputLayouts = []string{time.DateOnly, "02.01.2006", "2.1.2006"}

// ParseDate parses a calendar date given as YYYY-MM-DD or DD.MM.YYYY, or
// the words "today"/"heute" relative to now. The result is midnight UTC.
func ParseDate(value string, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "":
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	case "today", "heute":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (use YYYY-MM-DD or DD.MM.YYYY)", ErrInvalidDate, value)
}

// ParseOptionalDate is ParseDate for optional flags: "" yields nil.
func ParseOptionalDate(value string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value, now)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
