package vorgaben

import (
	"cmp"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"
)

// Status is the validity of a requirement at a given date.
type Status int

// Requirement states.
const (
	StatusActive Status = iota
	StatusFuture
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusFuture:
		return "future"
	case StatusExpired:
		return "expired"
	default:
		return "active"
	}
}

// GermanDateLayout is the default layout of dates in status descriptions.
const GermanDateLayout = "02.01.2006"

// RequirementStatus reports whether r is in force at the given date.
// A requirement whose end date equals the check date is expired.
func RequirementStatus(r Requirement, at time.Time) Status {
	day := dateOnly(at)
	if dateOnly(r.ValidFrom).After(day) {
		return StatusFuture
	}
	if r.ValidUntil == nil || dateOnly(*r.ValidUntil).After(day) {
		return StatusActive
	}
	return StatusExpired
}

// DescribeStatus returns the German sentence explaining a future or expired
// requirement, or "" when it is in force. layout is a Go time layout.
func DescribeStatus(r Requirement, at time.Time, layout string) string {
	if layout == "" {
		layout = GermanDateLayout
	}
	switch RequirementStatus(r, at) {
	case StatusFuture:
		return "Ist erst ab dem " + r.ValidFrom.Format(layout) + " in Kraft."
	case StatusExpired:
		return "Ist seit dem " + r.ValidUntil.Format(layout) + " nicht mehr in Kraft."
	default:
		return ""
	}
}

// Designation builds the reference number of a requirement:
// document id, first letter of the topic and the number, joined by dots.
func Designation(documentID string, r Requirement) string {
	initial := ""
	if ch, size := utf8.DecodeRuneInString(r.Topic); size > 0 && ch != utf8.RuneError {
		initial = string(ch)
	}
	return documentID + "." + initial + "." + strconv.Itoa(r.Number)
}

// SortRequirements orders requirements by topic, then number. The sort is
// stable so equal keys keep their source order.
func SortRequirements(reqs []Requirement) {
	slices.SortStableFunc(reqs, func(a, b Requirement) int {
		if c := cmp.Compare(a.Topic, b.Topic); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
