package vorgaben

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRequirementStatus(t *testing.T) {
	t.Parallel()

	end := day(2026, 6, 30)
	at := day(2026, 3, 1)

	tests := []struct {
		name     string
		req      Requirement
		at       time.Time
		want     Status
		wantText string
	}{
		{
			name: "active without end",
			req:  Requirement{ValidFrom: day(2025, 1, 1)},
			at:   at,
			want: StatusActive,
		},
		{
			name: "active, starts on check date",
			req:  Requirement{ValidFrom: at},
			at:   at.Add(15 * time.Hour),
			want: StatusActive,
		},
		{
			name: "active before end",
			req:  Requirement{ValidFrom: day(2025, 1, 1), ValidUntil: &end},
			at:   at,
			want: StatusActive,
		},
		{
			name:     "future",
			req:      Requirement{ValidFrom: day(2026, 4, 1)},
			at:       at,
			want:     StatusFuture,
			wantText: "Ist erst ab dem 01.04.2026 in Kraft.",
		},
		{
			name:     "expired on end date",
			req:      Requirement{ValidFrom: day(2025, 1, 1), ValidUntil: &end},
			at:       end,
			want:     StatusExpired,
			wantText: "Ist seit dem 30.06.2026 nicht mehr in Kraft.",
		},
		{
			name:     "expired after end",
			req:      Requirement{ValidFrom: day(2025, 1, 1), ValidUntil: &end},
			at:       day(2027, 1, 1),
			want:     StatusExpired,
			wantText: "Ist seit dem 30.06.2026 nicht mehr in Kraft.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := RequirementStatus(tt.req, tt.at); got != tt.want {
				t.Errorf("RequirementStatus() = %v, want %v", got, tt.want)
			}
			if got := DescribeStatus(tt.req, tt.at, ""); got != tt.wantText {
				t.Errorf("DescribeStatus() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestDescribeStatus_Layout(t *testing.T) {
	t.Parallel()

	r := Requirement{ValidFrom: day(2026, 4, 1)}
	if got := DescribeStatus(r, day(2026, 1, 1), time.DateOnly); got != "Ist erst ab dem 2026-04-01 in Kraft." {
		t.Errorf("DescribeStatus() = %q", got)
	}
}

func TestDesignation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		topic  string
		number int
		want   string
	}{
		{"Technik", 3, "STD-7.T.3"},
		{"Überwachung", 12, "STD-7.Ü.12"},
		{"", 1, "STD-7..1"},
	}
	for _, tt := range tests {
		got := Designation("STD-7", Requirement{Topic: tt.topic, Number: tt.number})
		if got != tt.want {
			t.Errorf("Designation(%q, %d) = %q, want %q", tt.topic, tt.number, got, tt.want)
		}
	}
}

func TestSortRequirements(t *testing.T) {
	t.Parallel()

	reqs := []Requirement{
		{Topic: "Technik", Number: 2, Title: "b"},
		{Topic: "Organisation", Number: 5},
		{Topic: "Technik", Number: 1},
		{Topic: "Technik", Number: 2, Title: "a"},
	}
	SortRequirements(reqs)

	want := []string{"Organisation5", "Technik1", "Technik2b", "Technik2a"}
	for i, r := range reqs {
		key := r.Topic + string(rune('0'+r.Number)) + r.Title
		if key != want[i] {
			t.Errorf("reqs[%d] = %s, want %s", i, key, want[i])
		}
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[Status]string{StatusActive: "active", StatusFuture: "future", StatusExpired: "expired"} {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, got, want)
		}
	}
}
