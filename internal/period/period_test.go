package period

import (
	"testing"
	"time"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func newTestResolver(t *testing.T, now time.Time) *Resolver {
	t.Helper()
	r, err := NewResolver(fixedClock(now))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	return r
}

func TestNextRollsOverDecember(t *testing.T) {
	r := newTestResolver(t, time.Date(2025, time.December, 15, 12, 0, 0, 0, time.UTC))
	if got := r.Next(); got != Period(126) {
		t.Fatalf("expected period 126, got %d", got)
	}
}

func TestNextMidYear(t *testing.T) {
	r := newTestResolver(t, time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))
	if got := r.Next(); got != Period(425) {
		t.Fatalf("expected period 425, got %d", got)
	}
}

func TestNextUsesEasternCalendar(t *testing.T) {
	// 02:00 UTC on Jan 1 is still Dec 31 in New York, so the next
	// period is January, not February.
	r := newTestResolver(t, time.Date(2026, time.January, 1, 2, 0, 0, 0, time.UTC))
	if got := r.Next(); got != Period(126) {
		t.Fatalf("expected period 126, got %d", got)
	}
}

func TestNewEncodesMMYY(t *testing.T) {
	if got := New(time.June, 2025); got != Period(625) {
		t.Fatalf("expected 625, got %d", got)
	}
	if got := New(time.January, 2026); got != Period(126) {
		t.Fatalf("expected 126, got %d", got)
	}
}

func TestStringZeroPads(t *testing.T) {
	if got := Period(126).String(); got != "0126" {
		t.Fatalf("expected 0126, got %q", got)
	}
	if got := Period(1225).String(); got != "1225" {
		t.Fatalf("expected 1225, got %q", got)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		period Period
		want   bool
	}{
		{Period(126), true},
		{Period(625), true},
		{Period(1225), true},
		{Period(25), false},   // month 00
		{Period(1325), false}, // month 13
		{Period(0), false},
		{Period(-625), false},
	}
	for _, tc := range cases {
		if got := tc.period.Valid(); got != tc.want {
			t.Fatalf("Valid(%d): expected %v, got %v", tc.period, tc.want, got)
		}
	}
}

func TestMonthYearDecode(t *testing.T) {
	p := Period(625)
	if p.Month() != time.June {
		t.Fatalf("expected June, got %v", p.Month())
	}
	if p.Year() != 25 {
		t.Fatalf("expected year 25, got %d", p.Year())
	}
}
