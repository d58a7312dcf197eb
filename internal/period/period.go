// Package period encodes billing months and resolves which month a
// job should target.
package period

import (
	"fmt"
	"time"

	"github.com/JWax21/cleanbox-cron/internal/clock"
)

// Period is a billing month encoded as the integer MMYY: 625 is June
// 2025, 126 is January 2026. Ordering and equality are on the raw
// integer, matching how the operational store indexes draft boxes.
type Period int

// New encodes a month and year. The year is taken modulo 100.
func New(month time.Month, year int) Period {
	return Period(int(month)*100 + year%100)
}

func (p Period) Month() time.Month { return time.Month(int(p) / 100) }

// Year returns the two-digit year component.
func (p Period) Year() int { return int(p) % 100 }

func (p Period) Valid() bool {
	m := int(p) / 100
	return m >= 1 && m <= 12
}

// String renders the canonical zero-padded form, e.g. "0126".
func (p Period) String() string {
	return fmt.Sprintf("%02d%02d", int(p)/100, int(p)%100)
}

// DefaultZone is the reference zone for calendar math: draft boxes
// roll over on Eastern time.
const DefaultZone = "America/New_York"

// Resolver computes target periods relative to the current wall-clock
// date in the reference zone.
type Resolver struct {
	clock clock.Clock
	loc   *time.Location
}

func NewResolver(c clock.Clock) (*Resolver, error) {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		return nil, fmt.Errorf("load reference zone %s: %w", DefaultZone, err)
	}
	return &Resolver{clock: c, loc: loc}, nil
}

// Next returns the period for the calendar month after the current one
// in the reference zone.
func (r *Resolver) Next() Period {
	now := r.clock.Now().In(r.loc)
	month := (int(now.Month()) % 12) + 1
	year := now.Year()
	if now.Month() == time.December {
		year++
	}
	return New(time.Month(month), year)
}
