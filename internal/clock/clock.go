// SPDX-License-Identifier: MPL-2.0

// Package clock supplies the wall clock used for freshness checks.
//
// Production code uses Real; tests pin "now" with a Fake so that date
// arithmetic around the freshness threshold is deterministic.
package clock

import (
	"sync"
	"time"
)

type (
	// Clock abstracts the current time.
	Clock interface {
		// Now returns the current time.
		Now() time.Time
	}

	// Real implements Clock using the system time.
	Real struct{}

	// Fake implements Clock with a manually controlled time.
	// Time only moves when Advance or Set is called.
	Fake struct {
		mu      sync.Mutex
		current time.Time
	}
)

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// NewFake creates a Fake initialized to the given time.
// A zero initial time defaults to a fixed reference date.
func NewFake(initial time.Time) *Fake {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{current: initial}
}

// Now returns the current fake time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the fake time forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the fake time to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Today returns the calendar date of c.Now() in UTC, truncated to midnight.
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf truncates t to midnight UTC of its own calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
