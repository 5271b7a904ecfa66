// Package timex holds time helpers shared by the server: an injectable clock
// and a JSON-friendly duration.
package timex

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T. It is meant for tests and replay tooling.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
