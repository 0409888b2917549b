package services

import "time"

// Clock returns the current time. Services default to UTC wall time.
type Clock func() time.Time

func defaultClock(c Clock) Clock {
	if c != nil {
		return c
	}
	return func() time.Time { return time.Now().UTC() }
}
