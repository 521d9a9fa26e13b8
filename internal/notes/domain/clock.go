package domain

import "time"

// Now returns the current UTC time truncated to milliseconds, the finest
// precision every store driver keeps. Values handed to a store compare equal
// to what it returns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
