package model

import "time"

// Day truncates a timestamp to its calendar date in UTC. All date window
// comparisons go through this so that time-of-day and zone never influence
// activity or expiration.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
