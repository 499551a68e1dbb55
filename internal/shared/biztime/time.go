// Package biztime centralizes time handling. All storage and transport use
// UTC; implicit local timezones are prohibited.
package biztime

import "time"

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}
