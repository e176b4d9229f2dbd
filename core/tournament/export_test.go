package tournament

import "time"

// SetNow freezes the clock used by validations; the returned func restores it.
func SetNow(now time.Time) (restore func()) {
	nowFunc = func() time.Time { return now }
	return func() { nowFunc = time.Now }
}
