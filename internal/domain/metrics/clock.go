package metrics

import "time"

// Trailing report windows, all ending at the reference clock. The
// reference clock is the max observation timestamp of the dataset,
// computed once per report so every store sees the same windows.
const (
	WindowHour = time.Hour
	WindowDay  = 24 * time.Hour
	WindowWeek = 7 * 24 * time.Hour
)

// WindowFloor is the earliest instant any window of a report reaches.
func WindowFloor(clock time.Time) time.Time {
	return clock.Add(-WindowWeek)
}
