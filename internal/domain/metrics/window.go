package metrics

import "time"

// WindowTotals holds summed up/down time inside one trailing window.
// Unobserved time belongs to neither bucket, so Up+Down may fall
// short of the window's business-hours span.
type WindowTotals struct {
	Up   time.Duration
	Down time.Duration
}

// Accumulate sums the overlap of each segment with [from, to). A
// segment spanning a window boundary contributes only its overlapping
// fraction.
func Accumulate(segs []Segment, from, to time.Time) WindowTotals {
	var t WindowTotals
	for _, s := range segs {
		start, end := s.Start, s.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if !start.Before(end) {
			continue
		}
		d := end.Sub(start)
		if s.Up {
			t.Up += d
		} else {
			t.Down += d
		}
	}
	return t
}
