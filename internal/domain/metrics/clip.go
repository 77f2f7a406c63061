package metrics

import (
	"sort"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// HourRule is one local open interval, as seconds since local
// midnight. EndSec < StartSec means the interval runs overnight into
// the next local date.
type HourRule struct {
	StartSec int
	EndSec   int
}

// StoreSchedule is a store's resolved operating calendar: its IANA
// location plus per-weekday open rules. A store with no recorded
// rules at all is open around the clock; a store with rules recorded
// is closed on any weekday that has none.
type StoreSchedule struct {
	Loc      *time.Location
	Open24x7 bool
	Rules    map[int][]HourRule // 0=Monday .. 6=Sunday
}

// Interval is a half-open UTC span.
type Interval struct {
	Start time.Time
	End   time.Time
}

var fullDay = []HourRule{{StartSec: 0, EndSec: secondsPerDay}}

func (s *StoreSchedule) rulesFor(weekday int) []HourRule {
	if s.Open24x7 {
		return fullDay
	}
	return s.Rules[weekday]
}

// weekdayMonday0 converts Go's Sunday-first weekday to the dataset's
// Monday-first convention.
func weekdayMonday0(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// BusinessIntervals localizes the schedule onto every local calendar
// date overlapping [from, to) and returns the open spans in UTC,
// clamped to the window, sorted and merged. Each date is localized
// with that date's own UTC offset, so a spring-forward date yields an
// hour less of UTC span and a fall-back date an hour more.
func (s *StoreSchedule) BusinessIntervals(from, to time.Time) []Interval {
	if !from.Before(to) {
		return nil
	}

	var spans []Interval
	localTo := to.In(s.Loc)
	// Start one date early: an overnight rule on the previous local
	// date can spill into the window.
	lf := from.In(s.Loc)
	day := time.Date(lf.Year(), lf.Month(), lf.Day()-1, 0, 0, 0, 0, s.Loc)

	for !day.After(localTo) {
		for _, r := range s.rulesFor(weekdayMonday0(day.Weekday())) {
			endSec := r.EndSec
			if endSec < r.StartSec {
				// Overnight rule, runs into the next local date.
				endSec += secondsPerDay
			}
			// time.Date normalizes the seconds within the location,
			// picking up the offset in effect at that local instant.
			start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, r.StartSec, 0, s.Loc)
			end := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, endSec, 0, s.Loc)

			us, ue := start.UTC(), end.UTC()
			if us.Before(from) {
				us = from
			}
			if ue.After(to) {
				ue = to
			}
			if us.Before(ue) {
				spans = append(spans, Interval{Start: us, End: ue})
			}
		}
		day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, s.Loc)
	}
	return mergeIntervals(spans)
}

func mergeIntervals(spans []Interval) []Interval {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start.Before(spans[j].Start) })
	out := spans[:1]
	for _, sp := range spans[1:] {
		last := &out[len(out)-1]
		if !sp.Start.After(last.End) {
			if sp.End.After(last.End) {
				last.End = sp.End
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}

// ClipSegments trims segments to their overlap with the open
// intervals. Both inputs must be sorted by start time; the result is
// the business-hours portion of the timeline.
func ClipSegments(segs []Segment, hours []Interval) []Segment {
	var out []Segment
	i, j := 0, 0
	for i < len(segs) && j < len(hours) {
		s, h := segs[i], hours[j]
		start, end := s.Start, s.End
		if h.Start.After(start) {
			start = h.Start
		}
		if h.End.Before(end) {
			end = h.End
		}
		if start.Before(end) {
			out = append(out, Segment{Start: start, End: end, Up: s.Up})
		}
		if s.End.Before(h.End) {
			i++
		} else {
			j++
		}
	}
	return out
}
