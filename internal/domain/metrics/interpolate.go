package metrics

import (
	"time"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// Segment is a half-open span [Start, End) with one known status.
type Segment struct {
	Start time.Time
	End   time.Time
	Up    bool
}

func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// LeadingGapPolicy controls the span between the window floor and the
// first observation when nothing was observed before the floor.
type LeadingGapPolicy int

const (
	// LeadingGapUnknown leaves the span uncovered; it counts toward
	// neither uptime nor downtime.
	LeadingGapUnknown LeadingGapPolicy = iota
	// LeadingGapAssumeFirst backfills the span with the first
	// observation's status.
	LeadingGapAssumeFirst
)

// Interpolate turns sparse observations into contiguous segments
// covering [floor, clock). Each observation's status holds until the
// next observation; the last one holds until clock. An observation
// before floor carries its status into the window. polls must be
// sorted ascending by timestamp. With no observations before clock
// the store contributes nothing regardless of policy.
func Interpolate(polls []entity.StorePoll, floor, clock time.Time, policy LeadingGapPolicy) []Segment {
	if !floor.Before(clock) {
		return nil
	}

	var out []Segment
	add := func(start, end time.Time, up bool) {
		if start.Before(floor) {
			start = floor
		}
		if end.After(clock) {
			end = clock
		}
		if !start.Before(end) {
			return
		}
		if n := len(out); n > 0 && out[n-1].Up == up && out[n-1].End.Equal(start) {
			out[n-1].End = end
			return
		}
		out = append(out, Segment{Start: start, End: end, Up: up})
	}

	// Observations at or past the clock cannot influence the window.
	n := len(polls)
	for n > 0 && !polls[n-1].TimestampUTC.Before(clock) {
		n--
	}
	if n == 0 {
		return nil
	}
	polls = polls[:n]

	if first := polls[0]; first.TimestampUTC.After(floor) && policy == LeadingGapAssumeFirst {
		add(floor, first.TimestampUTC, first.IsUp())
	}

	for i, p := range polls {
		end := clock
		if i+1 < len(polls) {
			end = polls[i+1].TimestampUTC
		}
		add(p.TimestampUTC, end, p.IsUp())
	}
	return out
}
