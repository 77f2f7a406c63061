package metrics

import (
	"testing"
	"time"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load America/Chicago: %v", err)
	}
	return loc
}

func everyDay(rule HourRule) map[int][]HourRule {
	rules := make(map[int][]HourRule)
	for d := 0; d < 7; d++ {
		rules[d] = []HourRule{rule}
	}
	return rules
}

func totalSpan(intervals []Interval) time.Duration {
	var d time.Duration
	for _, iv := range intervals {
		d += iv.End.Sub(iv.Start)
	}
	return d
}

func TestSpringForwardShortensOpenSpan(t *testing.T) {
	loc := chicago(t)
	// 00:00-08:00 local straddles the 02:00 spring-forward jump on
	// 2024-03-10.
	sched := &StoreSchedule{Loc: loc, Rules: everyDay(HourRule{StartSec: 0, EndSec: 8 * 3600})}

	normalDay := sched.BusinessIntervals(
		time.Date(2024, 3, 9, 0, 0, 0, 0, loc).UTC(),
		time.Date(2024, 3, 10, 0, 0, 0, 0, loc).UTC(),
	)
	transitionDay := sched.BusinessIntervals(
		time.Date(2024, 3, 10, 0, 0, 0, 0, loc).UTC(),
		time.Date(2024, 3, 11, 0, 0, 0, 0, loc).UTC(),
	)

	if got := totalSpan(normalDay); got != 8*time.Hour {
		t.Fatalf("expected 8h open on a normal day, got %s", got)
	}
	if got := totalSpan(transitionDay); got != 7*time.Hour {
		t.Fatalf("expected 7h open on the spring-forward day, got %s", got)
	}
}

func TestFallBackLengthensOpenSpan(t *testing.T) {
	loc := chicago(t)
	// The 2024-11-03 01:00 repeat falls inside 00:00-08:00 local.
	sched := &StoreSchedule{Loc: loc, Rules: everyDay(HourRule{StartSec: 0, EndSec: 8 * 3600})}

	transitionDay := sched.BusinessIntervals(
		time.Date(2024, 11, 3, 0, 0, 0, 0, loc).UTC(),
		time.Date(2024, 11, 4, 0, 0, 0, 0, loc).UTC(),
	)
	if got := totalSpan(transitionDay); got != 9*time.Hour {
		t.Fatalf("expected 9h open on the fall-back day, got %s", got)
	}
}

func TestOvernightRuleSpillsIntoNextDay(t *testing.T) {
	// Friday 22:00 - 02:00 (2024-01-12 is a Friday, Monday-first index 4).
	sched := &StoreSchedule{
		Loc:   time.UTC,
		Rules: map[int][]HourRule{4: {{StartSec: 22 * 3600, EndSec: 2 * 3600}}},
	}

	from := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	got := sched.BusinessIntervals(from, to)
	if len(got) != 1 {
		t.Fatalf("expected one interval, got %d: %+v", len(got), got)
	}
	wantStart := time.Date(2024, 1, 12, 22, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 13, 2, 0, 0, 0, time.UTC)
	if !got[0].Start.Equal(wantStart) || !got[0].End.Equal(wantEnd) {
		t.Fatalf("expected [%s, %s), got [%s, %s)", wantStart, wantEnd, got[0].Start, got[0].End)
	}

	// A window opening after midnight Saturday still sees the tail.
	tail := sched.BusinessIntervals(time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), to)
	if len(tail) != 1 || totalSpan(tail) != 2*time.Hour {
		t.Fatalf("expected 2h spill into Saturday, got %+v", tail)
	}
}

func TestWeekdayWithoutRuleIsClosed(t *testing.T) {
	// Rules recorded for Monday only; a Tuesday-only window is closed.
	sched := &StoreSchedule{
		Loc:   time.UTC,
		Rules: map[int][]HourRule{0: {{StartSec: 9 * 3600, EndSec: 17 * 3600}}},
	}
	from := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC) // Tuesday
	if got := sched.BusinessIntervals(from, from.Add(24*time.Hour)); len(got) != 0 {
		t.Fatalf("expected no open intervals on a closed weekday, got %+v", got)
	}
}

func TestOpen24x7CoversWholeWindow(t *testing.T) {
	sched := &StoreSchedule{Loc: time.UTC, Open24x7: true}
	from := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	to := from.Add(40 * time.Hour)

	got := sched.BusinessIntervals(from, to)
	if len(got) != 1 {
		t.Fatalf("expected one merged interval, got %d: %+v", len(got), got)
	}
	if !got[0].Start.Equal(from) || !got[0].End.Equal(to) {
		t.Fatalf("expected full window coverage, got [%s, %s)", got[0].Start, got[0].End)
	}
}

func TestClipTrimsSegmentsToOpenHours(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	segs := []Segment{
		{Start: base.Add(-time.Hour), End: base.Add(30 * time.Minute), Up: true},
		{Start: base.Add(30 * time.Minute), End: base.Add(2 * time.Hour), Up: false},
	}
	hours := []Interval{{Start: base, End: base.Add(time.Hour)}}

	got := ClipSegments(segs, hours)
	if len(got) != 2 {
		t.Fatalf("expected 2 clipped segments, got %d: %+v", len(got), got)
	}
	if !got[0].Up || got[0].Duration() != 30*time.Minute || !got[0].Start.Equal(base) {
		t.Fatalf("expected 30m up from 09:00, got %+v", got[0])
	}
	if got[1].Up || got[1].Duration() != 30*time.Minute || !got[1].End.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected 30m down until 10:00, got %+v", got[1])
	}
}

func TestZeroLengthRuleContributesNothing(t *testing.T) {
	sched := &StoreSchedule{
		Loc:   time.UTC,
		Rules: everyDay(HourRule{StartSec: 9 * 3600, EndSec: 9 * 3600}),
	}
	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := sched.BusinessIntervals(from, from.Add(24*time.Hour)); len(got) != 0 {
		t.Fatalf("expected nothing from a zero-length rule, got %+v", got)
	}
}
