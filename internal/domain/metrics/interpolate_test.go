package metrics

import (
	"testing"
	"time"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

func poll(ts time.Time, up bool) entity.StorePoll {
	status := entity.PollStatusInactive
	if up {
		status = entity.PollStatusActive
	}
	return entity.StorePoll{StoreID: "s1", TimestampUTC: ts, Status: status}
}

func TestForwardHoldBetweenObservations(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	clock := base.Add(time.Hour)
	polls := []entity.StorePoll{
		poll(base, true),
		poll(base.Add(30*time.Minute), false),
	}

	segs := Interpolate(polls, base, clock, LeadingGapUnknown)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if !segs[0].Up || segs[0].Duration() != 30*time.Minute {
		t.Fatalf("expected 30m up first, got %+v", segs[0])
	}
	if segs[1].Up || segs[1].Duration() != 30*time.Minute {
		t.Fatalf("expected 30m down second, got %+v", segs[1])
	}
	if !segs[1].End.Equal(clock) {
		t.Fatalf("last segment must extend to clock, ends %s", segs[1].End)
	}
}

func TestLeadingGapUnknownByDefault(t *testing.T) {
	obs := time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)
	clock := obs.Add(30 * time.Minute)
	floor := clock.Add(-time.Hour)

	segs := Interpolate([]entity.StorePoll{poll(obs, true)}, floor, clock, LeadingGapUnknown)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if !segs[0].Start.Equal(obs) || !segs[0].End.Equal(clock) || !segs[0].Up {
		t.Fatalf("expected [obs, clock) up, got %+v", segs[0])
	}
}

func TestLeadingGapAssumeFirstBackfills(t *testing.T) {
	obs := time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)
	clock := obs.Add(30 * time.Minute)
	floor := clock.Add(-time.Hour)

	segs := Interpolate([]entity.StorePoll{poll(obs, true)}, floor, clock, LeadingGapAssumeFirst)
	if len(segs) != 1 {
		t.Fatalf("expected merged single segment, got %d: %+v", len(segs), segs)
	}
	if !segs[0].Start.Equal(floor) || !segs[0].End.Equal(clock) || !segs[0].Up {
		t.Fatalf("expected [floor, clock) up, got %+v", segs[0])
	}
}

func TestObservationBeforeFloorCarriesForward(t *testing.T) {
	floor := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	clock := floor.Add(2 * time.Hour)
	polls := []entity.StorePoll{
		poll(floor.Add(-3*time.Hour), false),
		poll(floor.Add(30*time.Minute), true),
	}

	segs := Interpolate(polls, floor, clock, LeadingGapUnknown)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Up || !segs[0].Start.Equal(floor) || segs[0].Duration() != 30*time.Minute {
		t.Fatalf("expected 30m carried-forward down from floor, got %+v", segs[0])
	}
	if !segs[1].Up || !segs[1].End.Equal(clock) {
		t.Fatalf("expected up to clock, got %+v", segs[1])
	}
}

func TestNoObservationsYieldsNothing(t *testing.T) {
	floor := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	clock := floor.Add(time.Hour)

	if segs := Interpolate(nil, floor, clock, LeadingGapUnknown); segs != nil {
		t.Fatalf("expected no segments for empty polls, got %+v", segs)
	}
	late := []entity.StorePoll{poll(clock.Add(time.Minute), true)}
	if segs := Interpolate(late, floor, clock, LeadingGapAssumeFirst); segs != nil {
		t.Fatalf("expected no segments when all polls are past the clock, got %+v", segs)
	}
}

func TestTimelinePartitionIsContiguous(t *testing.T) {
	floor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := floor.Add(7 * 24 * time.Hour)
	polls := []entity.StorePoll{
		poll(floor.Add(6*time.Hour), true),
		poll(floor.Add(20*time.Hour), true),
		poll(floor.Add(42*time.Hour), false),
		poll(floor.Add(90*time.Hour), true),
	}

	segs := Interpolate(polls, floor, clock, LeadingGapUnknown)
	if len(segs) == 0 {
		t.Fatal("expected segments")
	}
	for i := 1; i < len(segs); i++ {
		if !segs[i-1].End.Equal(segs[i].Start) {
			t.Fatalf("gap or overlap between segment %d and %d: %s vs %s",
				i-1, i, segs[i-1].End, segs[i].Start)
		}
	}
	if !segs[0].Start.Equal(polls[0].TimestampUTC) {
		t.Fatalf("leading unknown gap must end at first observation, starts %s", segs[0].Start)
	}
	if !segs[len(segs)-1].End.Equal(clock) {
		t.Fatalf("segments must end at the clock, end %s", segs[len(segs)-1].End)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i-1].Up == segs[i].Up {
			t.Fatalf("adjacent segments %d and %d share a status and were not merged", i-1, i)
		}
	}
}
