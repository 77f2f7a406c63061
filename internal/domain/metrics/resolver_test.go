package metrics

import (
	"context"
	"testing"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

type fakeSource struct {
	hours     map[string][]entity.BusinessHours
	timezones map[string]string
	hoursHits int
	tzHits    int
}

func (f *fakeSource) BusinessHours(_ context.Context, storeID string) ([]entity.BusinessHours, error) {
	f.hoursHits++
	return f.hours[storeID], nil
}

func (f *fakeSource) Timezone(_ context.Context, storeID string) (string, error) {
	f.tzHits++
	return f.timezones[storeID], nil
}

func TestMissingTimezoneFallsBackToDefault(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, "America/Chicago")

	sched, err := r.Schedule(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched.Loc.String() != "America/Chicago" {
		t.Fatalf("expected default zone, got %s", sched.Loc)
	}
}

func TestMissingHoursMeansOpen24x7(t *testing.T) {
	src := &fakeSource{timezones: map[string]string{"s1": "UTC"}}
	r := NewResolver(src, "America/Chicago")

	sched, err := r.Schedule(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sched.Open24x7 {
		t.Fatal("expected 24x7 default when no rules are recorded")
	}
}

func TestRecordedHoursParseIntoRules(t *testing.T) {
	src := &fakeSource{
		timezones: map[string]string{"s1": "UTC"},
		hours: map[string][]entity.BusinessHours{
			"s1": {
				{StoreID: "s1", DayOfWeek: 0, StartTimeLocal: "09:00:00", EndTimeLocal: "17:00:00"},
				{StoreID: "s1", DayOfWeek: 0, StartTimeLocal: "18:00", EndTimeLocal: "21:30"},
			},
		},
	}
	r := NewResolver(src, "America/Chicago")

	sched, err := r.Schedule(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sched.Open24x7 {
		t.Fatal("recorded rules must not default to 24x7")
	}
	rules := sched.Rules[0]
	if len(rules) != 2 {
		t.Fatalf("expected 2 Monday rules, got %d", len(rules))
	}
	if rules[0].StartSec != 9*3600 || rules[0].EndSec != 17*3600 {
		t.Fatalf("unexpected first rule: %+v", rules[0])
	}
	if rules[1].StartSec != 18*3600 || rules[1].EndSec != 21*3600+1800 {
		t.Fatalf("unexpected second rule: %+v", rules[1])
	}
}

func TestMalformedScheduleDataFails(t *testing.T) {
	cases := map[string]*fakeSource{
		"bad timezone": {timezones: map[string]string{"s1": "Not/AZone"}},
		"bad clock": {
			timezones: map[string]string{"s1": "UTC"},
			hours: map[string][]entity.BusinessHours{
				"s1": {{StoreID: "s1", DayOfWeek: 0, StartTimeLocal: "9am", EndTimeLocal: "17:00:00"}},
			},
		},
		"weekday out of range": {
			timezones: map[string]string{"s1": "UTC"},
			hours: map[string][]entity.BusinessHours{
				"s1": {{StoreID: "s1", DayOfWeek: 7, StartTimeLocal: "09:00:00", EndTimeLocal: "17:00:00"}},
			},
		},
	}
	for name, src := range cases {
		r := NewResolver(src, "America/Chicago")
		if _, err := r.Schedule(context.Background(), "s1"); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestScheduleIsMemoizedPerStore(t *testing.T) {
	src := &fakeSource{timezones: map[string]string{"s1": "UTC"}}
	r := NewResolver(src, "America/Chicago")

	for i := 0; i < 3; i++ {
		if _, err := r.Schedule(context.Background(), "s1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if src.hoursHits != 1 || src.tzHits != 1 {
		t.Fatalf("expected single lookup per store, got hours=%d tz=%d", src.hoursHits, src.tzHits)
	}
}
