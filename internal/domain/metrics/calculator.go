package metrics

import (
	"time"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// Calculator runs the per-store pipeline against one fixed reference
// clock. It is a pure function of its inputs: the same polls,
// schedule and clock always produce the same metrics.
type Calculator struct {
	Clock  time.Time
	Policy LeadingGapPolicy
}

// Compute interpolates the trailing week of observations, clips the
// timeline to business hours, then totals the three trailing windows.
func (c Calculator) Compute(storeID string, polls []entity.StorePoll, sched *StoreSchedule) entity.StoreMetrics {
	floor := WindowFloor(c.Clock)

	segs := Interpolate(polls, floor, c.Clock, c.Policy)
	clipped := ClipSegments(segs, sched.BusinessIntervals(floor, c.Clock))

	hour := Accumulate(clipped, c.Clock.Add(-WindowHour), c.Clock)
	day := Accumulate(clipped, c.Clock.Add(-WindowDay), c.Clock)
	week := Accumulate(clipped, floor, c.Clock)

	return entity.StoreMetrics{
		StoreID:          storeID,
		UptimeLastHour:   hour.Up.Minutes(),
		DowntimeLastHour: hour.Down.Minutes(),
		UptimeLastDay:    day.Up.Hours(),
		DowntimeLastDay:  day.Down.Hours(),
		UptimeLastWeek:   week.Up.Hours(),
		DowntimeLastWeek: week.Down.Hours(),
	}
}
