package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// DatasetSource is the read-only lookup surface the resolver needs.
// Timezone returns "" when the store has no recorded timezone.
type DatasetSource interface {
	BusinessHours(ctx context.Context, storeID string) ([]entity.BusinessHours, error)
	Timezone(ctx context.Context, storeID string) (string, error)
}

// Resolver turns raw business-hours rows and timezone names into
// StoreSchedules, memoizing per store. The dataset is immutable for
// the lifetime of a report job, so entries never invalidate and the
// resolver is safe to share across workers.
type Resolver struct {
	src       DatasetSource
	defaultTZ string

	mu        sync.Mutex
	schedules map[string]*StoreSchedule
	locs      map[string]*time.Location
}

func NewResolver(src DatasetSource, defaultTZ string) *Resolver {
	return &Resolver{
		src:       src,
		defaultTZ: defaultTZ,
		schedules: make(map[string]*StoreSchedule),
		locs:      make(map[string]*time.Location),
	}
}

func (r *Resolver) Schedule(ctx context.Context, storeID string) (*StoreSchedule, error) {
	r.mu.Lock()
	cached, ok := r.schedules[storeID]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	tzName, err := r.src.Timezone(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("timezone lookup for store %s: %w", storeID, err)
	}
	if tzName == "" {
		tzName = r.defaultTZ
	}
	loc, err := r.location(tzName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q for store %s: %w", tzName, storeID, err)
	}

	rows, err := r.src.BusinessHours(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("business hours lookup for store %s: %w", storeID, err)
	}

	sched := &StoreSchedule{Loc: loc, Open24x7: len(rows) == 0, Rules: make(map[int][]HourRule)}
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			return nil, fmt.Errorf("store %s: day_of_week %d out of range", storeID, row.DayOfWeek)
		}
		startSec, err := parseLocalClock(row.StartTimeLocal)
		if err != nil {
			return nil, fmt.Errorf("store %s: start_time_local %q: %w", storeID, row.StartTimeLocal, err)
		}
		endSec, err := parseLocalClock(row.EndTimeLocal)
		if err != nil {
			return nil, fmt.Errorf("store %s: end_time_local %q: %w", storeID, row.EndTimeLocal, err)
		}
		sched.Rules[row.DayOfWeek] = append(sched.Rules[row.DayOfWeek], HourRule{StartSec: startSec, EndSec: endSec})
	}

	r.mu.Lock()
	r.schedules[storeID] = sched
	r.mu.Unlock()
	return sched, nil
}

func (r *Resolver) location(name string) (*time.Location, error) {
	r.mu.Lock()
	loc, ok := r.locs[name]
	r.mu.Unlock()
	if ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.locs[name] = loc
	r.mu.Unlock()
	return loc, nil
}

// parseLocalClock parses "HH:MM:SS" or "HH:MM" into seconds since
// local midnight. "24:00:00" is accepted as end of day.
func parseLocalClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("malformed clock value")
	}
	vals := [3]int{}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("malformed clock value: %w", err)
		}
		vals[i] = v
	}
	h, m, sec := vals[0], vals[1], vals[2]
	if h < 0 || h > 24 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("clock value out of range")
	}
	total := h*3600 + m*60 + sec
	if total > secondsPerDay {
		return 0, fmt.Errorf("clock value out of range")
	}
	return total, nil
}
