package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// pollTimestampLayout matches the dataset's UTC timestamps, with or
// without fractional seconds.
const pollTimestampLayout = "2006-01-02 15:04:05.999999 UTC"

const batchSize = 1000

// Stats counts the outcome of one file load. Malformed rows are
// skipped, never fatal.
type Stats struct {
	Inserted int
	Skipped  int
}

// Loader ingests the three dataset CSV files into postgres.
type Loader struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// LoadStorePolls reads store_status.csv (store_id,status,timestamp_utc).
func (l *Loader) LoadStorePolls(ctx context.Context, r io.Reader) (Stats, error) {
	return load(ctx, l.db, r, []string{"store_id", "status", "timestamp_utc"}, parsePoll)
}

// LoadBusinessHours reads menu_hours.csv
// (store_id,dayOfWeek,start_time_local,end_time_local).
func (l *Loader) LoadBusinessHours(ctx context.Context, r io.Reader) (Stats, error) {
	return load(ctx, l.db, r, []string{"store_id", "dayOfWeek", "start_time_local", "end_time_local"}, parseBusinessHours)
}

// LoadTimezones reads timezones.csv (store_id,timezone_str).
func (l *Loader) LoadTimezones(ctx context.Context, r io.Reader) (Stats, error) {
	return load(ctx, l.db, r, []string{"store_id", "timezone_str"}, parseTimezone)
}

func load[T any](ctx context.Context, db *gorm.DB, r io.Reader, required []string, parse func(map[string]int, []string) (T, error)) (Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return stats, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := indexHeader(header, required)
	if err != nil {
		return stats, err
	}

	batch := make([]T, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.WithContext(ctx).CreateInBatches(batch, batchSize).Error; err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		stats.Inserted += len(batch)
		batch = batch[:0]
		return nil
	}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.Skipped++
			log.Printf("loader: line %d unreadable: %v", line, err)
			continue
		}

		row, err := parse(cols, record)
		if err != nil {
			stats.Skipped++
			log.Printf("loader: line %d skipped: %v", line, err)
			continue
		}
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

func indexHeader(header, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}
	return cols, nil
}

func field(cols map[string]int, record []string, name string) (string, error) {
	i := cols[name]
	if i >= len(record) {
		return "", fmt.Errorf("row too short for column %q", name)
	}
	return strings.TrimSpace(record[i]), nil
}

func parsePoll(cols map[string]int, record []string) (entity.StorePoll, error) {
	storeID, err := field(cols, record, "store_id")
	if err != nil {
		return entity.StorePoll{}, err
	}
	if storeID == "" {
		return entity.StorePoll{}, fmt.Errorf("empty store_id")
	}

	status, err := field(cols, record, "status")
	if err != nil {
		return entity.StorePoll{}, err
	}
	status = strings.ToLower(status)
	if status != entity.PollStatusActive && status != entity.PollStatusInactive {
		return entity.StorePoll{}, fmt.Errorf("unknown status %q", status)
	}

	raw, err := field(cols, record, "timestamp_utc")
	if err != nil {
		return entity.StorePoll{}, err
	}
	ts, err := time.Parse(pollTimestampLayout, raw)
	if err != nil {
		return entity.StorePoll{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}

	return entity.StorePoll{StoreID: storeID, TimestampUTC: ts.UTC(), Status: status}, nil
}

func parseBusinessHours(cols map[string]int, record []string) (entity.BusinessHours, error) {
	storeID, err := field(cols, record, "store_id")
	if err != nil {
		return entity.BusinessHours{}, err
	}
	if storeID == "" {
		return entity.BusinessHours{}, fmt.Errorf("empty store_id")
	}

	rawDay, err := field(cols, record, "dayOfWeek")
	if err != nil {
		return entity.BusinessHours{}, err
	}
	day, err := strconv.Atoi(rawDay)
	if err != nil || day < 0 || day > 6 {
		return entity.BusinessHours{}, fmt.Errorf("day of week %q out of range", rawDay)
	}

	start, err := field(cols, record, "start_time_local")
	if err != nil {
		return entity.BusinessHours{}, err
	}
	end, err := field(cols, record, "end_time_local")
	if err != nil {
		return entity.BusinessHours{}, err
	}
	for _, clock := range []string{start, end} {
		// A 24:00:00 end bound means end of day.
		if clock == "24:00:00" {
			continue
		}
		if _, err := time.Parse("15:04:05", clock); err != nil {
			return entity.BusinessHours{}, fmt.Errorf("parse local time %q: %w", clock, err)
		}
	}

	return entity.BusinessHours{
		StoreID:        storeID,
		DayOfWeek:      day,
		StartTimeLocal: start,
		EndTimeLocal:   end,
	}, nil
}

func parseTimezone(cols map[string]int, record []string) (entity.StoreTimezone, error) {
	storeID, err := field(cols, record, "store_id")
	if err != nil {
		return entity.StoreTimezone{}, err
	}
	if storeID == "" {
		return entity.StoreTimezone{}, fmt.Errorf("empty store_id")
	}

	tz, err := field(cols, record, "timezone_str")
	if err != nil {
		return entity.StoreTimezone{}, err
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return entity.StoreTimezone{}, fmt.Errorf("unknown timezone %q", tz)
	}

	return entity.StoreTimezone{StoreID: storeID, TimezoneStr: tz}, nil
}
