package entity

import (
	"errors"
	"time"
)

const (
	PollStatusActive   = "active"
	PollStatusInactive = "inactive"
)

var ErrNoObservations = errors.New("no poll observations in dataset")

// StorePoll is a single up/down observation for a store, UTC timestamp.
type StorePoll struct {
	ID           uint      `gorm:"primaryKey"`
	StoreID      string    `gorm:"not null;index:idx_store_polls_store_time,priority:1"`
	TimestampUTC time.Time `gorm:"not null;index:idx_store_polls_store_time,priority:2"`
	Status       string    `gorm:"not null"`
}

func (p StorePoll) IsUp() bool {
	return p.Status == PollStatusActive
}

// BusinessHours is one local open interval for one weekday.
// DayOfWeek follows the source data convention: 0=Monday .. 6=Sunday.
type BusinessHours struct {
	ID             uint   `gorm:"primaryKey"`
	StoreID        string `gorm:"not null;index:idx_business_hours_store_day,priority:1"`
	DayOfWeek      int    `gorm:"not null;index:idx_business_hours_store_day,priority:2"`
	StartTimeLocal string `gorm:"not null"`
	EndTimeLocal   string `gorm:"not null"`
}

type StoreTimezone struct {
	ID          uint   `gorm:"primaryKey"`
	StoreID     string `gorm:"not null;uniqueIndex"`
	TimezoneStr string `gorm:"not null"`
}

// StoreMetrics is one output row of a report. Hour-window values are
// minutes, day/week values are hours.
type StoreMetrics struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
}
