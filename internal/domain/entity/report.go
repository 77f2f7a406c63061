package entity

import (
	"errors"
	"time"
)

type ReportStatus string

const (
	StatusPending  ReportStatus = "Pending"
	StatusRunning  ReportStatus = "Running"
	StatusComplete ReportStatus = "Complete"
	StatusFailed   ReportStatus = "Failed"
)

var ErrReportNotFound = errors.New("report not found")

type Report struct {
	ReportID        string       `gorm:"primaryKey;type:uuid" json:"report_id"`
	Status          ReportStatus `gorm:"not null;type:text;index" json:"status"`
	SinkKey         string       `json:"sink_key,omitempty"`
	ErrorMessage    string       `json:"error_message,omitempty"`
	StoresProcessed int          `json:"stores_processed"`
	CreatedAt       time.Time    `json:"created_at"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the status can no longer change.
func (s ReportStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

type ReportRequestedMessage struct {
	ReportID string `json:"report_id"`
}
