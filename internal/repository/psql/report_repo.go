package psql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

type ReportRepo struct {
	DB *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{DB: db}
}

func (r *ReportRepo) CreateReport(ctx context.Context, report *entity.Report) error {
	return r.DB.WithContext(ctx).Create(report).Error
}

func (r *ReportRepo) GetReport(ctx context.Context, reportID string) (*entity.Report, error) {
	report := &entity.Report{}
	err := r.DB.WithContext(ctx).First(report, "report_id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// notTerminal guards status updates so Complete/Failed stay final.
func (r *ReportRepo) notTerminal(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Model(&entity.Report{}).
		Where("status NOT IN ?", []entity.ReportStatus{entity.StatusComplete, entity.StatusFailed})
}

func (r *ReportRepo) MarkRunning(ctx context.Context, reportID string) error {
	return r.notTerminal(ctx).
		Where("report_id = ?", reportID).
		Update("status", entity.StatusRunning).Error
}

func (r *ReportRepo) SetProgress(ctx context.Context, reportID string, processed int) error {
	return r.notTerminal(ctx).
		Where("report_id = ?", reportID).
		Update("stores_processed", processed).Error
}

func (r *ReportRepo) Complete(ctx context.Context, reportID, sinkKey string, processed int) error {
	now := time.Now()
	return r.notTerminal(ctx).
		Where("report_id = ?", reportID).
		Updates(map[string]interface{}{
			"status":           entity.StatusComplete,
			"sink_key":         sinkKey,
			"stores_processed": processed,
			"completed_at":     &now,
		}).Error
}

func (r *ReportRepo) Fail(ctx context.Context, reportID, errMsg string) error {
	now := time.Now()
	return r.notTerminal(ctx).
		Where("report_id = ?", reportID).
		Updates(map[string]interface{}{
			"status":        entity.StatusFailed,
			"error_message": errMsg,
			"completed_at":  &now,
		}).Error
}
