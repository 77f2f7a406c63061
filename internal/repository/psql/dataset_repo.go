package psql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
)

// DatasetRepo reads the immutable per-job datasets: poll observations,
// business hours and timezones.
type DatasetRepo struct {
	DB *gorm.DB
}

func NewDatasetRepo(db *gorm.DB) *DatasetRepo {
	return &DatasetRepo{DB: db}
}

// MaxObservationTime returns the reference clock source: the newest
// poll timestamp across all stores.
func (r *DatasetRepo) MaxObservationTime(ctx context.Context) (time.Time, error) {
	var ts sql.NullTime
	row := r.DB.WithContext(ctx).Model(&entity.StorePoll{}).Select("MAX(timestamp_utc)").Row()
	if err := row.Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("max observation time: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, entity.ErrNoObservations
	}
	return ts.Time.UTC(), nil
}

func (r *DatasetRepo) StoreIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).
		Model(&entity.StorePoll{}).
		Distinct("store_id").
		Order("store_id").
		Pluck("store_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list store ids: %w", err)
	}
	return ids, nil
}

func (r *DatasetRepo) PollsBetween(ctx context.Context, storeID string, from, to time.Time) ([]entity.StorePoll, error) {
	var polls []entity.StorePoll
	err := r.DB.WithContext(ctx).
		Where("store_id = ? AND timestamp_utc >= ? AND timestamp_utc <= ?", storeID, from, to).
		Order("timestamp_utc asc").
		Find(&polls).Error
	if err != nil {
		return nil, fmt.Errorf("polls for store %s: %w", storeID, err)
	}
	return polls, nil
}

// LastPollBefore returns the newest observation strictly before t, or
// nil when the store has none. It seeds the carry-forward status at
// the window floor.
func (r *DatasetRepo) LastPollBefore(ctx context.Context, storeID string, t time.Time) (*entity.StorePoll, error) {
	poll := &entity.StorePoll{}
	err := r.DB.WithContext(ctx).
		Where("store_id = ? AND timestamp_utc < ?", storeID, t).
		Order("timestamp_utc desc").
		First(poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last poll before %s for store %s: %w", t, storeID, err)
	}
	return poll, nil
}

func (r *DatasetRepo) BusinessHours(ctx context.Context, storeID string) ([]entity.BusinessHours, error) {
	var rows []entity.BusinessHours
	err := r.DB.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("day_of_week asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("business hours for store %s: %w", storeID, err)
	}
	return rows, nil
}

// Timezone returns "" when the store has no recorded timezone; the
// resolver substitutes the configured default.
func (r *DatasetRepo) Timezone(ctx context.Context, storeID string) (string, error) {
	tz := &entity.StoreTimezone{}
	err := r.DB.WithContext(ctx).First(tz, "store_id = ?", storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("timezone for store %s: %w", storeID, err)
	}
	return tz.TimezoneStr, nil
}
