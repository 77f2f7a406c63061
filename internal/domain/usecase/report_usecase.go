package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
	"github.com/karandomguy/Store-Monitoring-System/pkg/utils"
)

type StatusRepo interface {
	SetStatus(ctx context.Context, reportID, status string) error
	GetStatus(ctx context.Context, reportID string) (string, error)
}

type ReportRepo interface {
	CreateReport(ctx context.Context, report *entity.Report) error
	GetReport(ctx context.Context, reportID string) (*entity.Report, error)
}

type Publisher interface {
	Publish(ctx context.Context, body json.RawMessage) error
}

type ResultSigner interface {
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReportResult is the status-endpoint view of a report.
type ReportResult struct {
	ReportID     string
	Status       entity.ReportStatus
	ReportURL    string
	ErrorMessage string
}

type ReportUseCase struct {
	StatusRepo   StatusRepo
	PostgresRepo ReportRepo
	Publisher    Publisher
	Signer       ResultSigner
	ResultTTL    time.Duration
}

func NewReportUseCase(status StatusRepo, psql ReportRepo, pub Publisher, signer ResultSigner) *ReportUseCase {
	return &ReportUseCase{
		StatusRepo:   status,
		PostgresRepo: psql,
		Publisher:    pub,
		Signer:       signer,
		ResultTTL:    24 * time.Hour,
	}
}

// TriggerReport registers a Pending report and hands it to the worker
// queue. It returns immediately; generation happens asynchronously.
func (u *ReportUseCase) TriggerReport(ctx context.Context) (*entity.Report, error) {
	report := &entity.Report{
		ReportID:  uuid.New().String(),
		Status:    entity.StatusPending,
		CreatedAt: time.Now(),
	}

	if err := u.PostgresRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}

	if err := u.StatusRepo.SetStatus(ctx, report.ReportID, string(report.Status)); err != nil {
		return nil, err
	}

	msg, err := utils.ToRawMessage(entity.ReportRequestedMessage{ReportID: report.ReportID})
	if err != nil {
		return nil, err
	}

	if err := u.publishWithRetry(ctx, msg); err != nil {
		return nil, err
	}

	return report, nil
}

// GetReport answers a status poll. Running/Pending answers come from
// the redis mirror when it is warm; terminal answers always read the
// authoritative report row.
func (u *ReportUseCase) GetReport(ctx context.Context, reportID string) (*ReportResult, error) {
	if status, err := u.StatusRepo.GetStatus(ctx, reportID); err == nil {
		s := entity.ReportStatus(status)
		if !s.IsTerminal() {
			return &ReportResult{ReportID: reportID, Status: s}, nil
		}
	}

	report, err := u.PostgresRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	res := &ReportResult{ReportID: reportID, Status: report.Status}
	switch report.Status {
	case entity.StatusComplete:
		url, err := u.Signer.PresignedURL(ctx, report.SinkKey, u.ResultTTL)
		if err != nil {
			return nil, err
		}
		res.ReportURL = url
	case entity.StatusFailed:
		res.ErrorMessage = report.ErrorMessage
	}
	return res, nil
}

// GetReportStatus returns the full report record for diagnostics.
func (u *ReportUseCase) GetReportStatus(ctx context.Context, reportID string) (*entity.Report, error) {
	return u.PostgresRepo.GetReport(ctx, reportID)
}

func (u *ReportUseCase) publishWithRetry(ctx context.Context, msg json.RawMessage) error {
	var (
		baseDelay   = 500 * time.Millisecond
		maxDelay    = 10 * time.Second
		maxAttempts = 5
	)

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := u.Publisher.Publish(ctx, msg); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == maxAttempts {
			break
		}

		backoff := baseDelay << (attempt - 1)
		if backoff > maxDelay {
			backoff = maxDelay
		}

		select {
		case <-time.After(backoff):

		case <-ctx.Done():
			return errors.New("publish canceled by context")
		}
	}

	return lastErr
}
