package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/karandomguy/Store-Monitoring-System/internal/domain/entity"
	"github.com/karandomguy/Store-Monitoring-System/internal/domain/metrics"
)

// DatasetRepo is the read side of the three per-job datasets. It also
// satisfies metrics.DatasetSource for the resolver.
type DatasetRepo interface {
	MaxObservationTime(ctx context.Context) (time.Time, error)
	StoreIDs(ctx context.Context) ([]string, error)
	PollsBetween(ctx context.Context, storeID string, from, to time.Time) ([]entity.StorePoll, error)
	LastPollBefore(ctx context.Context, storeID string, t time.Time) (*entity.StorePoll, error)
	BusinessHours(ctx context.Context, storeID string) ([]entity.BusinessHours, error)
	Timezone(ctx context.Context, storeID string) (string, error)
}

// ReportWriter mutates the single authoritative report record. The
// repository rejects transitions out of terminal states.
type ReportWriter interface {
	MarkRunning(ctx context.Context, reportID string) error
	SetProgress(ctx context.Context, reportID string, processed int) error
	Complete(ctx context.Context, reportID, sinkKey string, processed int) error
	Fail(ctx context.Context, reportID, errMsg string) error
}

type StatusWriter interface {
	SetStatus(ctx context.Context, reportID, status string) error
}

type SinkUploader interface {
	Upload(ctx context.Context, key string, body io.Reader) error
}

// MetricsCache is optional and advisory; a nil cache disables it.
type MetricsCache interface {
	Get(ctx context.Context, storeID string, clock time.Time) (*entity.StoreMetrics, bool)
	Set(ctx context.Context, m entity.StoreMetrics, clock time.Time)
}

type Recorder interface {
	ReportStarted()
	ReportCompleted(seconds float64)
	ReportFailed()
	StoreProcessed()
	StoreFailed()
}

type GeneratorConfig struct {
	PoolSize        int
	JobTimeout      time.Duration
	DefaultTimezone string
	LeadingGap      metrics.LeadingGapPolicy
	ProgressEvery   int
}

// GeneratorUseCase runs one report job end to end: reference clock,
// per-store computation across a bounded worker pool, CSV streamed to
// the sink, and the report record's lifecycle.
type GeneratorUseCase struct {
	Dataset  DatasetRepo
	Reports  ReportWriter
	Status   StatusWriter
	Sink     SinkUploader
	Cache    MetricsCache
	Recorder Recorder
	Config   GeneratorConfig
}

func NewGeneratorUseCase(ds DatasetRepo, rw ReportWriter, sw StatusWriter, sink SinkUploader, cache MetricsCache, rec Recorder, cfg GeneratorConfig) *GeneratorUseCase {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 8
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 55 * time.Minute
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "America/Chicago"
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100
	}
	return &GeneratorUseCase{
		Dataset:  ds,
		Reports:  rw,
		Status:   sw,
		Sink:     sink,
		Cache:    cache,
		Recorder: rec,
		Config:   cfg,
	}
}

var csvHeader = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

type storeResult struct {
	storeID string
	metrics entity.StoreMetrics
	err     error
}

func (u *GeneratorUseCase) GenerateReport(ctx context.Context, reportID string) error {
	started := time.Now()
	u.Recorder.ReportStarted()

	if err := u.Reports.MarkRunning(ctx, reportID); err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("mark report %s running: %w", reportID, err))
	}
	if err := u.Status.SetStatus(ctx, reportID, string(entity.StatusRunning)); err != nil {
		log.Printf("report %s: status mirror update failed: %v", reportID, err)
	}

	clock, err := u.Dataset.MaxObservationTime(ctx)
	if err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("derive reference clock: %w", err))
	}
	storeIDs, err := u.Dataset.StoreIDs(ctx)
	if err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("list stores: %w", err))
	}
	if len(storeIDs) == 0 {
		return u.fail(ctx, reportID, entity.ErrNoObservations)
	}

	log.Printf("report %s: %d stores, reference clock %s", reportID, len(storeIDs), clock)

	jobCtx, cancel := context.WithTimeout(ctx, u.Config.JobTimeout)
	defer cancel()

	resolver := metrics.NewResolver(u.Dataset, u.Config.DefaultTimezone)
	calc := metrics.Calculator{Clock: clock, Policy: u.Config.LeadingGap}

	// Each worker owns the strided shard i, i+pool, i+2*pool, ... so
	// no two workers ever touch the same store.
	results := make(chan storeResult)
	var wg sync.WaitGroup
	for w := 0; w < u.Config.PoolSize; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; i < len(storeIDs); i += u.Config.PoolSize {
				id := storeIDs[i]
				m, err := u.computeStore(jobCtx, resolver, calc, id)
				select {
				case results <- storeResult{storeID: id, metrics: m, err: err}:
				case <-jobCtx.Done():
					return
				}
			}
		}(w)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	sinkKey := fmt.Sprintf("reports/%s/report.csv", reportID)
	pr, pw := io.Pipe()
	uploadDone := make(chan error, 1)
	go func() {
		err := u.Sink.Upload(jobCtx, sinkKey, pr)
		// Unblock the writer if the upload dies mid-stream.
		pr.CloseWithError(err)
		uploadDone <- err
	}()

	w := csv.NewWriter(pw)
	var writeErr error
	writeRow := func(row []string) {
		if writeErr != nil {
			return
		}
		w.Write(row)
		w.Flush()
		writeErr = w.Error()
	}

	writeRow(csvHeader)
	processed, skipped := 0, 0
	for res := range results {
		if res.err != nil {
			skipped++
			u.Recorder.StoreFailed()
			log.Printf("report %s: store %s skipped: %v", reportID, res.storeID, res.err)
			continue
		}
		writeRow(formatRow(res.metrics))
		processed++
		u.Recorder.StoreProcessed()
		if processed%u.Config.ProgressEvery == 0 {
			if err := u.Reports.SetProgress(jobCtx, reportID, processed); err != nil {
				log.Printf("report %s: progress update failed: %v", reportID, err)
			}
		}
	}
	pw.CloseWithError(writeErr)

	if err := <-uploadDone; err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("upload report csv: %w", err))
	}
	if writeErr != nil {
		return u.fail(ctx, reportID, fmt.Errorf("write report csv: %w", writeErr))
	}
	if err := jobCtx.Err(); err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("report job timed out after %s: %w", u.Config.JobTimeout, err))
	}

	if err := u.Reports.Complete(ctx, reportID, sinkKey, processed); err != nil {
		return u.fail(ctx, reportID, fmt.Errorf("complete report: %w", err))
	}
	if err := u.Status.SetStatus(ctx, reportID, string(entity.StatusComplete)); err != nil {
		log.Printf("report %s: status mirror update failed: %v", reportID, err)
	}

	u.Recorder.ReportCompleted(time.Since(started).Seconds())
	log.Printf("report %s complete: %d stores written, %d skipped, took %s",
		reportID, processed, skipped, time.Since(started))
	return nil
}

// computeStore is the per-store pipeline; any error here is a
// per-store failure that skips the row without aborting the job.
func (u *GeneratorUseCase) computeStore(ctx context.Context, resolver *metrics.Resolver, calc metrics.Calculator, storeID string) (entity.StoreMetrics, error) {
	if u.Cache != nil {
		if m, ok := u.Cache.Get(ctx, storeID, calc.Clock); ok {
			return *m, nil
		}
	}

	sched, err := resolver.Schedule(ctx, storeID)
	if err != nil {
		return entity.StoreMetrics{}, err
	}

	floor := metrics.WindowFloor(calc.Clock)
	polls, err := u.Dataset.PollsBetween(ctx, storeID, floor, calc.Clock)
	if err != nil {
		return entity.StoreMetrics{}, err
	}
	prior, err := u.Dataset.LastPollBefore(ctx, storeID, floor)
	if err != nil {
		return entity.StoreMetrics{}, err
	}
	if prior != nil {
		polls = append([]entity.StorePoll{*prior}, polls...)
	}

	m := calc.Compute(storeID, polls, sched)
	if u.Cache != nil {
		u.Cache.Set(ctx, m, calc.Clock)
	}
	return m, nil
}

func (u *GeneratorUseCase) fail(ctx context.Context, reportID string, cause error) error {
	log.Printf("report %s failed: %v", reportID, cause)
	if err := u.Reports.Fail(ctx, reportID, cause.Error()); err != nil {
		log.Printf("report %s: recording failure failed: %v", reportID, err)
	}
	if err := u.Status.SetStatus(ctx, reportID, string(entity.StatusFailed)); err != nil {
		log.Printf("report %s: status mirror update failed: %v", reportID, err)
	}
	u.Recorder.ReportFailed()
	return cause
}

func formatRow(m entity.StoreMetrics) []string {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return []string{
		m.StoreID,
		f(m.UptimeLastHour),
		f(m.UptimeLastDay),
		f(m.UptimeLastWeek),
		f(m.DowntimeLastHour),
		f(m.DowntimeLastDay),
		f(m.DowntimeLastWeek),
	}
}
