package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/solventa-app/solventa/internal/observability"
)

// OverdueMarker flags unpaid installments past the cutoff date.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

// OverdueScanJob persists the overdue flag on unpaid installments whose due
// date has passed, so listings don't recompute lateness against today on
// every row.
type OverdueScanJob struct {
	Ledger  OverdueMarker
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(ledger OverdueMarker, logger *slog.Logger, metrics *observability.Metrics) *OverdueScanJob {
	return &OverdueScanJob{
		Ledger:  ledger,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Ledger == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	asOf := j.now()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return asynq.SkipRetry
		}
		asOf = parsed
	}

	logger := j.logger().With(slog.Time("as_of", asOf))
	logger.Info("starting overdue scan")

	start := j.now()
	flagged, err := j.Ledger.MarkOverdue(ctx, asOf)
	if err != nil {
		logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}
	j.Metrics.InstallmentsOverdue(flagged)

	logger.Info("completed overdue scan",
		slog.Int64("flagged", flagged),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCollectionsOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskCollectionsOverdueScan))
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
