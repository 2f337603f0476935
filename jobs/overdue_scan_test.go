package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarker struct {
	asOf    time.Time
	flagged int64
	err     error
	calls   int
}

func (f *fakeMarker) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	f.calls++
	f.asOf = asOf
	return f.flagged, f.err
}

func newScanJob(marker *fakeMarker) *OverdueScanJob {
	job := NewOverdueScanJob(marker, nil, nil)
	job.clock = func() time.Time {
		return time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	}
	return job
}

func TestOverdueScanUsesPayloadCutoff(t *testing.T) {
	marker := &fakeMarker{flagged: 4}
	job := newScanJob(marker)

	task, err := NewOverdueScanTask(OverdueScanPayload{AsOf: "2025-05-15"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, marker.calls)
	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), marker.asOf)
}

func TestOverdueScanDefaultsToNow(t *testing.T) {
	marker := &fakeMarker{}
	job := newScanJob(marker)

	task, err := NewOverdueScanTask(OverdueScanPayload{})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), marker.asOf)
}

func TestOverdueScanSkipsRetryOnBadPayload(t *testing.T) {
	marker := &fakeMarker{}
	job := newScanJob(marker)

	task := asynq.NewTask(TaskCollectionsOverdueScan, []byte("{not json"))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)

	badDate, err := NewOverdueScanTask(OverdueScanPayload{AsOf: "15/05/2025"})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), badDate), asynq.SkipRetry)
	assert.Zero(t, marker.calls)
}

func TestOverdueScanPropagatesLedgerError(t *testing.T) {
	marker := &fakeMarker{err: errors.New("db down")}
	job := newScanJob(marker)

	task, err := NewOverdueScanTask(OverdueScanPayload{})
	require.NoError(t, err)

	assert.Error(t, job.Handle(context.Background(), task))
}
