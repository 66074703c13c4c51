package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DandaAkhilReddy/reddy/constants"
	"github.com/DandaAkhilReddy/reddy/internal/pipeline"
	"github.com/DandaAkhilReddy/reddy/internal/store"
)

type countingRunner struct {
	runs int64
	err  error
}

func (r *countingRunner) Run(ctx context.Context, req *pipeline.ScanRequest) (*pipeline.Report, error) {
	atomic.AddInt64(&r.runs, 1)
	if r.err != nil {
		return nil, r.err
	}
	return &pipeline.Report{
		ScanID:    "scan",
		UserID:    req.UserID,
		Signature: "Rectangular-BF0.0-ABCDEF-AI0.70",
		Status:    constants.StageCompleted,
	}, nil
}

type countingSaver struct{ saves int64 }

func (s *countingSaver) SaveScan(ctx context.Context, report *pipeline.Report) (*store.ScanRecord, error) {
	atomic.AddInt64(&s.saves, 1)
	return &store.ScanRecord{ID: report.ScanID}, nil
}

func TestQueueProcessesAndSaves(t *testing.T) {
	runner := &countingRunner{}
	saver := &countingSaver{}
	q := NewScanQueue(runner, saver, nil, WithWorkers(2), WithQueueSize(8))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{JobID: "job", Request: &pipeline.ScanRequest{UserID: "u"}}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, int64(5), atomic.LoadInt64(&runner.runs))
	assert.Equal(t, int64(5), atomic.LoadInt64(&saver.saves))
}

func TestQueueFailedRunNotSaved(t *testing.T) {
	runner := &countingRunner{err: errors.New("boom")}
	saver := &countingSaver{}
	q := NewScanQueue(runner, saver, nil, WithWorkers(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: "job", Request: &pipeline.ScanRequest{}}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, int64(1), atomic.LoadInt64(&runner.runs))
	assert.Equal(t, int64(0), atomic.LoadInt64(&saver.saves))
}

func TestQueueEnqueueAfterShutdownIsNoop(t *testing.T) {
	runner := &countingRunner{}
	q := NewScanQueue(runner, nil, nil, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	require.NoError(t, q.Enqueue(context.Background(), Job{JobID: "late"}))
	assert.Equal(t, int64(0), atomic.LoadInt64(&runner.runs))
}
