package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJob 模拟任务
type mockJob struct {
	BaseJob
	executeFunc func(ctx context.Context) (*JobResult, error)
	execCount   int64
}

func newMockJob(name string, fn func(ctx context.Context) (*JobResult, error)) *mockJob {
	return &mockJob{
		BaseJob:     NewBaseJob(name, 5*time.Second),
		executeFunc: fn,
	}
}

func (j *mockJob) Execute(ctx context.Context) (*JobResult, error) {
	atomic.AddInt64(&j.execCount, 1)
	if j.executeFunc != nil {
		return j.executeFunc(ctx)
	}
	return &JobResult{}, nil
}

func TestScheduler_RegisterJob(t *testing.T) {
	s := NewScheduler(nil, nil)

	require.NoError(t, s.RegisterJob(newMockJob("a", nil), JobConfig{Interval: time.Minute, Enabled: true}))
	assert.Error(t, s.RegisterJob(newMockJob("a", nil), JobConfig{Interval: time.Minute, Enabled: true}))
	assert.Error(t, s.RegisterJob(newMockJob("b", nil), JobConfig{Enabled: true}))
	require.NoError(t, s.RegisterJob(newMockJob("c", nil), JobConfig{Enabled: false}))

	statuses := s.ListJobStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].Name)
	assert.Equal(t, "@every 1m0s", statuses[0].Spec)
	assert.True(t, statuses[0].Enabled)
	assert.Equal(t, "c", statuses[1].Name)
	assert.False(t, statuses[1].Enabled)
}

func TestScheduler_RunJob(t *testing.T) {
	s := NewScheduler(nil, nil)
	ok := newMockJob("ok", func(context.Context) (*JobResult, error) {
		return &JobResult{AffectedCount: 3}, nil
	})
	bad := newMockJob("bad", func(context.Context) (*JobResult, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, s.RegisterJob(ok, JobConfig{Interval: time.Hour, Enabled: true}))
	require.NoError(t, s.RegisterJob(bad, JobConfig{Interval: time.Hour, Enabled: true}))

	st, err := s.RunJob("ok")
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, st.LastStatus)
	assert.Equal(t, int64(1), st.Runs)
	require.NotNil(t, st.LastResult)
	assert.Equal(t, 3, st.LastResult.AffectedCount)

	st, err = s.RunJob("bad")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, st.LastStatus)
	assert.Equal(t, "boom", st.LastError)

	_, err = s.RunJob("missing")
	assert.Error(t, err)
	assert.Error(t, s.TriggerJob("missing"))
}

func TestScheduler_TimeoutPropagates(t *testing.T) {
	s := NewScheduler(nil, nil)
	job := newMockJob("slow", func(ctx context.Context) (*JobResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	job.BaseJob = NewBaseJob("slow", 20*time.Millisecond)
	require.NoError(t, s.RegisterJob(job, JobConfig{Interval: time.Hour, Enabled: true}))

	st, err := s.RunJob("slow")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, st.LastStatus)
	assert.Contains(t, st.LastError, "deadline exceeded")
}

func TestScheduler_MaxConcurrent(t *testing.T) {
	s := NewScheduler(&SchedulerConfig{MaxConcurrentJobs: 1}, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := newMockJob("blocking", func(context.Context) (*JobResult, error) {
		close(started)
		<-release
		return &JobResult{}, nil
	})
	other := newMockJob("other", nil)
	require.NoError(t, s.RegisterJob(blocking, JobConfig{Interval: time.Hour, Enabled: true}))
	require.NoError(t, s.RegisterJob(other, JobConfig{Interval: time.Hour, Enabled: true}))

	require.NoError(t, s.TriggerJob("blocking"))
	<-started

	st, err := s.RunJob("other")
	require.NoError(t, err)
	assert.Equal(t, JobStatusSkipped, st.LastStatus)
	assert.Zero(t, atomic.LoadInt64(&other.execCount))

	close(release)
	s.Stop()

	st, err = s.GetJobStatus("blocking")
	require.NoError(t, err)
	assert.Equal(t, JobStatusSuccess, st.LastStatus)
}

func TestScheduler_CronFires(t *testing.T) {
	s := NewScheduler(nil, nil)
	job := newMockJob("tick", nil)
	require.NoError(t, s.RegisterJob(job, JobConfig{Interval: time.Second, Enabled: true}))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&job.execCount) >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StoppedSkipsExecution(t *testing.T) {
	s := NewScheduler(nil, nil)
	job := newMockJob("late", nil)
	require.NoError(t, s.RegisterJob(job, JobConfig{Interval: time.Hour, Enabled: true}))

	s.Stop()
	_, err := s.RunJob("late")
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt64(&job.execCount))
}

func TestSweepJob(t *testing.T) {
	st := store.New()
	now := time.UnixMilli(10_000_000)

	st.PutListing(model.StoredListing{
		Listing:   model.Listing{NFTContract: "0xaa", TokenID: "1"},
		Timestamp: now.Add(-2 * time.Hour).UnixMilli(),
	})
	st.PutListing(model.StoredListing{
		Listing:   model.Listing{NFTContract: "0xaa", TokenID: "2"},
		Timestamp: now.Add(-time.Hour).UnixMilli(),
	})
	st.AddBid(model.StoredBid{
		Bid:       model.Bid{NFTContract: "0xaa", TokenID: "2"},
		Timestamp: now.Add(-90 * time.Minute).UnixMilli(),
	})
	st.AddBid(model.StoredBid{
		Bid:       model.Bid{NFTContract: "0xaa", TokenID: "2"},
		Timestamp: now.Add(-time.Minute).UnixMilli(),
	})

	job := NewSweepJob(st, time.Hour, nil)
	job.now = func() time.Time { return now }

	result, err := job.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.ProcessedCount)
	assert.Equal(t, 2, result.AffectedCount)
	assert.Equal(t, 1, result.Details["listings_evicted"])
	assert.Equal(t, 1, result.Details["bids_evicted"])

	// 恰好 maxAge 的挂单保留
	listings := st.ListAllListings()
	require.Len(t, listings, 1)
	assert.Equal(t, "2", listings[0].TokenID)
	assert.Len(t, st.ListAllBids(), 1)
}

func TestSweepJob_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSweepJob(store.New(), time.Hour, nil).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakePoller struct {
	removed int
	next    uint64
	err     error
}

func (p *fakePoller) Poll(context.Context) (int, error) { return p.removed, p.err }
func (p *fakePoller) NextBlock() uint64                 { return p.next }

func TestSettlementJob(t *testing.T) {
	job := NewSettlementJob(&fakePoller{removed: 2, next: 101}, 0)
	assert.Equal(t, JobNameSettlement, job.Name())
	assert.Equal(t, 30*time.Second, job.Timeout())

	result, err := job.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.AffectedCount)
	assert.Equal(t, uint64(101), result.Details["next_block"])

	_, err = NewSettlementJob(&fakePoller{err: errors.New("rpc down")}, time.Second).Execute(context.Background())
	assert.EqualError(t, err, "rpc down")
}
