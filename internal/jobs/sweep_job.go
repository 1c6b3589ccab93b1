package jobs

import (
	"context"
	"time"

	"github.com/eidos-exchange/eidos-nft/internal/metrics"
	"github.com/eidos-exchange/eidos-nft/internal/store"
	"go.uber.org/zap"
)

// 任务名称
const (
	JobNameSweep      = "store-sweep"
	JobNameSettlement = "settlement-watcher"
)

// SweepJob 清理超过 maxAge 的挂单和出价
type SweepJob struct {
	BaseJob
	store  *store.MarketplaceStore
	maxAge time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewSweepJob 创建清理任务
func NewSweepJob(st *store.MarketplaceStore, maxAge time.Duration, logger *zap.Logger) *SweepJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepJob{
		BaseJob: NewBaseJob(JobNameSweep, 30*time.Second),
		store:   st,
		maxAge:  maxAge,
		now:     time.Now,
		logger:  logger,
	}
}

// Execute 执行清理
func (j *SweepJob) Execute(ctx context.Context) (*JobResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	before := j.store.Stats()
	res := j.store.Sweep(j.maxAge, j.now())
	after := j.store.Stats()

	metrics.RecordSweep(res.Listings, res.Bids)
	metrics.SetStoreEntries(after.Listings, after.Bids)

	if res.Listings > 0 || res.Bids > 0 {
		j.logger.Info("swept expired entries",
			zap.Int("listings", res.Listings),
			zap.Int("bids", res.Bids),
			zap.Int("listings_left", after.Listings),
			zap.Int("bids_left", after.Bids))
	}

	return &JobResult{
		ProcessedCount: before.Listings + before.Bids,
		AffectedCount:  res.Listings + res.Bids,
		Details: map[string]interface{}{
			"listings_evicted": res.Listings,
			"bids_evicted":     res.Bids,
		},
	}, nil
}
