package jobs

import (
	"context"
	"time"
)

// SettlementPoller 成交事件轮询
type SettlementPoller interface {
	Poll(ctx context.Context) (int, error)
	NextBlock() uint64
}

// SettlementJob 定期扫描 AuctionSettled 事件
type SettlementJob struct {
	BaseJob
	poller SettlementPoller
}

// NewSettlementJob 创建成交监听任务
func NewSettlementJob(poller SettlementPoller, timeout time.Duration) *SettlementJob {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SettlementJob{
		BaseJob: NewBaseJob(JobNameSettlement, timeout),
		poller:  poller,
	}
}

// Execute 执行一次扫描
func (j *SettlementJob) Execute(ctx context.Context) (*JobResult, error) {
	removed, err := j.poller.Poll(ctx)
	if err != nil {
		return nil, err
	}
	return &JobResult{
		AffectedCount: removed,
		Details: map[string]interface{}{
			"next_block": j.poller.NextBlock(),
		},
	}, nil
}
