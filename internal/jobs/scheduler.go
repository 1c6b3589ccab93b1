package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job 任务接口
type Job interface {
	// Name 任务名称
	Name() string
	// Execute 执行任务
	Execute(ctx context.Context) (*JobResult, error)
	// Timeout 任务超时时间
	Timeout() time.Duration
}

// JobResult 任务执行结果
type JobResult struct {
	ProcessedCount int
	AffectedCount  int
	Details        map[string]interface{}
}

// BaseJob 基础任务实现
type BaseJob struct {
	name    string
	timeout time.Duration
}

// NewBaseJob 创建基础任务
func NewBaseJob(name string, timeout time.Duration) BaseJob {
	return BaseJob{name: name, timeout: timeout}
}

func (j BaseJob) Name() string {
	return j.name
}

func (j BaseJob) Timeout() time.Duration {
	return j.timeout
}

// 任务状态
const (
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
	JobStatusSkipped = "skipped"
)

// JobConfig 任务配置
type JobConfig struct {
	Interval time.Duration
	Enabled  bool
}

// Spec cron 表达式
func (c JobConfig) Spec() string {
	return "@every " + c.Interval.String()
}

// JobStatus 任务状态
type JobStatus struct {
	Name           string
	Enabled        bool
	Spec           string
	Runs           int64
	LastStatus     string
	LastStartedAt  int64
	LastDurationMs int64
	LastError      string
	LastResult     *JobResult
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	MaxConcurrentJobs int
}

// Scheduler 任务调度器
type Scheduler struct {
	cron          *cron.Cron
	jobs          map[string]Job
	status        map[string]*JobStatus
	mu            sync.RWMutex
	maxConcurrent int
	running       chan struct{}
	inflight      sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	logger        *zap.Logger
}

// NewScheduler 创建调度器
func NewScheduler(cfg *SchedulerConfig, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	maxConcurrent := 2
	if cfg != nil && cfg.MaxConcurrentJobs > 0 {
		maxConcurrent = cfg.MaxConcurrentJobs
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:          cron.New(cron.WithSeconds()),
		jobs:          make(map[string]Job),
		status:        make(map[string]*JobStatus),
		maxConcurrent: maxConcurrent,
		running:       make(chan struct{}, maxConcurrent),
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger,
	}
}

// RegisterJob 注册任务
func (s *Scheduler) RegisterJob(job Job, config JobConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}
	if config.Enabled && config.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name())
	}

	s.jobs[job.Name()] = job
	s.status[job.Name()] = &JobStatus{
		Name:    job.Name(),
		Enabled: config.Enabled,
		Spec:    config.Spec(),
	}

	if !config.Enabled {
		s.logger.Info("job registered but disabled", zap.String("job", job.Name()))
		return nil
	}

	_, err := s.cron.AddFunc(config.Spec(), func() {
		s.executeJob(job)
	})
	if err != nil {
		delete(s.jobs, job.Name())
		delete(s.status, job.Name())
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.logger.Info("job registered",
		zap.String("job", job.Name()),
		zap.String("spec", config.Spec()))
	return nil
}

// Start 启动调度器
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop 停止调度器，等待运行中的任务结束
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.inflight.Wait()
	s.logger.Info("scheduler stopped")
}

// TriggerJob 手动触发任务
func (s *Scheduler) TriggerJob(jobName string) error {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.executeJob(job)
	}()
	return nil
}

// RunJob 同步执行任务
func (s *Scheduler) RunJob(jobName string) (*JobStatus, error) {
	s.mu.RLock()
	job, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}
	s.executeJob(job)
	return s.GetJobStatus(jobName)
}

// executeJob 执行任务
func (s *Scheduler) executeJob(job Job) {
	// 检查是否达到最大并发数
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		s.logger.Warn("max concurrent jobs reached, skipping", zap.String("job", job.Name()))
		s.record(job.Name(), JobStatusSkipped, time.Now(), nil, nil)
		return
	}

	// 检查调度器是否已停止
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout())
	defer cancel()

	startTime := time.Now()
	s.logger.Debug("starting job", zap.String("job", job.Name()))

	result, err := job.Execute(ctx)

	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", job.Name()),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		s.record(job.Name(), JobStatusFailed, startTime, result, err)
		return
	}

	fields := []zap.Field{
		zap.String("job", job.Name()),
		zap.Duration("duration", time.Since(startTime)),
	}
	if result != nil {
		fields = append(fields,
			zap.Int("processed", result.ProcessedCount),
			zap.Int("affected", result.AffectedCount))
	}
	s.logger.Debug("job completed", fields...)
	s.record(job.Name(), JobStatusSuccess, startTime, result, nil)
}

// record 记录执行状态
func (s *Scheduler) record(jobName, status string, startTime time.Time, result *JobResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.status[jobName]
	if !ok {
		return
	}
	st.Runs++
	st.LastStatus = status
	st.LastStartedAt = startTime.UnixMilli()
	st.LastDurationMs = time.Since(startTime).Milliseconds()
	st.LastResult = result
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
}

// GetJobStatus 获取任务状态
func (s *Scheduler) GetJobStatus(jobName string) (*JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.status[jobName]
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobName)
	}
	cp := *st
	return &cp, nil
}

// ListJobStatus 列出所有任务状态，按名称排序
func (s *Scheduler) ListJobStatus() []*JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]*JobStatus, 0, len(s.status))
	for _, st := range s.status {
		cp := *st
		statuses = append(statuses, &cp)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}
