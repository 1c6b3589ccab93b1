package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/metrics"
	"github.com/eidos-exchange/eidos-nft/internal/store"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// BlockProber 区块高度探测
type BlockProber interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// ContractStatus 合约与链信息
type ContractStatus struct {
	Address         string  `json:"address"`
	Network         string  `json:"network"`
	ChainID         int64   `json:"chainId"`
	CurrentBlock    *uint64 `json:"currentBlock,omitempty"`
	SignatureScheme string  `json:"signatureScheme"`
}

// HealthStatus /health 响应
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Uptime    float64        `json:"uptime"`
	Contract  ContractStatus `json:"contract"`
	Store     store.Stats    `json:"store"`
	Error     string         `json:"error,omitempty"`
}

// HealthConfig 健康检查配置
type HealthConfig struct {
	Network      string
	ProbeTimeout time.Duration
}

// HealthService 健康检查，探测失败不影响挂单/出价接口
type HealthService struct {
	prober    BlockProber
	domain    crypto.Domain
	store     *store.MarketplaceStore
	cfg       HealthConfig
	startedAt time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// NewHealthService 创建健康检查服务，prober 可为 nil (未配置 RPC)
func NewHealthService(
	prober BlockProber,
	domain crypto.Domain,
	st *store.MarketplaceStore,
	cfg HealthConfig,
	logger *zap.Logger,
) *HealthService {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		prober:    prober,
		domain:    domain,
		store:     st,
		cfg:       cfg,
		startedAt: time.Now(),
		now:       time.Now,
		logger:    logger,
	}
}

// Check 返回健康状态；配置错误返回 ErrConfiguration，链探测失败返回 ErrUpstreamUnavailable
func (h *HealthService) Check(ctx context.Context) (*HealthStatus, error) {
	now := h.now()
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    now.Sub(h.startedAt).Seconds(),
		Contract: ContractStatus{
			Address:         h.domain.VerifyingContract,
			Network:         h.cfg.Network,
			ChainID:         h.domain.ChainID,
			SignatureScheme: crypto.SignatureScheme,
		},
		Store: h.store.Stats(),
	}

	if err := h.domain.Validate(); err != nil {
		status.Status = StatusUnhealthy
		status.Error = err.Error()
		return status, apperrors.Wrap(apperrors.ErrConfiguration, err)
	}

	if h.prober == nil {
		status.Status = StatusUnhealthy
		status.Error = "no RPC endpoint configured"
		return status, apperrors.ErrUpstreamUnavailable.WithMessage(status.Error)
	}

	probeCtx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout)
	defer cancel()

	block, err := h.prober.BlockNumber(probeCtx)
	metrics.RecordBlockNumber(block, err)
	if err != nil {
		h.logger.Warn("block number probe failed", zap.Error(err))
		status.Status = StatusUnhealthy
		status.Error = "failed to fetch block number"
		return status, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}

	status.Contract.CurrentBlock = &block
	return status, nil
}
