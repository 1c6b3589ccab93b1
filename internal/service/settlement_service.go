package service

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/contract"
	"github.com/eidos-exchange/eidos-nft/internal/metrics"
)

// LogReader 链上日志读取
type LogReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// SettlementConfig 成交监听配置
type SettlementConfig struct {
	// StartBlock 为 0 时从当前最新区块开始
	StartBlock    uint64
	MaxBlockRange uint64
}

// SettlementService 轮询 AuctionSettled 事件，删除已在链上成交的挂单及其出价
type SettlementService struct {
	chain    LogReader
	market   *contract.Marketplace
	listings *ListingService
	cfg      SettlementConfig
	logger   *zap.Logger

	mu        sync.Mutex
	nextBlock uint64
	started   bool
}

// NewSettlementService 创建成交监听服务
func NewSettlementService(
	chain LogReader,
	market *contract.Marketplace,
	listings *ListingService,
	cfg SettlementConfig,
	logger *zap.Logger,
) *SettlementService {
	if cfg.MaxBlockRange == 0 {
		cfg.MaxBlockRange = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		chain:    chain,
		market:   market,
		listings: listings,
		cfg:      cfg,
		logger:   logger,
	}
}

// NextBlock 下一次扫描的起始区块
func (s *SettlementService) NextBlock() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextBlock
}

// Poll 扫描一个区块窗口，返回删除的挂单数
func (s *SettlementService) Poll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.chain.BlockNumber(ctx)
	if err != nil {
		return 0, err
	}

	if !s.started {
		s.nextBlock = s.cfg.StartBlock
		if s.nextBlock == 0 {
			s.nextBlock = latest
		}
		s.started = true
	}

	from := s.nextBlock
	if from > latest {
		return 0, nil
	}
	to := latest
	if to-from+1 > s.cfg.MaxBlockRange {
		to = from + s.cfg.MaxBlockRange - 1
	}

	logs, err := s.chain.FilterLogs(ctx, s.market.AuctionSettledQuery(from, to))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, log := range logs {
		if log.Removed {
			continue
		}
		event, err := s.market.ParseAuctionSettled(log)
		if err != nil {
			s.logger.Warn("failed to parse AuctionSettled log",
				zap.String("tx_hash", log.TxHash.Hex()),
				zap.Error(err))
			continue
		}

		listing, bids := s.listings.RemoveListing(event.NFTContract.Hex(), event.TokenID.String())
		if listing {
			removed++
			metrics.SettledRemoved.Inc()
		}
		s.logger.Info("auction settled on-chain",
			zap.String("nft_contract", event.NFTContract.Hex()),
			zap.String("token_id", event.TokenID.String()),
			zap.String("buyer", event.Buyer.Hex()),
			zap.String("price", event.Price.String()),
			zap.Uint64("block", log.BlockNumber),
			zap.Bool("listing_removed", listing),
			zap.Int("bids_removed", bids))
	}

	s.nextBlock = to + 1
	return removed, nil
}
