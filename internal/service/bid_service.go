package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/metrics"
	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/internal/publisher"
	"github.com/eidos-exchange/eidos-nft/internal/signature"
	"github.com/eidos-exchange/eidos-nft/internal/store"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
	"github.com/eidos-exchange/eidos-nft/pkg/logger"
)

// BidService 出价服务
type BidService struct {
	store     *store.MarketplaceStore
	verifier  *signature.Verifier
	publisher publisher.Publisher
	stamper   *Stamper
	logger    *zap.Logger
}

// NewBidService 创建出价服务
func NewBidService(
	st *store.MarketplaceStore,
	verifier *signature.Verifier,
	pub publisher.Publisher,
	stamper *Stamper,
	logger *zap.Logger,
) *BidService {
	if pub == nil {
		pub = publisher.NoopPublisher{}
	}
	if stamper == nil {
		stamper = NewStamper(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BidService{
		store:     st,
		verifier:  verifier,
		publisher: pub,
		stamper:   stamper,
		logger:    logger,
	}
}

// CreateBid 校验顺序: 路径一致性 -> 结构 -> 挂单存在 -> 签名
func (s *BidService) CreateBid(ctx context.Context, nftContract, tokenID string, bid *model.Bid) (*model.StoredBid, error) {
	if !model.SameAddress(bid.NFTContract, nftContract) || bid.TokenID != tokenID {
		return nil, apperrors.ErrValidation.
			WithMessage("nftContract and tokenId in body must match the URL").
			WithDetails(map[string]string{"nftContract": nftContract, "tokenId": tokenID})
	}
	if err := bid.Validate(); err != nil {
		return nil, err
	}

	key := bid.Key()
	if _, ok := s.store.GetListing(key); !ok {
		return nil, apperrors.ErrNotFound.WithMessage("listing not found").WithDetail("key", key.String())
	}

	ok, err := s.verifier.Verify(bid)
	if err != nil {
		s.logger.Error("bid verification misconfigured", zap.Error(err))
		return nil, err
	}
	if !ok {
		metrics.RecordSignatureRejection(string(model.KindBid))
		s.logger.Info("bid signature rejected",
			zap.String("key", key.String()),
			zap.String("bidder", bid.Bidder),
			zap.String("signature", logger.TruncateSignature(bid.Signature)))
		return nil, apperrors.ErrSignatureInvalid.WithMessage("signature does not match bidder")
	}

	stored := model.StoredBid{
		Bid:       *bid,
		Timestamp: s.stamper.Stamp(),
	}
	s.store.AddBid(stored)

	metrics.RecordAccepted(string(model.KindBid))
	stats := s.store.Stats()
	metrics.SetStoreEntries(stats.Listings, stats.Bids)
	s.logger.Info("bid accepted",
		zap.String("key", key.String()),
		zap.String("bidder", stored.Bidder),
		zap.String("amount", stored.Amount))

	if err := s.publisher.PublishBid(ctx, &stored); err != nil {
		s.logger.Warn("failed to publish bid", zap.String("key", key.String()), zap.Error(err))
	}

	return &stored, nil
}

// ListBids 按到达顺序返回某挂单的出价
func (s *BidService) ListBids(nftContract, tokenID string) []model.StoredBid {
	return s.store.GetBids(model.NewKey(nftContract, tokenID))
}
