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

// ListingService 挂单服务
type ListingService struct {
	store     *store.MarketplaceStore
	verifier  *signature.Verifier
	publisher publisher.Publisher
	stamper   *Stamper
	logger    *zap.Logger
}

// NewListingService 创建挂单服务
func NewListingService(
	st *store.MarketplaceStore,
	verifier *signature.Verifier,
	pub publisher.Publisher,
	stamper *Stamper,
	logger *zap.Logger,
) *ListingService {
	if pub == nil {
		pub = publisher.NoopPublisher{}
	}
	if stamper == nil {
		stamper = NewStamper(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		store:     st,
		verifier:  verifier,
		publisher: pub,
		stamper:   stamper,
		logger:    logger,
	}
}

// CreateListing 校验、验签后写入挂单，同一键的旧挂单被覆盖
func (s *ListingService) CreateListing(ctx context.Context, listing *model.Listing) (*model.StoredListing, error) {
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.verifier.Verify(listing)
	if err != nil {
		s.logger.Error("listing verification misconfigured", zap.Error(err))
		return nil, err
	}
	if !ok {
		metrics.RecordSignatureRejection(string(model.KindListing))
		s.logger.Info("listing signature rejected",
			zap.String("key", listing.Key().String()),
			zap.String("owner", listing.Owner),
			zap.String("signature", logger.TruncateSignature(listing.Signature)))
		return nil, apperrors.ErrSignatureInvalid.WithMessage("signature does not match owner")
	}

	stored := model.StoredListing{
		Listing:   *listing,
		Timestamp: s.stamper.Stamp(),
	}
	s.store.PutListing(stored)

	metrics.RecordAccepted(string(model.KindListing))
	s.recordStoreSize()
	s.logger.Info("listing accepted",
		zap.String("key", stored.Key().String()),
		zap.String("owner", stored.Owner),
		zap.String("min_price", stored.MinPrice))

	if err := s.publisher.PublishListing(ctx, &stored); err != nil {
		s.logger.Warn("failed to publish listing", zap.String("key", stored.Key().String()), zap.Error(err))
	}

	return &stored, nil
}

// ListListings 当前全部挂单
func (s *ListingService) ListListings() []model.StoredListing {
	return s.store.ListAllListings()
}

// GetListing 查询挂单
func (s *ListingService) GetListing(nftContract, tokenID string) (*model.StoredListing, error) {
	l, ok := s.store.GetListing(model.NewKey(nftContract, tokenID))
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("listing not found")
	}
	return &l, nil
}

// RemoveListing 删除挂单及其全部出价
func (s *ListingService) RemoveListing(nftContract, tokenID string) (bool, int) {
	key := model.NewKey(nftContract, tokenID)
	removed := s.store.RemoveListing(key)
	bids := s.store.RemoveBids(key)
	if removed || bids > 0 {
		s.recordStoreSize()
		s.logger.Info("listing removed",
			zap.String("key", key.String()),
			zap.Bool("listing", removed),
			zap.Int("bids", bids))
	}
	return removed, bids
}

func (s *ListingService) recordStoreSize() {
	stats := s.store.Stats()
	metrics.SetStoreEntries(stats.Listings, stats.Bids)
}
