package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/contract"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
)

// DomainReader 合约上的 EIP-712 常量与哈希函数
type DomainReader interface {
	DomainSeparator(ctx context.Context) (common.Hash, error)
	ListingTypeHash(ctx context.Context) (common.Hash, error)
	BidTypeHash(ctx context.Context) (common.Hash, error)
	HashListing(ctx context.Context, listing contract.ListingTuple) (common.Hash, error)
	HashBid(ctx context.Context, bid contract.BidTuple) (common.Hash, error)
}

// DomainCheck 单项比对结果
type DomainCheck struct {
	Name   string      `json:"name"`
	Local  common.Hash `json:"local"`
	Remote common.Hash `json:"remote"`
}

// Match 本地与链上一致
func (c DomainCheck) Match() bool {
	return c.Local == c.Remote
}

// probe 记录仅用于比对摘要
var (
	probeListing = crypto.ListingData{
		NFTContract: common.HexToAddress("0x0000000000000000000000000000000000000001"),
		TokenID:     big.NewInt(1),
		Owner:       common.HexToAddress("0x0000000000000000000000000000000000000002"),
		MinPrice:    big.NewInt(1),
	}
	probeBid = crypto.BidData{
		NFTContract:  common.HexToAddress("0x0000000000000000000000000000000000000001"),
		TokenID:      big.NewInt(1),
		Bidder:       common.HexToAddress("0x0000000000000000000000000000000000000003"),
		Amount:       big.NewInt(1),
		PaymentToken: common.Address{},
	}
)

// CheckDomain 比对本地哈希与合约哈希，不一致时记录错误日志。
// 返回的 mismatches 为不一致项数量。
func CheckDomain(ctx context.Context, reader DomainReader, hasher *crypto.TypedDataHasher, logger *zap.Logger) ([]DomainCheck, int, error) {
	localSep, err := hasher.DomainSeparator()
	if err != nil {
		return nil, 0, err
	}
	localListing, err := hasher.HashListing(probeListing)
	if err != nil {
		return nil, 0, err
	}
	localBid, err := hasher.HashBid(probeBid)
	if err != nil {
		return nil, 0, err
	}

	steps := []struct {
		name  string
		local common.Hash
		read  func(context.Context) (common.Hash, error)
	}{
		{"DOMAIN_SEPARATOR", localSep, reader.DomainSeparator},
		{"LISTING_TYPEHASH", crypto.ListingTypeHash, reader.ListingTypeHash},
		{"BID_TYPEHASH", crypto.BidTypeHash, reader.BidTypeHash},
		{"_hashListing", localListing, func(ctx context.Context) (common.Hash, error) {
			return reader.HashListing(ctx, contract.ListingTuple{
				NftContract: probeListing.NFTContract,
				TokenId:     probeListing.TokenID,
				Owner:       probeListing.Owner,
				MinPrice:    probeListing.MinPrice,
				Signature:   []byte{},
			})
		}},
		{"_hashBid", localBid, func(ctx context.Context) (common.Hash, error) {
			return reader.HashBid(ctx, contract.BidTuple{
				NftContract:  probeBid.NFTContract,
				TokenId:      probeBid.TokenID,
				Bidder:       probeBid.Bidder,
				Amount:       probeBid.Amount,
				PaymentToken: probeBid.PaymentToken,
				Signature:    []byte{},
			})
		}},
	}

	checks := make([]DomainCheck, 0, len(steps))
	mismatches := 0
	for _, step := range steps {
		remote, err := step.read(ctx)
		if err != nil {
			return checks, mismatches, err
		}
		check := DomainCheck{Name: step.name, Local: step.local, Remote: remote}
		checks = append(checks, check)
		if !check.Match() {
			mismatches++
			logger.Error("eip712 hash mismatch with contract",
				zap.String("name", step.name),
				zap.String("local", step.local.Hex()),
				zap.String("contract", remote.Hex()))
		}
	}

	if mismatches == 0 {
		logger.Info("eip712 domain matches contract",
			zap.String("domain_separator", localSep.Hex()))
	}
	return checks, mismatches, nil
}
