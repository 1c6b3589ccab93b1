package model

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
)

var decimalRegex = regexp.MustCompile(`^[0-9]+$`)

// Validate 结构校验
func (l *Listing) Validate() error {
	_, err := l.TypedData()
	return err
}

// Validate 结构校验
func (b *Bid) Validate() error {
	_, err := b.TypedData()
	return err
}

// TypedData 校验并转换为 EIP-712 结构化数据，哈希使用的正是校验通过的值
func (l *Listing) TypedData() (data crypto.ListingData, err error) {
	if data.NFTContract, err = ParseAddress("nftContract", l.NFTContract); err != nil {
		return crypto.ListingData{}, err
	}
	if data.TokenID, err = ParseUint256("tokenId", l.TokenID); err != nil {
		return crypto.ListingData{}, err
	}
	if data.Owner, err = ParseAddress("owner", l.Owner); err != nil {
		return crypto.ListingData{}, err
	}
	if data.MinPrice, err = ParseUint256("minPrice", l.MinPrice); err != nil {
		return crypto.ListingData{}, err
	}
	if err = validateSignatureField(l.Signature); err != nil {
		return crypto.ListingData{}, err
	}
	return data, nil
}

// TypedData 校验并转换为 EIP-712 结构化数据
func (b *Bid) TypedData() (data crypto.BidData, err error) {
	if data.NFTContract, err = ParseAddress("nftContract", b.NFTContract); err != nil {
		return crypto.BidData{}, err
	}
	if data.TokenID, err = ParseUint256("tokenId", b.TokenID); err != nil {
		return crypto.BidData{}, err
	}
	if data.Bidder, err = ParseAddress("bidder", b.Bidder); err != nil {
		return crypto.BidData{}, err
	}
	if data.Amount, err = ParseUint256("amount", b.Amount); err != nil {
		return crypto.BidData{}, err
	}
	if data.PaymentToken, err = ParseAddress("paymentToken", b.PaymentToken); err != nil {
		return crypto.BidData{}, err
	}
	if err = validateSignatureField(b.Signature); err != nil {
		return crypto.BidData{}, err
	}
	return data, nil
}

// ParseAddress 解析 0x 前缀的 20 字节地址，不接受首尾空白
// (存储键直接使用原始字符串)
func ParseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, requiredError(field)
	}
	if !strings.HasPrefix(value, "0x") || !common.IsHexAddress(value) {
		return common.Address{}, apperrors.ErrValidation.
			WithMessagef("%s must be a 0x-prefixed 20-byte hex address", field).
			WithDetail("field", field)
	}
	return common.HexToAddress(value), nil
}

// ParseUint256 解析十进制 uint256
func ParseUint256(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, requiredError(field)
	}
	if !decimalRegex.MatchString(value) {
		return nil, apperrors.ErrValidation.
			WithMessagef("%s must be a base-10 unsigned integer", field).
			WithDetail("field", field)
	}
	n, ok := math.ParseBig256(value)
	if !ok {
		return nil, apperrors.ErrValidation.
			WithMessagef("%s does not fit in uint256", field).
			WithDetail("field", field)
	}
	return n, nil
}

func validateSignatureField(sig string) error {
	if sig == "" {
		return requiredError("signature")
	}
	if _, err := hexutil.Decode(sig); err != nil {
		return apperrors.ErrValidation.
			WithMessage("signature must be 0x-prefixed hex").
			WithDetail("field", "signature")
	}
	return nil
}

func requiredError(field string) error {
	return apperrors.ErrValidation.
		WithMessagef("%s is required", field).
		WithDetail("field", field)
}
