// Package crypto 实现与 NFTMarketplace 合约一致的 EIP-712 哈希与签名恢复
package crypto

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// DomainName 合约 EIP712 构造参数中的域名称
	DomainName = "NFTMarketplace"
	// DefaultVersion 默认签名域版本
	DefaultVersion = "1"

	// DomainType EIP712Domain 类型串
	DomainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	// ListingType 与合约 LISTING_TYPEHASH 的原文一致
	ListingType = "Listing(address nftContract,uint256 tokenId,address owner,uint256 minPrice)"
	// BidType 与合约 BID_TYPEHASH 的原文一致
	BidType = "Bid(address nftContract,uint256 tokenId,address bidder,uint256 amount,address paymentToken)"
)

// 类型哈希
var (
	DomainTypeHash  = crypto.Keccak256Hash([]byte(DomainType))
	ListingTypeHash = crypto.Keccak256Hash([]byte(ListingType))
	BidTypeHash     = crypto.Keccak256Hash([]byte(BidType))
)

var (
	ErrMissingVerifyingContract = errors.New("verifying contract address is not configured")
	ErrInvalidVerifyingContract = errors.New("verifying contract address is invalid")
	ErrInvalidChainID           = errors.New("chain id must be positive")
	ErrNilValue                 = errors.New("uint256 value is nil")
	ErrUintOutOfRange           = errors.New("value does not fit in uint256")
)

var (
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)
	addressType, _ = abi.NewType("address", "", nil)

	domainArgs = abi.Arguments{
		{Type: bytes32Type}, // typeHash
		{Type: bytes32Type}, // keccak(name)
		{Type: bytes32Type}, // keccak(version)
		{Type: uint256Type}, // chainId
		{Type: addressType}, // verifyingContract
	}
	listingArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: addressType},
		{Type: uint256Type},
		{Type: addressType},
		{Type: uint256Type},
	}
	bidArgs = abi.Arguments{
		{Type: bytes32Type},
		{Type: addressType},
		{Type: uint256Type},
		{Type: addressType},
		{Type: uint256Type},
		{Type: addressType},
	}
)

// Domain EIP712 域配置
type Domain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// NewDomain 使用合约固定的域名称创建域配置
func NewDomain(version string, chainID int64, verifyingContract string) Domain {
	if version == "" {
		version = DefaultVersion
	}
	return Domain{
		Name:              DomainName,
		Version:           version,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Validate 校验链 ID 与验证合约地址
func (d Domain) Validate() error {
	addr := strings.TrimSpace(d.VerifyingContract)
	if addr == "" {
		return ErrMissingVerifyingContract
	}
	if !strings.HasPrefix(addr, "0x") || !common.IsHexAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidVerifyingContract, d.VerifyingContract)
	}
	if d.ChainID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChainID, d.ChainID)
	}
	return nil
}

// Separator 计算域分隔符
func (d Domain) Separator() (common.Hash, error) {
	if err := d.Validate(); err != nil {
		return common.Hash{}, err
	}
	encoded, err := domainArgs.Pack(
		DomainTypeHash,
		crypto.Keccak256Hash([]byte(d.Name)),
		crypto.Keccak256Hash([]byte(d.Version)),
		big.NewInt(d.ChainID),
		common.HexToAddress(d.VerifyingContract),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode domain: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// ListingData Listing 结构化数据
type ListingData struct {
	NFTContract common.Address
	TokenID     *big.Int
	Owner       common.Address
	MinPrice    *big.Int
}

// BidData Bid 结构化数据
type BidData struct {
	NFTContract  common.Address
	TokenID      *big.Int
	Bidder       common.Address
	Amount       *big.Int
	PaymentToken common.Address
}

// HashListingStruct 计算 Listing 结构哈希
func HashListingStruct(l ListingData) (common.Hash, error) {
	if err := checkUint256(l.TokenID, l.MinPrice); err != nil {
		return common.Hash{}, err
	}
	encoded, err := listingArgs.Pack(ListingTypeHash, l.NFTContract, l.TokenID, l.Owner, l.MinPrice)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode listing: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// HashBidStruct 计算 Bid 结构哈希
func HashBidStruct(b BidData) (common.Hash, error) {
	if err := checkUint256(b.TokenID, b.Amount); err != nil {
		return common.Hash{}, err
	}
	encoded, err := bidArgs.Pack(BidTypeHash, b.NFTContract, b.TokenID, b.Bidder, b.Amount, b.PaymentToken)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode bid: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// HashTypedDataV4 计算 keccak256(0x1901 ‖ domainSeparator ‖ structHash)
func HashTypedDataV4(domainSeparator, structHash common.Hash) common.Hash {
	encoded := make([]byte, 0, 66)
	encoded = append(encoded, 0x19, 0x01)
	encoded = append(encoded, domainSeparator.Bytes()...)
	encoded = append(encoded, structHash.Bytes()...)
	return crypto.Keccak256Hash(encoded)
}

// TypedDataHasher 在固定域下计算 Listing/Bid 摘要
type TypedDataHasher struct {
	domain Domain
}

// NewTypedDataHasher 创建哈希器，域配置错误在哈希时返回
func NewTypedDataHasher(domain Domain) *TypedDataHasher {
	return &TypedDataHasher{domain: domain}
}

// Domain 返回域配置
func (h *TypedDataHasher) Domain() Domain {
	return h.domain
}

// DomainSeparator 返回域分隔符
func (h *TypedDataHasher) DomainSeparator() (common.Hash, error) {
	return h.domain.Separator()
}

// HashListing 计算 Listing 摘要
func (h *TypedDataHasher) HashListing(l ListingData) (common.Hash, error) {
	separator, err := h.domain.Separator()
	if err != nil {
		return common.Hash{}, err
	}
	structHash, err := HashListingStruct(l)
	if err != nil {
		return common.Hash{}, err
	}
	return HashTypedDataV4(separator, structHash), nil
}

// HashBid 计算 Bid 摘要
func (h *TypedDataHasher) HashBid(b BidData) (common.Hash, error) {
	separator, err := h.domain.Separator()
	if err != nil {
		return common.Hash{}, err
	}
	structHash, err := HashBidStruct(b)
	if err != nil {
		return common.Hash{}, err
	}
	return HashTypedDataV4(separator, structHash), nil
}

// IsConfigError 判断是否为域配置错误
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingVerifyingContract) ||
		errors.Is(err, ErrInvalidVerifyingContract) ||
		errors.Is(err, ErrInvalidChainID)
}

func checkUint256(values ...*big.Int) error {
	for _, v := range values {
		if v == nil {
			return ErrNilValue
		}
		if v.Sign() < 0 || v.BitLen() > 256 {
			return fmt.Errorf("%w: %s", ErrUintOutOfRange, v.String())
		}
	}
	return nil
}
