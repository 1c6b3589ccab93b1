// Package model 定义 Listing/Bid 记录及其存储键
package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind 签名记录类型
type Kind string

const (
	KindListing Kind = "listing"
	KindBid     Kind = "bid"
)

// Key (nftContract 小写, tokenId) 复合键
type Key struct {
	Contract string
	TokenID  string
}

// NewKey 创建键，合约地址统一小写
func NewKey(contract, tokenID string) Key {
	return Key{
		Contract: strings.ToLower(strings.TrimSpace(contract)),
		TokenID:  tokenID,
	}
}

// String contract:tokenId
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Contract, k.TokenID)
}

// SignedRecord 待验签记录，Listing 与 Bid 是仅有的两种实现
type SignedRecord interface {
	Kind() Kind
	Key() Key
	// Signer 声明的签名者 (Listing 为 owner, Bid 为 bidder)
	Signer() string
	SignatureHex() string
	Validate() error
}

// Listing 卖家签名的挂单
type Listing struct {
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`
	Owner       string `json:"owner"`
	MinPrice    string `json:"minPrice"`
	Signature   string `json:"signature"`
}

// StoredListing 已接受的挂单，timestamp 为服务端接收时间 (unix ms)
type StoredListing struct {
	Listing
	Timestamp int64 `json:"timestamp"`
}

// Bid 买家签名的出价
type Bid struct {
	NFTContract  string `json:"nftContract"`
	TokenID      string `json:"tokenId"`
	Bidder       string `json:"bidder"`
	Amount       string `json:"amount"`
	PaymentToken string `json:"paymentToken"`
	Signature    string `json:"signature"`
}

// StoredBid 已接受的出价
type StoredBid struct {
	Bid
	Timestamp int64 `json:"timestamp"`
}

func (l *Listing) Kind() Kind           { return KindListing }
func (l *Listing) Key() Key             { return NewKey(l.NFTContract, l.TokenID) }
func (l *Listing) Signer() string       { return l.Owner }
func (l *Listing) SignatureHex() string { return l.Signature }

func (b *Bid) Kind() Kind           { return KindBid }
func (b *Bid) Key() Key             { return NewKey(b.NFTContract, b.TokenID) }
func (b *Bid) Signer() string       { return b.Bidder }
func (b *Bid) SignatureHex() string { return b.Signature }

// SameAddress 地址比较不区分大小写
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ZeroAddress 零地址，表示原生币支付
var ZeroAddress = common.Address{}.Hex()
