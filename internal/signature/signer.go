package signature

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
)

// Signer 客户端签名，产出与 eth_signTypedData_v4 相同的签名
type Signer struct {
	verifier *Verifier
	key      *ecdsa.PrivateKey
}

// NewSigner 创建签名器
func NewSigner(hasher *crypto.TypedDataHasher, key *ecdsa.PrivateKey) *Signer {
	return &Signer{verifier: NewVerifier(hasher, nil), key: key}
}

// Address 签名者地址
func (s *Signer) Address() common.Address {
	return crypto.AddressFromPrivateKey(s.key)
}

// Sign 计算摘要并签名，返回 0x 十六进制签名
func (s *Signer) Sign(rec model.SignedRecord) (string, error) {
	digest, err := s.verifier.Digest(rec)
	if err != nil {
		return "", err
	}
	sig, err := crypto.SignDigest(digest, s.key)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// SignListing 签名并写入 l.Signature
func (s *Signer) SignListing(l *model.Listing) error {
	l.Signature = "0x00"
	sig, err := s.Sign(l)
	if err != nil {
		return err
	}
	l.Signature = sig
	return nil
}

// SignBid 签名并写入 b.Signature
func (s *Signer) SignBid(b *model.Bid) error {
	b.Signature = "0x00"
	sig, err := s.Sign(b)
	if err != nil {
		return err
	}
	b.Signature = sig
	return nil
}
