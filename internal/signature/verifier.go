// Package signature 校验 Listing/Bid 的 EIP-712 签名
package signature

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
)

// Verifier 使用 crypto.SignatureScheme 约定验签。
// 除域配置错误外的所有失败都返回 false。
type Verifier struct {
	hasher *crypto.TypedDataHasher
	logger *zap.Logger
}

// NewVerifier 创建验签器
func NewVerifier(hasher *crypto.TypedDataHasher, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{hasher: hasher, logger: logger}
}

// Digest 计算记录的 EIP-712 摘要
func (v *Verifier) Digest(rec model.SignedRecord) (common.Hash, error) {
	switch r := rec.(type) {
	case *model.Listing:
		data, err := r.TypedData()
		if err != nil {
			return common.Hash{}, err
		}
		return v.hash(v.hasher.HashListing(data))
	case *model.Bid:
		data, err := r.TypedData()
		if err != nil {
			return common.Hash{}, err
		}
		return v.hash(v.hasher.HashBid(data))
	default:
		return common.Hash{}, apperrors.ErrInternal.WithMessagef("unsupported record kind %q", rec.Kind())
	}
}

func (v *Verifier) hash(digest common.Hash, err error) (common.Hash, error) {
	if err == nil {
		return digest, nil
	}
	if crypto.IsConfigError(err) {
		return common.Hash{}, apperrors.Wrap(apperrors.ErrConfiguration, err)
	}
	return common.Hash{}, apperrors.Wrap(apperrors.ErrValidation, err)
}

// Verify 恢复签名者并与记录声明的签名者比较
func (v *Verifier) Verify(rec model.SignedRecord) (bool, error) {
	digest, err := v.Digest(rec)
	if err != nil {
		if apperrors.IsConfiguration(err) {
			return false, err
		}
		v.logger.Debug("digest failed", zap.String("kind", string(rec.Kind())), zap.Error(err))
		return false, nil
	}

	sig, err := crypto.DecodeSignature(rec.SignatureHex())
	if err != nil {
		v.logger.Debug("malformed signature", zap.String("kind", string(rec.Kind())), zap.Error(err))
		return false, nil
	}

	recovered, err := crypto.RecoverAddress(digest, sig)
	if err != nil {
		v.logger.Debug("signature recovery failed",
			zap.String("kind", string(rec.Kind())),
			zap.String("key", rec.Key().String()),
			zap.Error(err))
		return false, nil
	}

	if !model.SameAddress(recovered.Hex(), rec.Signer()) {
		v.logger.Debug("signer mismatch",
			zap.String("kind", string(rec.Kind())),
			zap.String("key", rec.Key().String()),
			zap.String("claimed", rec.Signer()),
			zap.String("recovered", recovered.Hex()))
		return false, nil
	}
	return true, nil
}
