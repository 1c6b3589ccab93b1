package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureScheme 签名约定：直接对 EIP-712 摘要做 ECDSA 恢复，
// 不接受 personal_sign ("\x19Ethereum Signed Message:\n32") 包装后的签名。
// 客户端必须使用 eth_signTypedData_v4。
const SignatureScheme = "eip712-raw-digest"

// SignatureLength r(32) + s(32) + v(1)
const SignatureLength = 65

var (
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrInvalidRecoveryID      = errors.New("invalid signature recovery id")
	ErrInvalidSignatureValues = errors.New("invalid signature r/s values")
	ErrInvalidSignatureHex    = errors.New("invalid signature hex")
)

// DecodeSignature 解析 0x 前缀的十六进制签名
func DecodeSignature(sig string) ([]byte, error) {
	b, err := hexutil.Decode(strings.TrimSpace(sig))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureHex, err)
	}
	return b, nil
}

// RecoverAddress 从摘要和 65 字节签名恢复签名者地址
func RecoverAddress(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidSignatureLength, len(signature))
	}

	sig := make([]byte, SignatureLength)
	copy(sig, signature)

	// 调整 v 值 (27/28 -> 0/1)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	v := sig[64]
	if v > 1 {
		return common.Address{}, fmt.Errorf("%w: %d", ErrInvalidRecoveryID, signature[64])
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, ErrInvalidSignatureValues
	}

	pubKey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// VerifySignature 验证签名者是否为 wallet，地址比较不区分大小写
func VerifySignature(wallet string, digest common.Hash, signature []byte) (bool, error) {
	recovered, err := RecoverAddress(digest, signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered.Hex(), wallet), nil
}

// SignDigest 对摘要签名，v 使用 27/28，与钱包 eth_signTypedData_v4 输出一致
func SignDigest(digest common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// PrivateKeyFromHex 解析十六进制私钥
func PrivateKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
}

// AddressFromPrivateKey 私钥对应地址
func AddressFromPrivateKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
