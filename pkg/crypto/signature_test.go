package crypto

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedListing(t *testing.T) (ListingData, common.Hash, []byte) {
	t.Helper()
	key, err := PrivateKeyFromHex(testPrivateKeyHex)
	require.NoError(t, err)

	l := testListing()
	l.Owner = AddressFromPrivateKey(key)

	digest, err := NewTypedDataHasher(testDomain).HashListing(l)
	require.NoError(t, err)

	sig, err := SignDigest(digest, key)
	require.NoError(t, err)
	return l, digest, sig
}

func TestAddressFromPrivateKey(t *testing.T) {
	key, err := PrivateKeyFromHex("0x" + testPrivateKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", AddressFromPrivateKey(key).Hex())
}

func TestSignDigest_VIs27Or28(t *testing.T) {
	_, _, sig := signedListing(t)
	require.Len(t, sig, SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[64])
}

func TestRecoverAddress(t *testing.T) {
	l, digest, sig := signedListing(t)

	recovered, err := RecoverAddress(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, l.Owner, recovered)

	// v 为 0/1 时同样可恢复
	raw := append([]byte(nil), sig...)
	raw[64] -= 27
	recovered, err = RecoverAddress(digest, raw)
	require.NoError(t, err)
	assert.Equal(t, l.Owner, recovered)
}

func TestVerifySignature_CaseInsensitive(t *testing.T) {
	l, digest, sig := signedListing(t)

	ok, err := VerifySignature(strings.ToLower(l.Owner.Hex()), digest, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifySignature(strings.ToUpper(l.Owner.Hex()[2:]), digest, sig)
	require.NoError(t, err)
	assert.False(t, ok, "missing 0x prefix is a different string")
}

func TestVerifySignature_FieldFlips(t *testing.T) {
	l, _, sig := signedListing(t)
	h := NewTypedDataHasher(testDomain)

	flips := map[string]func(*ListingData){
		"tokenId":     func(x *ListingData) { x.TokenID = big.NewInt(2) },
		"minPrice":    func(x *ListingData) { x.MinPrice = big.NewInt(99) },
		"owner":       func(x *ListingData) { x.Owner = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB") },
		"nftContract": func(x *ListingData) { x.NFTContract = common.HexToAddress("0xcCCCcCCCcCcCCcccCCcCCcCCCCCcCCCccccCcccc") },
	}
	for name, flip := range flips {
		t.Run(name, func(t *testing.T) {
			mutated := l
			flip(&mutated)
			digest, err := h.HashListing(mutated)
			require.NoError(t, err)

			ok, err := VerifySignature(l.Owner.Hex(), digest, sig)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRecoverAddress_Malformed(t *testing.T) {
	_, digest, sig := signedListing(t)

	_, err := RecoverAddress(digest, sig[:64])
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)

	_, err = RecoverAddress(digest, append(append([]byte(nil), sig...), 0x00))
	assert.ErrorIs(t, err, ErrInvalidSignatureLength)

	badV := append([]byte(nil), sig...)
	badV[64] = 30
	_, err = RecoverAddress(digest, badV)
	assert.ErrorIs(t, err, ErrInvalidRecoveryID)

	zeroR := append([]byte(nil), sig...)
	copy(zeroR[:32], make([]byte, 32))
	_, err = RecoverAddress(digest, zeroR)
	assert.ErrorIs(t, err, ErrInvalidSignatureValues)
}

func TestRecoverAddress_RejectsHighS(t *testing.T) {
	_, digest, sig := signedListing(t)

	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(sig[32:64])
	highS := new(big.Int).Sub(n, s)

	malleable := append([]byte(nil), sig...)
	copy(malleable[32:64], common.LeftPadBytes(highS.Bytes(), 32))
	malleable[64] = 55 - malleable[64] // 27 <-> 28

	_, err := RecoverAddress(digest, malleable)
	assert.ErrorIs(t, err, ErrInvalidSignatureValues)
	assert.NotErrorIs(t, err, ErrInvalidRecoveryID)
}

func TestRecoverAddress_PersonalSignRejected(t *testing.T) {
	key, err := PrivateKeyFromHex(testPrivateKeyHex)
	require.NoError(t, err)
	l, digest, _ := signedListing(t)

	// personal_sign 包装后的签名在原始摘要上恢复出其他地址
	wrapped := accounts.TextHash(digest.Bytes())
	sig, err := SignDigest(common.BytesToHash(wrapped), key)
	require.NoError(t, err)

	ok, err := VerifySignature(l.Owner.Hex(), digest, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeSignature(t *testing.T) {
	_, _, sig := signedListing(t)

	decoded, err := DecodeSignature(hexutil.Encode(sig))
	require.NoError(t, err)
	assert.Equal(t, sig, decoded)

	for _, bad := range []string{"", "abcd", "0xzz", "0x123"} {
		_, err := DecodeSignature(bad)
		assert.ErrorIs(t, err, ErrInvalidSignatureHex, bad)
	}
}
