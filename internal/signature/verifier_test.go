package signature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
)

const (
	sellerKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	buyerKeyHex  = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	nftContract  = "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
)

var testDomain = crypto.NewDomain("1", 11155111, "0x5FbDB2315678afecb367f032d93F642f64180aa3")

func newSigner(t *testing.T, keyHex string) *Signer {
	t.Helper()
	key, err := crypto.PrivateKeyFromHex(keyHex)
	require.NoError(t, err)
	return NewSigner(crypto.NewTypedDataHasher(testDomain), key)
}

func signedListing(t *testing.T) *model.Listing {
	t.Helper()
	s := newSigner(t, sellerKeyHex)
	l := &model.Listing{
		NFTContract: nftContract,
		TokenID:     "1",
		Owner:       s.Address().Hex(),
		MinPrice:    "100",
	}
	require.NoError(t, s.SignListing(l))
	return l
}

func signedBid(t *testing.T) *model.Bid {
	t.Helper()
	s := newSigner(t, buyerKeyHex)
	b := &model.Bid{
		NFTContract:  nftContract,
		TokenID:      "1",
		Bidder:       s.Address().Hex(),
		Amount:       "150",
		PaymentToken: model.ZeroAddress,
	}
	require.NoError(t, s.SignBid(b))
	return b
}

func TestSigner_Address(t *testing.T) {
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", newSigner(t, buyerKeyHex).Address().Hex())
}

func TestVerify_ValidListing(t *testing.T) {
	v := NewVerifier(crypto.NewTypedDataHasher(testDomain), nil)
	l := signedListing(t)

	ok, err := v.Verify(l)
	require.NoError(t, err)
	assert.True(t, ok)

	// owner 大小写不影响
	l.Owner = strings.ToLower(l.Owner)
	ok, err = v.Verify(l)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_ValidBid(t *testing.T) {
	v := NewVerifier(crypto.NewTypedDataHasher(testDomain), nil)

	ok, err := v.Verify(signedBid(t))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_ListingFieldFlips(t *testing.T) {
	v := NewVerifier(crypto.NewTypedDataHasher(testDomain), nil)

	flips := map[string]func(*model.Listing){
		"tokenId":     func(l *model.Listing) { l.TokenID = "2" },
		"minPrice":    func(l *model.Listing) { l.MinPrice = "101" },
		"owner":       func(l *model.Listing) { l.Owner = "0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB" },
		"nftContract": func(l *model.Listing) { l.NFTContract = "0xcCCCcCCCcCcCCcccCCcCCcCCCCCcCCCccccCcccc" },
	}
	for name, flip := range flips {
		t.Run(name, func(t *testing.T) {
			l := signedListing(t)
			flip(l)
			ok, err := v.Verify(l)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerify_BidderMismatch(t *testing.T) {
	v := NewVerifier(crypto.NewTypedDataHasher(testDomain), nil)

	b := signedBid(t)
	b.Bidder = newSigner(t, sellerKeyHex).Address().Hex()

	ok, err := v.Verify(b)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedSignature(t *testing.T) {
	v := NewVerifier(crypto.NewTypedDataHasher(testDomain), nil)

	for _, sig := range []string{"0x", "0x1234", "not-hex", strings.Repeat("0", 132)} {
		l := signedListing(t)
		l.Signature = sig
		ok, err := v.Verify(l)
		assert.NoError(t, err, sig)
		assert.False(t, ok, sig)
	}

	// v = 29
	l := signedListing(t)
	l.Signature = l.Signature[:len(l.Signature)-2] + "1d"
	ok, err := v.Verify(l)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongDomain(t *testing.T) {
	other := testDomain
	other.ChainID = 1
	v := NewVerifier(crypto.NewTypedDataHasher(other), nil)

	ok, err := v.Verify(signedListing(t))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_ConfigurationErrorPropagates(t *testing.T) {
	l := signedListing(t)

	for _, addr := range []string{"", "0x1234"} {
		v := NewVerifier(crypto.NewTypedDataHasher(crypto.NewDomain("1", 11155111, addr)), nil)
		ok, err := v.Verify(l)
		assert.False(t, ok)
		require.Error(t, err)
		assert.True(t, apperrors.IsConfiguration(err))
	}
}
