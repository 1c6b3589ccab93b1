package dto

import (
	"encoding/json"
	"testing"

	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	err := apperrors.ErrValidation.WithMessage("tokenId must be a base-10 integer").WithDetail("field", "tokenId")

	data, mErr := json.Marshal(NewErrorResponse(err))
	require.NoError(t, mErr)
	assert.JSONEq(t, `{
		"error": "tokenId must be a base-10 integer",
		"code": "VALIDATION_ERROR",
		"details": {"field": "tokenId"}
	}`, string(data))
}

func TestNewErrorResponse_NoDetails(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse(apperrors.ErrNotFound))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "resource not found", "code": "NOT_FOUND"}`, string(data))
}

func TestCreateListingRequest_ToModel(t *testing.T) {
	var req CreateListingRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"nftContract": "0xaa",
		"tokenId": "1",
		"owner": "0xbb",
		"minPrice": "100",
		"signature": "0x01",
		"timestamp": 123
	}`), &req))

	l := req.ToModel()
	assert.Equal(t, "0xaa", l.NFTContract)
	assert.Equal(t, "1", l.TokenID)
	assert.Equal(t, "0xbb", l.Owner)
	assert.Equal(t, "100", l.MinPrice)
	assert.Equal(t, "0x01", l.Signature)
}

func TestCreateBidRequest_ToModel(t *testing.T) {
	req := CreateBidRequest{
		NFTContract:  "0xaa",
		TokenID:      "1",
		Bidder:       "0xcc",
		Amount:       "150",
		PaymentToken: "0x0000000000000000000000000000000000000000",
		Signature:    "0x02",
	}

	b := req.ToModel()
	assert.Equal(t, req.Bidder, b.Bidder)
	assert.Equal(t, req.Amount, b.Amount)
	assert.Equal(t, req.PaymentToken, b.PaymentToken)
}
