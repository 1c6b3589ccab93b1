package dto

import (
	"github.com/eidos-exchange/eidos-nft/internal/model"
)

// CreateListingRequest POST /api/listings 请求体，timestamp 由服务端生成
type CreateListingRequest struct {
	NFTContract string `json:"nftContract"`
	TokenID     string `json:"tokenId"`
	Owner       string `json:"owner"`
	MinPrice    string `json:"minPrice"`
	Signature   string `json:"signature"`
}

// ToModel 转换为挂单
func (r *CreateListingRequest) ToModel() *model.Listing {
	return &model.Listing{
		NFTContract: r.NFTContract,
		TokenID:     r.TokenID,
		Owner:       r.Owner,
		MinPrice:    r.MinPrice,
		Signature:   r.Signature,
	}
}

// CreateBidRequest POST /api/listings/:nftContract/:tokenId/bids 请求体
type CreateBidRequest struct {
	NFTContract  string `json:"nftContract"`
	TokenID      string `json:"tokenId"`
	Bidder       string `json:"bidder"`
	Amount       string `json:"amount"`
	PaymentToken string `json:"paymentToken"`
	Signature    string `json:"signature"`
}

// ToModel 转换为出价
func (r *CreateBidRequest) ToModel() *model.Bid {
	return &model.Bid{
		NFTContract:  r.NFTContract,
		TokenID:      r.TokenID,
		Bidder:       r.Bidder,
		Amount:       r.Amount,
		PaymentToken: r.PaymentToken,
		Signature:    r.Signature,
	}
}
