// Package dto 提供 HTTP 请求/响应结构
package dto

import (
	"github.com/eidos-exchange/eidos-nft/internal/model"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorResponse 从业务错误创建错误响应
func NewErrorResponse(err *apperrors.Error) *ErrorResponse {
	return &ErrorResponse{
		Error:   err.Message,
		Code:    err.Code,
		Details: err.Details,
	}
}

// ListingsResponse GET /api/listings
type ListingsResponse struct {
	Listings []model.StoredListing `json:"listings"`
}

// ListingResponse POST /api/listings
type ListingResponse struct {
	Listing *model.StoredListing `json:"listing"`
}

// BidsResponse GET /api/listings/:nftContract/:tokenId/bids
type BidsResponse struct {
	Bids []model.StoredBid `json:"bids"`
}

// BidResponse POST /api/listings/:nftContract/:tokenId/bids
type BidResponse struct {
	Bid *model.StoredBid `json:"bid"`
}

// Endpoint 首页列出的接口
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// HomeResponse GET /
type HomeResponse struct {
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	SignatureScheme string     `json:"signatureScheme"`
	Endpoints       []Endpoint `json:"endpoints"`
}
