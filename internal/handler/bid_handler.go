package handler

import (
	"net/http"

	"github.com/eidos-exchange/eidos-nft/internal/dto"
	"github.com/eidos-exchange/eidos-nft/internal/service"
	"github.com/gin-gonic/gin"
)

// BidHandler 出价处理器
type BidHandler struct {
	svc *service.BidService
}

// NewBidHandler 创建出价处理器
func NewBidHandler(svc *service.BidService) *BidHandler {
	return &BidHandler{svc: svc}
}

// ListBids 查询某挂单的出价
// GET /api/listings/:nftContract/:tokenId/bids
func (h *BidHandler) ListBids(c *gin.Context) {
	bids := h.svc.ListBids(c.Param("nftContract"), c.Param("tokenId"))
	c.JSON(http.StatusOK, &dto.BidsResponse{Bids: bids})
}

// CreateBid 提交签名出价
// POST /api/listings/:nftContract/:tokenId/bids
func (h *BidHandler) CreateBid(c *gin.Context) {
	var req dto.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid JSON body: "+err.Error())
		return
	}

	stored, err := h.svc.CreateBid(c.Request.Context(), c.Param("nftContract"), c.Param("tokenId"), req.ToModel())
	if err != nil {
		Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, &dto.BidResponse{Bid: stored})
}
