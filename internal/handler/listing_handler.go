package handler

import (
	"net/http"

	"github.com/eidos-exchange/eidos-nft/internal/dto"
	"github.com/eidos-exchange/eidos-nft/internal/service"
	"github.com/gin-gonic/gin"
)

// ListingHandler 挂单处理器
type ListingHandler struct {
	svc *service.ListingService
}

// NewListingHandler 创建挂单处理器
func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// ListListings 查询全部挂单
// GET /api/listings
func (h *ListingHandler) ListListings(c *gin.Context) {
	c.JSON(http.StatusOK, &dto.ListingsResponse{Listings: h.svc.ListListings()})
}

// CreateListing 提交签名挂单
// POST /api/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid JSON body: "+err.Error())
		return
	}

	stored, err := h.svc.CreateListing(c.Request.Context(), req.ToModel())
	if err != nil {
		Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, &dto.ListingResponse{Listing: stored})
}
