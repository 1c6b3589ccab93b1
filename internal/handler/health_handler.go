package handler

import (
	"net/http"

	"github.com/eidos-exchange/eidos-nft/internal/service"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	svc *service.HealthService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(svc *service.HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health 健康检查，附带当前区块高度
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status, err := h.svc.Check(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		setRetryAfter(c, err)
		c.JSON(apperrors.ToHTTPStatus(err), status)
		return
	}
	c.JSON(http.StatusOK, status)
}
