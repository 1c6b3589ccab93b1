// Package handler 提供 HTTP 请求处理
package handler

import (
	"net/http"

	"github.com/eidos-exchange/eidos-nft/internal/dto"
	apperrors "github.com/eidos-exchange/eidos-nft/pkg/errors"
	"github.com/eidos-exchange/eidos-nft/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 返回业务错误响应，非业务错误按 500 处理
func Error(c *gin.Context, err error) {
	bizErr := apperrors.FromError(err)
	status := bizErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", bizErr.Code),
			zap.Error(err))
	}

	_ = c.Error(err)
	setRetryAfter(c, err)
	c.JSON(status, dto.NewErrorResponse(bizErr))
}

// retryAfterSeconds 上游不可用时建议的重试间隔
const retryAfterSeconds = "5"

func setRetryAfter(c *gin.Context, err error) {
	if apperrors.IsRetryable(err) {
		c.Header("Retry-After", retryAfterSeconds)
	}
}

// BadRequest 返回参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, apperrors.ErrValidation.WithMessage(message))
}
