package middleware

import (
	"github.com/eidos-exchange/eidos-nft/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TraceIDHeader 请求头中的 TraceID 字段名
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey context 中的 TraceID 键名
	TraceIDKey = "trace_id"
)

// Trace 返回 Trace ID 中间件
// 如果请求头中有 X-Trace-ID，则使用该值，否则生成新的 UUID
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		// 下游通过 logger.WithContext 取得带 trace_id 的日志器
		ctx := logger.NewContext(c.Request.Context(), zap.String(TraceIDKey, traceID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
