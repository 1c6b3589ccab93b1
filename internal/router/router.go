// Package router 提供路由注册
package router

import (
	"github.com/eidos-exchange/eidos-nft/internal/config"
	"github.com/eidos-exchange/eidos-nft/internal/handler"
	"github.com/eidos-exchange/eidos-nft/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router 路由管理器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// Handlers 路由依赖的处理器
type Handlers struct {
	Home    *handler.HomeHandler
	Health  *handler.HealthHandler
	Listing *handler.ListingHandler
	Bid     *handler.BidHandler
}

// New 创建路由管理器
func New(engine *gin.Engine, cfg *config.Config) *Router {
	return &Router{
		engine: engine,
		cfg:    cfg,
	}
}

// RegisterMiddleware 注册全局中间件
func (r *Router) RegisterMiddleware() {
	// 中间件链: Recovery → Trace → Logger → CORS → Metrics
	r.engine.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(),
		middleware.CORS(r.cfg.CORS.AllowOrigins...),
		middleware.Metrics(),
	)
}

// RegisterRoutes 注册路由
func (r *Router) RegisterRoutes(h *Handlers) {
	r.engine.SetHTMLTemplate(handler.HomeTemplate)
	r.engine.GET("/", h.Home.Home)
	r.engine.GET("/health", h.Health.Health)

	// Prometheus 监控端点
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")

	listings := api.Group("/listings")
	{
		listings.GET("", h.Listing.ListListings)
		listings.POST("", h.Listing.CreateListing)
		listings.GET("/:nftContract/:tokenId/bids", h.Bid.ListBids)
		listings.POST("/:nftContract/:tokenId/bids", h.Bid.CreateBid)
	}
}

// Engine 返回 gin 引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
