// Package app 提供应用生命周期管理
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/blockchain"
	"github.com/eidos-exchange/eidos-nft/internal/config"
	"github.com/eidos-exchange/eidos-nft/internal/contract"
	"github.com/eidos-exchange/eidos-nft/internal/handler"
	"github.com/eidos-exchange/eidos-nft/internal/jobs"
	"github.com/eidos-exchange/eidos-nft/internal/publisher"
	"github.com/eidos-exchange/eidos-nft/internal/router"
	"github.com/eidos-exchange/eidos-nft/internal/service"
	"github.com/eidos-exchange/eidos-nft/internal/signature"
	"github.com/eidos-exchange/eidos-nft/internal/store"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
)

// domainCheckTimeout 启动时合约比对的超时
const domainCheckTimeout = 10 * time.Second

// App 应用实例
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	// HTTP 服务
	httpServer *http.Server
	engine     *gin.Engine

	// 依赖组件
	store     *store.MarketplaceStore
	hasher    *crypto.TypedDataHasher
	chain     *blockchain.Client
	market    *contract.Marketplace
	publisher publisher.Publisher
	scheduler *jobs.Scheduler

	// Services
	listingService    *service.ListingService
	bidService        *service.BidService
	healthService     *service.HealthService
	settlementService *service.SettlementService
}

// New 创建应用实例
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Start 启动应用
func (a *App) Start(ctx context.Context) error {
	// 1. 初始化依赖
	if err := a.initDependencies(ctx); err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}

	// 2. 初始化 HTTP 服务
	a.initHTTPServer()

	// 3. 启动定时任务
	if err := a.initJobs(); err != nil {
		return fmt.Errorf("init jobs: %w", err)
	}
	a.scheduler.Start()

	// 4. 启动 HTTP 服务
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop 停止应用
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("stopping application")

	// 先停止定时任务，避免清理与成交监听在关闭期间运行
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("publisher close error", zap.Error(err))
		}
	}

	if a.chain != nil {
		a.chain.Close()
	}

	a.logger.Info("application stopped")
	return nil
}

// WaitForShutdown 等待关闭信号
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Stop(ctx); err != nil {
		a.logger.Error("application stop error", zap.Error(err))
	}
}

// Engine 返回 gin 引擎
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// initDependencies 初始化依赖
func (a *App) initDependencies(ctx context.Context) error {
	domain := a.cfg.EIP712.Domain()
	if err := domain.Validate(); err != nil {
		// 读接口仍可用，签名校验与 /health 返回配置错误
		a.logger.Error("eip712 domain misconfigured", zap.Error(err))
	}

	a.store = store.New()
	a.hasher = crypto.NewTypedDataHasher(domain)
	verifier := signature.NewVerifier(a.hasher, a.logger)
	stamper := service.NewStamper(nil)

	// 事件发布
	a.publisher = publisher.NoopPublisher{}
	if a.cfg.Kafka.Enabled {
		pub, err := publisher.NewKafkaPublisher(&publisher.ProducerConfig{
			Brokers:      a.cfg.Kafka.Brokers,
			ClientID:     a.cfg.Kafka.ClientID,
			RequiredAcks: sarama.WaitForLocal,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		a.publisher = pub
		a.logger.Info("kafka publisher enabled", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	}

	// 链上连接
	var prober service.BlockProber
	chain, err := blockchain.NewClient(&blockchain.ClientConfig{
		ChainID: domain.ChainID,
		RPCURLs: a.cfg.Blockchain.RPCURLs(),
	})
	switch {
	case errors.Is(err, blockchain.ErrNoRPCConfigured):
		a.logger.Warn("no RPC endpoint configured, /health will report unavailable")
	case err != nil:
		return fmt.Errorf("blockchain client: %w", err)
	default:
		a.chain = chain
		prober = chain
	}

	if a.chain != nil && domain.Validate() == nil {
		a.market, err = contract.NewMarketplace(common.HexToAddress(domain.VerifyingContract), a.chain)
		if err != nil {
			return fmt.Errorf("marketplace binding: %w", err)
		}
		if a.cfg.Blockchain.DomainCheck {
			a.checkDomain(ctx)
		}
	}

	a.listingService = service.NewListingService(a.store, verifier, a.publisher, stamper, a.logger)
	a.bidService = service.NewBidService(a.store, verifier, a.publisher, stamper, a.logger)
	a.healthService = service.NewHealthService(prober, domain, a.store, service.HealthConfig{
		Network:      a.cfg.Blockchain.Network,
		ProbeTimeout: a.cfg.Blockchain.ProbeTimeout(),
	}, a.logger)

	if a.cfg.Settlement.Enabled && a.market != nil {
		a.settlementService = service.NewSettlementService(a.chain, a.market, a.listingService, service.SettlementConfig{
			StartBlock:    a.cfg.Settlement.StartBlock,
			MaxBlockRange: a.cfg.Settlement.MaxBlockRange,
		}, a.logger)
	}

	return nil
}

// checkDomain 比对本地与合约的 EIP-712 哈希，不阻塞启动
func (a *App) checkDomain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, domainCheckTimeout)
	defer cancel()

	_, mismatches, err := service.CheckDomain(ctx, a.market, a.hasher, a.logger)
	if err != nil {
		a.logger.Warn("eip712 domain check skipped", zap.Error(err))
		return
	}
	if mismatches > 0 {
		a.logger.Error("signatures produced for the deployed contract will be rejected",
			zap.Int("mismatches", mismatches))
	}
}

// initHTTPServer 初始化 HTTP 服务
func (a *App) initHTTPServer() {
	if a.cfg.Service.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	a.engine = gin.New()

	r := router.New(a.engine, a.cfg)
	r.RegisterMiddleware()
	r.RegisterRoutes(&router.Handlers{
		Home:    handler.NewHomeHandler(a.cfg.Service.Name),
		Health:  handler.NewHealthHandler(a.healthService),
		Listing: handler.NewListingHandler(a.listingService),
		Bid:     handler.NewBidHandler(a.bidService),
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Service.Host, a.cfg.Service.HTTPPort),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// initJobs 注册定时任务
func (a *App) initJobs() error {
	a.scheduler = jobs.NewScheduler(&jobs.SchedulerConfig{MaxConcurrentJobs: 2}, a.logger)

	sweep := jobs.NewSweepJob(a.store, a.cfg.Store.MaxAge(), a.logger)
	if err := a.scheduler.RegisterJob(sweep, jobs.JobConfig{
		Interval: a.cfg.Store.SweepInterval(),
		Enabled:  true,
	}); err != nil {
		return err
	}

	if a.settlementService != nil {
		settlement := jobs.NewSettlementJob(a.settlementService, a.cfg.Settlement.PollInterval())
		if err := a.scheduler.RegisterJob(settlement, jobs.JobConfig{
			Interval: a.cfg.Settlement.PollInterval(),
			Enabled:  true,
		}); err != nil {
			return err
		}
	} else if a.cfg.Settlement.Enabled {
		a.logger.Warn("settlement watcher enabled but marketplace contract is unavailable")
	}

	return nil
}
