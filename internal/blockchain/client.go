// Package blockchain 只读链上 RPC 客户端，支持多端点故障切换
package blockchain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrNoRPCConfigured = errors.New("at least one RPC URL is required")
	ErrNoHealthyRPC    = errors.New("no healthy RPC endpoint available")
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	defaultCooldown    = 30 * time.Second
)

// ChainReader 服务依赖的链上只读操作
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// EndpointStatus 端点状态快照
type EndpointStatus struct {
	URL       string    `json:"url"`
	Healthy   bool      `json:"healthy"`
	Failures  int       `json:"failures"`
	CheckedAt time.Time `json:"checkedAt"`
}

type endpoint struct {
	url       string
	down      bool
	failures  int
	checkedAt time.Time
}

func (e *endpoint) fail() {
	e.down = true
	e.failures++
	e.checkedAt = time.Now()
}

func (e *endpoint) ok() {
	e.down = false
	e.failures = 0
	e.checkedAt = time.Now()
}

// 故障端点冷却期内不参与选择
func (e *endpoint) cooling(cooldown time.Duration) bool {
	return e.down && time.Since(e.checkedAt) < cooldown
}

// ClientConfig 客户端配置
type ClientConfig struct {
	ChainID       int64
	RPCURLs       []string
	MaxRetries    int
	RetryInterval time.Duration
	// Cooldown 故障端点重试间隔
	Cooldown time.Duration
}

// Client 区块链客户端，首次调用时才建立连接
type Client struct {
	chainID int64

	mu        sync.RWMutex
	endpoints []*endpoint
	active    int
	conn      *ethclient.Client

	attempts   int
	retryDelay time.Duration
	cooldown   time.Duration
}

// NewClient 创建区块链客户端，空 URL 会被忽略
func NewClient(cfg *ClientConfig) (*Client, error) {
	c := &Client{
		chainID:    cfg.ChainID,
		attempts:   cfg.MaxRetries,
		retryDelay: cfg.RetryInterval,
		cooldown:   cfg.Cooldown,
	}
	for _, u := range cfg.RPCURLs {
		if u != "" {
			c.endpoints = append(c.endpoints, &endpoint{url: u})
		}
	}
	if len(c.endpoints) == 0 {
		return nil, ErrNoRPCConfigured
	}

	if c.attempts <= 0 {
		c.attempts = defaultMaxAttempts
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.cooldown <= 0 {
		c.cooldown = defaultCooldown
	}
	return c, nil
}

// dial 从当前端点开始轮询，选出第一个能返回 chainId 的节点
func (c *Client) dial(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	n := len(c.endpoints)
	for i := 0; i < n; i++ {
		idx := (c.active + i) % n
		ep := c.endpoints[idx]
		if ep.cooling(c.cooldown) {
			continue
		}

		conn, err := ethclient.DialContext(ctx, ep.url)
		if err != nil {
			ep.fail()
			continue
		}
		if _, err := conn.ChainID(ctx); err != nil {
			conn.Close()
			ep.fail()
			continue
		}

		ep.ok()
		c.active = idx
		c.conn = conn
		return conn, nil
	}
	return nil, ErrNoHealthyRPC
}

// drop 调用失败后下线当前端点，下次调用重新选择
func (c *Client) drop(conn *ethclient.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.endpoints[c.active].fail()
	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
}

// call 带重试执行 RPC，ctx 取消时立即返回
func call[T any](ctx context.Context, c *Client, fn func(*ethclient.Client) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		conn, err := c.dial(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		result, err := fn(conn)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, lastErr
		}
		c.drop(conn)
	}
	return zero, lastErr
}

// ChainID 返回配置的链 ID
func (c *Client) ChainID() int64 {
	return c.chainID
}

// NetworkChainID 查询节点实际链 ID
func (c *Client) NetworkChainID(ctx context.Context) (*big.Int, error) {
	return call(ctx, c, func(conn *ethclient.Client) (*big.Int, error) {
		return conn.ChainID(ctx)
	})
}

// BlockNumber 最新区块号
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return call(ctx, c, func(conn *ethclient.Client) (uint64, error) {
		return conn.BlockNumber(ctx)
	})
}

func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return call(ctx, c, func(conn *ethclient.Client) ([]types.Log, error) {
		return conn.FilterLogs(ctx, query)
	})
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return call(ctx, c, func(conn *ethclient.Client) ([]byte, error) {
		return conn.CallContract(ctx, msg, blockNumber)
	})
}

// Endpoints 返回各端点状态
func (c *Client) Endpoints() []EndpointStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]EndpointStatus, len(c.endpoints))
	for i, ep := range c.endpoints {
		out[i] = EndpointStatus{
			URL:       ep.url,
			Healthy:   !ep.down,
			Failures:  ep.failures,
			CheckedAt: ep.checkedAt,
		}
	}
	return out
}

// Close 关闭当前连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
