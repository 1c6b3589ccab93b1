package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "github.com/eidos-exchange/eidos-nft/pkg/config"
	"github.com/eidos-exchange/eidos-nft/pkg/crypto"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service    ServiceConfig    `yaml:"service" json:"service"`
	EIP712     EIP712Config     `yaml:"eip712" json:"eip712"`
	Blockchain BlockchainConfig `yaml:"blockchain" json:"blockchain"`
	Store      StoreConfig      `yaml:"store" json:"store"`
	Settlement SettlementConfig `yaml:"settlement" json:"settlement"`
	Kafka      KafkaConfig      `yaml:"kafka" json:"kafka"`
	CORS       CORSConfig       `yaml:"cors" json:"cors"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

type ServiceConfig struct {
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"host" json:"host"`
	HTTPPort int    `yaml:"http_port" json:"http_port"`
	Env      string `yaml:"env" json:"env"`
}

// EIP712Config 签名域配置
type EIP712Config struct {
	Name              string `yaml:"name" json:"name"`
	Version           string `yaml:"version" json:"version"`
	ChainID           int64  `yaml:"chain_id" json:"chain_id"`
	VerifyingContract string `yaml:"verifying_contract" json:"verifying_contract"`
}

// Domain 构造签名域
func (c *EIP712Config) Domain() crypto.Domain {
	d := crypto.NewDomain(c.Version, c.ChainID, c.VerifyingContract)
	if c.Name != "" {
		d.Name = c.Name
	}
	return d
}

type BlockchainConfig struct {
	RPCURL         string   `yaml:"rpc_url" json:"rpc_url"`
	BackupRPCURLs  []string `yaml:"backup_rpc_urls" json:"backup_rpc_urls"`
	Network        string   `yaml:"network" json:"network"`
	ProbeTimeoutMs int      `yaml:"probe_timeout_ms" json:"probe_timeout_ms"`
	DomainCheck    bool     `yaml:"domain_check" json:"domain_check"`
}

// RPCURLs 主节点在前
func (c *BlockchainConfig) RPCURLs() []string {
	urls := make([]string, 0, 1+len(c.BackupRPCURLs))
	if c.RPCURL != "" {
		urls = append(urls, c.RPCURL)
	}
	for _, u := range c.BackupRPCURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (c *BlockchainConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

// StoreConfig 内存存储清理配置
type StoreConfig struct {
	SweepIntervalMs int64 `yaml:"sweep_interval_ms" json:"sweep_interval_ms"`
	MaxAgeMs        int64 `yaml:"max_age_ms" json:"max_age_ms"`
}

func (c *StoreConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMs) * time.Millisecond
}

func (c *StoreConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeMs) * time.Millisecond
}

// SettlementConfig 链上成交监听
type SettlementConfig struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	PollIntervalMs int64  `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	StartBlock     uint64 `yaml:"start_block" json:"start_block"`
	MaxBlockRange  uint64 `yaml:"max_block_range" json:"max_block_range"`
}

func (c *SettlementConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

type KafkaConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	Brokers  []string `yaml:"brokers" json:"brokers"`
	ClientID string   `yaml:"client_id" json:"client_id"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" json:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Load 加载配置: 默认值 -> 配置文件 -> 环境变量
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			content := pkgconfig.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "eidos-nft",
			Host:     "0.0.0.0",
			HTTPPort: 3000,
			Env:      "dev",
		},
		EIP712: EIP712Config{
			Name:    crypto.DomainName,
			Version: crypto.DefaultVersion,
			ChainID: 11155111,
		},
		Blockchain: BlockchainConfig{
			Network:        "sepolia",
			ProbeTimeoutMs: 5000,
			DomainCheck:    true,
		},
		Store: StoreConfig{
			SweepIntervalMs: 3600000,
			MaxAgeMs:        3600000,
		},
		Settlement: SettlementConfig{
			PollIntervalMs: 15000,
			MaxBlockRange:  1000,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			ClientID: "eidos-nft",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides 从环境变量覆盖配置
func applyEnvOverrides(cfg *Config) {
	// Service
	cfg.Service.Host = pkgconfig.GetEnv("HOST", cfg.Service.Host)
	cfg.Service.HTTPPort = pkgconfig.GetEnvInt("PORT", cfg.Service.HTTPPort)
	cfg.Service.Env = pkgconfig.GetEnv("ENV", cfg.Service.Env)

	// EIP-712
	cfg.EIP712.VerifyingContract = pkgconfig.GetEnv("MARKETPLACE_CONTRACT_ADDRESS", cfg.EIP712.VerifyingContract)
	cfg.EIP712.ChainID = pkgconfig.GetEnvInt64("CHAIN_ID", cfg.EIP712.ChainID)
	cfg.EIP712.Version = pkgconfig.GetEnv("SIGNATURE_VERSION", cfg.EIP712.Version)

	// Blockchain
	cfg.Blockchain.RPCURL = pkgconfig.GetEnv("RPC_URL", cfg.Blockchain.RPCURL)
	cfg.Blockchain.Network = pkgconfig.GetEnv("NETWORK", cfg.Blockchain.Network)

	// Store
	cfg.Store.SweepIntervalMs = pkgconfig.GetEnvInt64("CLEANUP_INTERVAL", cfg.Store.SweepIntervalMs)
	cfg.Store.MaxAgeMs = pkgconfig.GetEnvInt64("MAX_AGE", cfg.Store.MaxAgeMs)

	// Settlement
	cfg.Settlement.Enabled = pkgconfig.GetEnvBool("SETTLEMENT_WATCHER_ENABLED", cfg.Settlement.Enabled)

	// Kafka
	cfg.Kafka.Enabled = pkgconfig.GetEnvBool("KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Kafka.Brokers = pkgconfig.GetEnvSlice("KAFKA_BROKERS", cfg.Kafka.Brokers)

	// CORS
	cfg.CORS.AllowOrigins = pkgconfig.GetEnvSlice("CORS_ORIGIN", cfg.CORS.AllowOrigins)

	// Log
	cfg.Log.Level = pkgconfig.GetEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = pkgconfig.GetEnv("LOG_FORMAT", cfg.Log.Format)
}

// Validate 校验配置。验证合约地址缺失不在这里拒绝，
// 读接口仍可用，签名校验时返回 CONFIGURATION_ERROR。
func (c *Config) Validate() error {
	if c.Service.HTTPPort <= 0 || c.Service.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Service.HTTPPort)
	}
	if c.Store.SweepIntervalMs <= 0 {
		return fmt.Errorf("sweep_interval_ms must be positive, got %d", c.Store.SweepIntervalMs)
	}
	if c.Store.MaxAgeMs <= 0 {
		return fmt.Errorf("max_age_ms must be positive, got %d", c.Store.MaxAgeMs)
	}
	if c.Settlement.Enabled {
		if c.Settlement.PollIntervalMs <= 0 {
			return fmt.Errorf("settlement.poll_interval_ms must be positive, got %d", c.Settlement.PollIntervalMs)
		}
		if c.Blockchain.RPCURL == "" {
			return fmt.Errorf("settlement watcher requires blockchain.rpc_url")
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	return nil
}
