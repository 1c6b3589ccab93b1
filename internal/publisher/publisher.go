// Package publisher 将接受的挂单/出价发布到 Kafka
//
// Topic 命名: 无前缀，短横线分隔
//   - nft-listings: 已接受的挂单 (model.StoredListing)，Partition Key: contract:tokenId
//   - nft-bids: 已接受的出价 (model.StoredBid)，Partition Key: contract:tokenId
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/eidos-exchange/eidos-nft/internal/metrics"
	"github.com/eidos-exchange/eidos-nft/internal/model"
	"github.com/eidos-exchange/eidos-nft/pkg/logger"
)

const (
	TopicListings = "nft-listings"
	TopicBids     = "nft-bids"
)

var ErrProducerClosed = errors.New("producer is closed")

// Publisher 事件发布器
type Publisher interface {
	PublishListing(ctx context.Context, listing *model.StoredListing) error
	PublishBid(ctx context.Context, bid *model.StoredBid) error
	Close() error
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	Brokers      []string
	ClientID     string
	RequiredAcks sarama.RequiredAcks
	MaxRetries   int
	RetryBackoff time.Duration
}

// KafkaPublisher 基于 sarama SyncProducer 的发布器
type KafkaPublisher struct {
	producer sarama.SyncProducer
	mu       sync.RWMutex
	closed   bool
}

// NewKafkaPublisher 连接 broker 并创建发布器
func NewKafkaPublisher(cfg *ProducerConfig) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0
	config.ClientID = cfg.ClientID
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	requiredAcks := cfg.RequiredAcks
	if requiredAcks == 0 {
		requiredAcks = sarama.WaitForAll
	}
	config.Producer.RequiredAcks = requiredAcks

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	config.Producer.Retry.Max = maxRetries

	retryBackoff := cfg.RetryBackoff
	if retryBackoff == 0 {
		retryBackoff = 100 * time.Millisecond
	}
	config.Producer.Retry.Backoff = retryBackoff

	producer, err := sarama.NewSyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, err
	}
	return NewKafkaPublisherWithProducer(producer), nil
}

// NewKafkaPublisherWithProducer 使用已有的 SyncProducer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Close 关闭生产者
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.producer.Close()
}

func (p *KafkaPublisher) send(topic, key string, value []byte) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	p.mu.RUnlock()

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	metrics.RecordPublish(topic, err)
	if err != nil {
		logger.Error("failed to send kafka message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	logger.Debug("kafka message sent",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// PublishListing 发布挂单
func (p *KafkaPublisher) PublishListing(ctx context.Context, listing *model.StoredListing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return p.send(TopicListings, listing.Key().String(), data)
}

// PublishBid 发布出价
func (p *KafkaPublisher) PublishBid(ctx context.Context, bid *model.StoredBid) error {
	data, err := json.Marshal(bid)
	if err != nil {
		return err
	}
	return p.send(TopicBids, bid.Key().String(), data)
}

// NoopPublisher 未启用 Kafka 时使用
type NoopPublisher struct{}

func (NoopPublisher) PublishListing(context.Context, *model.StoredListing) error { return nil }
func (NoopPublisher) PublishBid(context.Context, *model.StoredBid) error         { return nil }
func (NoopPublisher) Close() error                                              { return nil }
