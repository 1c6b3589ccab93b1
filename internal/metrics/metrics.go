// Package metrics 提供 eidos-nft 服务的 Prometheus 监控指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eidos_nft"

// HTTP 请求指标
var (
	// HTTPRequestsTotal HTTP 请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时(秒)",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// 挂单/出价指标
var (
	// ListingsAccepted 接受的挂单数
	ListingsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_accepted_total",
			Help:      "接受的挂单总数",
		},
	)

	// BidsAccepted 接受的出价数
	BidsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_accepted_total",
			Help:      "接受的出价总数",
		},
	)

	// SignatureRejections 验签失败数
	SignatureRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signature_rejections_total",
			Help:      "验签失败总数",
		},
		[]string{"kind"}, // listing, bid
	)

	// SweepEvicted 过期清理删除数
	SweepEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_evicted_total",
			Help:      "过期清理删除总数",
		},
		[]string{"kind"},
	)

	// SettledRemoved 链上成交后删除的挂单数
	SettledRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settled_listings_removed_total",
			Help:      "链上成交后删除的挂单总数",
		},
	)

	// StoreEntries 当前存储条目数
	StoreEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entries",
			Help:      "当前存储条目数",
		},
		[]string{"kind"},
	)
)

// 链上指标
var (
	// ChainBlockNumber 最近一次探测到的区块高度
	ChainBlockNumber = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_block_number",
			Help:      "最近一次探测到的区块高度",
		},
	)

	// ChainProbeFailures 区块高度探测失败数
	ChainProbeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_probe_failures_total",
			Help:      "区块高度探测失败总数",
		},
	)
)

// 事件发布指标
var (
	// EventsPublished 事件发布数
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "事件发布总数",
		},
		[]string{"topic", "result"}, // result: success, failed
	)
)

// RecordHTTPRequest 记录 HTTP 请求指标
func RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}

// RecordAccepted 记录接受的记录
func RecordAccepted(kind string) {
	switch kind {
	case "listing":
		ListingsAccepted.Inc()
	case "bid":
		BidsAccepted.Inc()
	}
}

// RecordSignatureRejection 记录验签失败
func RecordSignatureRejection(kind string) {
	SignatureRejections.WithLabelValues(kind).Inc()
}

// RecordSweep 记录过期清理结果
func RecordSweep(listings, bids int) {
	SweepEvicted.WithLabelValues("listing").Add(float64(listings))
	SweepEvicted.WithLabelValues("bid").Add(float64(bids))
}

// SetStoreEntries 更新存储条目数
func SetStoreEntries(listings, bids int) {
	StoreEntries.WithLabelValues("listing").Set(float64(listings))
	StoreEntries.WithLabelValues("bid").Set(float64(bids))
}

// RecordBlockNumber 记录区块高度探测结果
func RecordBlockNumber(block uint64, err error) {
	if err != nil {
		ChainProbeFailures.Inc()
		return
	}
	ChainBlockNumber.Set(float64(block))
}

// RecordPublish 记录事件发布
func RecordPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}
