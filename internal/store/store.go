// Package store 内存挂单/出价存储
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/eidos-exchange/eidos-nft/internal/model"
)

// SweepResult 一次过期清理的结果
type SweepResult struct {
	Listings int `json:"listings"`
	Bids     int `json:"bids"`
}

// Stats 存储条目数
type Stats struct {
	Listings int `json:"listings"`
	Bids     int `json:"bids"`
}

// MarketplaceStore 每个 (contract, tokenId) 最多一个挂单，出价按到达顺序追加。
// Go map 不支持并发写，所有操作在 mu 下完成，读取返回副本。
type MarketplaceStore struct {
	mu       sync.RWMutex
	listings map[model.Key]model.StoredListing
	bids     map[model.Key][]model.StoredBid
}

// New 创建空存储
func New() *MarketplaceStore {
	return &MarketplaceStore{
		listings: make(map[model.Key]model.StoredListing),
		bids:     make(map[model.Key][]model.StoredBid),
	}
}

// PutListing 覆盖写入挂单
func (s *MarketplaceStore) PutListing(l model.StoredListing) {
	key := l.Key()
	s.mu.Lock()
	s.listings[key] = l
	s.mu.Unlock()
}

// GetListing 查询挂单
func (s *MarketplaceStore) GetListing(key model.Key) (model.StoredListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[key]
	return l, ok
}

// ListAllListings 当前挂单快照，按接收时间排序
func (s *MarketplaceStore) ListAllListings() []model.StoredListing {
	s.mu.RLock()
	out := make([]model.StoredListing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].Key().String() < out[j].Key().String()
	})
	return out
}

// RemoveListing 删除挂单，不影响该键的出价
func (s *MarketplaceStore) RemoveListing(key model.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[key]; !ok {
		return false
	}
	delete(s.listings, key)
	return true
}

// AddBid 追加出价。挂单存在性由调用方保证
func (s *MarketplaceStore) AddBid(b model.StoredBid) {
	key := b.Key()
	s.mu.Lock()
	s.bids[key] = append(s.bids[key], b)
	s.mu.Unlock()
}

// GetBids 按到达顺序返回出价，无出价时返回空切片
func (s *MarketplaceStore) GetBids(key model.Key) []model.StoredBid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bids := s.bids[key]
	out := make([]model.StoredBid, len(bids))
	copy(out, bids)
	return out
}

// ListAllBids 所有键的出价序列拼接，键按字典序
func (s *MarketplaceStore) ListAllBids() []model.StoredBid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]model.Key, 0, len(s.bids))
	total := 0
	for k, bids := range s.bids {
		keys = append(keys, k)
		total += len(bids)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	out := make([]model.StoredBid, 0, total)
	for _, k := range keys {
		out = append(out, s.bids[k]...)
	}
	return out
}

// RemoveBids 删除某键全部出价，返回删除数量
func (s *MarketplaceStore) RemoveBids(key model.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.bids[key])
	delete(s.bids, key)
	return n
}

// Sweep 删除 now - timestamp > maxAge 的挂单和出价。
// 出价序列保留存活子序列的相对顺序，全部过期时删除该键。
func (s *MarketplaceStore) Sweep(maxAge time.Duration, now time.Time) SweepResult {
	nowMs := now.UnixMilli()
	maxAgeMs := maxAge.Milliseconds()
	expired := func(ts int64) bool { return nowMs-ts > maxAgeMs }

	var result SweepResult

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, l := range s.listings {
		if expired(l.Timestamp) {
			delete(s.listings, key)
			result.Listings++
		}
	}

	for key, bids := range s.bids {
		live := bids[:0:0]
		for _, b := range bids {
			if expired(b.Timestamp) {
				result.Bids++
				continue
			}
			live = append(live, b)
		}
		if len(live) == 0 {
			delete(s.bids, key)
		} else if len(live) != len(bids) {
			s.bids[key] = live
		}
	}

	return result
}

// Stats 当前条目数
func (s *MarketplaceStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Listings: len(s.listings)}
	for _, bids := range s.bids {
		st.Bids += len(bids)
	}
	return st
}
