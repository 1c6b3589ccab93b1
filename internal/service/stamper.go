package service

import (
	"sync"
	"time"
)

// Stamper 分配接收时间戳 (unix ms)，保证不回退
type Stamper struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewStamper 创建时间戳分配器，now 为空时使用 time.Now
func NewStamper(now func() time.Time) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{now: now}
}

// Stamp 返回 max(当前时间, 上一次时间戳)
func (s *Stamper) Stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	if ts < s.last {
		ts = s.last
	}
	s.last = ts
	return ts
}
