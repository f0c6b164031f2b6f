package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/readysethire/genai-server/internal/domain"
)

// Memory is an in-process summary cache bounded by entry count and TTL.
// Least recently used entries are evicted at capacity; expired entries read
// as absent.
type Memory struct {
	lru *expirable.LRU[string, domain.SummaryResponse]
}

var _ domain.SummaryCache = (*Memory)(nil)

// NewMemory creates a cache of at most size entries living ttl each.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{lru: expirable.NewLRU[string, domain.SummaryResponse](size, nil, ttl)}
}

// Get returns a copy of the cached summary.
func (m *Memory) Get(_ context.Context, key string) (domain.SummaryResponse, bool, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return domain.SummaryResponse{}, false, nil
	}
	return cloneSummary(v), true, nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value domain.SummaryResponse) error {
	m.lru.Add(key, cloneSummary(value))
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int { return m.lru.Len() }
