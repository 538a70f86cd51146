package services

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"

	"github.com/jsenthil/tsuki/internal/domain/entities"
)

// MempoolMirror is the bounded LRU of pending transactions mirrored
// from the node's pending-tx subscription (§4.7), exposing the
// 90th-percentile effective gas price via P90GasPrice. The block
// evaluator does not read from the mirror: its gas price is the node's
// suggested gas price sampled per block in cmd/arbengine. Grounded on
// original_source/src/tx_pool.rs's bounded-map mirror, ported to
// hashicorp/golang-lru/v2 for the eviction policy.
type MempoolMirror struct {
	mu    sync.RWMutex
	cache *lru.Cache[common.Hash, entities.MempoolEntry]
}

// NewMempoolMirror allocates a mirror with the given capacity
// (config's mempool_capacity, §6).
func NewMempoolMirror(capacity int) (*MempoolMirror, error) {
	cache, err := lru.New[common.Hash, entities.MempoolEntry](capacity)
	if err != nil {
		return nil, err
	}
	return &MempoolMirror{cache: cache}, nil
}

// Push inserts or updates a pending transaction entry.
func (m *MempoolMirror) Push(entry entities.MempoolEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(entry.Hash, entry)
}

// RemoveByHash drops an entry once its transaction has confirmed.
func (m *MempoolMirror) RemoveByHash(hash common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(hash)
}

// GetAll returns a snapshot of every mirrored entry.
func (m *MempoolMirror) GetAll() []entities.MempoolEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := m.cache.Keys()
	out := make([]entities.MempoolEntry, 0, len(keys))
	for _, k := range keys {
		if entry, ok := m.cache.Peek(k); ok {
			out = append(out, entry)
		}
	}
	return out
}

// P90GasPrice returns the 90th-percentile effective gas price over the
// current mirror contents (§4.7, invariant 7, §8): sort ascending,
// return the element at floor(0.9*N); for N < 5, return the last
// element. Returns nil when the mirror is empty.
func (m *MempoolMirror) P90GasPrice() *uint256.Int {
	entries := m.GetAll()
	if len(entries) == 0 {
		return nil
	}

	prices := make([]*uint256.Int, len(entries))
	for i, e := range entries {
		prices[i] = e.EffectiveGasPrice
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Lt(prices[j])
	})

	n := len(prices)
	if n < 5 {
		return prices[n-1]
	}
	idx := (9 * n) / 10
	if idx >= n {
		idx = n - 1
	}
	return prices[idx]
}
