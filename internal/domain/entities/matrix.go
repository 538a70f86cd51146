package entities

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PairInfo is the value side of the PairLookup table: what a discovered
// pair address resolves to inside the matrix.
type PairInfo struct {
	Protocol V2ProtocolId
	Token0   TokenId
	Token1   TokenId
}

// PairLookup maps a discovered pair contract address to its matrix
// coordinates. Built once at init and never mutated afterward, so it may
// be read from any goroutine without locking (§3).
type PairLookup struct {
	byAddress map[common.Address]PairInfo
}

// NewPairLookup builds an (initially empty) lookup table; entries are
// added during discovery via Add.
func NewPairLookup() *PairLookup {
	return &PairLookup{byAddress: make(map[common.Address]PairInfo)}
}

// Add registers a discovered pair address. Discovery-time only.
func (l *PairLookup) Add(addr common.Address, info PairInfo) {
	l.byAddress[addr] = info
}

// Resolve returns the matrix coordinates for a pair address, as observed
// on an incoming Sync log's emitter (§4.2).
func (l *PairLookup) Resolve(addr common.Address) (PairInfo, bool) {
	info, ok := l.byAddress[addr]
	return info, ok
}

// orderTokens applies the canonical ordering rule (§4.1, §9 "Open
// question"): the canonical (token0, token1) is the one whose address is
// lexicographically smaller. sameOrder reports whether the caller's
// (tokenA, tokenB) already matches that canonical order — this is the
// direction flag threaded through get_amount_out.
//
// This is address-order only. The source's symbol-order lookup variant
// is intentionally not implemented (§9).
func orderTokens(tokenA, tokenB TokenId) (token0, token1 TokenId, sameOrder bool) {
	addrA := TokenByID(tokenA).Address
	addrB := TokenByID(tokenB).Address
	if addrA.Cmp(addrB) < 0 {
		return tokenA, tokenB, true
	}
	return tokenB, tokenA, false
}

// OrderTokens exposes the canonicalization rule for callers outside this
// package (discovery, tests) that need it without going through the
// matrix.
func OrderTokens(tokenA, tokenB TokenId) (token0, token1 TokenId, sameOrder bool) {
	return orderTokens(tokenA, tokenB)
}

// PoolMatrix is the dense 3-D `[protocol][token0][token1]` index into
// pool records (§3, §9): a flat slice with manual index flattening,
// sized |V2ProtocolId| x |TokenId| x |TokenId|. Diagonal and
// lower-triangular slots are allocated but never populated — the spec
// explicitly asks implementers to keep them rather than compact the
// layout.
//
// One writer (the event ingester) holds mu for the duration of a single
// reserve store; any number of readers (route evaluators) may hold it
// concurrently otherwise.
type PoolMatrix struct {
	mu       sync.RWMutex
	numProto int
	numToken int
	records  []PoolRecord
}

// NewPoolMatrix allocates a matrix for the current token/protocol
// registries, with every slot pre-initialized to an empty PoolRecord.
func NewPoolMatrix() *PoolMatrix {
	numProto := NumV2Protocols()
	numToken := NumTokens()
	size := numProto * numToken * numToken
	records := make([]PoolRecord, size)
	for i := range records {
		records[i] = NewPoolRecord()
	}
	return &PoolMatrix{
		numProto: numProto,
		numToken: numToken,
		records:  records,
	}
}

func (m *PoolMatrix) index(protocol V2ProtocolId, token0, token1 TokenId) int {
	return (int(protocol)*m.numToken+int(token0))*m.numToken + int(token1)
}

// UpdateMetadata binds a matrix slot during discovery, canonicalizing
// (tokenA, tokenB) first and holding the writer lock for the store.
// Discovery runs before any reader or the event ingester starts.
func (m *PoolMatrix) UpdateMetadata(protocol V2ProtocolId, tokenA, tokenB TokenId, pairAddress common.Address, feeNum, feeDen uint64) {
	token0, token1, _ := orderTokens(tokenA, tokenB)
	idx := m.index(protocol, token0, token1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[idx].UpdateMetadata(protocol, token0, token1, pairAddress, feeNum, feeDen)
}

// UpdateReserves is called from the event ingester (§4.2) to replace a
// pair's reserves atomically under the writer lock. protocol/token0/
// token1 must already be in canonical order (the caller resolves this
// via PairLookup, which stores canonical coordinates).
func (m *PoolMatrix) UpdateReserves(protocol V2ProtocolId, token0, token1 TokenId, reserve0, reserve1 *uint256.Int) {
	idx := m.index(protocol, token0, token1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[idx].UpdateReserves(reserve0, reserve1)
}

// Lookup resolves a (protocol, tokenA, tokenB) query to its canonical
// pool record and the direction flag for tokenA->tokenB (invariant 8,
// §8): for any (A,B) with A.address < B.address, Lookup(A,B) and
// Lookup(B,A) return the same record with sameOrder true and false
// respectively.
func (m *PoolMatrix) Lookup(protocol V2ProtocolId, tokenA, tokenB TokenId) (record PoolRecord, sameOrder bool) {
	token0, token1, same := orderTokens(tokenA, tokenB)
	idx := m.index(protocol, token0, token1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[idx], same
}

// GetAmountOut is a convenience wrapper that looks up the pool for
// (protocol, tokenIn, tokenOut) and quotes amountIn through it.
func (m *PoolMatrix) GetAmountOut(protocol V2ProtocolId, tokenIn, tokenOut TokenId, amountIn *uint256.Int) *uint256.Int {
	record, sameOrder := m.Lookup(protocol, tokenIn, tokenOut)
	return record.GetAmountOut(amountIn, sameOrder)
}
