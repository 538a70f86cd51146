package entities

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolRecord is the mutable per-pool state tracked by the pool matrix:
// immutable identity (protocol, canonical token pair, fee) plus reserves
// that are rewritten wholesale by the event ingester on every Sync log.
//
// token0.Address < token1.Address holds for every record in the matrix
// (invariant 1, §8): PoolMatrix.UpdateMetadata canonicalizes the pair
// before binding a slot. PoolRecord.UpdateMetadata itself does not
// re-sort its arguments.
type PoolRecord struct {
	Protocol        V2ProtocolId
	Token0          TokenId
	Token1          TokenId
	Reserve0        *uint256.Int
	Reserve1        *uint256.Int
	PairAddress     common.Address
	FeeNum          uint64
	FeeDen          uint64
	EverInitialized bool
}

// NewPoolRecord builds an empty, uninitialized slot for the matrix. It is
// replaced with real identity via UpdateMetadata once discovery resolves
// the pair address.
func NewPoolRecord() PoolRecord {
	return PoolRecord{
		Reserve0: new(uint256.Int),
		Reserve1: new(uint256.Int),
	}
}

// UpdateMetadata is called once during discovery (§4.1) to bind a matrix
// slot to its on-chain pair. token0/token1 must already be in canonical
// address order; the caller (matrix discovery loop) guarantees this by
// construction rather than re-sorting here.
func (p *PoolRecord) UpdateMetadata(protocol V2ProtocolId, token0, token1 TokenId, pairAddress common.Address, feeNum, feeDen uint64) {
	p.Protocol = protocol
	p.Token0 = token0
	p.Token1 = token1
	p.PairAddress = pairAddress
	p.FeeNum = feeNum
	p.FeeDen = feeDen
	p.EverInitialized = true
}

// UpdateReserves overwrites both reserves atomically with respect to the
// caller's lock discipline — the matrix's writer lock must be held for
// the duration of this call (§4.2, §9 "two-word atomic per pool").
func (p *PoolRecord) UpdateReserves(reserve0, reserve1 *uint256.Int) {
	p.Reserve0 = reserve0
	p.Reserve1 = reserve1
}

// GetAmountOut implements the constant-product closed-form quote (§4.1):
//
//	aif = amount_in * (fee_den - fee_num)
//	num = aif * reserve_out
//	den = reserve_in * fee_den + aif
//	amount_out = num / den   (truncating integer division)
//
// sameOrder selects the direction: true means tokenIn is Token0 (so
// reserve_in = Reserve0, reserve_out = Reserve1); false is the reverse.
// Returns zero if amountIn is zero or either reserve is zero (invariants
// 3 and 4, §8) — this never panics, per §7's "arithmetic edge cases"
// error kind.
func (p *PoolRecord) GetAmountOut(amountIn *uint256.Int, sameOrder bool) *uint256.Int {
	reserveIn, reserveOut := p.Reserve0, p.Reserve1
	if !sameOrder {
		reserveIn, reserveOut = p.Reserve1, p.Reserve0
	}

	if amountIn == nil || amountIn.IsZero() || reserveIn.IsZero() || reserveOut.IsZero() {
		return new(uint256.Int)
	}

	effectiveMultiplier := p.FeeDen - p.FeeNum
	aif := new(uint256.Int).Mul(amountIn, uint256.NewInt(effectiveMultiplier))

	numerator := new(uint256.Int).Mul(aif, reserveOut)

	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(p.FeeDen))
	denominator.Add(denominator, aif)

	if denominator.IsZero() {
		return new(uint256.Int)
	}

	return new(uint256.Int).Div(numerator, denominator)
}
