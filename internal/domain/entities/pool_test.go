package entities

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func mustUint256(s string) *uint256.Int {
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad decimal literal: " + s)
	}
	v, overflow := uint256.FromBig(bi)
	if overflow {
		panic("overflow: " + s)
	}
	return v
}

// S1 — deterministic V2 quote, default fee 3/1000.
func TestGetAmountOut_S1_DefaultFee(t *testing.T) {
	pool := NewPoolRecord()
	pool.UpdateMetadata(Sushiswap, USDC, WETH, [20]byte{}, 3, 1000)
	pool.UpdateReserves(
		mustUint256("1000000000000"),       // 1_000_000 USDC, 6 decimals
		mustUint256("300000000000000000000"), // 300 WETH, 18 decimals
	)

	amountIn := mustUint256("1000000000") // 1000 USDC

	aif := new(big.Int).Mul(big.NewInt(1000000000), big.NewInt(997))
	reserveOut, _ := new(big.Int).SetString("300000000000000000000", 10)
	reserveIn, _ := new(big.Int).SetString("1000000000000", 10)
	num := new(big.Int).Mul(aif, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(1000))
	den.Add(den, aif)
	want := new(big.Int).Div(num, den)

	got := pool.GetAmountOut(amountIn, true)
	require.Zero(t, got.ToBig().Cmp(want), "GetAmountOut = %s, want %s", got.ToBig(), want)
}

// S2 — Apeswap fee variant (2/1000): replace multiplier 997 with 998.
func TestGetAmountOut_S2_ApeswapFee(t *testing.T) {
	pool := NewPoolRecord()
	pool.UpdateMetadata(Apeswap, USDC, WETH, [20]byte{}, 2, 1000)
	pool.UpdateReserves(
		mustUint256("1000000000000"),
		mustUint256("300000000000000000000"),
	)

	amountIn := mustUint256("1000000000")

	aif := new(big.Int).Mul(big.NewInt(1000000000), big.NewInt(998))
	reserveOut, _ := new(big.Int).SetString("300000000000000000000", 10)
	reserveIn, _ := new(big.Int).SetString("1000000000000", 10)
	num := new(big.Int).Mul(aif, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(1000))
	den.Add(den, aif)
	want := new(big.Int).Div(num, den)

	got := pool.GetAmountOut(amountIn, true)
	require.Zero(t, got.ToBig().Cmp(want), "GetAmountOut = %s, want %s", got.ToBig(), want)
}

// Invariant 3: get_amount_out(0, dir) = 0.
func TestGetAmountOut_ZeroInput(t *testing.T) {
	pool := NewPoolRecord()
	pool.UpdateMetadata(Sushiswap, USDC, WETH, [20]byte{}, 3, 1000)
	pool.UpdateReserves(mustUint256("1000000000000"), mustUint256("300000000000000000000"))

	got := pool.GetAmountOut(new(uint256.Int), true)
	require.True(t, got.IsZero(), "expected zero output for zero input, got %s", got.ToBig())
}

// Invariant 4: zero reserves force amount_out = 0 regardless of amount_in.
func TestGetAmountOut_ZeroReserves(t *testing.T) {
	pool := NewPoolRecord()
	pool.UpdateMetadata(Sushiswap, USDC, WETH, [20]byte{}, 3, 1000)
	pool.UpdateReserves(new(uint256.Int), mustUint256("300000000000000000000"))

	got := pool.GetAmountOut(mustUint256("1000000000"), true)
	require.True(t, got.IsZero(), "expected zero output for zero reserve_in, got %s", got.ToBig())
}

// Invariant 2: output is strictly less than the opposing reserve
// (constant-product monotone bound) for any positive, liquid trade.
func TestGetAmountOut_MonotoneBound(t *testing.T) {
	pool := NewPoolRecord()
	pool.UpdateMetadata(Sushiswap, USDC, WETH, [20]byte{}, 3, 1000)
	pool.UpdateReserves(mustUint256("1000000000000"), mustUint256("300000000000000000000"))

	amounts := []*uint256.Int{
		mustUint256("1"),
		mustUint256("1000000000"),
		mustUint256("1000000000000000"),
	}
	for _, amt := range amounts {
		out := pool.GetAmountOut(amt, true)
		if out.Cmp(pool.Reserve1) >= 0 {
			t.Fatalf("amount_out %s not < reserve_out %s for input %s", out, pool.Reserve1, amt)
		}
	}
}
