package dex

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"context"

	"github.com/jsenthil/tsuki/internal/domain/entities"
	chain "github.com/jsenthil/tsuki/internal/infrastructure/ethereum"
)

// quoteExactInputSingleSelector is QuoterV2.quoteExactInputSingle's
// selector for the struct-parameter overload:
// quoteExactInputSingle((address,address,uint256,uint24,uint160)).
var quoteExactInputSingleSelector = common.Hex2Bytes("c6a5026a")

// V3Client fans quoteExactInputSingle calls out across every candidate
// fee tier via the batched view-call client (§4.6), never one RPC round
// trip per tier.
type V3Client struct {
	config entities.V3Config
	batch  *chain.BatchedViewCallClient
}

// NewV3Client wires a V3Client against the given quoter config.
func NewV3Client(chainClient *chain.Client, config entities.V3Config) *V3Client {
	return &V3Client{
		config: config,
		batch:  chain.NewBatchedViewCallClient(chainClient.RPC()),
	}
}

// quoteCallData encodes the QuoteExactInputSingleParams tuple: tokenIn,
// tokenOut, amountIn, fee, sqrtPriceLimitX96 (fixed at 0 for "no
// limit"), matching the byte-offset layout the teacher's
// uniswap_v3.go uses for the legacy (non-struct) overload, adapted to
// the five-field struct overload quoted in §4.6.
func quoteCallData(tokenIn, tokenOut common.Address, amountIn *uint256.Int, fee uint32) []byte {
	data := make([]byte, 4+32*5)
	copy(data[0:4], quoteExactInputSingleSelector)

	copy(data[4+12:4+32], tokenIn.Bytes())
	copy(data[36+12:36+32], tokenOut.Bytes())

	amountBytes := amountIn.Bytes32()
	copy(data[68:100], amountBytes[:])

	feeBytes := uint256.NewInt(uint64(fee)).Bytes32()
	copy(data[100:132], feeBytes[:])

	// sqrtPriceLimitX96 at offset 132 stays zero: "no limit".
	return data
}

// QuoteMulticall fans one view call per candidate fee tier, collects
// successes, and returns the (fee, amount_out) with the maximum
// amount_out (§4.6). Tiers that fail are treated as amount_out = 0 and
// naturally lose the argmax; if every tier fails, the zero value is
// returned with ok=false. On a tie the last fee tier in config order
// wins, matching original_source/src/uniswapV3.rs's
// max_by(...Ordering::cmp) over the fee tier iterator, which keeps the
// later element on equal amounts.
func (c *V3Client) QuoteMulticall(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (bestFee uint32, bestAmountOut *uint256.Int, ok bool) {
	calls := make([]chain.ViewCall, len(c.config.FeeTiers))
	for i, fee := range c.config.FeeTiers {
		calls[i] = chain.ViewCall{
			Target: c.config.QuoterAddress,
			Data:   quoteCallData(tokenIn, tokenOut, amountIn, fee),
		}
	}

	results, err := c.batch.BatchCall(ctx, calls)
	if err != nil {
		return 0, new(uint256.Int), false
	}

	return selectBestQuote(results, c.config.FeeTiers)
}

// selectBestQuote picks the argmax-amount_out result across fee tiers,
// split out of QuoteMulticall so the tie-break rule is unit-testable
// without a live batched RPC call.
func selectBestQuote(results []chain.CallResult, feeTiers []uint32) (bestFee uint32, bestAmountOut *uint256.Int, ok bool) {
	bestAmountOut = new(uint256.Int)
	for i, res := range results {
		if !res.Success || len(res.Data) < 32 {
			continue
		}
		amountOut := new(uint256.Int).SetBytes(res.Data[0:32])
		if !ok || !amountOut.Lt(bestAmountOut) {
			bestAmountOut = amountOut
			bestFee = feeTiers[i]
			ok = true
		}
	}
	return bestFee, bestAmountOut, ok
}
