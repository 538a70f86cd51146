package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jsenthil/tsuki/internal/domain/entities"
)

// V3Quoter is the subset of *dex.V3Client the router depends on.
// Narrowing to an interface lets tests substitute a fixed fee/amount
// table instead of a live batched quoter.
type V3Quoter interface {
	QuoteMulticall(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (bestFee uint32, bestAmountOut *uint256.Int, ok bool)
}

// Router composes the per-hop greedy pricing decision (§4.4): at each
// hop it prices every configured V2 protocol against the V3 quoter and
// keeps the larger output, strictly preferring V2 on a tie because V2
// hops are cheaper in gas. It does not attempt a globally-optimal
// multi-hop search — that limitation is preserved as-is, not upgraded.
type Router struct {
	matrix    *entities.PoolMatrix
	v3        V3Quoter
	protocols []entities.V2ProtocolId
}

// NewRouter wires a Router against the shared pool matrix, the V3
// quoter, and the set of V2 protocols to compare at every hop.
func NewRouter(matrix *entities.PoolMatrix, v3 V3Quoter, protocols []entities.V2ProtocolId) *Router {
	return &Router{matrix: matrix, v3: v3, protocols: protocols}
}

// Evaluate prices a configured route hop by hop and returns the
// composed output amount plus the per-hop protocol selection
// (invariant 5, §8: len(Selection) == len(TokenPath) - 1).
func (r *Router) Evaluate(ctx context.Context, route entities.Route) (entities.RouteResult, error) {
	current := route.AmountIn
	selection := make([]entities.HopChoice, 0, len(route.TokenPath)-1)

	for i := 0; i+1 < len(route.TokenPath); i++ {
		tokenIn := route.TokenPath[i]
		tokenOut := route.TokenPath[i+1]

		bestV2Out, bestV2Protocol := r.bestV2(tokenIn, tokenOut, current)
		v3Fee, v3Out, v3Ok := r.v3.QuoteMulticall(
			ctx,
			entities.TokenByID(tokenIn).Address,
			entities.TokenByID(tokenOut).Address,
			current,
		)

		var choice entities.HopChoice
		next := bestV2Out
		choice = entities.HopChoice{Kind: entities.ProtocolV2, V2Protocol: bestV2Protocol}

		if v3Ok && v3Out.Gt(bestV2Out) {
			next = v3Out
			choice = entities.HopChoice{Kind: entities.ProtocolV3, V3Fee: v3Fee}
		}

		selection = append(selection, choice)
		current = next
		if ctx.Err() != nil {
			return entities.RouteResult{}, ctx.Err()
		}
	}

	return entities.RouteResult{AmountOut: current, Selection: selection}, nil
}

// bestV2 returns the largest amount_out across every configured V2
// protocol for this hop, plus which protocol produced it. Pools that
// were never discovered (EverInitialized == false) quote zero and so
// never win.
func (r *Router) bestV2(tokenIn, tokenOut entities.TokenId, amountIn *uint256.Int) (*uint256.Int, entities.V2ProtocolId) {
	best := new(uint256.Int)
	var bestProtocol entities.V2ProtocolId
	first := true

	for _, protocol := range r.protocols {
		out := r.matrix.GetAmountOut(protocol, tokenIn, tokenOut, amountIn)
		if first || out.Gt(best) {
			best = out
			bestProtocol = protocol
			first = false
		}
	}
	return best, bestProtocol
}
