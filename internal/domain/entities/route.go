package entities

import "github.com/holiman/uint256"

// ProtocolKind discriminates a per-hop protocol choice between the V2
// constant-product family and the V3 concentrated-liquidity AMM (§3,
// §6 "protocol_types").
type ProtocolKind uint8

const (
	ProtocolV2 ProtocolKind = iota
	ProtocolV3
)

// HopChoice records which protocol the routing engine selected for one
// hop (§4.4): V2Protocol is meaningful only when Kind == ProtocolV2,
// V3Fee only when Kind == ProtocolV3.
type HopChoice struct {
	Kind       ProtocolKind
	V2Protocol V2ProtocolId
	V3Fee      uint32
}

// Route is a configured (input_token, input_amount, token_path) to be
// evaluated every block (§3). TokenPath has length >= 2 and
// TokenPath[0] == InputToken.
type Route struct {
	InputToken TokenId
	AmountIn   *uint256.Int
	TokenPath  []TokenId
}

// RouteResult is the ephemeral output of one routing-engine evaluation
// (§3): the composed output amount plus the per-hop protocol choice.
// len(Selection) == len(path) - 1 always holds (invariant 5, §8).
type RouteResult struct {
	AmountOut *uint256.Int
	Selection []HopChoice
}
