// Package dex implements the on-chain read paths for both pool
// families named in the spec: the V2 constant-product AMMs (pair
// discovery, reserves) and the V3 concentrated-liquidity AMM (quoting).
package dex

import (
	"context"
	"fmt"
	"math/big"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/jsenthil/tsuki/internal/domain/entities"
	chain "github.com/jsenthil/tsuki/internal/infrastructure/ethereum"
)

// Function selectors, keccak256(signature)[:4]. Kept as raw bytes in
// the teacher's manual-calldata style rather than going through
// abigen-generated bindings (no ABI json is vendored for this engine).
var (
	getReservesSelector = common.Hex2Bytes("0902f1ac") // getReserves()
	getPairSelector     = common.Hex2Bytes("e6a43905") // getPair(address,address)
	feeSelector         = common.Hex2Bytes("ddca3f43") // fee() — variable-fee variant probe
)

func buildFeeCallMsg(pairAddress common.Address) goethereum.CallMsg {
	return goethereum.CallMsg{To: &pairAddress, Data: feeSelector}
}

// V2Client discovers pairs and fetches reserves for the constant-product
// AMM family (§4.3 contexts 1-2), batching both through the shared
// BatchedViewCallClient instead of one RPC round-trip per pair.
type V2Client struct {
	chainClient *chain.Client
	batch       *chain.BatchedViewCallClient
}

// NewV2Client wires a V2Client against a connected chain client.
func NewV2Client(chainClient *chain.Client) *V2Client {
	return &V2Client{
		chainClient: chainClient,
		batch:       chain.NewBatchedViewCallClient(chainClient.RPC()),
	}
}

// pairAddressCallData encodes getPair(token0, token1).
func pairAddressCallData(token0, token1 common.Address) []byte {
	data := make([]byte, 4+64)
	copy(data[0:4], getPairSelector)
	copy(data[4+12:4+32], token0.Bytes())
	copy(data[4+32+12:4+64], token1.Bytes())
	return data
}

// DiscoverPairAddresses batches getPair across every (protocol, tokenA,
// tokenB) combination requested, preserving call order (§4.3 context
// 1). A failed or zero-address call resolves to chain.ZeroAddress.
func (c *V2Client) DiscoverPairAddresses(ctx context.Context, queries []PairAddressQuery) ([]common.Address, error) {
	calls := make([]chain.ViewCall, len(queries))
	for i, q := range queries {
		protocol := entities.V2ProtocolByID(q.Protocol)
		token0, token1, _ := entities.OrderTokens(q.Token0, q.Token1)
		calls[i] = chain.ViewCall{
			Target: protocol.FactoryAddress,
			Data:   pairAddressCallData(entities.TokenByID(token0).Address, entities.TokenByID(token1).Address),
		}
	}

	results, err := c.batch.BatchCall(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("dex: discover pair addresses: %w", err)
	}

	addresses := make([]common.Address, len(queries))
	for i, res := range results {
		if !res.Success || len(res.Data) < 32 {
			addresses[i] = chain.ZeroAddress
			continue
		}
		addresses[i] = common.BytesToAddress(res.Data[12:32])
	}
	return addresses, nil
}

// PairAddressQuery is one (protocol, tokenA, tokenB) discovery request.
type PairAddressQuery struct {
	Protocol entities.V2ProtocolId
	Token0   entities.TokenId
	Token1   entities.TokenId
}

// Reserves is the decoded result of getReserves() for one pair.
type Reserves struct {
	Reserve0 *uint256.Int
	Reserve1 *uint256.Int
}

// DiscoverReserves batches getReserves across the supplied pair
// addresses (§4.3 context 2). A failed call resolves to zero reserves.
func (c *V2Client) DiscoverReserves(ctx context.Context, pairAddresses []common.Address) ([]Reserves, error) {
	calls := make([]chain.ViewCall, len(pairAddresses))
	for i, addr := range pairAddresses {
		calls[i] = chain.ViewCall{Target: addr, Data: getReservesSelector}
	}

	results, err := c.batch.BatchCall(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("dex: discover reserves: %w", err)
	}

	reserves := make([]Reserves, len(pairAddresses))
	for i, res := range results {
		if !res.Success || len(res.Data) < 64 {
			reserves[i] = Reserves{Reserve0: new(uint256.Int), Reserve1: new(uint256.Int)}
			continue
		}
		reserves[i] = Reserves{
			Reserve0: new(uint256.Int).SetBytes(res.Data[0:32]),
			Reserve1: new(uint256.Int).SetBytes(res.Data[32:64]),
		}
	}
	return reserves, nil
}

// DiscoverFee probes the per-pool fee() view used by the variable-fee
// protocol variant (§9, last bullet). When the call reverts or returns
// an unparsable result, it returns the default (3, 1000) — callers
// should only invoke this for protocols marked V2Protocol.Variable.
func (c *V2Client) DiscoverFee(ctx context.Context, pairAddress common.Address) (feeNum, feeDen uint64) {
	result, err := c.chainClient.CallContract(ctx, buildFeeCallMsg(pairAddress))
	if err != nil || len(result) < 32 {
		return entities.DefaultV2FeeNum, entities.DefaultV2FeeDen
	}
	fee := new(big.Int).SetBytes(result[0:32])
	if !fee.IsUint64() || fee.Uint64() >= 10000 {
		return entities.DefaultV2FeeNum, entities.DefaultV2FeeDen
	}
	return fee.Uint64(), 10000
}
