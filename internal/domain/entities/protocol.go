package entities

import "github.com/ethereum/go-ethereum/common"

// V2ProtocolId is a compact enum index into the constant-product AMM
// protocol registry.
type V2ProtocolId uint8

const (
	Sushiswap V2ProtocolId = iota
	Quickswap
	Polycat
	Apeswap
	numV2Protocols
)

// V2Protocol is the immutable descriptor for one constant-product AMM
// variant: router, factory, and the fee numerator/denominator used by
// PoolRecord.GetAmountOut (§4.1). FeeNum < FeeDen and both are > 0.
//
// Variable carries the "variable-fee variant" flag (§9, last bullet):
// when true, the per-pool fee is queried from the pool contract at
// discovery instead of taken from this static descriptor; when that
// query reverts, the pool uses DefaultV2FeeNum/DefaultV2FeeDen, not the
// FeeNum/FeeDen here.
type V2Protocol struct {
	Id             V2ProtocolId
	Name           string
	RouterAddress  common.Address
	FactoryAddress common.Address
	FeeNum         uint64
	FeeDen         uint64
	Variable       bool
}

var v2ProtocolRegistry = [numV2Protocols]V2Protocol{
	Sushiswap: {
		Id:             Sushiswap,
		Name:           "Sushiswap",
		RouterAddress:  common.HexToAddress("0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"),
		FactoryAddress: common.HexToAddress("0xc35DADB65012eC5796536bD9864eD8773aBc74C4"),
		FeeNum:         3,
		FeeDen:         1000,
	},
	Quickswap: {
		Id:             Quickswap,
		Name:           "Quickswap",
		RouterAddress:  common.HexToAddress("0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"),
		FactoryAddress: common.HexToAddress("0x5757371414417b8C6CAad45bAeF941aBc7d3Ab32"),
		FeeNum:         3,
		FeeDen:         1000,
	},
	Polycat: {
		Id:             Polycat,
		Name:           "Polycat",
		RouterAddress:  common.HexToAddress("0x94930a328162957FF1dd48900aF67B5439336cBD"),
		FactoryAddress: common.HexToAddress("0x477Ce834Ae6b7aB003cCe4BC4d8697763FF456FA"),
		FeeNum:         24,
		FeeDen:         10000,
	},
	Apeswap: {
		Id:             Apeswap,
		Name:           "Apeswap",
		RouterAddress:  common.HexToAddress("0xC0788A3aD43d79aa53B09c2EaCc313A787d1d607"),
		FactoryAddress: common.HexToAddress("0xCf083Be4164828f00cAE704EC15a36D711491284"),
		FeeNum:         2,
		FeeDen:         1000,
	},
}

// NumV2Protocols returns the size of the V2 protocol registry.
func NumV2Protocols() int {
	return int(numV2Protocols)
}

// V2ProtocolByID returns the descriptor for a registered V2 protocol id.
func V2ProtocolByID(id V2ProtocolId) V2Protocol {
	return v2ProtocolRegistry[id]
}

// AllV2Protocols returns every registered V2 protocol in id order.
func AllV2Protocols() []V2Protocol {
	out := make([]V2Protocol, numV2Protocols)
	copy(out, v2ProtocolRegistry[:])
	return out
}

// DefaultV2FeeNum/DefaultV2FeeDen are the fallback (feeNum, feeDen) used for the variable-fee
// variant when its on-chain fee() view reverts at discovery (§9).
const (
	DefaultV2FeeNum = 3
	DefaultV2FeeDen = 1000
)

// V3Config is the immutable descriptor for the concentrated-liquidity
// AMM: quoter address plus the ordered, strictly-increasing set of
// candidate fee tiers probed by quote_multicall (§4.6).
type V3Config struct {
	QuoterAddress common.Address
	FeeTiers      []uint32
}

// DefaultV3Config is the Uniswap V3 QuoterV2 deployment on Polygon with
// its four standard fee tiers, in hundredths of a bip.
var DefaultV3Config = V3Config{
	QuoterAddress: common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"),
	FeeTiers:      []uint32{100, 500, 3000, 10000},
}
