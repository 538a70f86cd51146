package entities

import "github.com/ethereum/go-ethereum/common"

// TokenId is a compact enum index into the token registry. Keeping tokens
// as small integers rather than addresses or strings is what makes the
// 3-D pool matrix viable as a flat, allocation-free array.
type TokenId uint8

const (
	USDC TokenId = iota
	USDT
	DAI
	WBTC
	WMATIC
	WETH
	numTokens
)

// Token is the immutable descriptor for one tracked fungible token.
type Token struct {
	Id       TokenId
	Address  common.Address
	Symbol   string
	Name     string
	Decimals uint8
}

// tokenRegistry is built once at process start and never mutated. Polygon
// mainnet addresses, matching the token set tracked by the arb engine.
var tokenRegistry = [numTokens]Token{
	USDC: {
		Id:       USDC,
		Address:  common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
	},
	USDT: {
		Id:       USDT,
		Address:  common.HexToAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"),
		Symbol:   "USDT",
		Name:     "Tether USD",
		Decimals: 6,
	},
	DAI: {
		Id:       DAI,
		Address:  common.HexToAddress("0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063"),
		Symbol:   "DAI",
		Name:     "Dai Stablecoin",
		Decimals: 18,
	},
	WBTC: {
		Id:       WBTC,
		Address:  common.HexToAddress("0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6"),
		Symbol:   "WBTC",
		Name:     "Wrapped BTC",
		Decimals: 8,
	},
	WMATIC: {
		Id:       WMATIC,
		Address:  common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"),
		Symbol:   "WMATIC",
		Name:     "Wrapped Matic",
		Decimals: 18,
	},
	WETH: {
		Id:       WETH,
		Address:  common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cff1b9f619"),
		Symbol:   "WETH",
		Name:     "Wrapped Ether",
		Decimals: 18,
	},
}

// NumTokens returns the size of the token registry.
func NumTokens() int {
	return int(numTokens)
}

// TokenByID returns the descriptor for a registered token id.
func TokenByID(id TokenId) Token {
	return tokenRegistry[id]
}

// AllTokens returns every registered token in id order.
func AllTokens() []Token {
	out := make([]Token, numTokens)
	copy(out, tokenRegistry[:])
	return out
}

// TokenByAddress resolves a token id from an on-chain address. The
// returned bool is false when the address is not tracked.
func TokenByAddress(addr common.Address) (TokenId, bool) {
	for _, t := range tokenRegistry {
		if t.Address == addr {
			return t.Id, true
		}
	}
	return 0, false
}
