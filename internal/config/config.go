// Package config builds the engine's Config. Transport, gas-bump,
// native-price, mempool, route, flash-loan and key settings come from
// the environment, following the teacher's getEnv-with-default idiom
// (cmd/api/main.go) and loading a .env file via godotenv first so local
// development doesn't require exporting a dozen variables by hand. The
// token set, V2 protocol set, V3 fee tiers and per-token minimum
// profits are built-in defaults and are not read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/joho/godotenv"

	"github.com/jsenthil/tsuki/internal/domain/entities"
)

// RouteConfig is one configured (amount_in, token_path) entry (§6).
type RouteConfig struct {
	AmountIn  *uint256.Int
	TokenPath []entities.TokenId
}

// Config holds every option enumerated in spec.md §6.
type Config struct {
	UseIPC      bool
	RPCURL      string
	IPCPath     string
	MetricsPort string

	Tokens      []entities.TokenId
	V2Protocols []entities.V2ProtocolId
	Routes      []RouteConfig

	GasBumpNumerator   uint64
	GasBumpDenominator uint64
	NativePricePct     uint64
	MinProfit          map[entities.TokenId]*uint256.Int

	MempoolCapacity int
	V3FeeTiers      []uint32

	FlashloanContractAddress common.Address
	PrivateKey               string
}

// Load reads a .env file if present (missing is not an error — the
// teacher's env vars may already be exported by the process
// environment) and builds a Config, failing fast on anything spec.md
// §7 calls a config error (fatal at startup, never in steady state).
func Load() (*Config, error) {
	_ = godotenv.Load()

	useIPC := getEnvBool("USE_IPC", false)
	rpcURL := getEnv("RPC_URL", "")
	ipcPath := getEnv("IPC_PATH", "")
	if useIPC && ipcPath == "" {
		return nil, fmt.Errorf("config: USE_IPC=true requires IPC_PATH")
	}
	if !useIPC && rpcURL == "" {
		return nil, fmt.Errorf("config: RPC_URL is required when USE_IPC=false")
	}

	gasBumpNum, err := getEnvUint("GAS_BUMP_NUMERATOR", 130)
	if err != nil {
		return nil, err
	}
	gasBumpDen, err := getEnvUint("GAS_BUMP_DENOMINATOR", 100)
	if err != nil {
		return nil, err
	}
	nativePricePct, err := getEnvUint("NATIVE_PRICE_PCT", 85)
	if err != nil {
		return nil, err
	}
	if nativePricePct > 100 {
		return nil, fmt.Errorf("config: NATIVE_PRICE_PCT must be 0-100, got %d", nativePricePct)
	}

	mempoolCapacity, err := getEnvUint("MEMPOOL_CAPACITY", 1000)
	if err != nil {
		return nil, err
	}

	flashloanAddr := getEnv("FLASHLOAN_CONTRACT_ADDRESS", "")
	if flashloanAddr == "" {
		return nil, fmt.Errorf("config: FLASHLOAN_CONTRACT_ADDRESS is required")
	}
	if !common.IsHexAddress(flashloanAddr) {
		return nil, fmt.Errorf("config: FLASHLOAN_CONTRACT_ADDRESS is not a valid address: %q", flashloanAddr)
	}

	privateKey := getEnv("PRIVATE_KEY", "")
	if privateKey == "" {
		return nil, fmt.Errorf("config: PRIVATE_KEY is required")
	}

	tokens := entities.AllTokens()
	tokenIDs := make([]entities.TokenId, len(tokens))
	for i, t := range tokens {
		tokenIDs[i] = t.Id
	}

	protocols := entities.AllV2Protocols()
	protocolIDs := make([]entities.V2ProtocolId, len(protocols))
	for i, p := range protocols {
		protocolIDs[i] = p.Id
	}

	routes, err := parseRoutes(getEnv("ROUTES", ""))
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("config: ROUTES must configure at least one route")
	}

	minProfit, err := defaultMinProfit()
	if err != nil {
		return nil, err
	}

	return &Config{
		UseIPC:                   useIPC,
		RPCURL:                   rpcURL,
		IPCPath:                  ipcPath,
		MetricsPort:              getEnv("METRICS_PORT", "9090"),
		Tokens:                   tokenIDs,
		V2Protocols:              protocolIDs,
		Routes:                   routes,
		GasBumpNumerator:         gasBumpNum,
		GasBumpDenominator:       gasBumpDen,
		NativePricePct:           nativePricePct,
		MinProfit:                minProfit,
		MempoolCapacity:          int(mempoolCapacity),
		V3FeeTiers:               entities.DefaultV3Config.FeeTiers,
		FlashloanContractAddress: common.HexToAddress(flashloanAddr),
		PrivateKey:               privateKey,
	}, nil
}

// defaultMinProfit encodes the default per-token thresholds observed
// in spec.md §4.5: USDC/USDT/DAI/WMATIC >= 0.01 of unit, WETH >=
// 0.00005 of unit, everything else rejected (absent from the map).
func defaultMinProfit() (map[entities.TokenId]*uint256.Int, error) {
	usdcUnit := pow10(entities.TokenByID(entities.USDC).Decimals)
	wethUnit := pow10(entities.TokenByID(entities.WETH).Decimals)

	hundredth := func(unit *uint256.Int) *uint256.Int {
		return new(uint256.Int).Div(unit, uint256.NewInt(100))
	}

	return map[entities.TokenId]*uint256.Int{
		entities.USDC:   hundredth(usdcUnit),
		entities.USDT:   hundredth(pow10(entities.TokenByID(entities.USDT).Decimals)),
		entities.DAI:    hundredth(pow10(entities.TokenByID(entities.DAI).Decimals)),
		entities.WMATIC: hundredth(pow10(entities.TokenByID(entities.WMATIC).Decimals)),
		entities.WETH:   new(uint256.Int).Div(wethUnit, uint256.NewInt(20000)), // 0.00005 = 1/20000
	}, nil
}

func pow10(exp uint8) *uint256.Int {
	result := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < exp; i++ {
		result = new(uint256.Int).Mul(result, ten)
	}
	return result
}

// parseRoutes parses ROUTES as a ";"-separated list of
// "amount_in:TOKEN,TOKEN,..." entries, e.g.
// "1000000000:USDC,WETH,USDC;500000000:USDC,WBTC,USDC".
func parseRoutes(raw string) ([]RouteConfig, error) {
	if raw == "" {
		return nil, nil
	}

	var routes []RouteConfig
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("config: malformed route entry %q", entry)
		}
		amountIn, err := uint256.FromDecimal(parts[0])
		if err != nil {
			return nil, fmt.Errorf("config: route amount_in %q: %w", parts[0], err)
		}

		symbols := strings.Split(parts[1], ",")
		if len(symbols) < 2 {
			return nil, fmt.Errorf("config: route token path %q needs at least 2 tokens", parts[1])
		}
		path := make([]entities.TokenId, len(symbols))
		for i, sym := range symbols {
			id, ok := tokenIDBySymbol(strings.TrimSpace(sym))
			if !ok {
				return nil, fmt.Errorf("config: unknown token symbol %q", sym)
			}
			path[i] = id
		}

		routes = append(routes, RouteConfig{AmountIn: amountIn, TokenPath: path})
	}
	return routes, nil
}

func tokenIDBySymbol(symbol string) (entities.TokenId, bool) {
	for _, t := range entities.AllTokens() {
		if strings.EqualFold(t.Symbol, symbol) {
			return t.Id, true
		}
	}
	return 0, false
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvUint(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, value)
	}
	return parsed, nil
}
