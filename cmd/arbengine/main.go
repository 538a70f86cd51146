package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jsenthil/tsuki/internal/config"
	"github.com/jsenthil/tsuki/internal/domain/entities"
	"github.com/jsenthil/tsuki/internal/domain/services"
	"github.com/jsenthil/tsuki/internal/infrastructure/dex"
	chain "github.com/jsenthil/tsuki/internal/infrastructure/ethereum"
	"github.com/jsenthil/tsuki/internal/presentation/handlers"
	"github.com/jsenthil/tsuki/internal/submitter"
)

const version = "0.1.0"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialURL := cfg.RPCURL
	if cfg.UseIPC {
		dialURL = cfg.IPCPath
	}
	chainClient, err := chain.Dial(ctx, dialURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to node")
	}
	defer chainClient.Close()
	log.Info().Str("chain_id", chainClient.ChainID().String()).Msg("connected to node")

	v2Client := dex.NewV2Client(chainClient)
	v3Client := dex.NewV3Client(chainClient, entities.V3Config{
		QuoterAddress: entities.DefaultV3Config.QuoterAddress,
		FeeTiers:      cfg.V3FeeTiers,
	})

	matrix := entities.NewPoolMatrix()
	lookup := entities.NewPairLookup()

	watched, err := discoverPools(ctx, v2Client, cfg, matrix, lookup, log)
	if err != nil {
		log.Fatal().Err(err).Msg("pool discovery failed")
	}
	log.Info().Int("pools", len(watched)).Msg("discovery complete")

	router := services.NewRouter(matrix, v3Client, cfg.V2Protocols)
	txSubmitter := submitter.NewNoopSubmitter(log)
	evaluator := services.NewEvaluator(router, txSubmitter, cfg, estimatedGasUnits(cfg), log)
	ingester := services.NewIngester(chainClient, lookup, matrix, watched, log)
	mempoolMirror, err := services.NewMempoolMirror(cfg.MempoolCapacity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to allocate mempool mirror")
	}

	status := handlers.NewStatus(chainClient.ChainID().Uint64())
	status.SetConnected(true)

	go func() {
		status.SetIngesterRunning(true)
		defer status.SetIngesterRunning(false)
		if err := ingester.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("event ingester terminated")
		}
	}()

	go func() {
		status.SetMempoolRunning(true)
		defer status.SetMempoolRunning(false)
		runMempoolIngester(ctx, chainClient, mempoolMirror, log)
	}()

	go runBlockLoop(ctx, chainClient, evaluator, status, log)

	startOperationalServer(ctx, cfg.MetricsPort, status, log)
}

// discoverPools runs the one-time discovery pass (§4.3 contexts 1-2):
// pair addresses then reserves for every (protocol, tokenA, tokenB)
// combination in the configured token/protocol sets, populating the
// pair lookup and pool matrix before any reader or the ingester starts.
func discoverPools(ctx context.Context, v2Client *dex.V2Client, cfg *config.Config, matrix *entities.PoolMatrix, lookup *entities.PairLookup, log zerolog.Logger) ([]common.Address, error) {
	var queries []dex.PairAddressQuery
	for _, protocol := range cfg.V2Protocols {
		for i, tokenA := range cfg.Tokens {
			for _, tokenB := range cfg.Tokens[i+1:] {
				queries = append(queries, dex.PairAddressQuery{Protocol: protocol, Token0: tokenA, Token1: tokenB})
			}
		}
	}

	addresses, err := v2Client.DiscoverPairAddresses(ctx, queries)
	if err != nil {
		return nil, err
	}

	var watched []common.Address
	var liveQueries []dex.PairAddressQuery
	var livePairs []common.Address
	for i, addr := range addresses {
		if addr == chain.ZeroAddress {
			continue
		}
		liveQueries = append(liveQueries, queries[i])
		livePairs = append(livePairs, addr)
		watched = append(watched, addr)
	}

	reserves, err := v2Client.DiscoverReserves(ctx, livePairs)
	if err != nil {
		return nil, err
	}

	for i, q := range liveQueries {
		protocol := entities.V2ProtocolByID(q.Protocol)
		feeNum, feeDen := protocol.FeeNum, protocol.FeeDen
		if protocol.Variable {
			feeNum, feeDen = v2Client.DiscoverFee(ctx, livePairs[i])
		}

		token0, token1, _ := entities.OrderTokens(q.Token0, q.Token1)
		matrix.UpdateMetadata(q.Protocol, token0, token1, livePairs[i], feeNum, feeDen)
		matrix.UpdateReserves(q.Protocol, token0, token1, reserves[i].Reserve0, reserves[i].Reserve1)
		lookup.Add(livePairs[i], entities.PairInfo{Protocol: q.Protocol, Token0: token0, Token1: token1})

		log.Debug().
			Str("protocol", protocol.Name).
			Str("pair", livePairs[i].Hex()).
			Msg("discovered pool")
	}

	return watched, nil
}

// estimatedGasUnits is the constant gas estimate for an arb transaction
// (§4.5 point 3): a fixed 350000 units, not read from cfg and not
// estimated on-node.
func estimatedGasUnits(cfg *config.Config) uint64 {
	return 350000
}

// runBlockLoop is the block-driven evaluator's driving loop (§4.5,
// §5): subscribes to new heads and runs one evaluation pass per block.
func runBlockLoop(ctx context.Context, chainClient *chain.Client, evaluator *services.Evaluator, status *handlers.Status, log zerolog.Logger) {
	headers := make(chan *types.Header)
	sub, err := chainClient.SubscribeNewHead(ctx, headers)
	if err != nil {
		log.Error().Err(err).Msg("failed to subscribe to new heads")
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			log.Error().Err(err).Msg("new head subscription ended")
			return
		case header := <-headers:
			gasPrice, err := chainClient.SuggestGasPrice(ctx)
			sampledGasPrice := new(uint256.Int)
			if err == nil && gasPrice != nil {
				sampledGasPrice, _ = uint256.FromBig(gasPrice)
			}
			if err := evaluator.OnHeadBlock(ctx, header.Number.Uint64(), sampledGasPrice); err != nil {
				log.Error().Err(err).Uint64("block", header.Number.Uint64()).Msg("block evaluation failed")
			}
			status.SetLastBlock(header.Number.Uint64())
		}
	}
}

// runMempoolIngester mirrors pending transactions via the node's
// geth-specific full-pending-transaction subscription (§4.7). A
// decode failure for one pending tx is logged and skipped; stream
// termination ends this task, observable via the log line below.
func runMempoolIngester(ctx context.Context, chainClient *chain.Client, mirror *services.MempoolMirror, log zerolog.Logger) {
	gc := gethclient.New(chainClient.RPC())

	pending := make(chan *types.Transaction)
	sub, err := gc.SubscribeFullPendingTransactions(ctx, pending)
	if err != nil {
		log.Warn().Err(err).Msg("mempool mirror disabled: node does not support pending tx subscription")
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			log.Error().Err(err).Msg("mempool subscription ended")
			return
		case tx := <-pending:
			if tx == nil {
				continue
			}
			gasPrice, _ := uint256.FromBig(tx.GasPrice())
			maxFeePerGas, _ := uint256.FromBig(tx.GasFeeCap())
			mirror.Push(entities.NewMempoolEntry(tx.Hash(), gasPrice, maxFeePerGas))
		}
	}
}

// startOperationalServer serves /healthz and /metrics only — the
// engine has no quote-on-demand HTTP API (§2, DESIGN.md).
func startOperationalServer(ctx context.Context, port string, status *handlers.Status, log zerolog.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", handlers.NewHealthHandler(version, status).Health)
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Msg("serving /healthz and /metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("operational server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("operational server shutdown error")
	}
	log.Info().Msg("shut down")
}
