package services

import (
	"context"
	"fmt"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/jsenthil/tsuki/internal/domain/entities"
	"github.com/jsenthil/tsuki/internal/metrics"
)

// SyncEventTopic is keccak256("Sync(uint112,uint112)"), the topic0 the
// event ingester filters on (§6).
var SyncEventTopic = common.HexToHash("0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1")

// LogSubscriber is the subset of *ethereum.Client the ingester depends
// on, narrowed for testability.
type LogSubscriber interface {
	SubscribeFilterLogs(ctx context.Context, q goethereum.FilterQuery, ch chan<- types.Log) (goethereum.Subscription, error)
}

// Ingester subscribes to the Sync log stream for every discovered pool
// and writes reserve updates into the pool matrix (§4.2). Updates to a
// single pool are applied in the exact order they arrive on the
// subscription; across pools, no ordering is guaranteed or required.
type Ingester struct {
	client  LogSubscriber
	lookup  *entities.PairLookup
	matrix  *entities.PoolMatrix
	log     zerolog.Logger
	watched []common.Address
}

// NewIngester wires an Ingester against the discovered pair addresses.
func NewIngester(client LogSubscriber, lookup *entities.PairLookup, matrix *entities.PoolMatrix, watched []common.Address, log zerolog.Logger) *Ingester {
	return &Ingester{client: client, lookup: lookup, matrix: matrix, watched: watched, log: log.With().Str("component", "ingester").Logger()}
}

// Run subscribes and processes logs until the context is cancelled or
// the subscription terminates. A terminated subscription is a terminal
// error for this task — it must be observable by the caller so a
// supervisor can restart it (§4.2, §7); it is never treated as a
// decode-level failure to swallow.
func (in *Ingester) Run(ctx context.Context) error {
	query := goethereum.FilterQuery{
		Addresses: in.watched,
		Topics:    [][]common.Hash{{SyncEventTopic}},
	}

	logs := make(chan types.Log)
	sub, err := in.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("services: subscribe sync logs: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("services: sync log subscription ended: %w", err)
		case entry := <-logs:
			in.handleLog(entry)
		}
	}
}

// handleLog decodes one Sync log and applies it to the matrix. A
// decode failure for this log is logged and skipped — never fatal
// (§4.2, §7).
func (in *Ingester) handleLog(entry types.Log) {
	info, found := in.lookup.Resolve(entry.Address)
	if !found {
		in.log.Debug().Str("pair", entry.Address.Hex()).Msg("sync log for unwatched pair address")
		return
	}

	reserve0, reserve1, err := decodeSyncData(entry.Data)
	if err != nil {
		in.log.Warn().Err(err).Str("pair", entry.Address.Hex()).Msg("failed to decode sync log")
		metrics.DecodeErrorsTotal.Inc()
		return
	}

	in.matrix.UpdateReserves(info.Protocol, info.Token0, info.Token1, reserve0, reserve1)
	metrics.ReserveUpdatesTotal.Inc()
}

// decodeSyncData decodes the Sync event payload: two 32-byte
// big-endian unsigned integers, reserve0 then reserve1 (§6).
func decodeSyncData(data []byte) (reserve0, reserve1 *uint256.Int, err error) {
	if len(data) != 64 {
		return nil, nil, fmt.Errorf("services: sync log data length %d, want 64", len(data))
	}
	reserve0 = new(uint256.Int).SetBytes(data[0:32])
	reserve1 = new(uint256.Int).SetBytes(data[32:64])
	return reserve0, reserve1, nil
}
