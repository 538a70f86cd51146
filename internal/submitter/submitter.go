// Package submitter defines the boundary to the external wallet signer
// and transaction submitter. The real signer is out of scope (§1); this
// package only specifies the interface the evaluator depends on and a
// no-op implementation suitable for dry runs and tests.
package submitter

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/jsenthil/tsuki/internal/domain/entities"
)

// Submitter dispatches a constructed arb-parameter set as a flash-loan
// transaction and returns the resulting transaction hash. Implementations
// are expected to await at least one confirmation before returning,
// per spec.md §4.5.3.
type Submitter interface {
	Submit(ctx context.Context, params entities.ArbParams) (common.Hash, error)
}

// NoopSubmitter logs the params it would have submitted and returns a
// synthetic hash derived from nothing on-chain. Used for dry-run
// operation and as a default before a real signer is wired in.
type NoopSubmitter struct {
	log zerolog.Logger
}

// NewNoopSubmitter builds a NoopSubmitter.
func NewNoopSubmitter(log zerolog.Logger) *NoopSubmitter {
	return &NoopSubmitter{log: log.With().Str("component", "submitter").Logger()}
}

// Submit logs the arb params at info level and returns a zero hash; it
// never touches the network.
func (s *NoopSubmitter) Submit(ctx context.Context, params entities.ArbParams) (common.Hash, error) {
	s.log.Info().
		Str("amount_in", params.AmountIn.String()).
		Int("hops", len(params.ProtocolTypes)).
		Msg("dry-run: would submit arb transaction")
	return common.Hash{}, nil
}
