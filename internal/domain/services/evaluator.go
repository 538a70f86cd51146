package services

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jsenthil/tsuki/internal/config"
	"github.com/jsenthil/tsuki/internal/domain/entities"
	"github.com/jsenthil/tsuki/internal/metrics"
	"github.com/jsenthil/tsuki/internal/submitter"
)

// RouteEvaluator is the routing-engine surface the block evaluator
// fans a route out to.
type RouteEvaluator interface {
	Evaluate(ctx context.Context, route entities.Route) (entities.RouteResult, error)
}

// Evaluator is the block-driven evaluator (§4.5): on every new head
// block it fans every configured route out through the routing engine
// (one errgroup task per route, generalizing the teacher's bare
// sync.WaitGroup fan-out in price_service.go.GetPrices), filters by
// absolute profit threshold then by gas-cost profitability, constructs
// arb params for the first profitable route in iteration order, and
// hands them to the external submitter.
type Evaluator struct {
	router    RouteEvaluator
	submitter submitter.Submitter
	routes    []configuredRoute
	cfg       *config.Config
	log       zerolog.Logger
}

type configuredRoute struct {
	route    entities.Route
	gasUnits uint64
}

// NewEvaluator builds an Evaluator over the given routes. gasUnits
// provides a constant estimated-gas figure per route (§4.5: "estimated
// gas is either a configured constant or the result of an on-node gas
// estimation" — this implementation takes the constant form).
func NewEvaluator(router RouteEvaluator, sub submitter.Submitter, cfg *config.Config, gasUnits uint64, log zerolog.Logger) *Evaluator {
	routes := make([]configuredRoute, len(cfg.Routes))
	for i, rc := range cfg.Routes {
		routes[i] = configuredRoute{
			route: entities.Route{
				InputToken: rc.TokenPath[0],
				AmountIn:   rc.AmountIn,
				TokenPath:  rc.TokenPath,
			},
			gasUnits: gasUnits,
		}
	}
	return &Evaluator{
		router:    router,
		submitter: sub,
		routes:    routes,
		cfg:       cfg,
		log:       log.With().Str("component", "evaluator").Logger(),
	}
}

// routeOutcome is the per-route result of one block evaluation fan-out.
type routeOutcome struct {
	index  int
	result entities.RouteResult
	err    error
}

// OnHeadBlock runs one full evaluation pass for a new head block:
// sample the bumped gas price, fan every route out concurrently, then
// walk results in configured (not completion) order so the first
// profitable route wins deterministically, matching §4.5 point 3
// ("first profitable route in evaluator iteration order wins").
func (e *Evaluator) OnHeadBlock(ctx context.Context, blockNumber uint64, sampledGasPrice *uint256.Int) error {
	start := time.Now()
	defer func() {
		metrics.BlockEvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	bumpedGasPrice := e.bumpGasPrice(sampledGasPrice)

	group, groupCtx := errgroup.WithContext(ctx)
	outcomes := make([]routeOutcome, len(e.routes))

	for i, cr := range e.routes {
		i, cr := i, cr
		group.Go(func() error {
			result, err := e.router.Evaluate(groupCtx, cr.route)
			outcomes[i] = routeOutcome{index: i, result: result, err: err}
			return nil
		})
	}
	// Errors from individual routes are per-task information, not a
	// reason to abort the whole fan-out — so Go() above always returns
	// nil and errors are inspected per-outcome below. Wait only
	// synchronizes completion.
	_ = group.Wait()

	for i, cr := range e.routes {
		outcome := outcomes[i]
		if outcome.err != nil {
			e.log.Warn().Err(outcome.err).Int("route", i).Msg("route evaluation failed")
			metrics.RouteEvaluations.WithLabelValues("error").Inc()
			continue
		}

		submitted, err := e.considerRoute(ctx, blockNumber, i, cr, outcome.result, bumpedGasPrice)
		if err != nil {
			e.log.Error().Err(err).Int("route", i).Msg("arb submission failed")
			metrics.SubmissionsTotal.WithLabelValues("error").Inc()
			continue
		}
		if submitted {
			e.log.Info().Int("route", i).Uint64("block", blockNumber).Msg("submitted arb transaction")
			return nil
		}
	}

	return nil
}

// considerRoute applies the profit threshold gate then the gas-cost
// gate (§4.5 point 3) and submits if both pass. Returns true when a
// transaction was submitted for this route.
func (e *Evaluator) considerRoute(ctx context.Context, blockNumber uint64, index int, cr configuredRoute, result entities.RouteResult, bumpedGasPrice *uint256.Int) (bool, error) {
	if result.AmountOut == nil || !result.AmountOut.Gt(cr.route.AmountIn) {
		metrics.RouteEvaluations.WithLabelValues("unprofitable").Inc()
		return false, nil
	}

	profit := new(uint256.Int).Sub(result.AmountOut, cr.route.AmountIn)

	minProfit, ok := e.cfg.MinProfit[cr.route.InputToken]
	if !ok || profit.Lt(minProfit) {
		metrics.RouteEvaluations.WithLabelValues("below_min_profit").Inc()
		return false, nil
	}

	token := entities.TokenByID(cr.route.InputToken)
	normalizedProfit := normalizeToE18(profit, token.Decimals)

	txnFee := new(uint256.Int).Mul(bumpedGasPrice, uint256.NewInt(cr.gasUnits))
	normalizedFee := normalizeFeeToE18(txnFee, e.cfg.NativePricePct)

	if !normalizedProfit.Gt(normalizedFee) {
		metrics.RouteEvaluations.WithLabelValues("below_gas_cost").Inc()
		return false, nil
	}

	params, err := e.buildArbParams(cr.route, result)
	if err != nil {
		return false, err
	}

	metrics.RouteEvaluations.WithLabelValues("profitable").Inc()

	if _, err := e.submitter.Submit(ctx, params); err != nil {
		return false, err
	}
	metrics.SubmissionsTotal.WithLabelValues("submitted").Inc()
	return true, nil
}

// bumpGasPrice applies the configured rational gas-bump multiplier
// (§4.5 point 1, §6 gas_bump_numerator/denominator).
func (e *Evaluator) bumpGasPrice(sampled *uint256.Int) *uint256.Int {
	if sampled == nil || sampled.IsZero() {
		return new(uint256.Int)
	}
	bumped := new(uint256.Int).Mul(sampled, uint256.NewInt(e.cfg.GasBumpNumerator))
	return bumped.Div(bumped, uint256.NewInt(e.cfg.GasBumpDenominator))
}

// normalizeToE18 scales a profit figure expressed in token units to an
// 18-decimal common scale (§4.5 point 3).
func normalizeToE18(amount *uint256.Int, decimals uint8) *uint256.Int {
	if decimals >= 18 {
		return new(uint256.Int).Set(amount)
	}
	scale := pow10(18 - decimals)
	return new(uint256.Int).Mul(amount, scale)
}

// normalizeFeeToE18 converts a gas-denominated fee (already in the
// chain native token's 18-decimal units) into the common scale via the
// configured native_price_pct integer percentage (§4.5 point 3, §6).
func normalizeFeeToE18(txnFee *uint256.Int, nativePricePct uint64) *uint256.Int {
	scaled := new(uint256.Int).Mul(txnFee, uint256.NewInt(nativePricePct))
	return scaled.Div(scaled, uint256.NewInt(100))
}

func pow10(exp uint8) *uint256.Int {
	result := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := uint8(0); i < exp; i++ {
		result = new(uint256.Int).Mul(result, ten)
	}
	return result
}

// buildArbParams constructs the external submitter's wire shape (§6)
// from a route and its routing-engine result.
func (e *Evaluator) buildArbParams(route entities.Route, result entities.RouteResult) (entities.ArbParams, error) {
	tokenPath := make([]common.Address, len(route.TokenPath))
	for i, id := range route.TokenPath {
		tokenPath[i] = entities.TokenByID(id).Address
	}

	protocolPath := make([]common.Address, len(result.Selection))
	protocolTypes := make([]uint8, len(result.Selection))
	fees := make([]uint32, len(result.Selection))

	for i, choice := range result.Selection {
		switch choice.Kind {
		case entities.ProtocolV2:
			protocolPath[i] = entities.V2ProtocolByID(choice.V2Protocol).RouterAddress
			protocolTypes[i] = uint8(entities.ProtocolV2)
			fees[i] = 0
		case entities.ProtocolV3:
			protocolPath[i] = entities.DefaultV3Config.QuoterAddress
			protocolTypes[i] = uint8(entities.ProtocolV3)
			fees[i] = choice.V3Fee
		}
	}

	return entities.ArbParams{
		AmountIn:      route.AmountIn,
		TokenPath:     tokenPath,
		ProtocolPath:  protocolPath,
		ProtocolTypes: protocolTypes,
		Fees:          fees,
	}, nil
}
