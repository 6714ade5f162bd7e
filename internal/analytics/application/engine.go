// Package application orchestrates the analytics pipeline over raw
// ledger snapshots and caches results per snapshot generation.
package application

import (
	"context"
	"errors"
	"time"

	"ledger-insight/internal/analytics/domain/aging"
	"ledger-insight/internal/analytics/domain/concentration"
	"ledger-insight/internal/analytics/domain/recommend"
	"ledger-insight/internal/analytics/domain/reconcile"
	"ledger-insight/internal/analytics/domain/scoring"
	"ledger-insight/internal/analytics/domain/trend"
	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/normalize"
)

var (
	// ErrNilSnapshot is returned when computing over a nil snapshot.
	ErrNilSnapshot = errors.New("analytics: nil snapshot")
	// ErrZeroReferenceDate is returned when no reference date is given.
	// The engine never substitutes "now"; reproducibility requires an
	// explicit reference date from the caller.
	ErrZeroReferenceDate = errors.New("analytics: zero reference date")
)

// Result is the full analytics output for one dataset snapshot.
type Result struct {
	Kind            ledger.DatasetKind         `json:"kind"`
	ReferenceDate   time.Time                  `json:"reference_date"`
	Generation      uint64                     `json:"-"`
	Fingerprint     string                     `json:"-"`
	Aging           aging.Report               `json:"aging"`
	Scores          []scoring.Score            `json:"scores"`
	Monthly         []trend.MonthlyPoint       `json:"monthly"`
	Trends          []trend.CounterpartyTrend  `json:"trends"`
	Concentration   concentration.Report       `json:"concentration"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Diagnostics     normalize.Diagnostics      `json:"diagnostics"`
}

// Engine runs the deterministic pipeline: normalize, reconcile, then the
// four analyzers and the recommendation rules. It holds no mutable state;
// identical inputs produce identical outputs.
type Engine struct {
	cfg Config
}

// NewEngine constructs an engine with the given pipeline config.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute runs the full pipeline over a snapshot. The context is checked
// between stages so superseded computations stop early instead of burning
// through tens of thousands of bills for a discarded result.
func (e *Engine) Compute(ctx context.Context, snapshot *ledger.Snapshot, referenceDate time.Time) (*Result, error) {
	if snapshot == nil {
		return nil, ErrNilSnapshot
	}
	if referenceDate.IsZero() {
		return nil, ErrZeroReferenceDate
	}

	result := &Result{
		Kind:          snapshot.Kind,
		ReferenceDate: referenceDate,
		Generation:    snapshot.Generation,
		Fingerprint:   snapshot.Fingerprint(),
	}

	reconciled := reconcile.Join(snapshot.Bills, snapshot.Payments)
	result.Diagnostics = reconciled.Diagnostics
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Aging = aging.Bucketize(reconciled.Bills, referenceDate, e.cfg.BoundsFor(snapshot.Kind))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Scores = scoring.Compute(reconciled.Bills, scoring.Params{
		Weights:        e.cfg.ScoreWeights,
		Bands:          e.cfg.ScoreBands,
		MaterialityPct: e.cfg.MaterialityPct,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Monthly = trend.MonthlySeries(reconciled.Bills, e.cfg.TrendMaxPeriods)
	result.Trends = trend.Classify(reconciled.Bills, trend.Params{
		RecentWindow:  e.cfg.TrendRecentWindow,
		DiffThreshold: e.cfg.TrendDiffThreshold,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Concentration = concentration.Analyze(reconciled.Bills, e.cfg.ConcentrationTopN)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Recommendations = recommend.Generate(recommend.Inputs{
		Bills:         reconciled.Bills,
		Scores:        result.Scores,
		Concentration: result.Concentration,
		ReferenceDate: referenceDate,
	}, e.cfg.Rules)

	return result, nil
}
