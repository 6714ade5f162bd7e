// Package scoring computes weighted composite performance scores per
// counterparty from reconciled bills.
package scoring

import (
	"sort"

	"ledger-insight/internal/analytics/domain/reconcile"
)

// Band is the status band derived from a score.
type Band string

const (
	BandExcellent      Band = "Excellent"
	BandGood           Band = "Good"
	BandAverage        Band = "Average"
	BandNeedsAttention Band = "Needs Attention"
)

// Weights holds the composite score coefficients. Zero-value weights are
// replaced by DefaultWeights.
type Weights struct {
	OverduePenalty    float64 `yaml:"overdue_penalty"`
	SpeedBonusBase    float64 `yaml:"speed_bonus_base"`
	SpeedDivisor      float64 `yaml:"speed_divisor"`
	CompletionWeight  float64 `yaml:"completion_weight"`
	ReliabilityWeight float64 `yaml:"reliability_weight"`
}

// DefaultWeights are the production score coefficients.
func DefaultWeights() Weights {
	return Weights{
		OverduePenalty:    1.5,
		SpeedBonusBase:    30,
		SpeedDivisor:      5,
		CompletionWeight:  0.3,
		ReliabilityWeight: 0.2,
	}
}

// BandThresholds maps score floors to bands.
type BandThresholds struct {
	Excellent float64 `yaml:"excellent"`
	Good      float64 `yaml:"good"`
	Average   float64 `yaml:"average"`
}

// DefaultBandThresholds are the production band floors.
func DefaultBandThresholds() BandThresholds {
	return BandThresholds{Excellent: 90, Good: 75, Average: 60}
}

// BandFor resolves the band for a score.
func (b BandThresholds) BandFor(score float64) Band {
	switch {
	case score >= b.Excellent:
		return BandExcellent
	case score >= b.Good:
		return BandGood
	case score >= b.Average:
		return BandAverage
	default:
		return BandNeedsAttention
	}
}

// Score is a counterparty's composite performance result together with
// its contributing metrics.
type Score struct {
	CounterpartyID   string  `json:"counterparty_id"`
	CounterpartyName string  `json:"counterparty_name"`
	Score            float64 `json:"score"`
	Band             Band    `json:"band"`
	OverdueRate      float64 `json:"overdue_rate"`
	CompletionRate   float64 `json:"completion_rate"`
	AvgPaymentDays   float64 `json:"avg_payment_days"`
	Reliability      float64 `json:"reliability"`
	TotalBills       int     `json:"total_bills"`
	TotalBilled      float64 `json:"total_billed"`
	TotalPaid        float64 `json:"total_paid"`
	SpendShare       float64 `json:"spend_share"`
}

// Params configures a scorer run.
type Params struct {
	Weights Weights
	Bands   BandThresholds
	// MaterialityPct excludes counterparties whose billed share is below
	// this percentage of total spend from the scorecard. They still count
	// toward totals and shares.
	MaterialityPct float64
}

// Compute scores every counterparty and returns the scorecard ordered by
// score descending, ties by id. Counterparties below the materiality
// threshold are omitted from the returned slice.
func Compute(bills []reconcile.Bill, params Params) []Score {
	if params.Weights == (Weights{}) {
		params.Weights = DefaultWeights()
	}
	if params.Bands == (BandThresholds{}) {
		params.Bands = DefaultBandThresholds()
	}

	var totalBilled float64
	for _, bill := range bills {
		totalBilled += bill.BilledAmount
	}

	groups, ids := reconcile.GroupByCounterparty(bills)
	scores := make([]Score, 0, len(ids))
	for _, id := range ids {
		score := scoreCounterparty(id, groups[id], params.Weights, params.Bands)
		if totalBilled > 0 {
			score.SpendShare = score.TotalBilled / totalBilled * 100
		}
		if score.SpendShare < params.MaterialityPct {
			continue
		}
		scores = append(scores, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].CounterpartyID < scores[j].CounterpartyID
	})
	return scores
}

func scoreCounterparty(id string, bills []reconcile.Bill, weights Weights, bands BandThresholds) Score {
	score := Score{CounterpartyID: id, CounterpartyName: bills[0].CounterpartyName, TotalBills: len(bills)}

	var overdue int
	var daySum float64
	var reliabilitySum float64
	var settled int
	for _, bill := range bills {
		score.TotalBilled += bill.BilledAmount
		score.TotalPaid += bill.PaidAmount
		if bill.IsOverdue {
			overdue++
		}
		if days, ok := bill.LastSettlementDays(); ok {
			daySum += float64(days)
			reliabilitySum += clampMin(100-float64(days), 0)
			settled++
		}
	}

	if score.TotalBills > 0 {
		score.OverdueRate = float64(overdue) / float64(score.TotalBills) * 100
	}
	if score.TotalBilled > 0 {
		score.CompletionRate = score.TotalPaid / score.TotalBilled * 100
	}
	if settled > 0 {
		score.AvgPaymentDays = daySum / float64(settled)
		score.Reliability = reliabilitySum / float64(settled)
	}

	base := clampMin(100-score.OverdueRate*weights.OverduePenalty, 0)
	speedBonus := clampMin(weights.SpeedBonusBase-score.AvgPaymentDays/weights.SpeedDivisor, 0)
	completionBonus := score.CompletionRate * weights.CompletionWeight
	reliabilityBonus := score.Reliability * weights.ReliabilityWeight

	score.Score = clamp(base+speedBonus+completionBonus+reliabilityBonus, 0, 100)
	score.Band = bands.BandFor(score.Score)
	return score
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
