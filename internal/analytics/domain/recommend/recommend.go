// Package recommend derives a prioritized action list from thresholds
// over aging, scoring, trend and concentration outputs. Every impact
// figure is a heuristic projection, not a guarantee.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"ledger-insight/internal/analytics/domain/concentration"
	"ledger-insight/internal/analytics/domain/reconcile"
	"ledger-insight/internal/analytics/domain/scoring"
)

// Priority orders recommendations for display.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Category groups recommendations by the lever they pull.
type Category string

const (
	CategoryRiskManagement     Category = "risk_management"
	CategoryConcentration      Category = "concentration"
	CategoryCostReduction      Category = "cost_reduction"
	CategoryProcessImprovement Category = "process_improvement"
	CategoryRelationship       Category = "relationship"
)

// Recommendation is a single rule-generated action item.
type Recommendation struct {
	Title                  string   `json:"title"`
	Priority               Priority `json:"priority"`
	Category               Category `json:"category"`
	Description            string   `json:"description"`
	AffectedCounterparties []string `json:"affected_counterparties"`
	EstimatedEffort        string   `json:"estimated_effort"`
	// EstimatedImpact is a rough currency-amount projection derived from
	// fixed percentages of the affected spend. Heuristic only.
	EstimatedImpact float64 `json:"estimated_impact"`
}

// Rules toggles and parameterizes each rule independently.
type Rules struct {
	OverdueRisk                bool    `yaml:"overdue_risk"`
	OverdueRatePct             float64 `yaml:"overdue_rate_pct"`
	OverdueMinBills            int     `yaml:"overdue_min_bills"`
	Concentration              bool    `yaml:"concentration"`
	ConcentrationPct           float64 `yaml:"concentration_pct"`
	ConcentrationHighPct       float64 `yaml:"concentration_high_pct"`
	EarlyPayment               bool    `yaml:"early_payment"`
	EarlyPaymentMinDays        float64 `yaml:"early_payment_min_days"`
	EarlyPaymentMaxOverduePct  float64 `yaml:"early_payment_max_overdue_pct"`
	InconsistentTiming         bool    `yaml:"inconsistent_timing"`
	TimingVarianceRatio        float64 `yaml:"timing_variance_ratio"`
	TimingMinBills             int     `yaml:"timing_min_bills"`
	DormantRelationship        bool    `yaml:"dormant_relationship"`
	DormantDays                int     `yaml:"dormant_days"`
	HighPerformer              bool    `yaml:"high_performer"`
	HighPerformerMaxOverduePct float64 `yaml:"high_performer_max_overdue_pct"`
	HighPerformerMinSharePct   float64 `yaml:"high_performer_min_share_pct"`
	PortfolioPaymentDays       bool    `yaml:"portfolio_payment_days"`
	PortfolioMinAvgDays        float64 `yaml:"portfolio_min_avg_days"`
}

// DefaultRules enables every rule with the production thresholds.
func DefaultRules() Rules {
	return Rules{
		OverdueRisk:                true,
		OverdueRatePct:             30,
		OverdueMinBills:            5,
		Concentration:              true,
		ConcentrationPct:           15,
		ConcentrationHighPct:       25,
		EarlyPayment:               true,
		EarlyPaymentMinDays:        45,
		EarlyPaymentMaxOverduePct:  10,
		InconsistentTiming:         true,
		TimingVarianceRatio:        0.6,
		TimingMinBills:             5,
		DormantRelationship:        true,
		DormantDays:                30,
		HighPerformer:              true,
		HighPerformerMaxOverduePct: 5,
		HighPerformerMinSharePct:   5,
		PortfolioPaymentDays:       true,
		PortfolioMinAvgDays:        40,
	}
}

// Inputs are the upstream analytics outputs a rule run evaluates.
type Inputs struct {
	Bills         []reconcile.Bill
	Scores        []scoring.Score
	Concentration concentration.Report
	ReferenceDate time.Time
}

// Generate evaluates every enabled rule and returns recommendations
// ordered by priority, then title.
func Generate(in Inputs, rules Rules) []Recommendation {
	var out []Recommendation

	if rules.OverdueRisk {
		out = append(out, overdueRisk(in, rules)...)
	}
	if rules.Concentration {
		out = append(out, concentrationRisk(in, rules)...)
	}
	if rules.EarlyPayment {
		out = append(out, earlyPaymentDiscount(in, rules)...)
	}
	if rules.InconsistentTiming {
		out = append(out, inconsistentTiming(in, rules)...)
	}
	if rules.DormantRelationship {
		out = append(out, dormantRelationships(in, rules)...)
	}
	if rules.HighPerformer {
		out = append(out, highPerformers(in, rules)...)
	}
	if rules.PortfolioPaymentDays {
		out = append(out, portfolioPaymentDays(in, rules)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if pr := priorityRank(out[i].Priority) - priorityRank(out[j].Priority); pr != 0 {
			return pr > 0
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func overdueRisk(in Inputs, rules Rules) []Recommendation {
	var affected []string
	var exposure float64
	for _, score := range in.Scores {
		if score.OverdueRate > rules.OverdueRatePct && score.TotalBills >= rules.OverdueMinBills {
			affected = append(affected, score.CounterpartyID)
			exposure += score.TotalBilled - score.TotalPaid
		}
	}
	if len(affected) == 0 {
		return nil
	}
	return []Recommendation{{
		Title:                  "Review counterparties with chronic overdue balances",
		Priority:               PriorityCritical,
		Category:               CategoryRiskManagement,
		Description:            fmt.Sprintf("%d counterparties exceed a %.0f%% overdue rate. Tighten credit terms or escalate collections.", len(affected), rules.OverdueRatePct),
		AffectedCounterparties: affected,
		EstimatedEffort:        "2-4 weeks",
		EstimatedImpact:        exposure,
	}}
}

func concentrationRisk(in Inputs, rules Rules) []Recommendation {
	var out []Recommendation
	for _, entry := range in.Concentration.Entries {
		if entry.CounterpartyID == "" {
			continue
		}
		if entry.SharePercentage <= rules.ConcentrationPct {
			continue
		}
		priority := PriorityMedium
		if entry.SharePercentage > rules.ConcentrationHighPct {
			priority = PriorityHigh
		}
		out = append(out, Recommendation{
			Title:                  fmt.Sprintf("Reduce spend concentration on %s", entry.Label),
			Priority:               priority,
			Category:               CategoryConcentration,
			Description:            fmt.Sprintf("%s carries %.1f%% of total spend. Qualify alternatives to contain supply risk.", entry.Label, entry.SharePercentage),
			AffectedCounterparties: []string{entry.CounterpartyID},
			EstimatedEffort:        "1-3 months",
			// 5% of the concentrated spend as a renegotiation upside.
			EstimatedImpact: entry.Spend * 0.05,
		})
	}
	return out
}

func earlyPaymentDiscount(in Inputs, rules Rules) []Recommendation {
	var affected []string
	var spend float64
	for _, score := range in.Scores {
		if score.AvgPaymentDays > rules.EarlyPaymentMinDays && score.OverdueRate < rules.EarlyPaymentMaxOverduePct {
			affected = append(affected, score.CounterpartyID)
			spend += score.TotalBilled
		}
	}
	if len(affected) == 0 {
		return nil
	}
	return []Recommendation{{
		Title:                  "Negotiate early-payment discounts",
		Priority:               PriorityMedium,
		Category:               CategoryCostReduction,
		Description:            fmt.Sprintf("%d reliable counterparties settle after %.0f+ days. Offering earlier payment could unlock discounts.", len(affected), rules.EarlyPaymentMinDays),
		AffectedCounterparties: affected,
		EstimatedEffort:        "2-6 weeks",
		// Assumes a 2% discount on the affected spend.
		EstimatedImpact: spend * 0.02,
	}}
}

func inconsistentTiming(in Inputs, rules Rules) []Recommendation {
	groups, ids := reconcile.GroupByCounterparty(in.Bills)
	var affected []string
	for _, id := range ids {
		var days []float64
		for _, bill := range groups[id] {
			if d, ok := bill.LastSettlementDays(); ok {
				days = append(days, float64(d))
			}
		}
		if len(days) < rules.TimingMinBills {
			continue
		}
		mean, stddev := meanStddev(days)
		if mean > 0 && stddev/mean > rules.TimingVarianceRatio {
			affected = append(affected, id)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	return []Recommendation{{
		Title:                  "Standardize settlement scheduling",
		Priority:               PriorityMedium,
		Category:               CategoryProcessImprovement,
		Description:            fmt.Sprintf("%d counterparties settle with highly inconsistent timing, complicating cash-flow planning.", len(affected)),
		AffectedCounterparties: affected,
		EstimatedEffort:        "1-2 months",
	}}
}

func dormantRelationships(in Inputs, rules Rules) []Recommendation {
	cutoff := in.ReferenceDate.AddDate(0, 0, -rules.DormantDays)
	lastActivity := make(map[string]time.Time)
	for _, bill := range in.Bills {
		if bill.HasBillDate && bill.BillDate.After(lastActivity[bill.CounterpartyID]) {
			lastActivity[bill.CounterpartyID] = bill.BillDate
		}
		if !bill.LastPaymentAt.IsZero() && bill.LastPaymentAt.After(lastActivity[bill.CounterpartyID]) {
			lastActivity[bill.CounterpartyID] = bill.LastPaymentAt
		}
	}
	var affected []string
	for id, last := range lastActivity {
		if last.Before(cutoff) {
			affected = append(affected, id)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return []Recommendation{{
		Title:                  "Re-engage dormant counterparties",
		Priority:               PriorityLow,
		Category:               CategoryRelationship,
		Description:            fmt.Sprintf("%d counterparties show no billing or payment activity in the trailing %d days.", len(affected), rules.DormantDays),
		AffectedCounterparties: affected,
		EstimatedEffort:        "1-2 weeks",
	}}
}

func highPerformers(in Inputs, rules Rules) []Recommendation {
	var affected []string
	var spend float64
	for _, score := range in.Scores {
		if score.OverdueRate < rules.HighPerformerMaxOverduePct && score.SpendShare > rules.HighPerformerMinSharePct {
			affected = append(affected, score.CounterpartyID)
			spend += score.TotalBilled
		}
	}
	if len(affected) == 0 {
		return nil
	}
	return []Recommendation{{
		Title:                  "Deepen terms with top-performing counterparties",
		Priority:               PriorityMedium,
		Category:               CategoryRelationship,
		Description:            fmt.Sprintf("%d high-volume counterparties pay reliably. Consider volume commitments or preferred terms.", len(affected)),
		AffectedCounterparties: affected,
		EstimatedEffort:        "2-4 weeks",
		// Assumes a 1% margin gain on the affected spend.
		EstimatedImpact: spend * 0.01,
	}}
}

func portfolioPaymentDays(in Inputs, rules Rules) []Recommendation {
	var daySum float64
	var settled int
	var portfolioSpend float64
	for _, bill := range in.Bills {
		portfolioSpend += bill.BilledAmount
		if d, ok := bill.LastSettlementDays(); ok {
			daySum += float64(d)
			settled++
		}
	}
	if settled == 0 {
		return nil
	}
	avg := daySum / float64(settled)
	if avg <= rules.PortfolioMinAvgDays {
		return nil
	}
	return []Recommendation{{
		Title:                  "Accelerate portfolio-wide settlement",
		Priority:               PriorityMedium,
		Category:               CategoryProcessImprovement,
		Description:            fmt.Sprintf("Average settlement across the portfolio is %.0f days. Streamlining approval and payment runs would shorten the cycle.", avg),
		EstimatedEffort:        "1-3 months",
		AffectedCounterparties: nil,
		// Assumes 1% working-capital benefit on portfolio spend.
		EstimatedImpact: portfolioSpend * 0.01,
	}}
}

func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
