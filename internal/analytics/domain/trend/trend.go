// Package trend compares recent against historical payment behavior and
// builds monthly activity series.
package trend

import (
	"sort"

	"ledger-insight/internal/analytics/domain/reconcile"
	"ledger-insight/internal/normalize"
)

// Classification labels a counterparty's settlement-lag direction.
type Classification string

const (
	Improving     Classification = "Improving"
	Deteriorating Classification = "Deteriorating"
	Stable        Classification = "Stable"
)

// Defaults for the comparison window.
const (
	DefaultRecentWindow  = 5
	DefaultDiffThreshold = 5.0
	DefaultMaxPeriods    = 12
)

// MonthlyPoint is one period in the activity series.
type MonthlyPoint struct {
	PeriodKey      string  `json:"period_key"`
	BilledAmount   float64 `json:"billed_amount"`
	PaidAmount     float64 `json:"paid_amount"`
	BillCount      int     `json:"bill_count"`
	OverdueCount   int     `json:"overdue_count"`
	AvgPaymentDays float64 `json:"avg_payment_days"`
	CompletionRate float64 `json:"completion_rate"`
}

// CounterpartyTrend is the recent-vs-historical comparison for one
// counterparty.
type CounterpartyTrend struct {
	CounterpartyID    string         `json:"counterparty_id"`
	CounterpartyName  string         `json:"counterparty_name"`
	RecentAvgDays     float64        `json:"recent_avg_days"`
	HistoricalAvgDays float64        `json:"historical_avg_days"`
	TrendDiff         float64        `json:"trend_diff"`
	Classification    Classification `json:"classification"`
	SampleSize        int            `json:"sample_size"`
}

// MonthlySeries accumulates bills into YYYY-MM periods keyed by bill date.
// Payment-day averages only cover bills with at least one payment. The
// series is capped to the most recent maxPeriods periods, ascending.
func MonthlySeries(bills []reconcile.Bill, maxPeriods int) []MonthlyPoint {
	if maxPeriods <= 0 {
		maxPeriods = DefaultMaxPeriods
	}

	type accumulator struct {
		point   MonthlyPoint
		daySum  float64
		settled int
	}
	byPeriod := make(map[string]*accumulator)
	for _, bill := range bills {
		if !bill.HasBillDate {
			continue
		}
		key := normalize.MonthKey(bill.BillDate)
		acc := byPeriod[key]
		if acc == nil {
			acc = &accumulator{point: MonthlyPoint{PeriodKey: key}}
			byPeriod[key] = acc
		}
		acc.point.BilledAmount += bill.BilledAmount
		acc.point.PaidAmount += bill.PaidAmount
		acc.point.BillCount++
		if bill.IsOverdue {
			acc.point.OverdueCount++
		}
		if days, ok := bill.FirstSettlementDays(); ok {
			acc.daySum += float64(days)
			acc.settled++
		}
	}

	keys := make([]string, 0, len(byPeriod))
	for key := range byPeriod {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > maxPeriods {
		keys = keys[len(keys)-maxPeriods:]
	}

	series := make([]MonthlyPoint, 0, len(keys))
	for _, key := range keys {
		acc := byPeriod[key]
		if acc.settled > 0 {
			acc.point.AvgPaymentDays = acc.daySum / float64(acc.settled)
		}
		if acc.point.BilledAmount > 0 {
			acc.point.CompletionRate = acc.point.PaidAmount / acc.point.BilledAmount * 100
		}
		series = append(series, acc.point)
	}
	return series
}

// Params configures trend classification.
type Params struct {
	RecentWindow  int
	DiffThreshold float64
}

// Classify splits each counterparty's bills-with-payments into recent and
// historical cohorts by bill date and labels the settlement-lag shift.
// With no historical cohort the comparison degrades to recent-vs-recent,
// which is Stable by construction. Output is ordered by counterparty id.
func Classify(bills []reconcile.Bill, params Params) []CounterpartyTrend {
	if params.RecentWindow <= 0 {
		params.RecentWindow = DefaultRecentWindow
	}
	if params.DiffThreshold <= 0 {
		params.DiffThreshold = DefaultDiffThreshold
	}

	groups, ids := reconcile.GroupByCounterparty(bills)
	trends := make([]CounterpartyTrend, 0, len(ids))
	for _, id := range ids {
		var settled []reconcile.Bill
		for _, bill := range groups[id] {
			if _, ok := bill.FirstSettlementDays(); ok {
				settled = append(settled, bill)
			}
		}
		if len(settled) == 0 {
			continue
		}
		sort.SliceStable(settled, func(i, j int) bool {
			return settled[i].BillDate.After(settled[j].BillDate)
		})

		recent := settled
		if len(recent) > params.RecentWindow {
			recent = settled[:params.RecentWindow]
		}
		historical := settled[len(recent):]
		if len(historical) == 0 {
			historical = recent
		}

		trend := CounterpartyTrend{
			CounterpartyID:    id,
			CounterpartyName:  settled[0].CounterpartyName,
			RecentAvgDays:     meanFirstSettlement(recent),
			HistoricalAvgDays: meanFirstSettlement(historical),
			SampleSize:        len(settled),
		}
		trend.TrendDiff = trend.RecentAvgDays - trend.HistoricalAvgDays
		switch {
		case trend.TrendDiff < -params.DiffThreshold:
			trend.Classification = Improving
		case trend.TrendDiff > params.DiffThreshold:
			trend.Classification = Deteriorating
		default:
			trend.Classification = Stable
		}
		trends = append(trends, trend)
	}
	return trends
}

func meanFirstSettlement(bills []reconcile.Bill) float64 {
	if len(bills) == 0 {
		return 0
	}
	var sum float64
	for _, bill := range bills {
		days, _ := bill.FirstSettlementDays()
		sum += float64(days)
	}
	return sum / float64(len(bills))
}
