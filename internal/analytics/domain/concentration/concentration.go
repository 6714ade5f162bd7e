// Package concentration ranks counterparties by spend and measures how
// much of the total the largest ones carry.
package concentration

import (
	"sort"

	"ledger-insight/internal/analytics/domain/reconcile"
)

// DefaultTopN is the number of individual entries before the rest fold
// into Others.
const DefaultTopN = 10

// OthersLabel names the synthetic aggregate entry.
const OthersLabel = "Others"

// Entry is one row of the concentration ranking. CounterpartyCount is 1
// for individual entries and the merged count for Others.
type Entry struct {
	Label             string  `json:"label"`
	CounterpartyID    string  `json:"counterparty_id,omitempty"`
	Spend             float64 `json:"spend"`
	Paid              float64 `json:"paid"`
	SharePercentage   float64 `json:"share_percentage"`
	CounterpartyCount int     `json:"counterparty_count"`
}

// Report is the concentration result. The cumulative shares are computed
// independently of the entry list's N.
type Report struct {
	Entries    []Entry `json:"entries"`
	TotalSpend float64 `json:"total_spend"`
	TotalPaid  float64 `json:"total_paid"`
	Top1Share  float64 `json:"top1_share"`
	Top3Share  float64 `json:"top3_share"`
	Top5Share  float64 `json:"top5_share"`
	Top10Share float64 `json:"top10_share"`
}

// Analyze ranks counterparties by total billed amount descending. The
// first topN become individual entries; the remainder merge into Others.
// All percentages are 0 when total spend is 0.
func Analyze(bills []reconcile.Bill, topN int) Report {
	if topN <= 0 {
		topN = DefaultTopN
	}

	type spend struct {
		id    string
		name  string
		spend float64
		paid  float64
	}
	groups, ids := reconcile.GroupByCounterparty(bills)
	ranked := make([]spend, 0, len(ids))

	var report Report
	for _, id := range ids {
		entry := spend{id: id, name: groups[id][0].CounterpartyName}
		for _, bill := range groups[id] {
			entry.spend += bill.BilledAmount
			entry.paid += bill.PaidAmount
		}
		report.TotalSpend += entry.spend
		report.TotalPaid += entry.paid
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].spend != ranked[j].spend {
			return ranked[i].spend > ranked[j].spend
		}
		return ranked[i].id < ranked[j].id
	})

	share := func(amount float64) float64 {
		if report.TotalSpend <= 0 {
			return 0
		}
		return amount / report.TotalSpend * 100
	}

	for i, entry := range ranked {
		if i >= topN {
			break
		}
		label := entry.name
		if label == "" {
			label = entry.id
		}
		report.Entries = append(report.Entries, Entry{
			Label:             label,
			CounterpartyID:    entry.id,
			Spend:             entry.spend,
			Paid:              entry.paid,
			SharePercentage:   share(entry.spend),
			CounterpartyCount: 1,
		})
	}
	if len(ranked) > topN {
		others := Entry{Label: OthersLabel}
		for _, entry := range ranked[topN:] {
			others.Spend += entry.spend
			others.Paid += entry.paid
			others.CounterpartyCount++
		}
		others.SharePercentage = share(others.Spend)
		report.Entries = append(report.Entries, others)
	}

	cumulative := func(n int) float64 {
		var sum float64
		for i := 0; i < n && i < len(ranked); i++ {
			sum += ranked[i].spend
		}
		return share(sum)
	}
	report.Top1Share = cumulative(1)
	report.Top3Share = cumulative(3)
	report.Top5Share = cumulative(5)
	report.Top10Share = cumulative(10)

	return report
}
