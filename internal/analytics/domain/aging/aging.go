// Package aging classifies outstanding balances into fixed age buckets
// relative to an explicit reference date.
package aging

import (
	"fmt"
	"sort"
	"time"

	"ledger-insight/internal/analytics/domain/reconcile"
	"ledger-insight/internal/normalize"
)

// Default bucket upper bounds per dataset.
var (
	DefaultVendorBounds   = []int{30, 60, 90, 180}
	DefaultCustomerBounds = []int{30, 60, 90}
)

// Bucket is one age range within a summary.
type Bucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Summary is the aging breakdown for one counterparty. UnagedOutstanding
// carries balances whose bill date could not be parsed: they are excluded
// from buckets but never from the total, so
// sum(buckets) + UnagedOutstanding == TotalOutstanding.
type Summary struct {
	CounterpartyID    string   `json:"counterparty_id"`
	CounterpartyName  string   `json:"counterparty_name"`
	TotalOutstanding  float64  `json:"total_outstanding"`
	UnagedOutstanding float64  `json:"unaged_outstanding"`
	TotalBills        int      `json:"total_bills"`
	OverdueBills      int      `json:"overdue_bills"`
	Buckets           []Bucket `json:"buckets"`
}

// Report is the full aging result across counterparties.
type Report struct {
	ReferenceDate  time.Time `json:"reference_date"`
	Bounds         []int     `json:"bounds"`
	Counterparties []Summary `json:"counterparties"`
	Total          Summary   `json:"total"`
}

// BucketLabels renders labels for an ordered bound list: bounds
// [30,60,90] produce "0-30", "31-60", "61-90", ">90".
func BucketLabels(bounds []int) []string {
	labels := make([]string, 0, len(bounds)+1)
	lower := 0
	for _, upper := range bounds {
		labels = append(labels, fmt.Sprintf("%d-%d", lower, upper))
		lower = upper + 1
	}
	labels = append(labels, fmt.Sprintf(">%d", bounds[len(bounds)-1]))
	return labels
}

// Bucketize builds per-counterparty aging summaries plus a grand total.
// Bills with non-positive outstanding are excluded from buckets but still
// counted in TotalBills. Counterparties are ordered by total outstanding
// descending, ties by id, for stable output.
func Bucketize(bills []reconcile.Bill, referenceDate time.Time, bounds []int) Report {
	if len(bounds) == 0 {
		bounds = DefaultVendorBounds
	}
	labels := BucketLabels(bounds)

	report := Report{
		ReferenceDate: referenceDate,
		Bounds:        append([]int(nil), bounds...),
		Total:         newSummary("", "", labels),
	}

	groups, ids := reconcile.GroupByCounterparty(bills)
	for _, id := range ids {
		group := groups[id]
		summary := newSummary(id, group[0].CounterpartyName, labels)

		for _, bill := range group {
			summary.TotalBills++
			if bill.IsOverdue {
				summary.OverdueBills++
			}
			if bill.Outstanding <= 0 {
				continue
			}
			summary.TotalOutstanding += bill.Outstanding
			if !bill.HasBillDate {
				summary.UnagedOutstanding += bill.Outstanding
				continue
			}
			idx := bucketIndex(normalize.DaysBetween(bill.BillDate, referenceDate), bounds)
			summary.Buckets[idx].Amount += bill.Outstanding
			summary.Buckets[idx].Count++
		}

		report.Total.TotalBills += summary.TotalBills
		report.Total.OverdueBills += summary.OverdueBills
		report.Total.TotalOutstanding += summary.TotalOutstanding
		report.Total.UnagedOutstanding += summary.UnagedOutstanding
		for i := range summary.Buckets {
			report.Total.Buckets[i].Amount += summary.Buckets[i].Amount
			report.Total.Buckets[i].Count += summary.Buckets[i].Count
		}

		report.Counterparties = append(report.Counterparties, summary)
	}

	sort.SliceStable(report.Counterparties, func(i, j int) bool {
		a, b := report.Counterparties[i], report.Counterparties[j]
		if a.TotalOutstanding != b.TotalOutstanding {
			return a.TotalOutstanding > b.TotalOutstanding
		}
		return a.CounterpartyID < b.CounterpartyID
	})

	return report
}

func newSummary(id, name string, labels []string) Summary {
	buckets := make([]Bucket, len(labels))
	for i, label := range labels {
		buckets[i] = Bucket{Label: label}
	}
	return Summary{CounterpartyID: id, CounterpartyName: name, Buckets: buckets}
}

// bucketIndex returns the first bucket whose upper bound covers the age;
// ages beyond the last bound land in the final over-max bucket. Negative
// ages (future-dated bills) land in the first bucket.
func bucketIndex(ageDays int, bounds []int) int {
	for i, upper := range bounds {
		if ageDays <= upper {
			return i
		}
	}
	return len(bounds)
}
