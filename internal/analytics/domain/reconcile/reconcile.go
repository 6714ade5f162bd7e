// Package reconcile matches payment records to the bills they settle and
// computes resulting balances and settlement lags.
package reconcile

import (
	"sort"
	"time"

	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/normalize"
)

// Bill is a reconciled bill with normalized amounts and dates.
type Bill struct {
	BillID           string
	CounterpartyID   string
	CounterpartyName string
	BillDate         time.Time
	HasBillDate      bool
	BilledAmount     float64
	PaidAmount       float64
	Outstanding      float64
	PaymentCount     int
	FirstPaymentAt   time.Time
	LastPaymentAt    time.Time
	IsOverdue        bool
}

// FirstSettlementDays returns whole days from bill date to the first
// matched payment. Used for time-to-first-payment metrics.
func (b Bill) FirstSettlementDays() (int, bool) {
	if b.PaymentCount == 0 || !b.HasBillDate || b.FirstPaymentAt.IsZero() {
		return 0, false
	}
	return normalize.DaysBetween(b.BillDate, b.FirstPaymentAt), true
}

// LastSettlementDays returns whole days from bill date to the last
// matched payment. Used where fully-settled timing matters.
func (b Bill) LastSettlementDays() (int, bool) {
	if b.PaymentCount == 0 || !b.HasBillDate || b.LastPaymentAt.IsZero() {
		return 0, false
	}
	return normalize.DaysBetween(b.BillDate, b.LastPaymentAt), true
}

// Result is the output of a reconciliation join.
type Result struct {
	Bills       []Bill
	Diagnostics normalize.Diagnostics
}

type matchedPayment struct {
	amount float64
	paidAt time.Time
	hasAt  bool
}

// Join matches payments to bills by bill id and computes paid and
// outstanding amounts per bill. Payments with a missing bill id or an
// unparseable amount are dropped and counted in diagnostics. Output order
// follows input bill order so repeated runs sum identically.
func Join(bills []ledger.RawBill, payments []ledger.RawPayment) Result {
	var result Result

	index := make(map[string][]matchedPayment, len(bills))
	for _, raw := range payments {
		if raw.BillID == "" {
			result.Diagnostics.DroppedPayments++
			continue
		}
		amount, ok := normalize.ParseCurrency(raw.Amount)
		if !ok {
			result.Diagnostics.CurrencyParseFailures++
			result.Diagnostics.DroppedPayments++
			continue
		}
		paidAt, hasAt := normalize.ParseDate(raw.PaidAt)
		if !hasAt && raw.PaidAt != "" {
			result.Diagnostics.DateParseFailures++
		}
		index[raw.BillID] = append(index[raw.BillID], matchedPayment{amount: amount, paidAt: paidAt, hasAt: hasAt})
	}
	for id := range index {
		matched := index[id]
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].hasAt != matched[j].hasAt {
				return matched[i].hasAt
			}
			return matched[i].paidAt.Before(matched[j].paidAt)
		})
	}

	result.Bills = make([]Bill, 0, len(bills))
	for _, raw := range bills {
		bill := Bill{
			BillID:           raw.BillID,
			CounterpartyID:   raw.CounterpartyID,
			CounterpartyName: raw.CounterpartyName,
			IsOverdue:        raw.Status == ledger.StatusOverdue,
		}

		bill.BillDate, bill.HasBillDate = normalize.ParseDate(raw.BillDate)
		if !bill.HasBillDate && raw.BillDate != "" {
			result.Diagnostics.DateParseFailures++
		}

		billed, ok := normalize.ParseCurrency(raw.BilledAmount)
		if !ok {
			result.Diagnostics.CurrencyParseFailures++
		}
		bill.BilledAmount = billed

		matched := index[raw.BillID]
		for _, p := range matched {
			bill.PaidAmount += p.amount
			bill.PaymentCount++
			if p.hasAt {
				if bill.FirstPaymentAt.IsZero() || p.paidAt.Before(bill.FirstPaymentAt) {
					bill.FirstPaymentAt = p.paidAt
				}
				if p.paidAt.After(bill.LastPaymentAt) {
					bill.LastPaymentAt = p.paidAt
				}
			}
		}

		if bill.PaymentCount == 0 {
			// No payment rows matched: trust the store's outstanding figure
			// and infer the paid portion, so out-of-band settlements still
			// reconcile. The outstanding invariant holds either way.
			outstanding, ok := normalize.ParseCurrency(raw.OutstandingAmount)
			if !ok {
				result.Diagnostics.CurrencyParseFailures++
				outstanding = bill.BilledAmount
			}
			if outstanding > bill.BilledAmount {
				outstanding = bill.BilledAmount
			}
			if outstanding < 0 {
				outstanding = 0
			}
			bill.Outstanding = outstanding
			bill.PaidAmount = bill.BilledAmount - outstanding
		} else {
			bill.Outstanding = bill.BilledAmount - bill.PaidAmount
			if bill.Outstanding < 0 {
				bill.Outstanding = 0
			}
		}

		result.Bills = append(result.Bills, bill)
	}

	return result
}

// GroupByCounterparty buckets reconciled bills by counterparty id,
// preserving input order within each group. The returned ids are sorted
// for deterministic iteration.
func GroupByCounterparty(bills []Bill) (map[string][]Bill, []string) {
	groups := make(map[string][]Bill)
	var ids []string
	for _, bill := range bills {
		if _, ok := groups[bill.CounterpartyID]; !ok {
			ids = append(ids, bill.CounterpartyID)
		}
		groups[bill.CounterpartyID] = append(groups[bill.CounterpartyID], bill)
	}
	sort.Strings(ids)
	return groups, ids
}
