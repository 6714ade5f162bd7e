package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// DatasetKind selects which side of the ledger a snapshot covers.
type DatasetKind string

const (
	// DatasetVendors covers payables: bills we owe to vendors.
	DatasetVendors DatasetKind = "vendors"
	// DatasetCustomers covers receivables: invoices owed to us by customers.
	DatasetCustomers DatasetKind = "customers"
)

// IsValid reports whether the kind is a known dataset.
func (k DatasetKind) IsValid() bool {
	return k == DatasetVendors || k == DatasetCustomers
}

// Bill statuses as delivered by the ledger store.
const (
	StatusOpen    = "Open"
	StatusOverdue = "Overdue"
	StatusPaid    = "Paid"
)

// RawBill is a bill row exactly as fetched from the ledger store.
// Amounts and dates are string-encoded; normalization happens downstream.
type RawBill struct {
	BillID            string
	CounterpartyID    string
	CounterpartyName  string
	BranchID          string
	BillDate          string
	BilledAmount      string
	OutstandingAmount string
	Status            string
	AgeInDays         string
}

// RawPayment is a payment row exactly as fetched from the ledger store.
type RawPayment struct {
	PaymentID string
	BillID    string
	Amount    string
	PaidAt    string
}

// Snapshot is an immutable in-memory copy of one dataset at fetch time.
// The engine never mutates a snapshot; filtered views are fresh copies.
type Snapshot struct {
	Kind       DatasetKind
	Generation uint64
	Bills      []RawBill
	Payments   []RawPayment
}

// FilterBranch returns a copy of the snapshot restricted to one branch.
// Bills outside the branch are dropped along with their payments. An empty
// branch id returns the snapshot unchanged.
func (s *Snapshot) FilterBranch(branchID string) *Snapshot {
	if s == nil || branchID == "" {
		return s
	}
	out := &Snapshot{Kind: s.Kind, Generation: s.Generation}
	kept := make(map[string]struct{}, len(s.Bills))
	for _, bill := range s.Bills {
		if bill.BranchID != branchID {
			continue
		}
		out.Bills = append(out.Bills, bill)
		if bill.BillID != "" {
			kept[bill.BillID] = struct{}{}
		}
	}
	for _, payment := range s.Payments {
		if _, ok := kept[payment.BillID]; ok {
			out.Payments = append(out.Payments, payment)
		}
	}
	return out
}

// Fingerprint returns a stable content hash of the snapshot. Record order
// does not affect the result; two fetches of identical data fingerprint
// identically regardless of store ordering.
func (s *Snapshot) Fingerprint() string {
	if s == nil {
		return ""
	}
	lines := make([]string, 0, len(s.Bills)+len(s.Payments))
	for _, b := range s.Bills {
		lines = append(lines, "b|"+b.BillID+"|"+b.CounterpartyID+"|"+b.CounterpartyName+"|"+b.BranchID+"|"+
			b.BillDate+"|"+b.BilledAmount+"|"+b.OutstandingAmount+"|"+b.Status+"|"+b.AgeInDays)
	}
	for _, p := range s.Payments {
		lines = append(lines, "p|"+p.PaymentID+"|"+p.BillID+"|"+p.Amount+"|"+p.PaidAt)
	}
	sort.Strings(lines)

	h := sha256.New()
	h.Write([]byte(string(s.Kind)))
	for _, line := range lines {
		h.Write([]byte{0})
		h.Write([]byte(line))
	}
	return hex.EncodeToString(h.Sum(nil))
}
