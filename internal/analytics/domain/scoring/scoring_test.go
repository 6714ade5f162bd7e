package scoring

import (
	"testing"
	"time"

	"ledger-insight/internal/analytics/domain/reconcile"
)

func settledBill(cp string, billed float64, settlementDays int, overdue bool) reconcile.Bill {
	billDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return reconcile.Bill{
		CounterpartyID: cp,
		BillDate:       billDate,
		HasBillDate:    true,
		BilledAmount:   billed,
		PaidAmount:     billed,
		PaymentCount:   1,
		FirstPaymentAt: billDate.AddDate(0, 0, settlementDays),
		LastPaymentAt:  billDate.AddDate(0, 0, settlementDays),
		IsOverdue:      overdue,
	}
}

func TestComputePerfectPayer(t *testing.T) {
	bills := []reconcile.Bill{
		settledBill("v1", 1000, 5, false),
		settledBill("v1", 2000, 10, false),
	}
	scores := Compute(bills, Params{})
	if len(scores) != 1 {
		t.Fatalf("scores = %d, want 1", len(scores))
	}
	s := scores[0]
	if s.OverdueRate != 0 {
		t.Errorf("overdue rate = %v, want 0", s.OverdueRate)
	}
	if s.CompletionRate != 100 {
		t.Errorf("completion rate = %v, want 100", s.CompletionRate)
	}
	if s.AvgPaymentDays != 7.5 {
		t.Errorf("avg payment days = %v, want 7.5", s.AvgPaymentDays)
	}
	// base 100 + speed 28.5 + completion 30 + reliability 18.5 clamps to 100.
	if s.Score != 100 {
		t.Errorf("score = %v, want 100", s.Score)
	}
	if s.Band != BandExcellent {
		t.Errorf("band = %q, want Excellent", s.Band)
	}
}

func TestComputeScoreWithinRange(t *testing.T) {
	bills := []reconcile.Bill{
		{CounterpartyID: "v1", BilledAmount: 100, Outstanding: 100, IsOverdue: true},
		{CounterpartyID: "v1", BilledAmount: 100, Outstanding: 100, IsOverdue: true},
		settledBill("v2", 500, 120, false),
	}
	for _, s := range Compute(bills, Params{}) {
		if s.Score < 0 || s.Score > 100 {
			t.Errorf("score %v out of [0,100] for %q", s.Score, s.CounterpartyID)
		}
	}
}

func TestComputeAllOverdueFloorsAtZeroBase(t *testing.T) {
	// 100% overdue: base = max(0, 100-150) = 0; no payments, no bonuses
	// beyond completion 0.
	bills := []reconcile.Bill{
		{CounterpartyID: "v1", BilledAmount: 100, Outstanding: 100, IsOverdue: true},
	}
	scores := Compute(bills, Params{})
	s := scores[0]
	if s.Score != 0 {
		t.Errorf("score = %v, want 0", s.Score)
	}
	if s.Band != BandNeedsAttention {
		t.Errorf("band = %q, want Needs Attention", s.Band)
	}
}

func TestComputeZeroBillsDivisions(t *testing.T) {
	// No bills at all: nothing to score, and nothing divides by zero.
	if scores := Compute(nil, Params{}); len(scores) != 0 {
		t.Fatalf("scores = %d, want 0", len(scores))
	}
}

func TestComputeReliabilityIsUnweightedMean(t *testing.T) {
	// Settlements of 20 and 80 days: reliability = (80 + 20) / 2 = 50,
	// independent of bill order.
	forward := []reconcile.Bill{settledBill("v1", 100, 20, false), settledBill("v1", 100, 80, false)}
	reverse := []reconcile.Bill{settledBill("v1", 100, 80, false), settledBill("v1", 100, 20, false)}

	a := Compute(forward, Params{})[0]
	b := Compute(reverse, Params{})[0]
	if a.Reliability != 50 || b.Reliability != 50 {
		t.Errorf("reliability = %v / %v, want 50 both ways", a.Reliability, b.Reliability)
	}
	if a.Score != b.Score {
		t.Errorf("score depends on bill order: %v vs %v", a.Score, b.Score)
	}
}

func TestComputeMaterialityExclusion(t *testing.T) {
	bills := []reconcile.Bill{
		settledBill("whale", 100000, 10, false),
		settledBill("minnow", 100, 10, false), // ~0.1% share
	}
	scores := Compute(bills, Params{MaterialityPct: 0.5})
	if len(scores) != 1 {
		t.Fatalf("scores = %d, want 1", len(scores))
	}
	if scores[0].CounterpartyID != "whale" {
		t.Fatalf("kept %q, want whale", scores[0].CounterpartyID)
	}
	// Share is still computed against the full total, minnow included.
	if scores[0].SpendShare >= 100 {
		t.Errorf("share = %v, should be below 100", scores[0].SpendShare)
	}
}

func TestBandThresholds(t *testing.T) {
	bands := DefaultBandThresholds()
	cases := []struct {
		score float64
		want  Band
	}{
		{95, BandExcellent},
		{90, BandExcellent},
		{80, BandGood},
		{60, BandAverage},
		{59.9, BandNeedsAttention},
	}
	for _, tc := range cases {
		if got := bands.BandFor(tc.score); got != tc.want {
			t.Errorf("BandFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
