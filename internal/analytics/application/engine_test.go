package application

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	ledger "ledger-insight/internal/ledger/domain"
)

var ref = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func sampleSnapshot() *ledger.Snapshot {
	return &ledger.Snapshot{
		Kind:       ledger.DatasetVendors,
		Generation: 1,
		Bills: []ledger.RawBill{
			{BillID: "b1", CounterpartyID: "v1", CounterpartyName: "Alpha Trading", BillDate: "22 Apr 2024", BilledAmount: "SAR 1,000", Status: ledger.StatusPaid},
			{BillID: "b2", CounterpartyID: "v1", CounterpartyName: "Alpha Trading", BillDate: "2024-05-20", BilledAmount: "SAR 2,500", OutstandingAmount: "SAR 2,500", Status: ledger.StatusOpen},
			{BillID: "b3", CounterpartyID: "v2", CounterpartyName: "Beta Supplies", BillDate: "1 Jan 2024", BilledAmount: "SAR 1.08M", OutstandingAmount: "SAR 1.08M", Status: ledger.StatusOverdue},
		},
		Payments: []ledger.RawPayment{
			{PaymentID: "p1", BillID: "b1", Amount: "SAR 500", PaidAt: "2024-05-02"},
			{PaymentID: "p2", BillID: "b1", Amount: "SAR 500", PaidAt: "2024-05-12"},
		},
	}
}

func TestComputeEndToEnd(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	result, err := engine.Compute(context.Background(), sampleSnapshot(), ref)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	// b1: billed 1000, paid 2x500 -> settled, 40-day-old bill excluded
	// from buckets.
	// b2: outstanding 2500, 12 days old -> 0-30.
	// b3: outstanding 1.08M, 152 days old -> 91-180.
	if got := result.Aging.Total.TotalOutstanding; got != 1082500 {
		t.Errorf("total outstanding = %v, want 1082500", got)
	}
	var bucketSum float64
	for _, bucket := range result.Aging.Total.Buckets {
		bucketSum += bucket.Amount
	}
	if math.Abs(bucketSum-result.Aging.Total.TotalOutstanding) > 0.01 {
		t.Errorf("bucket sum %v != total %v", bucketSum, result.Aging.Total.TotalOutstanding)
	}
	if got := result.Aging.Total.Buckets[0].Amount; got != 2500 {
		t.Errorf("0-30 bucket = %v, want 2500", got)
	}
	if got := result.Aging.Total.Buckets[3].Amount; got != 1080000 {
		t.Errorf("91-180 bucket = %v, want 1080000", got)
	}

	for _, score := range result.Scores {
		if score.Score < 0 || score.Score > 100 {
			t.Errorf("score %v out of range for %q", score.Score, score.CounterpartyID)
		}
	}

	if len(result.Concentration.Entries) == 0 {
		t.Fatalf("no concentration entries")
	}
	var shareSum float64
	for _, entry := range result.Concentration.Entries {
		shareSum += entry.SharePercentage
	}
	if math.Abs(shareSum-100) > 0.1 {
		t.Errorf("share sum = %v, want about 100", shareSum)
	}

	if !result.Diagnostics.IsClean() {
		t.Errorf("unexpected diagnostics: %+v", result.Diagnostics)
	}
}

func TestComputeDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	a, err := engine.Compute(context.Background(), sampleSnapshot(), ref)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, err := engine.Compute(context.Background(), sampleSnapshot(), ref)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Fatalf("identical inputs produced different outputs")
	}
}

func TestComputeRequiresReferenceDate(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if _, err := engine.Compute(context.Background(), sampleSnapshot(), time.Time{}); err != ErrZeroReferenceDate {
		t.Fatalf("err = %v, want ErrZeroReferenceDate", err)
	}
}

func TestComputeHonorsCancellation(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Compute(ctx, sampleSnapshot(), ref); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.VendorBucketBounds = []int{60, 30}
	if err := bad.Validate(); err == nil {
		t.Fatalf("non-increasing bounds should fail validation")
	}

	bad = DefaultConfig()
	bad.CustomerBucketBounds = nil
	if err := bad.Validate(); err == nil {
		t.Fatalf("empty bounds should fail validation")
	}
}
