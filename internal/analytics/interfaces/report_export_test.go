package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"ledger-insight/internal/analytics/domain/aging"
)

func sampleReport() aging.Report {
	bounds := aging.DefaultVendorBounds
	labels := aging.BucketLabels(bounds)
	buckets := func(amounts ...float64) []aging.Bucket {
		out := make([]aging.Bucket, len(labels))
		for i, label := range labels {
			out[i].Label = label
			if i < len(amounts) {
				out[i].Amount = amounts[i]
			}
		}
		return out
	}
	return aging.Report{
		ReferenceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Bounds:        bounds,
		Counterparties: []aging.Summary{
			{CounterpartyID: "V1", CounterpartyName: "Alpha Supplies", TotalOutstanding: 1500, TotalBills: 3, Buckets: buckets(500, 1000)},
			{CounterpartyID: "V2", CounterpartyName: "Beta Traders", TotalOutstanding: 200, TotalBills: 1, Buckets: buckets(200)},
		},
		Total: aging.Summary{TotalOutstanding: 1700, TotalBills: 4, Buckets: buckets(700, 1000)},
	}
}

func TestBuildAgingPDF(t *testing.T) {
	data, err := BuildAgingPDF(sampleReport())
	if err != nil {
		t.Fatalf("BuildAgingPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, got prefix %q", data[:8])
	}
}

func TestBuildAgingXLSX(t *testing.T) {
	data, err := BuildAgingXLSX(sampleReport())
	if err != nil {
		t.Fatalf("BuildAgingXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("counterparties", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Alpha Supplies" {
		t.Fatalf("first detail row = %q, want Alpha Supplies", got)
	}
	total, err := f.GetCellValue("summary", "B4")
	if err != nil {
		t.Fatalf("read total: %v", err)
	}
	if total != "1700" {
		t.Fatalf("total outstanding cell = %q, want 1700", total)
	}
}
