package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"ledger-insight/internal/analytics/domain/aging"
)

// BuildAgingPDF renders an aging report as PDF.
func BuildAgingPDF(report aging.Report) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Aging Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Reference Date: %s", report.ReferenceDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Outstanding: %.2f", report.Total.TotalOutstanding))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	labels := aging.BucketLabels(report.Bounds)
	nameWidth := 70.0
	colWidth := 30.0

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(nameWidth, 6, "Counterparty", "1", 0, "L", false, 0, "")
	for _, label := range labels {
		pdf.CellFormat(colWidth, 6, label, "1", 0, "C", false, 0, "")
	}
	pdf.CellFormat(colWidth, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, summary := range report.Counterparties {
		name := summary.CounterpartyName
		if name == "" {
			name = summary.CounterpartyID
		}
		pdf.CellFormat(nameWidth, 6, name, "1", 0, "L", false, 0, "")
		for _, bucket := range summary.Buckets {
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.2f", bucket.Amount), "1", 0, "R", false, 0, "")
		}
		pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.2f", summary.TotalOutstanding), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(nameWidth, 6, "Total", "1", 0, "L", false, 0, "")
	for _, bucket := range report.Total.Buckets {
		pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.2f", bucket.Amount), "1", 0, "R", false, 0, "")
	}
	pdf.CellFormat(colWidth, 6, fmt.Sprintf("%.2f", report.Total.TotalOutstanding), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAgingXLSX renders an aging report as XLSX with a summary sheet and
// a per-counterparty detail sheet.
func BuildAgingXLSX(report aging.Report) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	detailSheet := "counterparties"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(detailSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Aging Report")
	_ = f.SetCellValue(summarySheet, "A3", "Reference Date")
	_ = f.SetCellValue(summarySheet, "B3", report.ReferenceDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A4", "Total Outstanding")
	_ = f.SetCellValue(summarySheet, "B4", report.Total.TotalOutstanding)
	_ = f.SetCellValue(summarySheet, "A5", "Total Bills")
	_ = f.SetCellValue(summarySheet, "B5", report.Total.TotalBills)
	_ = f.SetCellValue(summarySheet, "A6", "Overdue Bills")
	_ = f.SetCellValue(summarySheet, "B6", report.Total.OverdueBills)

	row := 8
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Bucket")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Amount")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), "Count")
	for _, bucket := range report.Total.Buckets {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), bucket.Label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), bucket.Amount)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), bucket.Count)
	}

	labels := aging.BucketLabels(report.Bounds)
	_ = f.SetCellValue(detailSheet, "A1", "Counterparty")
	for i, label := range labels {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		_ = f.SetCellValue(detailSheet, cell, label)
	}
	totalCol := len(labels) + 2
	cell, _ := excelize.CoordinatesToCellName(totalCol, 1)
	_ = f.SetCellValue(detailSheet, cell, "Total")

	for i, summary := range report.Counterparties {
		rowNum := i + 2
		name := summary.CounterpartyName
		if name == "" {
			name = summary.CounterpartyID
		}
		_ = f.SetCellValue(detailSheet, fmt.Sprintf("A%d", rowNum), name)
		for j, bucket := range summary.Buckets {
			cell, _ := excelize.CoordinatesToCellName(j+2, rowNum)
			_ = f.SetCellValue(detailSheet, cell, bucket.Amount)
		}
		cell, _ := excelize.CoordinatesToCellName(totalCol, rowNum)
		_ = f.SetCellValue(detailSheet, cell, summary.TotalOutstanding)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
