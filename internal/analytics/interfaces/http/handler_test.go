package analyticshttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledger-insight/internal/analytics/application"
	"ledger-insight/internal/auth"
	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/ledger/infrastructure/memory"
)

func newTestService(t *testing.T) *application.Service {
	t.Helper()
	source := memory.NewSnapshotSource()
	source.Replace(ledger.DatasetVendors, []ledger.RawBill{
		{BillID: "B1", CounterpartyID: "V1", CounterpartyName: "Alpha", BranchID: "riyadh", BillDate: "5 Jan 2024", BilledAmount: "1,000.00", OutstandingAmount: "0", Status: ledger.StatusPaid},
		{BillID: "B2", CounterpartyID: "V2", CounterpartyName: "Beta", BranchID: "jeddah", BillDate: "10 Feb 2024", BilledAmount: "400.00", OutstandingAmount: "400.00", Status: ledger.StatusOverdue},
	}, []ledger.RawPayment{
		{PaymentID: "P1", BillID: "B1", Amount: "1,000.00", PaidAt: "15 Jan 2024"},
	})

	cfg, err := application.LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return application.NewService(source, application.NewEngine(cfg), nil)
}

func TestAnalyticsHandler(t *testing.T) {
	handler := NewAnalyticsHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/analytics?reference_date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result application.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Aging.Total.TotalOutstanding != 400 {
		t.Fatalf("total outstanding = %v, want 400", result.Aging.Total.TotalOutstanding)
	}
	if len(result.Scores) != 2 {
		t.Fatalf("scores = %d, want 2", len(result.Scores))
	}
}

func TestAnalyticsHandlerBranchScoped(t *testing.T) {
	handler := NewAnalyticsHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/analytics?reference_date=2024-03-01", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "riyadh", auth.RoleViewer, "u1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result application.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Aging.Total.TotalOutstanding != 0 {
		t.Fatalf("riyadh outstanding = %v, want 0", result.Aging.Total.TotalOutstanding)
	}
	if len(result.Scores) != 1 {
		t.Fatalf("riyadh scores = %d, want 1", len(result.Scores))
	}
}

func TestAnalyticsHandlerBadRequest(t *testing.T) {
	handler := NewAnalyticsHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/analytics?reference_date=01-03-2024", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/vendors/analytics", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestAgingExportHandlerXLSX(t *testing.T) {
	handler := NewAgingExportHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/aging/export?format=xlsx&reference_date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="aging_vendors_2024-03-01.xlsx"` {
		t.Fatalf("content disposition = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty export body")
	}
}

func TestAgingExportHandlerPDF(t *testing.T) {
	handler := NewAgingExportHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/aging/export?format=pdf&reference_date=2024-03-01", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("export body is not a PDF")
	}
}

func TestAgingExportHandlerBadFormat(t *testing.T) {
	handler := NewAgingExportHandler(newTestService(t), ledger.DatasetVendors, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vendors/aging/export?format=docx", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRefreshHandler(t *testing.T) {
	handler := NewRefreshHandler(newTestService(t), ledger.DatasetVendors)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/refresh", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/vendors/refresh", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthHandler{}.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}
