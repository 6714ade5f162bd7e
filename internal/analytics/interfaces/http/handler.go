package analyticshttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"ledger-insight/internal/analytics/application"
	"ledger-insight/internal/analytics/interfaces"
	"ledger-insight/internal/auth"
	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// AnalyticsHandler serves dataset analytics queries.
type AnalyticsHandler struct {
	service *application.Service
	kind    ledger.DatasetKind
	logger  *log.Logger
}

// NewAnalyticsHandler constructs an AnalyticsHandler for one dataset.
func NewAnalyticsHandler(service *application.Service, kind ledger.DatasetKind, logger *log.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, kind: kind, logger: logger}
}

// ServeHTTP handles GET /api/v1/{vendors,customers}/analytics.
func (h *AnalyticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	referenceDate, err := parseReferenceDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	branchID := branchFromContext(r)
	result, err := h.service.Analytics(r.Context(), h.kind, branchID, referenceDate)
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *AnalyticsHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrInvalidDataset) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.logger != nil {
		h.logger.Printf("analytics %s failed: %v", h.kind, err)
	}
	http.Error(w, "analytics query error", http.StatusInternalServerError)
}

// AgingExportHandler serves aging report downloads.
type AgingExportHandler struct {
	service *application.Service
	kind    ledger.DatasetKind
	logger  *log.Logger
}

// NewAgingExportHandler constructs an AgingExportHandler for one dataset.
func NewAgingExportHandler(service *application.Service, kind ledger.DatasetKind, logger *log.Logger) *AgingExportHandler {
	return &AgingExportHandler{service: service, kind: kind, logger: logger}
}

// ServeHTTP handles GET /api/v1/{vendors,customers}/aging/export.
func (h *AgingExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	referenceDate, err := parseReferenceDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	branchID := branchFromContext(r)
	result, err := h.service.Analytics(r.Context(), h.kind, branchID, referenceDate)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidDataset) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if h.logger != nil {
			h.logger.Printf("aging export %s failed: %v", h.kind, err)
		}
		http.Error(w, "analytics query error", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = interfaces.BuildAgingPDF(result.Aging)
		contentType = "application/pdf"
	default:
		data, err = interfaces.BuildAgingXLSX(result.Aging)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	metrics.ObserveExport(format, start, err)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("aging export render %s failed: %v", format, err)
		}
		http.Error(w, "export render error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("aging_%s_%s.%s", h.kind, referenceDate.Format(dateLayout), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

// RefreshHandler drops memoized results for one dataset so the next
// analytics query recomputes from a fresh snapshot.
type RefreshHandler struct {
	service *application.Service
	kind    ledger.DatasetKind
}

// NewRefreshHandler constructs a RefreshHandler for one dataset.
func NewRefreshHandler(service *application.Service, kind ledger.DatasetKind) *RefreshHandler {
	return &RefreshHandler{service: service, kind: kind}
}

// ServeHTTP handles POST /api/v1/{vendors,customers}/refresh.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	h.service.Invalidate(h.kind)
	w.WriteHeader(http.StatusAccepted)
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// ServeHTTP handles GET /healthz.
func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func branchFromContext(r *http.Request) string {
	return auth.BranchIDFromContext(r.Context())
}

func parseReferenceDate(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("reference_date")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("reference_date must be YYYY-MM-DD")
	}
	return parsed, nil
}
