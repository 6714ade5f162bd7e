package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"ledger-insight/internal/analytics/application"
	analyticshttp "ledger-insight/internal/analytics/interfaces/http"
	"ledger-insight/internal/auth"
	ledger "ledger-insight/internal/ledger/domain"
	"ledger-insight/internal/ledger/infrastructure/memory"
	ledgerpostgres "ledger-insight/internal/ledger/infrastructure/postgres"
	"ledger-insight/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadServerConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	analyticsCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("analytics config error: %v", err)
	}

	var source ledger.SnapshotSource
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		source = ledgerpostgres.NewSnapshotReader(db,
			ledgerpostgres.WithBillsTable(cfg.BillsTable),
			ledgerpostgres.WithPaymentsTable(cfg.PaymentsTable),
		)
	} else {
		logger.Println("DATABASE_URL not set, serving the in-memory demo ledger")
		source = seedDemoLedger()
	}

	metrics.Init()
	service := application.NewService(source, application.NewEngine(analyticsCfg), metricsObserver{})

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/vendors/analytics", analyticshttp.NewAnalyticsHandler(service, ledger.DatasetVendors, logger))
	mux.Handle("/api/v1/customers/analytics", analyticshttp.NewAnalyticsHandler(service, ledger.DatasetCustomers, logger))
	mux.Handle("/api/v1/vendors/aging/export", analyticshttp.NewAgingExportHandler(service, ledger.DatasetVendors, logger))
	mux.Handle("/api/v1/customers/aging/export", analyticshttp.NewAgingExportHandler(service, ledger.DatasetCustomers, logger))
	mux.Handle("/api/v1/vendors/refresh", analyticshttp.NewRefreshHandler(service, ledger.DatasetVendors))
	mux.Handle("/api/v1/customers/refresh", analyticshttp.NewRefreshHandler(service, ledger.DatasetCustomers))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", analyticshttp.HealthHandler{})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("ledger-insight listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type serverConfig struct {
	DatabaseURL   string
	HTTPAddr      string
	BillsTable    string
	PaymentsTable string
	JWTSecret     string
}

func loadServerConfig() serverConfig {
	cfg := serverConfig{
		DatabaseURL:   getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		BillsTable:    getenvDefault("LEDGER_BILLS_TABLE", "ledger_bills"),
		PaymentsTable: getenvDefault("LEDGER_PAYMENTS_TABLE", "ledger_payments"),
		JWTSecret:     getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

type metricsObserver struct{}

func (metricsObserver) CacheHit(kind ledger.DatasetKind)  { metrics.RecordCacheHit(string(kind)) }
func (metricsObserver) CacheMiss(kind ledger.DatasetKind) { metrics.RecordCacheMiss(string(kind)) }

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func seedDemoLedger() *memory.SnapshotSource {
	source := memory.NewSnapshotSource()
	source.Replace(ledger.DatasetVendors, []ledger.RawBill{
		{BillID: "VB-1001", CounterpartyID: "V-001", CounterpartyName: "Al Noor Trading", BranchID: "riyadh", BillDate: "5 Jan 2026", BilledAmount: "SAR 12,500.00", OutstandingAmount: "0", Status: ledger.StatusPaid},
		{BillID: "VB-1002", CounterpartyID: "V-001", CounterpartyName: "Al Noor Trading", BranchID: "riyadh", BillDate: "3 Mar 2026", BilledAmount: "SAR 8,200.00", OutstandingAmount: "8,200.00", Status: ledger.StatusOpen},
		{BillID: "VB-1003", CounterpartyID: "V-002", CounterpartyName: "Gulf Logistics", BranchID: "jeddah", BillDate: "20 Nov 2025", BilledAmount: "SAR 1.2M", OutstandingAmount: "SAR 1.2M", Status: ledger.StatusOverdue},
		{BillID: "VB-1004", CounterpartyID: "V-003", CounterpartyName: "Desert Supplies", BranchID: "riyadh", BillDate: "12 Feb 2026", BilledAmount: "45K", OutstandingAmount: "15,000", Status: ledger.StatusOpen},
	}, []ledger.RawPayment{
		{PaymentID: "VP-2001", BillID: "VB-1001", Amount: "12,500.00", PaidAt: "20 Jan 2026"},
		{PaymentID: "VP-2002", BillID: "VB-1004", Amount: "30,000", PaidAt: "1 Mar 2026"},
	})
	source.Replace(ledger.DatasetCustomers, []ledger.RawBill{
		{BillID: "CB-5001", CounterpartyID: "C-101", CounterpartyName: "Oasis Retail", BranchID: "riyadh", BillDate: "10 Dec 2025", BilledAmount: "64,000", OutstandingAmount: "24,000", Status: ledger.StatusOverdue},
		{BillID: "CB-5002", CounterpartyID: "C-102", CounterpartyName: "Medina Foods", BranchID: "jeddah", BillDate: "2 Feb 2026", BilledAmount: "18,750", OutstandingAmount: "0", Status: ledger.StatusPaid},
	}, []ledger.RawPayment{
		{PaymentID: "CP-6001", BillID: "CB-5001", Amount: "40,000", PaidAt: "5 Jan 2026"},
		{PaymentID: "CP-6002", BillID: "CB-5002", Amount: "18,750", PaidAt: "25 Feb 2026"},
	})
	return source
}
