package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ledger "ledger-insight/internal/ledger/domain"
)

const (
	defaultBillsTable    = "ledger_bills"
	defaultPaymentsTable = "ledger_payments"
)

// DBTX abstracts *sql.DB / *sql.Tx for read queries.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SnapshotReader fetches raw ledger records from Postgres. The reader is
// read-only and performs no retries; a failed fetch surfaces immediately.
type SnapshotReader struct {
	db            DBTX
	billsTable    string
	paymentsTable string
}

// NewSnapshotReader constructs a reader.
func NewSnapshotReader(db DBTX, opts ...ReaderOption) *SnapshotReader {
	reader := &SnapshotReader{db: db, billsTable: defaultBillsTable, paymentsTable: defaultPaymentsTable}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// ReaderOption configures the reader.
type ReaderOption func(*SnapshotReader)

// WithBillsTable overrides the default bills table name.
func WithBillsTable(table string) ReaderOption {
	return func(reader *SnapshotReader) {
		if table != "" {
			reader.billsTable = table
		}
	}
}

// WithPaymentsTable overrides the default payments table name.
func WithPaymentsTable(table string) ReaderOption {
	return func(reader *SnapshotReader) {
		if table != "" {
			reader.paymentsTable = table
		}
	}
}

// FetchSnapshot loads all bill and payment rows for a dataset. String
// columns are carried verbatim; normalization is the engine's concern.
func (r *SnapshotReader) FetchSnapshot(ctx context.Context, kind ledger.DatasetKind) (*ledger.Snapshot, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ledger reader: nil db")
	}
	if !kind.IsValid() {
		return nil, ledger.ErrInvalidDataset
	}

	snapshot := &ledger.Snapshot{Kind: kind}

	billsQuery := fmt.Sprintf(`
SELECT bill_id, counterparty_id, counterparty_name, COALESCE(branch_id, ''),
       COALESCE(bill_date, ''), COALESCE(billed_amount, ''), COALESCE(outstanding_amount, ''),
       COALESCE(status, ''), COALESCE(age_in_days, '')
FROM %s
WHERE dataset = $1
ORDER BY bill_id`, r.billsTable)

	rows, err := r.db.QueryContext(ctx, billsQuery, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: bills query: %v", ledger.ErrFetchFailed, err)
	}
	defer rows.Close()
	for rows.Next() {
		var bill ledger.RawBill
		if err := rows.Scan(
			&bill.BillID,
			&bill.CounterpartyID,
			&bill.CounterpartyName,
			&bill.BranchID,
			&bill.BillDate,
			&bill.BilledAmount,
			&bill.OutstandingAmount,
			&bill.Status,
			&bill.AgeInDays,
		); err != nil {
			return nil, fmt.Errorf("%w: bills scan: %v", ledger.ErrFetchFailed, err)
		}
		snapshot.Bills = append(snapshot.Bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: bills rows: %v", ledger.ErrFetchFailed, err)
	}

	paymentsQuery := fmt.Sprintf(`
SELECT payment_id, COALESCE(bill_id, ''), COALESCE(amount, ''), COALESCE(paid_at, '')
FROM %s
WHERE dataset = $1
ORDER BY payment_id`, r.paymentsTable)

	paymentRows, err := r.db.QueryContext(ctx, paymentsQuery, string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: payments query: %v", ledger.ErrFetchFailed, err)
	}
	defer paymentRows.Close()
	for paymentRows.Next() {
		var payment ledger.RawPayment
		if err := paymentRows.Scan(
			&payment.PaymentID,
			&payment.BillID,
			&payment.Amount,
			&payment.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("%w: payments scan: %v", ledger.ErrFetchFailed, err)
		}
		snapshot.Payments = append(snapshot.Payments, payment)
	}
	if err := paymentRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: payments rows: %v", ledger.ErrFetchFailed, err)
	}

	return snapshot, nil
}
