package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
)

func newAuditor(t *testing.T) (ConsistencyAuditor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := ConsistencyAuditor{
		DB:           db,
		Sales:        repositories.SeatSaleRepository{DB: db},
		Lines:        repositories.ServiceLineRepository{DB: db},
		Orders:       repositories.OrderRepository{DB: db},
		Installments: repositories.InstallmentRepository{DB: db},
	}
	return a, mock
}

func emptySaleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "trip_id", "seat_number", "buyer_name", "buyer_phone",
		"price", "payment_method", "created_by", "created_at",
	})
}

func emptyLineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "passenger_id", "order_id", "service_type", "acquisition", "neto", "venduto",
		"payment_state", "paid_at", "activated_at", "travel_start", "travel_end", "notes",
		"created_at", "updated_at",
	})
}

func cuotaRows(orderID int64, entries []struct {
	Amount float64
	Paid   bool
}) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "order_id", "sequence", "amount", "due_date", "paid"})
	for i, e := range entries {
		rows.AddRow(int64(i+1), orderID, i+1, e.Amount, "2026-10-01", e.Paid)
	}
	return rows
}

func TestAuditCleanLedger(t *testing.T) {
	a, mock := newAuditor(t)

	mock.ExpectQuery("LEFT JOIN trips").WillReturnRows(emptySaleRows())
	mock.ExpectQuery("JOIN ticket_orders").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("activated_at IS NOT NULL").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("SELECT id FROM ticket_orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery("SELECT id, client_ref").WithArgs(int64(9)).
		WillReturnRows(orderRows(9, 190, 40, 150, 40))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(9)).
		WillReturnRows(lineRowsFor(9, [][2]float64{{75, 95}, {75, 95}}))
	mock.ExpectQuery("FROM installments").WithArgs(int64(9)).
		WillReturnRows(cuotaRows(9, []struct {
			Amount float64
			Paid   bool
		}{{75, false}, {75, false}}))

	report, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !report.Clean() {
		t.Fatalf("expected clean report, got %+v", report)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A deposit changed without a recompute leaves the stored balance stale. The
// auditor must flag it without repairing anything.
func TestAuditDetectsStaleBalance(t *testing.T) {
	a, mock := newAuditor(t)

	mock.ExpectQuery("LEFT JOIN trips").WillReturnRows(emptySaleRows())
	mock.ExpectQuery("JOIN ticket_orders").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("activated_at IS NOT NULL").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("SELECT id FROM ticket_orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	// deposit was raised to 100 but balance_due still reads 150
	mock.ExpectQuery("SELECT id, client_ref").WithArgs(int64(9)).
		WillReturnRows(orderRows(9, 190, 100, 150, 40))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(9)).
		WillReturnRows(lineRowsFor(9, [][2]float64{{75, 95}, {75, 95}}))
	mock.ExpectQuery("FROM installments").WithArgs(int64(9)).
		WillReturnRows(cuotaRows(9, nil))

	report, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if len(report.TotalsDrift) != 1 {
		t.Fatalf("expected one drift entry, got %+v", report.TotalsDrift)
	}
	d := report.TotalsDrift[0]
	if d.OrderID != 9 {
		t.Fatalf("drift order id = %d", d.OrderID)
	}
	if !domain.MoneyEqual(d.Stored.BalanceDue, 150) || !domain.MoneyEqual(d.Recomputed.BalanceDue, 90) {
		t.Fatalf("drift balances = %v / %v", d.Stored.BalanceDue, d.Recomputed.BalanceDue)
	}
}

// Shrinking one cuota without touching the order leaves the plan short of the
// total. Everything else is coherent, so the gap alone must trigger the entry.
func TestAuditDetectsCuotaGap(t *testing.T) {
	a, mock := newAuditor(t)

	mock.ExpectQuery("LEFT JOIN trips").WillReturnRows(emptySaleRows())
	mock.ExpectQuery("JOIN ticket_orders").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("activated_at IS NOT NULL").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("SELECT id FROM ticket_orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery("SELECT id, client_ref").WithArgs(int64(9)).
		WillReturnRows(orderRows(9, 190, 40, 150, 40))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(9)).
		WillReturnRows(lineRowsFor(9, [][2]float64{{75, 95}, {75, 95}}))
	mock.ExpectQuery("FROM installments").WithArgs(int64(9)).
		WillReturnRows(cuotaRows(9, []struct {
			Amount float64
			Paid   bool
		}{{50, false}, {75, false}}))

	report, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if len(report.TotalsDrift) != 1 {
		t.Fatalf("expected one drift entry, got %+v", report.TotalsDrift)
	}
	if !domain.MoneyEqual(report.TotalsDrift[0].InstallmentGap, -25) {
		t.Fatalf("installment gap = %v", report.TotalsDrift[0].InstallmentGap)
	}
}

func TestAuditReportsActivatedUnpaid(t *testing.T) {
	a, mock := newAuditor(t)

	activated := emptyLineRows()
	activated.AddRow(int64(5), int64(1), int64(9), "visto", "", 100.0, 120.0,
		"Pendiente", nil, time.Now(), "", "", "", time.Now(), time.Now())

	mock.ExpectQuery("LEFT JOIN trips").WillReturnRows(emptySaleRows())
	mock.ExpectQuery("JOIN ticket_orders").WillReturnRows(emptyLineRows())
	mock.ExpectQuery("activated_at IS NOT NULL").WillReturnRows(activated)
	mock.ExpectQuery("SELECT id FROM ticket_orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	report, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if len(report.ActivatedUnpaid) != 1 || report.ActivatedUnpaid[0].ID != 5 {
		t.Fatalf("activated unpaid = %+v", report.ActivatedUnpaid)
	}
	if len(report.TotalsDrift) != 0 {
		t.Fatalf("no drift expected, got %+v", report.TotalsDrift)
	}
}
