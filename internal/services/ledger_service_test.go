package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
)

func newLedger(t *testing.T) (ServiceLineLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lines := repositories.ServiceLineRepository{DB: db}
	svc := ServiceLineLedger{
		DB:    db,
		Lines: lines,
		OrderSvc: TicketOrderService{
			DB:     db,
			Orders: repositories.OrderRepository{DB: db},
			Lines:  lines,
		},
	}
	return svc, mock
}

func singleLineRows(state string, paidAt, activatedAt any, neto, venduto float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "passenger_id", "order_id", "service_type", "acquisition", "neto", "venduto",
		"payment_state", "paid_at", "activated_at", "travel_start", "travel_end", "notes",
		"created_at", "updated_at",
	}).AddRow(int64(5), int64(1), int64(9), "visto", "", neto, venduto,
		state, paidAt, activatedAt, "", "", "", now, now)
}

func TestSetPaymentStatePagatoStampsNow(t *testing.T) {
	svc, mock := newLedger(t)

	stamped := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 100, 120))
	mock.ExpectExec("UPDATE service_lines").
		WithArgs("Pagato", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pagato", stamped, nil, 100, 120))
	mock.ExpectCommit()

	line, err := svc.SetPaymentState(context.Background(), 5, models.PaymentPagato, nil, false)
	if err != nil {
		t.Fatalf("set payment state failed: %v", err)
	}
	if line.PaidAt == nil {
		t.Fatal("paid_at should be stamped when transitioning to Pagato without a date")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetPaymentStateKeepsExistingDate(t *testing.T) {
	svc, mock := newLedger(t)

	original := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pagato", original, nil, 100, 120))
	// repeating the same call must pass the original date through unchanged
	mock.ExpectExec("UPDATE service_lines").
		WithArgs("Pagato", original, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pagato", original, nil, 100, 120))
	mock.ExpectCommit()

	line, err := svc.SetPaymentState(context.Background(), 5, models.PaymentPagato, nil, false)
	if err != nil {
		t.Fatalf("set payment state failed: %v", err)
	}
	if line.PaidAt == nil || !line.PaidAt.Equal(original) {
		t.Fatalf("paid_at changed: %v, want %v", line.PaidAt, original)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBackToPendienteKeepsDateUnlessCleared(t *testing.T) {
	svc, mock := newLedger(t)

	original := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pagato", original, nil, 100, 120))
	mock.ExpectExec("UPDATE service_lines").
		WithArgs("Pendiente", original, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", original, nil, 100, 120))
	mock.ExpectCommit()

	if _, err := svc.SetPaymentState(context.Background(), 5, models.PaymentPendiente, nil, false); err != nil {
		t.Fatalf("set payment state failed: %v", err)
	}

	// explicit null clears
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", original, nil, 100, 120))
	mock.ExpectExec("UPDATE service_lines").
		WithArgs("Pendiente", nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 100, 120))
	mock.ExpectCommit()

	line, err := svc.SetPaymentState(context.Background(), 5, models.PaymentPendiente, nil, true)
	if err != nil {
		t.Fatalf("explicit clear failed: %v", err)
	}
	if line.PaidAt != nil {
		t.Fatal("explicit null should clear paid_at")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetPaymentStateRejectsUnknownState(t *testing.T) {
	svc, mock := newLedger(t)

	if _, err := svc.SetPaymentState(context.Background(), 5, "Rimborsato", nil, false); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction opened for invalid state: %v", err)
	}
}

func TestActivationIndependentOfPayment(t *testing.T) {
	svc, mock := newLedger(t)

	// line is still Pendiente; activation must not touch payment columns
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 100, 120))
	mock.ExpectExec("SET activated_at").
		WithArgs(sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, time.Now(), 100, 120))
	mock.ExpectCommit()

	line, err := svc.SetActivationState(context.Background(), 5, nil, false)
	if err != nil {
		t.Fatalf("activation failed: %v", err)
	}
	if line.ActivatedAt == nil {
		t.Fatal("activation date should be stamped")
	}
	if line.PaymentState != models.PaymentPendiente {
		t.Fatal("activation must not change payment state")
	}
}

func TestUpdateAmountsTriggersRecompute(t *testing.T) {
	svc, mock := newLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 100, 120))
	mock.ExpectExec("SET neto").
		WithArgs(110.0, 140.0, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, client_ref").WithArgs(int64(9)).
		WillReturnRows(orderRows(9, 120, 40, 80, 20))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(9)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 110, 140))
	mock.ExpectExec("UPDATE ticket_orders").
		WithArgs(140.0, 100.0, 30.0, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM service_lines").WithArgs(int64(5)).
		WillReturnRows(singleLineRows("Pendiente", nil, nil, 110, 140))
	mock.ExpectCommit()

	neto, venduto := 110.0, 140.0
	line, err := svc.UpdateAmounts(context.Background(), 5, &neto, &venduto)
	if err != nil {
		t.Fatalf("update amounts failed: %v", err)
	}
	if line.Neto != 110 || line.Venduto != 140 {
		t.Fatalf("line amounts = %v/%v", line.Neto, line.Venduto)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateAmountsRejectsInvalid(t *testing.T) {
	svc, mock := newLedger(t)

	bad := -3.0
	if _, err := svc.UpdateAmounts(context.Background(), 5, &bad, nil); !domain.IsValidation(err) {
		t.Fatalf("negative neto: got %v", err)
	}
	if _, err := svc.UpdateAmounts(context.Background(), 5, nil, nil); !domain.IsValidation(err) {
		t.Fatalf("empty patch: got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("transaction opened for invalid input: %v", err)
	}
}
