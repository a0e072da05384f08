package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	intdb "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/db"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

// InstallmentScheduler manages the cuota plan of an order.
type InstallmentScheduler struct {
	DB           *sql.DB
	Installments repositories.InstallmentRepository
	Orders       repositories.OrderRepository
	TxTimeout    time.Duration
	RequestID    string
}

func (s InstallmentScheduler) timeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return defaultTxTimeout
}

// ScheduleEntry is one requested cuota.
type ScheduleEntry struct {
	Amount  float64 `json:"amount"`
	DueDate string  `json:"dueDate"`
}

// Schedule replaces the whole plan atomically (delete then insert under one
// transaction). Sequence numbers are assigned from the entry order.
func (s InstallmentScheduler) Schedule(ctx context.Context, orderID int64, entries []ScheduleEntry) ([]models.Installment, error) {
	if len(entries) == 0 {
		return nil, domain.ValidationError{Field: "entries", Msg: "at least one installment required"}
	}
	plan := make([]models.Installment, 0, len(entries))
	for i, e := range entries {
		field := "entries[" + strconv.Itoa(i) + "].amount"
		if err := utils.CheckAmount(field, e.Amount); err != nil {
			return nil, err
		}
		due := strings.TrimSpace(e.DueDate)
		if _, err := utils.ParseDate(due); err != nil {
			return nil, domain.ValidationError{Field: "entries[" + strconv.Itoa(i) + "].dueDate", Msg: "expected YYYY-MM-DD"}
		}
		plan = append(plan, models.Installment{OrderID: orderID, Sequence: i + 1, Amount: e.Amount, DueDate: due})
	}

	var stored []models.Installment
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.Orders.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.LifecycleActive {
			return domain.ConflictError{Resource: "order", Msg: "order is archived"}
		}
		if err := s.Installments.Replace(ctx, tx, orderID, plan); err != nil {
			return err
		}
		stored, err = s.Installments.ListByOrder(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "installments", "schedule",
		"order_id="+strconv.FormatInt(orderID, 10)+" cuotas="+strconv.Itoa(len(stored)))
	return stored, nil
}

// MarkPaid sets the paid flag of one cuota. It deliberately does not touch the
// order's deposit or balance; the two are related by convention only and the
// auditor reports when they diverge.
func (s InstallmentScheduler) MarkPaid(ctx context.Context, orderID int64, sequence int) error {
	if sequence <= 0 {
		return domain.ValidationError{Field: "sequence", Msg: "must be positive"}
	}
	if err := s.Installments.MarkPaid(ctx, s.DB, orderID, sequence); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "installments", "mark_paid",
		"order_id="+strconv.FormatInt(orderID, 10)+" cuota="+strconv.Itoa(sequence))
	return nil
}

// Plan returns the current cuota list of an order.
func (s InstallmentScheduler) Plan(ctx context.Context, orderID int64) ([]models.Installment, error) {
	return s.Installments.ListByOrder(ctx, s.DB, orderID)
}
