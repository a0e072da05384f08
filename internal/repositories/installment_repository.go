package repositories

import (
	"context"
	"database/sql"

	intdb "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/db"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// InstallmentRepository stores the cuota plan of an order.
type InstallmentRepository struct {
	DB *sql.DB
}

// Replace swaps the whole plan: delete then insert, sequence numbered from 1.
// Must run inside one transaction so a partial failure cannot leave a
// half-written schedule.
func (r InstallmentRepository) Replace(ctx context.Context, tx *sql.Tx, orderID int64, entries []models.Installment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM installments WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO installments (order_id, sequence, amount, due_date, paid)
			VALUES (?, ?, ?, ?, 0)`,
			orderID, i+1, e.Amount, e.DueDate); err != nil {
			return err
		}
	}
	return nil
}

func (r InstallmentRepository) MarkPaid(ctx context.Context, q intdb.Querier, orderID int64, sequence int) error {
	res, err := q.ExecContext(ctx,
		`UPDATE installments SET paid = 1 WHERE order_id = ? AND sequence = ?`, orderID, sequence)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "installment"}
	}
	return nil
}

func (r InstallmentRepository) ListByOrder(ctx context.Context, q intdb.Querier, orderID int64) ([]models.Installment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, sequence, amount, COALESCE(due_date,''), paid
		FROM installments WHERE order_id = ? ORDER BY sequence`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Installment{}
	for rows.Next() {
		var e models.Installment
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Sequence, &e.Amount, &e.DueDate, &e.Paid); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
