package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intdb "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/db"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// OrderRepository stores ticket orders and their passengers. The aggregate
// columns (total_sale_price, balance_due, agency_fee) are written only through
// UpdateTotals, which only the order service calls.
type OrderRepository struct {
	DB *sql.DB
}

func (r OrderRepository) Insert(ctx context.Context, tx *sql.Tx, clientRef string, deposit float64, createdBy string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO ticket_orders
		(client_ref, total_sale_price, deposit, balance_due, agency_fee, status, created_by, created_at, updated_at)
		VALUES (?, 0, ?, ?, 0, 'active', ?, NOW(), NOW())`,
		strings.TrimSpace(clientRef), deposit, -deposit, createdBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r OrderRepository) GetByID(ctx context.Context, q intdb.Querier, orderID int64) (models.TicketOrder, error) {
	var o models.TicketOrder
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, client_ref, total_sale_price, deposit, balance_due, agency_fee,
		       status, COALESCE(created_by,''), created_at, updated_at
		FROM ticket_orders WHERE id = ? LIMIT 1`, orderID).
		Scan(&o.ID, &o.ClientRef, &o.TotalSalePrice, &o.Deposit, &o.BalanceDue,
			&o.AgencyFee, &status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TicketOrder{}, domain.NotFoundError{Resource: "order"}
	}
	if err != nil {
		return models.TicketOrder{}, err
	}
	o.Status = models.Lifecycle(status)
	return o, nil
}

// UpdateTotals persists the three derived fields in one statement. Callers
// must already hold the transaction that read the lines.
func (r OrderRepository) UpdateTotals(ctx context.Context, tx *sql.Tx, orderID int64, totals domain.OrderTotals) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ticket_orders
		SET total_sale_price = ?, balance_due = ?, agency_fee = ?, updated_at = NOW()
		WHERE id = ?`,
		totals.TotalSalePrice, totals.BalanceDue, totals.AgencyFee, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "order"}
	}
	return nil
}

func (r OrderRepository) SetDeposit(ctx context.Context, tx *sql.Tx, orderID int64, deposit float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE ticket_orders SET deposit = ?, updated_at = NOW() WHERE id = ?`, deposit, orderID)
	return err
}

// Archive soft-deletes the order; financial history stays in place.
func (r OrderRepository) Archive(ctx context.Context, orderID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE ticket_orders SET status = 'archived', updated_at = NOW() WHERE id = ? AND `+activeClause("ticket_orders"),
		orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "order"}
	}
	return nil
}

// ListActiveIDs feeds the auditor's drift scan.
func (r OrderRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id FROM ticket_orders WHERE `+activeClause("ticket_orders")+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r OrderRepository) InsertPassenger(ctx context.Context, q intdb.Querier, orderID int64, name string) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO passengers (order_id, name, created_at) VALUES (?, ?, NOW())`,
		orderID, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r OrderRepository) GetPassenger(ctx context.Context, q intdb.Querier, passengerID int64) (models.Passenger, error) {
	var p models.Passenger
	err := q.QueryRowContext(ctx,
		`SELECT id, order_id, name, created_at FROM passengers WHERE id = ? LIMIT 1`, passengerID).
		Scan(&p.ID, &p.OrderID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Passenger{}, domain.NotFoundError{Resource: "passenger"}
	}
	return p, err
}

func (r OrderRepository) CountPassengers(ctx context.Context, q intdb.Querier, orderID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM passengers WHERE order_id = ?`, orderID).Scan(&n)
	return n, err
}

func (r OrderRepository) DeletePassenger(ctx context.Context, tx *sql.Tx, passengerID int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM passengers WHERE id = ?`, passengerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "passenger"}
	}
	return nil
}

func (r OrderRepository) ListPassengers(ctx context.Context, orderID int64) ([]models.Passenger, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, order_id, name, created_at FROM passengers WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Name, &p.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
