package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/db"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// InventoryRepository owns the seats table. Seats are provisioned once per
// trip and never deleted; only the reservation service flips their status.
type InventoryRepository struct {
	DB *sql.DB
}

// ProvisionSeats creates seats 1..count, all Free, inside one transaction.
// A trip that already has seats cannot be provisioned again.
func (r InventoryRepository) ProvisionSeats(ctx context.Context, tx *sql.Tx, tripID int64, count int) error {
	existing, err := r.CountSeats(ctx, tx, tripID)
	if err != nil {
		return err
	}
	if existing > 0 {
		return domain.TripAlreadyProvisionedError{TripID: tripID, SeatCount: existing}
	}
	for n := 1; n <= count; n++ {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO seats (trip_id, seat_number, status)
			VALUES (?, ?, 'free')`, tripID, n); err != nil {
			return err
		}
	}
	return nil
}

func (r InventoryRepository) CountSeats(ctx context.Context, q intdb.Querier, tripID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats WHERE trip_id = ?`, tripID).Scan(&n)
	return n, err
}

func (r InventoryRepository) GetSeat(ctx context.Context, tripID int64, seatNumber int) (models.Seat, error) {
	return scanSeat(r.DB.QueryRowContext(ctx, seatSelect+` WHERE trip_id = ? AND seat_number = ? LIMIT 1`,
		tripID, seatNumber))
}

// GetSeatForUpdate re-reads the seat under a row lock so two concurrent
// sellers cannot both observe it Free.
func (r InventoryRepository) GetSeatForUpdate(ctx context.Context, tx *sql.Tx, tripID int64, seatNumber int) (models.Seat, error) {
	return scanSeat(tx.QueryRowContext(ctx, seatSelect+` WHERE trip_id = ? AND seat_number = ? FOR UPDATE`,
		tripID, seatNumber))
}

func (r InventoryRepository) ListSeats(ctx context.Context, tripID int64) ([]models.Seat, error) {
	rows, err := r.DB.QueryContext(ctx, seatSelect+` WHERE trip_id = ? ORDER BY seat_number ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Seat{}
	for rows.Next() {
		s, err := scanSeatRows(rows)
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkSold flips the seat and writes the denormalized buyer snapshot. Must run
// in the same transaction as the SeatSale insert.
func (r InventoryRepository) MarkSold(ctx context.Context, tx *sql.Tx, tripID int64, seatNumber int, buyer models.Buyer, price float64, soldAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE seats
		SET status = 'sold', buyer_name = ?, buyer_phone = ?, sale_price = ?, sold_at = ?
		WHERE trip_id = ? AND seat_number = ? AND status = 'free'`,
		buyer.Name, buyer.Phone, price, soldAt, tripID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.SeatAlreadySoldError{TripID: tripID, SeatNumber: seatNumber}
	}
	return nil
}

// MarkFree resets the seat and clears the snapshot. Paired with the sale-row
// delete in the same transaction.
func (r InventoryRepository) MarkFree(ctx context.Context, tx *sql.Tx, tripID int64, seatNumber int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE seats
		SET status = 'free', buyer_name = NULL, buyer_phone = NULL, sale_price = NULL, sold_at = NULL
		WHERE trip_id = ? AND seat_number = ? AND status = 'sold'`,
		tripID, seatNumber)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.SeatNotSoldError{TripID: tripID, SeatNumber: seatNumber}
	}
	return nil
}

const seatSelect = `
	SELECT trip_id, seat_number, status,
	       COALESCE(buyer_name,''), COALESCE(buyer_phone,''),
	       COALESCE(sale_price,0), sold_at
	FROM seats`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeatFrom(sc rowScanner) (models.Seat, error) {
	var s models.Seat
	var status string
	var soldAt sql.NullTime
	if err := sc.Scan(&s.TripID, &s.SeatNumber, &status, &s.BuyerName, &s.BuyerPhone, &s.SalePrice, &soldAt); err != nil {
		return models.Seat{}, err
	}
	s.Status = models.SeatStatus(status)
	if soldAt.Valid {
		t := soldAt.Time
		s.SoldAt = &t
	}
	return s, nil
}

func scanSeat(row *sql.Row) (models.Seat, error) {
	s, err := scanSeatFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Seat{}, domain.NotFoundError{Resource: "seat"}
	}
	return s, err
}

func scanSeatRows(rows *sql.Rows) (models.Seat, error) {
	return scanSeatFrom(rows)
}
