package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// SeatSaleRepository stores the immutable sale facts. The UNIQUE key on
// (trip_id, seat_number) is the last line of defense against a double sale
// slipping past the row lock.
type SeatSaleRepository struct {
	DB *sql.DB
}

func (r SeatSaleRepository) Insert(ctx context.Context, tx *sql.Tx, sale models.SeatSale) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO seat_sales
		(trip_id, seat_number, buyer_name, buyer_phone, price, payment_method, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.TripID, sale.SeatNumber, sale.BuyerName, sale.BuyerPhone,
		sale.Price, sale.PaymentMethod, sale.CreatedBy, sale.CreatedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, domain.SeatAlreadySoldError{TripID: sale.TripID, SeatNumber: sale.SeatNumber}
		}
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteBySeat removes the sale row(s) for a seat as part of a cancel.
func (r SeatSaleRepository) DeleteBySeat(ctx context.Context, tx *sql.Tx, tripID int64, seatNumber int) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM seat_sales WHERE trip_id = ? AND seat_number = ?`, tripID, seatNumber)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r SeatSaleRepository) GetBySeat(ctx context.Context, tripID int64, seatNumber int) (models.SeatSale, error) {
	var s models.SeatSale
	err := r.DB.QueryRowContext(ctx, saleSelect+`
		WHERE trip_id = ? AND seat_number = ? LIMIT 1`, tripID, seatNumber).
		Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.BuyerName, &s.BuyerPhone,
			&s.Price, &s.PaymentMethod, &s.CreatedBy, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SeatSale{}, domain.NotFoundError{Resource: "seat sale"}
	}
	return s, err
}

func (r SeatSaleRepository) ListByTrip(ctx context.Context, tripID int64) ([]models.SeatSale, error) {
	rows, err := r.DB.QueryContext(ctx, saleSelect+` WHERE trip_id = ? ORDER BY seat_number ASC`, tripID)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

// FindOrphans returns sales whose trip is gone or archived, or whose seat row
// no longer resolves. Read-only; used by the auditor.
func (r SeatSaleRepository) FindOrphans(ctx context.Context) ([]models.SeatSale, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ss.id, ss.trip_id, ss.seat_number, ss.buyer_name, COALESCE(ss.buyer_phone,''),
		       ss.price, COALESCE(ss.payment_method,''), COALESCE(ss.created_by,''), ss.created_at
		FROM seat_sales ss
		LEFT JOIN trips t ON t.id = ss.trip_id
		LEFT JOIN seats s ON s.trip_id = ss.trip_id AND s.seat_number = ss.seat_number
		WHERE t.id IS NULL OR t.status <> 'active' OR s.seat_number IS NULL
		ORDER BY ss.trip_id, ss.seat_number`)
	if err != nil {
		return nil, err
	}
	return collectSales(rows)
}

const saleSelect = `
	SELECT id, trip_id, seat_number, buyer_name, COALESCE(buyer_phone,''),
	       price, COALESCE(payment_method,''), COALESCE(created_by,''), created_at
	FROM seat_sales`

func collectSales(rows *sql.Rows) ([]models.SeatSale, error) {
	defer rows.Close()
	out := []models.SeatSale{}
	for rows.Next() {
		var s models.SeatSale
		if err := rows.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.BuyerName, &s.BuyerPhone,
			&s.Price, &s.PaymentMethod, &s.CreatedBy, &s.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
