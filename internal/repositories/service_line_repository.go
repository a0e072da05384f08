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

// ServiceLineRepository stores the per-passenger financial records. Lines are
// never hard-deleted once created; state changes are the only mutations.
type ServiceLineRepository struct {
	DB *sql.DB
}

func (r ServiceLineRepository) Insert(ctx context.Context, tx *sql.Tx, line models.ServiceLine) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO service_lines
		(passenger_id, order_id, service_type, acquisition, neto, venduto,
		 payment_state, paid_at, activated_at, travel_start, travel_end, notes,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		line.PassengerID, line.OrderID, line.ServiceType, line.Acquisition,
		line.Neto, line.Venduto, string(line.PaymentState),
		intdb.NullTime(line.PaidAt), intdb.NullTime(line.ActivatedAt),
		intdb.NullIfEmpty(line.TravelStart), intdb.NullIfEmpty(line.TravelEnd),
		intdb.NullIfEmpty(line.Notes))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ServiceLineRepository) GetByID(ctx context.Context, q intdb.Querier, lineID int64) (models.ServiceLine, error) {
	row := q.QueryRowContext(ctx, lineSelect+` WHERE id = ? LIMIT 1`, lineID)
	l, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceLine{}, domain.NotFoundError{Resource: "service line"}
	}
	return l, err
}

// GetByIDForUpdate locks the line row for a state transition.
func (r ServiceLineRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, lineID int64) (models.ServiceLine, error) {
	row := tx.QueryRowContext(ctx, lineSelect+` WHERE id = ? FOR UPDATE`, lineID)
	l, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceLine{}, domain.NotFoundError{Resource: "service line"}
	}
	return l, err
}

func (r ServiceLineRepository) ListByOrder(ctx context.Context, q intdb.Querier, orderID int64) ([]models.ServiceLine, error) {
	rows, err := q.QueryContext(ctx, lineSelect+` WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ServiceLine{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r ServiceLineRepository) SetPaymentState(ctx context.Context, tx *sql.Tx, lineID int64, state models.PaymentState, paidAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE service_lines SET payment_state = ?, paid_at = ?, updated_at = NOW() WHERE id = ?`,
		string(state), intdb.NullTime(paidAt), lineID)
	return err
}

func (r ServiceLineRepository) SetActivation(ctx context.Context, tx *sql.Tx, lineID int64, activatedAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE service_lines SET activated_at = ?, updated_at = NOW() WHERE id = ?`,
		intdb.NullTime(activatedAt), lineID)
	return err
}

func (r ServiceLineRepository) UpdateAmounts(ctx context.Context, tx *sql.Tx, lineID int64, neto, venduto float64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE service_lines SET neto = ?, venduto = ?, updated_at = NOW() WHERE id = ?`,
		neto, venduto, lineID)
	return err
}

func (r ServiceLineRepository) CountPaidByPassenger(ctx context.Context, q intdb.Querier, passengerID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM service_lines
		WHERE passenger_id = ? AND (payment_state = 'Pagato' OR paid_at IS NOT NULL)`,
		passengerID).Scan(&n)
	return n, err
}

// DeleteByPassenger removes a passenger's lines; callers must have verified no
// money has moved on any of them.
func (r ServiceLineRepository) DeleteByPassenger(ctx context.Context, tx *sql.Tx, passengerID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM service_lines WHERE passenger_id = ?`, passengerID)
	return err
}

// FindOrphans returns lines whose parent order is archived while the line
// still carries unresolved payment state.
func (r ServiceLineRepository) FindOrphans(ctx context.Context) ([]models.ServiceLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT sl.id, sl.passenger_id, sl.order_id, sl.service_type, COALESCE(sl.acquisition,''),
		       sl.neto, sl.venduto, sl.payment_state, sl.paid_at, sl.activated_at,
		       COALESCE(sl.travel_start,''), COALESCE(sl.travel_end,''), COALESCE(sl.notes,''),
		       sl.created_at, sl.updated_at
		FROM service_lines sl
		JOIN ticket_orders o ON o.id = sl.order_id
		WHERE o.status <> 'active' AND sl.payment_state = 'Pendiente'
		ORDER BY sl.order_id, sl.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ServiceLine{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindActivatedUnpaid reports the Unpaid/Active anomaly: a service activated
// before its payment cleared.
func (r ServiceLineRepository) FindActivatedUnpaid(ctx context.Context) ([]models.ServiceLine, error) {
	rows, err := r.DB.QueryContext(ctx, lineSelect+`
		WHERE payment_state = 'Pendiente' AND activated_at IS NOT NULL
		ORDER BY order_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ServiceLine{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const lineSelect = `
	SELECT id, passenger_id, order_id, service_type, COALESCE(acquisition,''),
	       neto, venduto, payment_state, paid_at, activated_at,
	       COALESCE(travel_start,''), COALESCE(travel_end,''), COALESCE(notes,''),
	       created_at, updated_at
	FROM service_lines`

func scanLine(sc rowScanner) (models.ServiceLine, error) {
	var l models.ServiceLine
	var state string
	var paidAt, activatedAt sql.NullTime
	if err := sc.Scan(&l.ID, &l.PassengerID, &l.OrderID, &l.ServiceType, &l.Acquisition,
		&l.Neto, &l.Venduto, &state, &paidAt, &activatedAt,
		&l.TravelStart, &l.TravelEnd, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return models.ServiceLine{}, err
	}
	l.PaymentState = models.PaymentState(state)
	if paidAt.Valid {
		t := paidAt.Time
		l.PaidAt = &t
	}
	if activatedAt.Valid {
		t := activatedAt.Time
		l.ActivatedAt = &t
	}
	return l, nil
}
