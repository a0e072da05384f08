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

// activeClause is the single place the "active" predicate is written for a
// table; every query that must skip archived rows goes through it.
func activeClause(table string) string {
	return table + ".status = 'active'"
}

type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) Create(ctx context.Context, name, departureDate string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO trips (name, departure_date, status, created_at)
		VALUES (?, ?, 'active', NOW())`,
		strings.TrimSpace(name), departureDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TripRepository) GetByID(ctx context.Context, q intdb.Querier, tripID int64) (models.Trip, error) {
	var t models.Trip
	var status string
	err := q.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(departure_date,''), status, created_at
		FROM trips WHERE id = ? LIMIT 1`, tripID).
		Scan(&t.ID, &t.Name, &t.DepartureDate, &status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	if err != nil {
		return models.Trip{}, err
	}
	t.Status = models.Lifecycle(status)
	return t, nil
}

func (r TripRepository) Archive(ctx context.Context, tripID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE trips SET status = 'archived' WHERE id = ? AND `+activeClause("trips"), tripID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}
