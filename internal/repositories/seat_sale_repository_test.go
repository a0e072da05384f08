package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// The UNIQUE key on (trip_id, seat_number) is the backstop against a double
// sale racing past the row lock; the duplicate-key error must surface as the
// same conflict the lock path produces.
func TestInsertMapsDuplicateKeyToConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seat_sales").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7-12' for key 'uq_trip_seat'"})

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	repo := SeatSaleRepository{DB: db}
	_, err = repo.Insert(context.Background(), tx, models.SeatSale{
		TripID:     7,
		SeatNumber: 12,
		BuyerName:  "Ana Morales",
		Price:      85,
		CreatedAt:  time.Now(),
	})

	var sold domain.SeatAlreadySoldError
	if !errors.As(err, &sold) {
		t.Fatalf("expected seat-already-sold, got %v", err)
	}
	if sold.TripID != 7 || sold.SeatNumber != 12 {
		t.Fatalf("conflict identifies wrong seat: %+v", sold)
	}
	if !domain.IsConflict(err) {
		t.Fatal("duplicate sale should map to a conflict response")
	}
}

func TestInsertPassesThroughOtherErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seat_sales").
		WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	repo := SeatSaleRepository{DB: db}
	_, err = repo.Insert(context.Background(), tx, models.SeatSale{TripID: 7, SeatNumber: 12})
	if domain.IsConflict(err) {
		t.Fatalf("non-duplicate errors must not be rewritten: %v", err)
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1205 {
		t.Fatalf("expected the raw driver error, got %v", err)
	}
}
