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

const defaultTxTimeout = 5 * time.Second

// SeatReservationService is the only writer of seat status and seat_sales
// rows. Sell and Cancel each run as one bounded transaction; a failure leaves
// neither a Sold seat without a sale nor a sale without a Sold seat.
type SeatReservationService struct {
	DB        *sql.DB
	Trips     repositories.TripRepository
	Inventory repositories.InventoryRepository
	Sales     repositories.SeatSaleRepository
	TxTimeout time.Duration
	RequestID string
}

func (s SeatReservationService) timeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return defaultTxTimeout
}

// Provision creates the seat map for a trip, seats 1..count all Free.
// Re-provisioning an already-provisioned trip is rejected.
func (s SeatReservationService) Provision(ctx context.Context, tripID int64, count int) error {
	if count <= 0 {
		return domain.ValidationError{Field: "count", Msg: "must be positive"}
	}
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		trip, err := s.Trips.GetByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if !trip.IsActive() {
			return domain.ConflictError{Resource: "trip", Msg: "trip is archived"}
		}
		return s.Inventory.ProvisionSeats(ctx, tx, tripID, count)
	})
	if err == nil {
		utils.LogEvent(s.RequestID, "inventory", "provision",
			"trip_id="+strconv.FormatInt(tripID, 10)+" seats="+strconv.Itoa(count))
	}
	return err
}

// Sell flips a Free seat to Sold and records the immutable sale fact. Among
// concurrent sellers of the same seat exactly one wins; the rest get
// SeatAlreadySoldError and must re-query inventory, never retry blindly.
func (s SeatReservationService) Sell(ctx context.Context, tripID int64, seatNumber int, buyer models.Buyer, price float64, paymentMethod, actor string) (models.SeatSale, error) {
	buyer.Name = strings.TrimSpace(buyer.Name)
	if buyer.Name == "" {
		return models.SeatSale{}, domain.ValidationError{Field: "buyer.name", Msg: "required"}
	}
	if seatNumber <= 0 {
		return models.SeatSale{}, domain.ValidationError{Field: "seatNumber", Msg: "must be positive"}
	}
	if err := utils.CheckAmount("price", price); err != nil {
		return models.SeatSale{}, err
	}

	var sale models.SeatSale
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		trip, err := s.Trips.GetByID(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if !trip.IsActive() {
			return domain.ConflictError{Resource: "trip", Msg: "trip is archived"}
		}

		seat, err := s.Inventory.GetSeatForUpdate(ctx, tx, tripID, seatNumber)
		if err != nil {
			return err
		}
		if !seat.IsFree() {
			e := domain.SeatAlreadySoldError{TripID: tripID, SeatNumber: seatNumber}
			if seat.SoldAt != nil {
				e.SoldAt = *seat.SoldAt
			}
			return e
		}

		now := utils.NowUTC()
		if err := s.Inventory.MarkSold(ctx, tx, tripID, seatNumber, buyer, price, now); err != nil {
			return err
		}
		sale = models.SeatSale{
			TripID:        tripID,
			SeatNumber:    seatNumber,
			BuyerName:     buyer.Name,
			BuyerPhone:    buyer.Phone,
			Price:         price,
			PaymentMethod: paymentMethod,
			CreatedBy:     actor,
			CreatedAt:     now,
		}
		id, err := s.Sales.Insert(ctx, tx, sale)
		if err != nil {
			return err
		}
		sale.ID = id
		return nil
	})
	if err != nil {
		return models.SeatSale{}, err
	}

	utils.LogEvent(s.RequestID, "reservation", "sell",
		"trip_id="+strconv.FormatInt(tripID, 10)+" seat="+strconv.Itoa(seatNumber)+
			" price="+utils.FormatMoney(price)+" actor="+actor)
	return sale, nil
}

// Cancel resets a Sold seat to Free and removes its sale row(s). Authorization
// of the actor is decided upstream; here it is only recorded in the log.
func (s SeatReservationService) Cancel(ctx context.Context, tripID int64, seatNumber int, actor string) error {
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		seat, err := s.Inventory.GetSeatForUpdate(ctx, tx, tripID, seatNumber)
		if err != nil {
			return err
		}
		if seat.IsFree() {
			return domain.SeatNotSoldError{TripID: tripID, SeatNumber: seatNumber}
		}
		if err := s.Inventory.MarkFree(ctx, tx, tripID, seatNumber); err != nil {
			return err
		}
		deleted, err := s.Sales.DeleteBySeat(ctx, tx, tripID, seatNumber)
		if err != nil {
			return err
		}
		if deleted != 1 {
			// seat was Sold without exactly one sale row; cancel restores the
			// invariant, but the mismatch is worth a trace
			utils.LogEvent(s.RequestID, "reservation", "cancel",
				"sale rows deleted="+strconv.FormatInt(deleted, 10)+" for trip="+strconv.FormatInt(tripID, 10)+" seat="+strconv.Itoa(seatNumber))
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "reservation", "cancel",
		"trip_id="+strconv.FormatInt(tripID, 10)+" seat="+strconv.Itoa(seatNumber)+" actor="+actor)
	return nil
}
