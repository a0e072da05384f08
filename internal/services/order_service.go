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

// TicketOrderService is the consistency boundary for one order's totals.
// RecomputeInTx is the single place the aggregate fields are written; every
// other mutation path ends by calling it.
type TicketOrderService struct {
	DB        *sql.DB
	Orders    repositories.OrderRepository
	Lines     repositories.ServiceLineRepository
	TxTimeout time.Duration
	RequestID string
}

func (s TicketOrderService) timeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return defaultTxTimeout
}

// CreateOrder opens an order with its first passenger; an order never exists
// without at least one.
func (s TicketOrderService) CreateOrder(ctx context.Context, clientRef string, deposit float64, firstPassenger, actor string) (models.TicketOrder, models.Passenger, error) {
	if strings.TrimSpace(clientRef) == "" {
		return models.TicketOrder{}, models.Passenger{}, domain.ValidationError{Field: "clientRef", Msg: "required"}
	}
	if strings.TrimSpace(firstPassenger) == "" {
		return models.TicketOrder{}, models.Passenger{}, domain.ValidationError{Field: "passenger", Msg: "required"}
	}
	if err := utils.CheckAmount("deposit", deposit); err != nil {
		return models.TicketOrder{}, models.Passenger{}, err
	}

	var order models.TicketOrder
	var pax models.Passenger
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		orderID, err := s.Orders.Insert(ctx, tx, clientRef, deposit, actor)
		if err != nil {
			return err
		}
		paxID, err := s.Orders.InsertPassenger(ctx, tx, orderID, firstPassenger)
		if err != nil {
			return err
		}
		order, err = s.Orders.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		pax, err = s.Orders.GetPassenger(ctx, tx, paxID)
		return err
	})
	if err != nil {
		return models.TicketOrder{}, models.Passenger{}, err
	}
	utils.LogEvent(s.RequestID, "order", "create", "order_id="+strconv.FormatInt(order.ID, 10))
	return order, pax, nil
}

func (s TicketOrderService) GetOrder(ctx context.Context, orderID int64) (models.TicketOrder, error) {
	return s.Orders.GetByID(ctx, s.DB, orderID)
}

func (s TicketOrderService) AddPassenger(ctx context.Context, orderID int64, name string) (models.Passenger, error) {
	if strings.TrimSpace(name) == "" {
		return models.Passenger{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	var pax models.Passenger
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.Orders.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.LifecycleActive {
			return domain.ConflictError{Resource: "order", Msg: "order is archived"}
		}
		id, err := s.Orders.InsertPassenger(ctx, tx, orderID, name)
		if err != nil {
			return err
		}
		pax, err = s.Orders.GetPassenger(ctx, tx, id)
		return err
	})
	return pax, err
}

// RemovePassenger deletes a passenger and its unpaid service lines, then
// recomputes the order totals. The last passenger of an order cannot be
// removed, and a passenger with paid lines is kept (money has moved).
func (s TicketOrderService) RemovePassenger(ctx context.Context, passengerID int64) error {
	return intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		pax, err := s.Orders.GetPassenger(ctx, tx, passengerID)
		if err != nil {
			return err
		}
		count, err := s.Orders.CountPassengers(ctx, tx, pax.OrderID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return domain.CannotRemoveLastPassengerError{OrderID: pax.OrderID}
		}
		paid, err := s.Lines.CountPaidByPassenger(ctx, tx, passengerID)
		if err != nil {
			return err
		}
		if paid > 0 {
			return domain.ConflictError{Resource: "passenger", Msg: "has paid service lines"}
		}
		if err := s.Lines.DeleteByPassenger(ctx, tx, passengerID); err != nil {
			return err
		}
		if err := s.Orders.DeletePassenger(ctx, tx, passengerID); err != nil {
			return err
		}
		_, err = s.RecomputeInTx(ctx, tx, pax.OrderID)
		return err
	})
}

// RecomputeTotals re-derives the order aggregates from its service lines and
// persists them in one transaction. Under concurrent line edits on the same
// order the last writer wins; each individual write is still internally
// consistent because read and write share the transaction.
func (s TicketOrderService) RecomputeTotals(ctx context.Context, orderID int64) (domain.OrderTotals, error) {
	var totals domain.OrderTotals
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		var err error
		totals, err = s.RecomputeInTx(ctx, tx, orderID)
		return err
	})
	return totals, err
}

// RecomputeInTx is the only code path that writes total_sale_price,
// balance_due and agency_fee.
func (s TicketOrderService) RecomputeInTx(ctx context.Context, tx *sql.Tx, orderID int64) (domain.OrderTotals, error) {
	order, err := s.Orders.GetByID(ctx, tx, orderID)
	if err != nil {
		return domain.OrderTotals{}, err
	}
	lines, err := s.Lines.ListByOrder(ctx, tx, orderID)
	if err != nil {
		return domain.OrderTotals{}, err
	}
	totals := domain.ComputeTotals(lines, order.Deposit)
	if err := s.Orders.UpdateTotals(ctx, tx, orderID, totals); err != nil {
		return domain.OrderTotals{}, err
	}
	return totals, nil
}

// SetDeposit changes the deposit and recomputes balance due in the same
// transaction so the two can never drift apart.
func (s TicketOrderService) SetDeposit(ctx context.Context, orderID int64, deposit float64) (domain.OrderTotals, error) {
	if err := utils.CheckAmount("deposit", deposit); err != nil {
		return domain.OrderTotals{}, err
	}
	var totals domain.OrderTotals
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.Orders.GetByID(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.Orders.SetDeposit(ctx, tx, orderID, deposit); err != nil {
			return err
		}
		var err error
		totals, err = s.RecomputeInTx(ctx, tx, orderID)
		return err
	})
	return totals, err
}

// Archive soft-deletes the order. History, lines and cuotas stay readable.
func (s TicketOrderService) Archive(ctx context.Context, orderID int64) error {
	if err := s.Orders.Archive(ctx, orderID); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "order", "archive", "order_id="+strconv.FormatInt(orderID, 10))
	return nil
}
