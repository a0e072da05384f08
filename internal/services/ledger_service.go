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

// ServiceLineLedger owns the per-line state transitions. Payment state and
// activation state are two independent small state machines; neither implies
// the other.
type ServiceLineLedger struct {
	DB        *sql.DB
	Lines     repositories.ServiceLineRepository
	OrderSvc  TicketOrderService
	TxTimeout time.Duration
	RequestID string
}

func (s ServiceLineLedger) timeout() time.Duration {
	if s.TxTimeout > 0 {
		return s.TxTimeout
	}
	return defaultTxTimeout
}

// LineInput carries the fields of a new service line.
type LineInput struct {
	ServiceType string
	Acquisition string
	Neto        float64
	Venduto     float64
	TravelStart string
	TravelEnd   string
	Notes       string
}

// AddLine creates a line under a passenger and recomputes the order totals in
// the same transaction.
func (s ServiceLineLedger) AddLine(ctx context.Context, orderID, passengerID int64, in LineInput) (models.ServiceLine, error) {
	if strings.TrimSpace(in.ServiceType) == "" {
		return models.ServiceLine{}, domain.ValidationError{Field: "serviceType", Msg: "required"}
	}
	if err := utils.CheckAmount("neto", in.Neto); err != nil {
		return models.ServiceLine{}, err
	}
	if err := utils.CheckAmount("venduto", in.Venduto); err != nil {
		return models.ServiceLine{}, err
	}

	var line models.ServiceLine
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.OrderSvc.Orders.GetByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != models.LifecycleActive {
			return domain.ConflictError{Resource: "order", Msg: "order is archived"}
		}
		pax, err := s.OrderSvc.Orders.GetPassenger(ctx, tx, passengerID)
		if err != nil {
			return err
		}
		if pax.OrderID != orderID {
			return domain.ValidationError{Field: "passengerId", Msg: "passenger does not belong to order"}
		}

		id, err := s.Lines.Insert(ctx, tx, models.ServiceLine{
			PassengerID:  passengerID,
			OrderID:      orderID,
			ServiceType:  strings.TrimSpace(in.ServiceType),
			Acquisition:  strings.TrimSpace(in.Acquisition),
			Neto:         in.Neto,
			Venduto:      in.Venduto,
			PaymentState: models.PaymentPendiente,
			TravelStart:  in.TravelStart,
			TravelEnd:    in.TravelEnd,
			Notes:        in.Notes,
		})
		if err != nil {
			return err
		}
		if _, err := s.OrderSvc.RecomputeInTx(ctx, tx, orderID); err != nil {
			return err
		}
		line, err = s.Lines.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.ServiceLine{}, err
	}
	utils.LogEvent(s.RequestID, "ledger", "add_line", "line_id="+strconv.FormatInt(line.ID, 10))
	return line, nil
}

// SetPaymentState moves a line between Pendiente and Pagato.
//
// Date semantics: going to Pagato with no date on record and none supplied
// stamps now, and a repeat of the same call never overwrites it. Going back
// to Pendiente keeps the old date for the audit trail; only an explicitly
// supplied null (paidAtSet with nil paidAt) clears it.
func (s ServiceLineLedger) SetPaymentState(ctx context.Context, lineID int64, state models.PaymentState, paidAt *time.Time, paidAtSet bool) (models.ServiceLine, error) {
	if state != models.PaymentPendiente && state != models.PaymentPagato {
		return models.ServiceLine{}, domain.ValidationError{Field: "paymentState", Msg: "must be Pendiente or Pagato"}
	}

	var updated models.ServiceLine
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		line, err := s.Lines.GetByIDForUpdate(ctx, tx, lineID)
		if err != nil {
			return err
		}

		next := line.PaidAt
		switch {
		case paidAtSet:
			next = paidAt
		case state == models.PaymentPagato && line.PaidAt == nil:
			now := utils.NowUTC()
			next = &now
		}

		if err := s.Lines.SetPaymentState(ctx, tx, lineID, state, next); err != nil {
			return err
		}
		updated, err = s.Lines.GetByID(ctx, tx, lineID)
		return err
	})
	if err != nil {
		return models.ServiceLine{}, err
	}
	utils.LogEvent(s.RequestID, "ledger", "payment_state",
		"line_id="+strconv.FormatInt(lineID, 10)+" state="+string(state))
	return updated, nil
}

// SetActivationState activates or deactivates a line independently of its
// payment state. No date supplied means "activated now"; an explicit null
// deactivates.
func (s ServiceLineLedger) SetActivationState(ctx context.Context, lineID int64, date *time.Time, dateSet bool) (models.ServiceLine, error) {
	var updated models.ServiceLine
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.Lines.GetByIDForUpdate(ctx, tx, lineID); err != nil {
			return err
		}
		next := date
		if !dateSet {
			now := utils.NowUTC()
			next = &now
		}
		if err := s.Lines.SetActivation(ctx, tx, lineID, next); err != nil {
			return err
		}
		var err error
		updated, err = s.Lines.GetByID(ctx, tx, lineID)
		return err
	})
	return updated, err
}

// UpdateAmounts patches neto and/or venduto and recomputes the owning order's
// totals in the same transaction.
func (s ServiceLineLedger) UpdateAmounts(ctx context.Context, lineID int64, neto, venduto *float64) (models.ServiceLine, error) {
	if neto == nil && venduto == nil {
		return models.ServiceLine{}, domain.ValidationError{Msg: "nothing to update"}
	}
	if neto != nil {
		if err := utils.CheckAmount("neto", *neto); err != nil {
			return models.ServiceLine{}, err
		}
	}
	if venduto != nil {
		if err := utils.CheckAmount("venduto", *venduto); err != nil {
			return models.ServiceLine{}, err
		}
	}

	var updated models.ServiceLine
	err := intdb.WithTx(ctx, s.DB, s.timeout(), func(ctx context.Context, tx *sql.Tx) error {
		line, err := s.Lines.GetByIDForUpdate(ctx, tx, lineID)
		if err != nil {
			return err
		}
		newNeto, newVenduto := line.Neto, line.Venduto
		if neto != nil {
			newNeto = *neto
		}
		if venduto != nil {
			newVenduto = *venduto
		}
		if err := s.Lines.UpdateAmounts(ctx, tx, lineID, newNeto, newVenduto); err != nil {
			return err
		}
		if _, err := s.OrderSvc.RecomputeInTx(ctx, tx, line.OrderID); err != nil {
			return err
		}
		updated, err = s.Lines.GetByID(ctx, tx, lineID)
		return err
	})
	if err != nil {
		return models.ServiceLine{}, err
	}
	utils.LogEvent(s.RequestID, "ledger", "update_amounts", "line_id="+strconv.FormatInt(lineID, 10))
	return updated, nil
}
