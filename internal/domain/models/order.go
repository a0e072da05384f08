package models

import "time"

// PaymentState of a single service line. Orthogonal to activation: a paid
// visa can still be waiting for issuance, and staff sometimes activate a
// service before the money clears (the auditor flags that combination).
type PaymentState string

const (
	PaymentPendiente PaymentState = "Pendiente"
	PaymentPagato    PaymentState = "Pagato"
)

// TicketOrder is one purchase transaction. The three aggregate fields
// (TotalSalePrice, BalanceDue, AgencyFee) are derived values written only by
// the order service's recompute; nothing else may set them.
type TicketOrder struct {
	ID             int64     `json:"id"`
	ClientRef      string    `json:"client_ref"`
	TotalSalePrice float64   `json:"total_sale_price"`
	Deposit        float64   `json:"deposit"`
	BalanceDue     float64   `json:"balance_due"`
	AgencyFee      float64   `json:"agency_fee"`
	Status         Lifecycle `json:"status"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Passenger struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceLine is one purchased service (biglietto, insurance, carta de
// invitación, hotel...) for one passenger.
type ServiceLine struct {
	ID          int64   `json:"id"`
	PassengerID int64   `json:"passenger_id"`
	OrderID     int64   `json:"order_id"`
	ServiceType string  `json:"service_type"`
	Acquisition string  `json:"acquisition"`
	Neto        float64 `json:"neto"`
	Venduto     float64 `json:"venduto"`

	PaymentState PaymentState `json:"payment_state"`
	PaidAt       *time.Time   `json:"paid_at"`

	ActivatedAt *time.Time `json:"activated_at"`

	TravelStart string `json:"travel_start"`
	TravelEnd   string `json:"travel_end"`
	Notes       string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l ServiceLine) IsPaid() bool {
	return l.PaymentState == PaymentPagato
}

func (l ServiceLine) IsActive() bool {
	return l.ActivatedAt != nil
}

// Installment (cuota) is one scheduled partial payment of an order.
type Installment struct {
	ID       int64   `json:"id"`
	OrderID  int64   `json:"order_id"`
	Sequence int     `json:"sequence"`
	Amount   float64 `json:"amount"`
	DueDate  string  `json:"due_date"`
	Paid     bool    `json:"paid"`
}
