package models

import "time"

type SeatStatus string

const (
	SeatFree SeatStatus = "free"
	SeatSold SeatStatus = "sold"
)

// Seat is one sellable unit of capacity on a trip. While Sold it carries a
// denormalized snapshot of the buyer; the snapshot and the matching SeatSale
// row are always written together in one transaction.
type Seat struct {
	TripID     int64      `json:"trip_id"`
	SeatNumber int        `json:"seat_number"`
	Status     SeatStatus `json:"status"`

	// snapshot, zero-valued while Free
	BuyerName  string     `json:"buyer_name"`
	BuyerPhone string     `json:"buyer_phone"`
	SalePrice  float64    `json:"sale_price"`
	SoldAt     *time.Time `json:"sold_at"`
}

func (s Seat) IsFree() bool {
	return s.Status == SeatFree
}

// Buyer is the contact captured at sale time.
type Buyer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SeatSale is an immutable historical fact; it is created by Sell and removed
// only by the paired Cancel.
type SeatSale struct {
	ID            int64     `json:"id"`
	TripID        int64     `json:"trip_id"`
	SeatNumber    int       `json:"seat_number"`
	BuyerName     string    `json:"buyer_name"`
	BuyerPhone    string    `json:"buyer_phone"`
	Price         float64   `json:"price"`
	PaymentMethod string    `json:"payment_method"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
