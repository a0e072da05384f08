package models

import "time"

// Lifecycle is the uniform soft-delete state shared by trips and orders.
// Archived rows keep their financial history and never get hard-deleted.
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleArchived Lifecycle = "archived"
)

// Trip is the parent entity of a seat map. The reservation core only needs
// its lifecycle; routes, stops and pricing live in reference-data CRUD.
type Trip struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	DepartureDate string    `json:"departure_date"`
	Status        Lifecycle `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t Trip) IsActive() bool {
	return t.Status == LifecycleActive
}
