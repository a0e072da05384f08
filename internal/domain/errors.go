package domain

import (
	"errors"
	"fmt"
	"time"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// SeatAlreadySoldError is returned to the losing seller of a concurrent sale.
// The message names the failing precondition so staff can resolve it manually.
type SeatAlreadySoldError struct {
	TripID     int64
	SeatNumber int
	SoldAt     time.Time
}

func (e SeatAlreadySoldError) Error() string {
	if e.SoldAt.IsZero() {
		return fmt.Sprintf("seat %d already sold", e.SeatNumber)
	}
	return fmt.Sprintf("seat %d already sold at %s", e.SeatNumber, e.SoldAt.Format("15:04"))
}

type SeatNotSoldError struct {
	TripID     int64
	SeatNumber int
}

func (e SeatNotSoldError) Error() string {
	return fmt.Sprintf("seat %d is not sold", e.SeatNumber)
}

type TripAlreadyProvisionedError struct {
	TripID    int64
	SeatCount int
}

func (e TripAlreadyProvisionedError) Error() string {
	return fmt.Sprintf("trip %d already has %d seats provisioned", e.TripID, e.SeatCount)
}

// InvalidAmountError rejects malformed or out-of-range money input instead of
// silently coercing it to zero.
type InvalidAmountError struct {
	Field string
	Raw   string
}

func (e InvalidAmountError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("%s: invalid amount", e.Field)
	}
	return fmt.Sprintf("%s: invalid amount %q", e.Field, e.Raw)
}

type CannotRemoveLastPassengerError struct {
	OrderID int64
}

func (e CannotRemoveLastPassengerError) Error() string {
	return fmt.Sprintf("order %d must keep at least one passenger", e.OrderID)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var v ValidationError
	if errors.As(err, &v) {
		return true
	}
	var a InvalidAmountError
	if errors.As(err, &a) {
		return true
	}
	var p CannotRemoveLastPassengerError
	return errors.As(err, &p)
}

func IsConflict(err error) bool {
	var c ConflictError
	if errors.As(err, &c) {
		return true
	}
	var sold SeatAlreadySoldError
	if errors.As(err, &sold) {
		return true
	}
	var free SeatNotSoldError
	if errors.As(err, &free) {
		return true
	}
	var prov TripAlreadyProvisionedError
	return errors.As(err, &prov)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
