package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
)

type createTripRequest struct {
	Name          string `json:"name" binding:"required"`
	DepartureDate string `json:"departureDate"`
}

func (h Handlers) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	id, err := h.Trips.Create(c.Request.Context(), req.Name, req.DepartureDate)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	trip, err := h.Trips.GetByID(c.Request.Context(), h.DB, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h Handlers) GetTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trip, err := h.Trips.GetByID(c.Request.Context(), h.DB, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h Handlers) ArchiveTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Trips.Archive(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}

type provisionRequest struct {
	Count int `json:"count" binding:"required"`
}

func (h Handlers) ProvisionSeats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req provisionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Reservations
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.Provision(c.Request.Context(), id, req.Count); err != nil {
		RespondDomainError(c, err)
		return
	}
	seats, err := h.Inventory.ListSeats(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tripId": id, "seats": seats})
}

func (h Handlers) ListSeats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	seats, err := h.Inventory.ListSeats(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tripId": id, "seats": seats})
}

func (h Handlers) GetSeat(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, ok := pathInt(c, "number")
	if !ok {
		return
	}
	seat, err := h.Inventory.GetSeat(c.Request.Context(), id, n)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}
