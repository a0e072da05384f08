package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

type sellSeatRequest struct {
	Buyer         models.Buyer `json:"buyer" binding:"required"`
	Price         string       `json:"price" binding:"required"`
	PaymentMethod string       `json:"paymentMethod"`
}

// SellSeat sells one seat. On conflict the response names the seat and the
// time it was sold; the caller must re-query the seat map, not retry.
func (h Handlers) SellSeat(c *gin.Context) {
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seatNumber, ok := pathInt(c, "number")
	if !ok {
		return
	}
	var req sellSeatRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	price, err := utils.ParseAmount("price", req.Price)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Reservations
	svc.RequestID = middleware.GetRequestID(c)
	sale, err := svc.Sell(c.Request.Context(), tripID, seatNumber, req.Buyer, price, req.PaymentMethod, middleware.GetActor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h Handlers) CancelSeat(c *gin.Context) {
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seatNumber, ok := pathInt(c, "number")
	if !ok {
		return
	}

	svc := h.Reservations
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.Cancel(c.Request.Context(), tripID, seatNumber, middleware.GetActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h Handlers) ListSales(c *gin.Context) {
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sales, err := h.Sales.ListByTrip(c.Request.Context(), tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tripId": tripID, "sales": sales})
}
