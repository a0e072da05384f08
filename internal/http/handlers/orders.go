package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

type createOrderRequest struct {
	ClientRef string `json:"clientRef" binding:"required"`
	Deposit   string `json:"deposit"`
	Passenger string `json:"passenger" binding:"required"`
}

func (h Handlers) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	deposit := 0.0
	if req.Deposit != "" {
		v, err := utils.ParseAmount("deposit", req.Deposit)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		deposit = v
	}

	svc := h.Orders
	svc.RequestID = middleware.GetRequestID(c)
	order, pax, err := svc.CreateOrder(c.Request.Context(), req.ClientRef, deposit, req.Passenger, middleware.GetActor(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "passenger": pax})
}

func (h Handlers) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	order, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	passengers, err := h.Orders.Orders.ListPassengers(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	lines, err := h.Ledger.Lines.ListByOrder(ctx, h.DB, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	plan, err := h.Installments.Plan(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":        order,
		"passengers":   passengers,
		"serviceLines": lines,
		"installments": plan,
	})
}

type addPassengerRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h Handlers) AddPassenger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addPassengerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	pax, err := h.Orders.AddPassenger(c.Request.Context(), id, req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pax)
}

func (h Handlers) RemovePassenger(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc := h.Orders
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.RemovePassenger(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h Handlers) RecomputeOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc := h.Orders
	svc.RequestID = middleware.GetRequestID(c)
	totals, err := svc.RecomputeTotals(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

type setDepositRequest struct {
	Deposit string `json:"deposit" binding:"required"`
}

func (h Handlers) SetDeposit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setDepositRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	deposit, err := utils.ParseAmount("deposit", req.Deposit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	svc := h.Orders
	svc.RequestID = middleware.GetRequestID(c)
	totals, err := svc.SetDeposit(c.Request.Context(), id, deposit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h Handlers) ArchiveOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	svc := h.Orders
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.Archive(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}
