package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/services"
)

type scheduleRequest struct {
	Entries []services.ScheduleEntry `json:"entries" binding:"required"`
}

func (h Handlers) ScheduleInstallments(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req scheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Installments
	svc.RequestID = middleware.GetRequestID(c)
	plan, err := svc.Schedule(c.Request.Context(), orderID, req.Entries)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": orderID, "installments": plan})
}

func (h Handlers) MarkInstallmentPaid(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	seq, ok := pathInt(c, "sequence")
	if !ok {
		return
	}
	svc := h.Installments
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.MarkPaid(c.Request.Context(), orderID, seq); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

func (h Handlers) GetInstallments(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	plan, err := h.Installments.Plan(c.Request.Context(), orderID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "installments": plan})
}
