package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/services"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

type addLineRequest struct {
	PassengerID int64  `json:"passengerId" binding:"required"`
	ServiceType string `json:"serviceType" binding:"required"`
	Acquisition string `json:"acquisition"`
	Neto        string `json:"neto" binding:"required"`
	Venduto     string `json:"venduto" binding:"required"`
	TravelStart string `json:"travelStart"`
	TravelEnd   string `json:"travelEnd"`
	Notes       string `json:"notes"`
}

func (h Handlers) AddServiceLine(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addLineRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	neto, err := utils.ParseAmount("neto", req.Neto)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	venduto, err := utils.ParseAmount("venduto", req.Venduto)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Ledger
	svc.RequestID = middleware.GetRequestID(c)
	line, err := svc.AddLine(c.Request.Context(), orderID, req.PassengerID, services.LineInput{
		ServiceType: req.ServiceType,
		Acquisition: req.Acquisition,
		Neto:        neto,
		Venduto:     venduto,
		TravelStart: req.TravelStart,
		TravelEnd:   req.TravelEnd,
		Notes:       req.Notes,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

// SetPaymentState distinguishes "paidAt absent" from "paidAt: null" so an
// explicit null can clear the date while mere re-submission never does.
func (h Handlers) SetPaymentState(c *gin.Context) {
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if !BindJSONOrError(c, &fields) {
		return
	}

	var state string
	if raw, found := fields["state"]; found {
		if err := json.Unmarshal(raw, &state); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid state", err)
			return
		}
	}

	var paidAt *time.Time
	_, paidAtSet := fields["paidAt"]
	if raw, found := fields["paidAt"]; found && string(raw) != "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid paidAt", err)
			return
		}
		t, err := utils.ParseDateTime(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "paidAt expects YYYY-MM-DD HH:MM:SS", err)
			return
		}
		paidAt = &t
	}

	svc := h.Ledger
	svc.RequestID = middleware.GetRequestID(c)
	line, err := svc.SetPaymentState(c.Request.Context(), lineID, models.PaymentState(state), paidAt, paidAtSet)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h Handlers) SetActivationState(c *gin.Context) {
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if !BindJSONOrError(c, &fields) {
		return
	}

	var date *time.Time
	_, dateSet := fields["activatedAt"]
	if raw, found := fields["activatedAt"]; found && string(raw) != "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid activatedAt", err)
			return
		}
		t, err := utils.ParseDateTime(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "activatedAt expects YYYY-MM-DD HH:MM:SS", err)
			return
		}
		date = &t
	}

	svc := h.Ledger
	svc.RequestID = middleware.GetRequestID(c)
	line, err := svc.SetActivationState(c.Request.Context(), lineID, date, dateSet)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (h Handlers) UpdateLineAmounts(c *gin.Context) {
	lineID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var fields map[string]json.RawMessage
	if !BindJSONOrError(c, &fields) {
		return
	}
	neto, err := parseOptionalAmount(fields, "neto")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	venduto, err := parseOptionalAmount(fields, "venduto")
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := h.Ledger
	svc.RequestID = middleware.GetRequestID(c)
	line, err := svc.UpdateAmounts(c.Request.Context(), lineID, neto, venduto)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}
