package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/services"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

// Handlers holds the wired services; the process entry point builds one and
// mounts it on the router. RequestID is injected per request before each call.
type Handlers struct {
	DB           *sql.DB
	Reservations services.SeatReservationService
	Orders       services.TicketOrderService
	Ledger       services.ServiceLineLedger
	Installments services.InstallmentScheduler
	Auditor      services.ConsistencyAuditor
	Trips        repositories.TripRepository
	Inventory    repositories.InventoryRepository
	Sales        repositories.SeatSaleRepository
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func pathInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid "+name, nil)
		return 0, false
	}
	return n, true
}

// parseOptionalAmount reads a money field that may arrive as a JSON number or
// a numeric string. Malformed values are an error, never a silent zero.
func parseOptionalAmount(fields map[string]json.RawMessage, key string) (*float64, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		if err := utils.CheckAmount(key, asNumber); err != nil {
			return nil, err
		}
		return &asNumber, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		v, err := utils.ParseAmount(key, asString)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	_, err := utils.ParseAmount(key, string(raw))
	return nil, err
}
