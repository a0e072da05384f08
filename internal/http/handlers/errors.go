package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
)

// RespondDomainError maps domain errors to HTTP responses. Conflict and
// validation messages carry the failed precondition; infrastructure failures
// stay generic and are safe to retry after a fresh read.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondCoded(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondCoded(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsConflict(err):
		respondCoded(c, http.StatusConflict, "conflict", err.Error())
	default:
		respondCoded(c, http.StatusInternalServerError, "internal_error", "transient failure, retry after re-reading state")
	}
}

func respondCoded(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}
