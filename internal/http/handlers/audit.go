package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
)

// RunAudit executes all consistency checks on demand. Findings are reported,
// never auto-repaired.
func (h Handlers) RunAudit(c *gin.Context) {
	auditor := h.Auditor
	auditor.RequestID = middleware.GetRequestID(c)
	report, err := auditor.RunOnce(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clean": report.Clean(), "report": report})
}

func (h Handlers) AuditOrphanSales(c *gin.Context) {
	sales, err := h.Auditor.FindOrphanSales(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphanSales": sales})
}

func (h Handlers) AuditOrphanLines(c *gin.Context) {
	lines, err := h.Auditor.FindOrphanOrderLines(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orphanLines": lines})
}

func (h Handlers) AuditActivatedUnpaid(c *gin.Context) {
	lines, err := h.Auditor.FindActivatedUnpaid(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activatedUnpaid": lines})
}

func (h Handlers) AuditTotalsDrift(c *gin.Context) {
	drift, err := h.Auditor.FindTotalsDrift(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalsDrift": drift})
}
