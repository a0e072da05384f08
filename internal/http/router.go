package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	h "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/handlers"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/middleware"
)

func NewRouter(handlers h.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(), middleware.Identity())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handlers.Health)
		api.GET("/db-check", handlers.DBCheck)

		// Trips & seat inventory
		trips := api.Group("/trips")
		trips.POST("", handlers.CreateTrip)
		trips.GET("/:id", handlers.GetTrip)
		trips.DELETE("/:id", handlers.ArchiveTrip)
		trips.POST("/:id/seats", handlers.ProvisionSeats)
		trips.GET("/:id/seats", handlers.ListSeats)
		trips.GET("/:id/seats/:number", handlers.GetSeat)

		// Seat sales
		trips.POST("/:id/seats/:number/sell", handlers.SellSeat)
		trips.POST("/:id/seats/:number/cancel", handlers.CancelSeat)
		trips.GET("/:id/sales", handlers.ListSales)

		// Ticket orders
		orders := api.Group("/orders")
		orders.POST("", handlers.CreateOrder)
		orders.GET("/:id", handlers.GetOrder)
		orders.DELETE("/:id", handlers.ArchiveOrder)
		orders.POST("/:id/passengers", handlers.AddPassenger)
		orders.POST("/:id/recompute", handlers.RecomputeOrder)
		orders.PUT("/:id/deposit", handlers.SetDeposit)
		orders.POST("/:id/service-lines", handlers.AddServiceLine)

		// Cuotas
		orders.PUT("/:id/installments", handlers.ScheduleInstallments)
		orders.GET("/:id/installments", handlers.GetInstallments)
		orders.PUT("/:id/installments/:sequence/paid", handlers.MarkInstallmentPaid)

		// Passengers & service lines addressed by own id
		api.DELETE("/passengers/:id", handlers.RemovePassenger)
		lines := api.Group("/service-lines")
		lines.PUT("/:id/payment-state", handlers.SetPaymentState)
		lines.PUT("/:id/activation", handlers.SetActivationState)
		lines.PATCH("/:id/amounts", handlers.UpdateLineAmounts)

		// Consistency audit (read-only)
		audit := api.Group("/audit")
		audit.POST("/run", handlers.RunAudit)
		audit.GET("/orphan-sales", handlers.AuditOrphanSales)
		audit.GET("/orphan-lines", handlers.AuditOrphanLines)
		audit.GET("/activated-unpaid", handlers.AuditActivatedUnpaid)
		audit.GET("/totals-drift", handlers.AuditTotalsDrift)
	}

	return r
}
