package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	intconfig "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/config"
	router "github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/http/handlers"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/jobs"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/services"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.OpenDB(env)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer db.Close()

	tripRepo := repositories.TripRepository{DB: db}
	inventoryRepo := repositories.InventoryRepository{DB: db}
	saleRepo := repositories.SeatSaleRepository{DB: db}
	orderRepo := repositories.OrderRepository{DB: db}
	lineRepo := repositories.ServiceLineRepository{DB: db}
	installmentRepo := repositories.InstallmentRepository{DB: db}

	orderSvc := services.TicketOrderService{DB: db, Orders: orderRepo, Lines: lineRepo, TxTimeout: env.TxTimeout}
	auditor := services.ConsistencyAuditor{
		DB:           db,
		Sales:        saleRepo,
		Lines:        lineRepo,
		Orders:       orderRepo,
		Installments: installmentRepo,
	}

	h := handlers.Handlers{
		DB: db,
		Reservations: services.SeatReservationService{
			DB: db, Trips: tripRepo, Inventory: inventoryRepo, Sales: saleRepo, TxTimeout: env.TxTimeout,
		},
		Orders:       orderSvc,
		Ledger:       services.ServiceLineLedger{DB: db, Lines: lineRepo, OrderSvc: orderSvc, TxTimeout: env.TxTimeout},
		Installments: services.InstallmentScheduler{DB: db, Installments: installmentRepo, Orders: orderRepo, TxTimeout: env.TxTimeout},
		Auditor:      auditor,
		Trips:        tripRepo,
		Inventory:    inventoryRepo,
		Sales:        saleRepo,
	}

	scheduler, err := jobs.StartAuditScheduler(env.AuditSpec, auditor)
	if err != nil {
		log.Fatalf("audit scheduler init failed: %v", err)
	}

	r := router.NewRouter(h)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
