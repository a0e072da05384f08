package services

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/repositories"
	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/utils"
)

// ConsistencyAuditor is a read-only batch verifier. It reports past
// inconsistency and never repairs anything; repair is a manual, audited
// action.
type ConsistencyAuditor struct {
	DB           *sql.DB
	Sales        repositories.SeatSaleRepository
	Lines        repositories.ServiceLineRepository
	Orders       repositories.OrderRepository
	Installments repositories.InstallmentRepository
	RequestID    string
}

// TotalsDrift describes one order whose stored aggregates disagree with a
// fresh recomputation, or whose cuota plan no longer covers the balance.
type TotalsDrift struct {
	OrderID        int64              `json:"orderId"`
	Stored         domain.OrderTotals `json:"stored"`
	Recomputed     domain.OrderTotals `json:"recomputed"`
	InstallmentGap float64            `json:"installmentGap"`
}

// AuditReport is the result of one full run.
type AuditReport struct {
	OrphanSales     []models.SeatSale    `json:"orphanSales"`
	OrphanLines     []models.ServiceLine `json:"orphanLines"`
	ActivatedUnpaid []models.ServiceLine `json:"activatedUnpaid"`
	TotalsDrift     []TotalsDrift        `json:"totalsDrift"`
}

func (r AuditReport) Clean() bool {
	return len(r.OrphanSales) == 0 && len(r.OrphanLines) == 0 &&
		len(r.ActivatedUnpaid) == 0 && len(r.TotalsDrift) == 0
}

// FindOrphanSales lists sales whose trip or seat no longer resolves.
func (a ConsistencyAuditor) FindOrphanSales(ctx context.Context) ([]models.SeatSale, error) {
	return a.Sales.FindOrphans(ctx)
}

// FindOrphanOrderLines lists lines still Pendiente under an archived order.
func (a ConsistencyAuditor) FindOrphanOrderLines(ctx context.Context) ([]models.ServiceLine, error) {
	return a.Lines.FindOrphans(ctx)
}

// FindActivatedUnpaid lists the Unpaid/Active anomaly.
func (a ConsistencyAuditor) FindActivatedUnpaid(ctx context.Context) ([]models.ServiceLine, error) {
	return a.Lines.FindActivatedUnpaid(ctx)
}

// FindTotalsDrift compares stored aggregates of every active order against a
// fresh recomputation, and checks the cuota plan against the stored totals.
// A non-empty result means some write path bypassed the recompute.
func (a ConsistencyAuditor) FindTotalsDrift(ctx context.Context) ([]TotalsDrift, error) {
	ids, err := a.Orders.ListActiveIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := []TotalsDrift{}
	for _, id := range ids {
		order, err := a.Orders.GetByID(ctx, a.DB, id)
		if err != nil {
			return out, err
		}
		lines, err := a.Lines.ListByOrder(ctx, a.DB, id)
		if err != nil {
			return out, err
		}
		recomputed := domain.ComputeTotals(lines, order.Deposit)
		stored := domain.OrderTotals{
			TotalSalePrice: order.TotalSalePrice,
			AgencyFee:      order.AgencyFee,
			BalanceDue:     order.BalanceDue,
		}

		gap := 0.0
		cuotas, err := a.Installments.ListByOrder(ctx, a.DB, id)
		if err != nil {
			return out, err
		}
		if len(cuotas) > 0 {
			gap = domain.InstallmentGap(cuotas, order.Deposit, order.TotalSalePrice)
		}

		if !domain.MoneyEqual(stored.TotalSalePrice, recomputed.TotalSalePrice) ||
			!domain.MoneyEqual(stored.AgencyFee, recomputed.AgencyFee) ||
			!domain.MoneyEqual(stored.BalanceDue, recomputed.BalanceDue) ||
			!domain.MoneyEqual(gap, 0) {
			out = append(out, TotalsDrift{OrderID: id, Stored: stored, Recomputed: recomputed, InstallmentGap: gap})
		}
	}
	return out, nil
}

// RunOnce executes every check and logs a summary. Used by the cron job and
// the audit endpoint.
func (a ConsistencyAuditor) RunOnce(ctx context.Context) (AuditReport, error) {
	var report AuditReport
	var err error

	if report.OrphanSales, err = a.FindOrphanSales(ctx); err != nil {
		return report, err
	}
	if report.OrphanLines, err = a.FindOrphanOrderLines(ctx); err != nil {
		return report, err
	}
	if report.ActivatedUnpaid, err = a.FindActivatedUnpaid(ctx); err != nil {
		return report, err
	}
	if report.TotalsDrift, err = a.FindTotalsDrift(ctx); err != nil {
		return report, err
	}

	utils.LogEvent(a.RequestID, "auditor", "run",
		"orphan_sales="+strconv.Itoa(len(report.OrphanSales))+
			" orphan_lines="+strconv.Itoa(len(report.OrphanLines))+
			" activated_unpaid="+strconv.Itoa(len(report.ActivatedUnpaid))+
			" totals_drift="+strconv.Itoa(len(report.TotalsDrift)))
	return report, nil
}
