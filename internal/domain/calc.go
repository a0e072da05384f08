package domain

import (
	"math"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

// MoneyEpsilon is the tolerance for float comparisons on totals (half a cent).
const MoneyEpsilon = 0.005

// OrderTotals holds the derived aggregate fields of a ticket order.
type OrderTotals struct {
	TotalSalePrice float64 `json:"totalSalePrice"`
	AgencyFee      float64 `json:"agencyFee"`
	BalanceDue     float64 `json:"balanceDue"`
}

// ComputeTotals derives order aggregates from its service lines:
// total sale is the sum of venduto, the agency fee is venduto minus neto
// summed across lines, and the balance is total minus deposit.
func ComputeTotals(lines []models.ServiceLine, deposit float64) OrderTotals {
	var total, fee float64
	for _, l := range lines {
		total += l.Venduto
		fee += l.Venduto - l.Neto
	}
	return OrderTotals{
		TotalSalePrice: roundMoney(total),
		AgencyFee:      roundMoney(fee),
		BalanceDue:     roundMoney(total - deposit),
	}
}

// InstallmentGap returns how far Σ(unpaid cuota amounts) + deposit is from the
// total sale price, i.e. how far the unpaid cuotas are from covering the
// balance due. Zero (within MoneyEpsilon) means the payment plan is coherent.
// A non-zero gap is a data-integrity finding, never silently corrected.
func InstallmentGap(entries []models.Installment, deposit, totalSalePrice float64) float64 {
	var unpaid float64
	for _, e := range entries {
		if !e.Paid {
			unpaid += e.Amount
		}
	}
	return roundMoney(unpaid + deposit - totalSalePrice)
}

// MoneyEqual compares two amounts within MoneyEpsilon.
func MoneyEqual(a, b float64) bool {
	return math.Abs(a-b) < MoneyEpsilon
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}
