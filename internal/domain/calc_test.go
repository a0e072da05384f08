package domain

import (
	"testing"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain/models"
)

func TestComputeTotalsSumsVendutoAndFee(t *testing.T) {
	lines := []models.ServiceLine{
		{Neto: 100, Venduto: 120},
		{Neto: 50, Venduto: 70},
	}

	totals := ComputeTotals(lines, 40)

	if totals.TotalSalePrice != 190 {
		t.Fatalf("total sale price = %v, want 190", totals.TotalSalePrice)
	}
	if totals.AgencyFee != 40 {
		t.Fatalf("agency fee = %v, want 40", totals.AgencyFee)
	}
	if totals.BalanceDue != 150 {
		t.Fatalf("balance due = %v, want 150", totals.BalanceDue)
	}
}

func TestComputeTotalsIsIdempotent(t *testing.T) {
	lines := []models.ServiceLine{{Neto: 33.33, Venduto: 99.99}}

	first := ComputeTotals(lines, 10)
	second := ComputeTotals(lines, 10)

	if first != second {
		t.Fatalf("recompute not stable: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsEmptyOrder(t *testing.T) {
	totals := ComputeTotals(nil, 25)
	if totals.TotalSalePrice != 0 || totals.AgencyFee != 0 {
		t.Fatalf("empty order totals = %+v, want zeros", totals)
	}
	if totals.BalanceDue != -25 {
		t.Fatalf("balance due = %v, want -25 (deposit without lines)", totals.BalanceDue)
	}
}

func TestInstallmentGapCoherentPlan(t *testing.T) {
	// order: total 190, deposit 40, cuotas 75+75 cover the 150 balance
	plan := []models.Installment{
		{Sequence: 1, Amount: 75},
		{Sequence: 2, Amount: 75},
	}

	gap := InstallmentGap(plan, 40, 190)
	if !MoneyEqual(gap, 0) {
		t.Fatalf("gap = %v, want 0", gap)
	}
}

func TestInstallmentGapDetectsShrunkCuota(t *testing.T) {
	plan := []models.Installment{
		{Sequence: 1, Amount: 50},
		{Sequence: 2, Amount: 75},
	}

	gap := InstallmentGap(plan, 40, 190)
	if MoneyEqual(gap, 0) {
		t.Fatal("expected non-zero gap after shrinking a cuota")
	}
	if !MoneyEqual(gap, -25) {
		t.Fatalf("gap = %v, want -25", gap)
	}
}

func TestInstallmentGapIgnoresPaidCuotasOnly(t *testing.T) {
	// marking a cuota paid without reconciling deposit/balance is the
	// documented consistency gap; it must show up as drift
	plan := []models.Installment{
		{Sequence: 1, Amount: 75, Paid: true},
		{Sequence: 2, Amount: 75},
	}

	gap := InstallmentGap(plan, 40, 190)
	if MoneyEqual(gap, 0) {
		t.Fatal("paid cuota without deposit update should produce a gap")
	}
}

func TestMoneyEqualTolerance(t *testing.T) {
	if !MoneyEqual(10.001, 10.004) {
		t.Fatal("sub-epsilon difference should compare equal")
	}
	if MoneyEqual(10.00, 10.01) {
		t.Fatal("a whole cent apart should not compare equal")
	}
}
