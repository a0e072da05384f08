package utils

import (
	"errors"
	"math"
	"testing"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
)

func TestParseAmountPlainDecimal(t *testing.T) {
	v, err := ParseAmount("price", "85.00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 85 {
		t.Fatalf("got %v, want 85", v)
	}
}

func TestParseAmountEuropeanFormat(t *testing.T) {
	v, err := ParseAmount("venduto", "1.234,56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1234.56 {
		t.Fatalf("got %v, want 1234.56", v)
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "12x", "--5"} {
		if _, err := ParseAmount("neto", raw); err == nil {
			t.Fatalf("%q: expected InvalidAmountError, got nil", raw)
		} else {
			var target domain.InvalidAmountError
			if !errors.As(err, &target) {
				t.Fatalf("%q: wrong error type %T", raw, err)
			}
		}
	}
}

func TestParseAmountRejectsMixedSeparators(t *testing.T) {
	// "1,234.56" must not be read as the European "1.234,56" and collapse to
	// 1.23456; ambiguous separator order is rejected outright
	for _, raw := range []string{"1,234.56", "1,2.3", "1.2,3.4"} {
		_, err := ParseAmount("deposit", raw)
		var target domain.InvalidAmountError
		if !errors.As(err, &target) {
			t.Fatalf("%q: expected InvalidAmountError, got %v", raw, err)
		}
	}
}

func TestParseAmountRejectsNegative(t *testing.T) {
	if _, err := ParseAmount("price", "-10"); err == nil {
		t.Fatal("negative amount should be rejected")
	}
}

func TestCheckAmountRejectsNonFinite(t *testing.T) {
	if err := CheckAmount("price", math.NaN()); err == nil {
		t.Fatal("NaN should be rejected")
	}
	if err := CheckAmount("price", math.Inf(1)); err == nil {
		t.Fatal("Inf should be rejected")
	}
	if err := CheckAmount("price", 0); err != nil {
		t.Fatalf("zero is a valid amount: %v", err)
	}
}
