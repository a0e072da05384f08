package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mirkodgzconsulting/gibravotravel-sub004/internal/domain"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// ParseAmount parses a money field from user input. Rejects malformed strings,
// negatives, NaN and infinities instead of coercing them to zero.
func ParseAmount(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	// tolerate "1.234,56" style input from the back office UI; any dot after
	// the last comma means the separators disagree ("1,234.56") and guessing
	// would corrupt the amount
	if strings.Contains(s, ",") {
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			return 0, domain.InvalidAmountError{Field: field, Raw: raw}
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	if s == "" {
		return 0, domain.InvalidAmountError{Field: field, Raw: raw}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.InvalidAmountError{Field: field, Raw: raw}
	}
	if err := CheckAmount(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

// CheckAmount validates an already-numeric amount.
func CheckAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return domain.InvalidAmountError{Field: field, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return nil
}
