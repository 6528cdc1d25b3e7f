package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Monetary amounts are carried as integer cents. Totals are summed in
// cents only; decimal strings exist at the wire boundary.

var ErrInvalidAmount = errors.New("invalid monetary amount")

// ParseDecimal converts a decimal string with at most two fractional
// digits ("99.99", "5", "5.5") into cents.
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	cents := units * 100
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		cents += f
	}

	if neg {
		cents = -cents
	}

	return cents, nil
}

// FormatCents renders cents as a two-decimal string ("9999" -> "99.99").
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
