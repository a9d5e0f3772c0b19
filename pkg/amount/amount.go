// Package amount converts between human decimal strings and base-unit
// integer strings without ever touching binary floating point. Base-unit
// amounts are arbitrary-precision integers carried as decimal strings.
package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// decimalPattern is the accepted unsigned decimal grammar: optional integer
// part, optional dot plus fractional part, digits only.
var decimalPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// IsDecimalInput reports whether s matches the unsigned decimal grammar.
// The empty string matches the grammar but is not a convertible amount.
func IsDecimalInput(s string) bool {
	return decimalPattern.MatchString(s)
}

// ToBaseUnits parses a human decimal string into a base-unit integer string
// for an asset with the given decimal count. Inputs with more fractional
// digits than the asset supports are rejected rather than truncated, so
// malformed input fails loudly instead of silently losing precision.
func ToBaseUnits(input string, decimals int) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("amount is empty")
	}
	if decimals < 0 {
		return "", fmt.Errorf("negative decimal count %d", decimals)
	}
	if !IsDecimalInput(trimmed) || trimmed == "." {
		return "", fmt.Errorf("invalid decimal amount %q", trimmed)
	}

	whole, fraction := trimmed, ""
	if i := strings.IndexByte(trimmed, '.'); i >= 0 {
		whole, fraction = trimmed[:i], trimmed[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(fraction) > decimals {
		return "", fmt.Errorf("amount %q has more than %d fractional digits", trimmed, decimals)
	}

	raw := whole + fraction + strings.Repeat("0", decimals-len(fraction))
	units, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", fmt.Errorf("invalid decimal amount %q", trimmed)
	}

	return units.String(), nil
}

// FromBaseUnits renders a base-unit integer string as a decimal string with
// at most precision fractional digits, trimming trailing zeros. The sign is
// preserved. Malformed input renders as "0".
func FromBaseUnits(units string, decimals, precision int) string {
	value, ok := new(big.Int).SetString(strings.TrimSpace(units), 10)
	if !ok {
		return "0"
	}

	sign := ""
	if value.Sign() < 0 {
		sign = "-"
		value = new(big.Int).Neg(value)
	}

	if decimals <= 0 {
		return sign + value.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, rem := new(big.Int).QuoRem(value, divisor, new(big.Int))

	fraction := fmt.Sprintf("%0*s", decimals, rem.String())
	maxPrecision := precision
	if maxPrecision > decimals {
		maxPrecision = decimals
	}
	if maxPrecision < 0 {
		maxPrecision = 0
	}
	fraction = strings.TrimRight(fraction[:maxPrecision], "0")

	if fraction == "" {
		return sign + whole.String()
	}
	return sign + whole.String() + "." + fraction
}

// IsPositive reports whether units parses as an integer strictly greater
// than zero.
func IsPositive(units string) bool {
	value, ok := new(big.Int).SetString(strings.TrimSpace(units), 10)
	return ok && value.Sign() > 0
}

// IsWithinBalance reports whether amount <= balance as arbitrary-precision
// integers. Malformed input is never within balance.
func IsWithinBalance(amount, balance string) bool {
	a, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return false
	}
	b, ok := new(big.Int).SetString(strings.TrimSpace(balance), 10)
	if !ok {
		return false
	}
	return a.Cmp(b) <= 0
}
