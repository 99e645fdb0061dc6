package fixedpoint

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

// PercentPlaces is the number of fractional digits kept in percentages.
const PercentPlaces = 2

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Format renders a with exactly Decimals() fractional digits, e.g.
// "1000.000000000000000000". Parse(Format(a), a.Decimals()) == a.
func Format(a Amount) string {
	return a.toDecimal().StringFixed(int32(a.decimals))
}

// FormatTrimmed renders a without trailing fractional zeros ("1000", "0.5").
// The result still parses back to a at the same decimals.
func FormatTrimmed(a Amount) string {
	return a.toDecimal().String()
}

// FormatDisplay renders a truncated toward zero to the given number of
// fractional digits. Display only: the result does not round-trip.
func FormatDisplay(a Amount, places int32) string {
	return a.toDecimal().Truncate(places).StringFixed(places)
}

// Parse reads a plain non-negative decimal string into an Amount with the
// given decimals. Digits beyond the scale are rejected unless they are zeros.
func Parse(s string, decimals uint8) (Amount, error) {
	shifted, err := parseShifted(s, decimals)
	if err != nil {
		return Amount{}, err
	}
	if !shifted.IsInteger() {
		return Amount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrMalformedAmount, s, decimals)
	}
	return New(shifted.BigInt(), decimals)
}

// ParseTruncate is like Parse but drops excess fractional digits, truncating
// toward zero so parsed totals never exceed what the user typed.
func ParseTruncate(s string, decimals uint8) (Amount, error) {
	shifted, err := parseShifted(s, decimals)
	if err != nil {
		return Amount{}, err
	}
	return New(shifted.Truncate(0).BigInt(), decimals)
}

func parseShifted(s string, decimals uint8) (decimal.Decimal, error) {
	if !amountPattern.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q: %v", ErrMalformedAmount, s, err)
	}
	return d.Shift(int32(decimals)), nil
}

// QuoRoundHalfUp returns num/den with the given number of fractional digits,
// rounding half-up on the integer remainder. Both operands must be
// non-negative.
func QuoRoundHalfUp(num, den *big.Int, places int32) (decimal.Decimal, error) {
	if num.Sign() < 0 || den.Sign() < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: negative ratio", ErrMalformedAmount)
	}
	if den.Sign() == 0 {
		return decimal.Decimal{}, ErrDivisionByZero
	}
	scaled := new(big.Int).Mul(num, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil))
	q, r := new(big.Int).QuoRem(scaled, den, new(big.Int))
	if r.Lsh(r, 1).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	return decimal.NewFromBigInt(q, -places), nil
}

// Percent returns num/den*100 rounded half-up to PercentPlaces digits.
func Percent(num, den *big.Int) (decimal.Decimal, error) {
	return QuoRoundHalfUp(new(big.Int).Mul(num, big.NewInt(100)), den, PercentPlaces)
}

func (a Amount) toDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.rawOrZero(), -int32(a.decimals))
}
