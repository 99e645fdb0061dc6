// Package fixedpoint implements exact token amounts: an integer count of
// smallest units plus the number of decimals that scale it for humans.
//
// Arithmetic never leaves the integers. Results keep the precision of their
// inputs and are bounded by the EVM word (2^256-1), so every Amount can be
// handed back to a contract unchanged.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Amount is an immutable token quantity equal to raw / 10^decimals.
// The zero value is a valid zero with 0 decimals.
type Amount struct {
	raw      *big.Int
	decimals uint8
}

// New creates an Amount from raw smallest units. raw is copied.
func New(raw *big.Int, decimals uint8) (Amount, error) {
	if raw == nil {
		return Amount{}, fmt.Errorf("%w: nil raw value", ErrMalformedAmount)
	}
	if raw.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: negative value %s", ErrMalformedAmount, raw)
	}
	if raw.BitLen() > 256 {
		return Amount{}, fmt.Errorf("%w: %d bits", ErrOverflow, raw.BitLen())
	}
	return Amount{raw: new(big.Int).Set(raw), decimals: decimals}, nil
}

// MustNew is like New but panics on error. Intended for constants and tests.
func MustNew(raw *big.Int, decimals uint8) Amount {
	a, err := New(raw, decimals)
	if err != nil {
		panic(err)
	}
	return a
}

// FromUint64 creates an Amount from a uint64 raw value.
func FromUint64(raw uint64, decimals uint8) Amount {
	return Amount{raw: new(big.Int).SetUint64(raw), decimals: decimals}
}

// FromUint256 creates an Amount from an EVM word.
func FromUint256(raw *uint256.Int, decimals uint8) Amount {
	return Amount{raw: raw.ToBig(), decimals: decimals}
}

// Zero returns a zero Amount at the given scale.
func Zero(decimals uint8) Amount {
	return Amount{raw: new(big.Int), decimals: decimals}
}

// Raw returns a copy of the raw value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Decimals returns the scale of the amount.
func (a Amount) Decimals() uint8 {
	return a.decimals
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Uint256 returns the raw value as an EVM word. It cannot overflow because
// every constructor enforces the bound.
func (a Amount) Uint256() *uint256.Int {
	u, _ := uint256.FromBig(a.rawOrZero())
	return u
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkScale(b); err != nil {
		return Amount{}, err
	}
	return bounded(new(big.Int).Add(a.rawOrZero(), b.rawOrZero()), a.decimals)
}

// Sub returns a - b, failing with ErrNegativeResult when b > a.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkScale(b); err != nil {
		return Amount{}, err
	}
	if a.rawOrZero().Cmp(b.rawOrZero()) < 0 {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrNegativeResult, a, b)
	}
	return Amount{raw: new(big.Int).Sub(a.rawOrZero(), b.rawOrZero()), decimals: a.decimals}, nil
}

// MulRaw multiplies the raw value by a dimensionless integer factor.
func (a Amount) MulRaw(factor *big.Int) (Amount, error) {
	if factor == nil || factor.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: invalid factor", ErrMalformedAmount)
	}
	return bounded(new(big.Int).Mul(a.rawOrZero(), factor), a.decimals)
}

// DivFloor divides the raw value by a dimensionless integer divisor,
// truncating toward zero. The result has the same decimals as a; precision is
// never widened to absorb the remainder.
func (a Amount) DivFloor(divisor *big.Int) (Amount, error) {
	if divisor == nil || divisor.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: invalid divisor", ErrMalformedAmount)
	}
	if divisor.Sign() == 0 {
		return Amount{}, ErrDivisionByZero
	}
	return Amount{raw: new(big.Int).Quo(a.rawOrZero(), divisor), decimals: a.decimals}, nil
}

// MulDivFloor returns floor(a * num / den). The intermediate product is kept
// at full precision, so only the final result is checked against the bound.
func (a Amount) MulDivFloor(num, den *big.Int) (Amount, error) {
	if num == nil || den == nil || num.Sign() < 0 || den.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: invalid ratio", ErrMalformedAmount)
	}
	if den.Sign() == 0 {
		return Amount{}, ErrDivisionByZero
	}
	q := new(big.Int).Mul(a.rawOrZero(), num)
	return bounded(q.Quo(q, den), a.decimals)
}

// Rescale returns the same value expressed with a different number of
// decimals. Scaling up multiplies by 10^Δ and may overflow; scaling down
// divides by 10^Δ and truncates toward zero.
func (a Amount) Rescale(decimals uint8) (Amount, error) {
	switch {
	case decimals == a.decimals:
		return Amount{raw: a.Raw(), decimals: decimals}, nil
	case decimals > a.decimals:
		return bounded(new(big.Int).Mul(a.rawOrZero(), Pow10(decimals-a.decimals)), decimals)
	default:
		return Amount{raw: new(big.Int).Quo(a.rawOrZero(), Pow10(a.decimals-decimals)), decimals: decimals}, nil
	}
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkScale(b); err != nil {
		return 0, err
	}
	return a.rawOrZero().Cmp(b.rawOrZero()), nil
}

// Equal reports whether a and b hold the same value at the same scale.
func (a Amount) Equal(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	return c == 0 && err == nil, err
}

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	return c > 0, err
}

// String renders the amount with Format.
func (a Amount) String() string {
	return Format(a)
}

func (a Amount) rawOrZero() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return a.raw
}

func (a Amount) checkScale(b Amount) error {
	if a.decimals != b.decimals {
		return fmt.Errorf("%w: %d vs %d decimals", ErrIncompatibleScale, a.decimals, b.decimals)
	}
	return nil
}

// bounded takes ownership of v.
func bounded(v *big.Int, decimals uint8) (Amount, error) {
	if v.BitLen() > 256 {
		return Amount{}, fmt.Errorf("%w: %d bits", ErrOverflow, v.BitLen())
	}
	return Amount{raw: v, decimals: decimals}, nil
}

// Pow10 returns 10^n as a new big.Int.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
