package fixedpoint

import "errors"

var (
	// ErrIncompatibleScale is returned when two amounts with different decimals
	// are combined or compared without an explicit Rescale.
	ErrIncompatibleScale = errors.New("fixedpoint: incompatible scale")

	// ErrOverflow is returned when a raw value does not fit in an EVM word.
	ErrOverflow = errors.New("fixedpoint: overflow")

	// ErrMalformedAmount is returned for unparsable, negative or nil amounts.
	ErrMalformedAmount = errors.New("fixedpoint: malformed amount")

	ErrNegativeResult = errors.New("fixedpoint: negative result")
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
)
