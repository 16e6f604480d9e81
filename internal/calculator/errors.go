package calculator

import "errors"

var (
	// ErrOverflow is returned under PolicyError when the sum does not fit in an int32.
	ErrOverflow = errors.New("integer overflow: sum is outside the int32 range")
	// ErrUnknownPolicy is returned when an overflow policy name is not recognised.
	ErrUnknownPolicy = errors.New("unknown overflow policy, expected one of wrap, saturate, error")
)
