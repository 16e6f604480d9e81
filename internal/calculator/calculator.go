package calculator

import (
	"fmt"
	"math"
)

// Calculator describes the behaviour required from an adder.
type Calculator interface {
	Add(a, b int32) (int32, error)
}

type policyCalculator struct {
	policy Policy
}

// New creates a Calculator that resolves overflow with the given policy.
// An invalid policy falls back to DefaultPolicy.
func New(policy Policy) Calculator {
	if !policy.Valid() {
		policy = DefaultPolicy
	}
	return &policyCalculator{policy: policy}
}

func (c *policyCalculator) Add(a, b int32) (int32, error) {
	if !Overflows(a, b) {
		return a + b, nil
	}

	switch c.policy {
	case PolicySaturate:
		if b > 0 {
			return math.MaxInt32, nil
		}
		return math.MinInt32, nil
	case PolicyError:
		return 0, ErrOverflow
	default:
		return Add(a, b), nil
	}
}

// Add returns the wrapping sum of a and b.
func Add(a, b int32) int32 {
	return a + b
}

// Overflows reports whether a+b falls outside the int32 range.
func Overflows(a, b int32) bool {
	sum := int64(a) + int64(b)
	return sum > math.MaxInt32 || sum < math.MinInt32
}

// FormatSum renders an addition as "a + b = sum".
func FormatSum(a, b, sum int32) string {
	return fmt.Sprintf("%d + %d = %d", a, b, sum)
}
