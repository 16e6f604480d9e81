package calculator

import (
	"fmt"
	"strings"
)

// Policy decides what Add returns when the sum leaves the int32 range.
type Policy string

const (
	// PolicyWrap returns the two's complement sum, e.g. MaxInt32+1 == MinInt32.
	PolicyWrap Policy = "wrap"
	// PolicySaturate clamps the sum to MinInt32 or MaxInt32.
	PolicySaturate Policy = "saturate"
	// PolicyError rejects the operation with ErrOverflow.
	PolicyError Policy = "error"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyWrap

// Policies lists every supported policy in a stable order.
func Policies() []Policy {
	return []Policy{PolicyWrap, PolicySaturate, PolicyError}
}

// ParsePolicy converts a user supplied name into a Policy. An empty name
// selects DefaultPolicy.
func ParsePolicy(raw string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return DefaultPolicy, nil
	}
	p := Policy(name)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
	}
	return p, nil
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyWrap, PolicySaturate, PolicyError:
		return true
	default:
		return false
	}
}

func (p Policy) String() string {
	return string(p)
}
