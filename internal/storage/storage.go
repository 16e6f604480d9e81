package storage

import (
	"errors"
	"sync"

	"github.com/eugenenazirov/simpleapp/internal/calculator"
)

var (
	// ErrInvalidPolicy indicates the provided overflow policy is not supported.
	ErrInvalidPolicy = errors.New("overflow policy must be one of wrap, saturate, error")
)

// PolicyStore provides access to the overflow policy applied to additions.
type PolicyStore interface {
	GetPolicy() (calculator.Policy, error)
	SetPolicy(policy calculator.Policy) error
}

// MemoryStorage keeps the overflow policy in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	policy calculator.Policy
}

// NewMemoryStorage initialises storage with the default overflow policy.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		policy: calculator.DefaultPolicy,
	}
}

// GetPolicy returns the currently configured overflow policy.
func (s *MemoryStorage) GetPolicy() (calculator.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.policy, nil
}

// SetPolicy validates and stores the provided overflow policy.
func (s *MemoryStorage) SetPolicy(policy calculator.Policy) error {
	if !policy.Valid() {
		return ErrInvalidPolicy
	}

	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()

	return nil
}
