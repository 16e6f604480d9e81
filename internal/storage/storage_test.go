package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/eugenenazirov/simpleapp/internal/calculator"
)

func TestNewMemoryStorageReturnsDefaultPolicy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetPolicy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != calculator.DefaultPolicy {
		t.Fatalf("expected default policy %s, got %s", calculator.DefaultPolicy, got)
	}
}

func TestSetPolicyUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	if err := store.SetPolicy(calculator.PolicySaturate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetPolicy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != calculator.PolicySaturate {
		t.Fatalf("expected %s, got %s", calculator.PolicySaturate, got)
	}
}

func TestSetPolicyRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []calculator.Policy{"", "WRAP", "clamp", "panic"}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetPolicy(tc); !errors.Is(err, ErrInvalidPolicy) {
				t.Fatalf("expected ErrInvalidPolicy for %q, got %v", tc, err)
			}
			if got, _ := store.GetPolicy(); got != calculator.DefaultPolicy {
				t.Fatalf("rejected update changed policy to %s", got)
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	policies := calculator.Policies()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			if err := store.SetPolicy(policies[offset%len(policies)]); err != nil {
				t.Errorf("SetPolicy failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetPolicy(); err != nil {
				t.Errorf("GetPolicy failed: %v", err)
			}
		}()
	}

	wg.Wait()

	got, err := store.GetPolicy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Valid() {
		t.Fatalf("expected a valid policy after concurrent writes, got %q", got)
	}
}
