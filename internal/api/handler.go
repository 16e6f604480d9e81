package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/simpleapp/internal/calculator"
	"github.com/eugenenazirov/simpleapp/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the calculator and policy storage into HTTP handlers.
type Handler struct {
	storage       storage.PolicyStore
	newCalculator func(calculator.Policy) calculator.Calculator

	clock func() time.Time

	mu              sync.RWMutex
	policyUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithCalculatorFactory overrides how a Calculator is built for a policy.
func WithCalculatorFactory(factory func(calculator.Policy) calculator.Calculator) HandlerOption {
	return func(h *Handler) {
		h.newCalculator = factory
	}
}

// NewHandler constructs a Handler backed by the provided policy store.
func NewHandler(store storage.PolicyStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:       store,
		newCalculator: calculator.New,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.policyUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	_ = r
	policy, err := h.storage.GetPolicy()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := policyResponse{
		Policy:    policy,
		Available: calculator.Policies(),
		UpdatedAt: h.currentPolicyUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Policy == "" {
		writeError(w, http.StatusBadRequest, "Invalid overflow policy", "policy must be provided")
		return
	}

	policy, err := calculator.ParsePolicy(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid overflow policy", err.Error())
		return
	}

	if err := h.storage.SetPolicy(policy); err != nil {
		if errors.Is(err, storage.ErrInvalidPolicy) {
			writeError(w, http.StatusBadRequest, "Invalid overflow policy", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markPolicyUpdated()

	current, err := h.storage.GetPolicy()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := policyResponse{
		Policy:    current,
		Available: calculator.Policies(),
		UpdatedAt: h.currentPolicyUpdatedAt(),
		Message:   "Overflow policy updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload; operands must be 32-bit signed integers")
		return
	}

	if req.A == nil || req.B == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "both operands a and b are required")
		return
	}

	policy, err := h.storage.GetPolicy()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	a, b := *req.A, *req.B
	sum, addErr := h.newCalculator(policy).Add(a, b)
	if addErr != nil {
		switch {
		case errors.Is(addErr, calculator.ErrOverflow):
			suggestion := "Switch the overflow policy to wrap or saturate, or use smaller operands"
			writeError(w, http.StatusUnprocessableEntity, "Integer overflow", addErr.Error(), suggestion)
		default:
			writeInternalError(w, addErr)
		}
		return
	}

	resp := addResponse{
		A:          a,
		B:          b,
		Sum:        sum,
		Policy:     policy,
		Overflowed: calculator.Overflows(a, b),
		Expression: calculator.FormatSum(a, b, sum),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentPolicyUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policyUpdatedAt
}

func (h *Handler) markPolicyUpdated() {
	h.mu.Lock()
	h.policyUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type policyRequest struct {
	Policy string `json:"policy"`
}

type addRequest struct {
	A *int32 `json:"a"`
	B *int32 `json:"b"`
}

type addResponse struct {
	A          int32             `json:"a"`
	B          int32             `json:"b"`
	Sum        int32             `json:"sum"`
	Policy     calculator.Policy `json:"policy"`
	Overflowed bool              `json:"overflowed"`
	Expression string            `json:"expression"`
}

type policyResponse struct {
	Policy    calculator.Policy   `json:"policy"`
	Available []calculator.Policy `json:"available"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Message   string              `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
