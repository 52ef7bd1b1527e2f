package llm

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          time.Hour,
	})

	for i := 0; i < 2; i++ {
		if err := cb.Allow(); err != nil {
			t.Fatalf("Allow() before threshold error = %v", err)
		}
		cb.Failure()
	}
	if got := cb.State(); got != CircuitClosed {
		t.Fatalf("State() = %v, want closed before threshold", got)
	}

	cb.Failure() // third failure crosses the threshold
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("State() = %v, want open", got)
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() error = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Millisecond,
	})

	cb.Failure()
	if got := cb.State(); got != CircuitOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	time.Sleep(5 * time.Millisecond)

	// Timeout elapsed: next Allow transitions to half-open.
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() after timeout error = %v", err)
	}
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("State() = %v, want half-open", got)
	}

	cb.Success()
	if got := cb.State(); got != CircuitHalfOpen {
		t.Fatalf("State() = %v, want half-open after first success", got)
	}
	cb.Success()
	if got := cb.State(); got != CircuitClosed {
		t.Errorf("State() = %v, want closed after success threshold", got)
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Millisecond,
	})

	cb.Failure()
	time.Sleep(5 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	cb.Failure()
	if got := cb.State(); got != CircuitOpen {
		t.Errorf("State() = %v, want open after half-open failure", got)
	}
}

func TestCircuitStateString(t *testing.T) {
	tests := []struct {
		state CircuitState
		want  string
	}{
		{CircuitClosed, "closed"},
		{CircuitOpen, "open"},
		{CircuitHalfOpen, "half-open"},
		{CircuitState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
