package llm

import (
	"errors"
	"testing"
)

func TestRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"server 503", errors.New("upstream returned 503"), true},
		{"unavailable", errors.New("model UNAVAILABLE right now"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"timeout", errors.New("request timeout after 30s"), true},
		{"model loading", errors.New("model is loading, try again"), true},
		{"bad request", errors.New("invalid request: unknown model"), false},
		{"parse failure", errors.New("unexpected response shape"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultConfigs(t *testing.T) {
	r := DefaultRetryConfig()
	if r.MaxRetries <= 0 || r.InitialInterval <= 0 || r.MaxInterval < r.InitialInterval {
		t.Errorf("DefaultRetryConfig() = %+v, want positive bounds", r)
	}

	c := DefaultCircuitBreakerConfig()
	if c.FailureThreshold <= 0 || c.SuccessThreshold <= 0 || c.Timeout <= 0 {
		t.Errorf("DefaultCircuitBreakerConfig() = %+v, want positive bounds", c)
	}
}
