package policy

import (
	"testing"

	"github.com/ugorjiizu/globus-assessment/internal/intent"
)

func TestShouldRetrieve(t *testing.T) {
	tests := []struct {
		in   intent.Intent
		want bool
	}{
		{intent.Greeting, false},
		{intent.GeneralInquiry, true},
		{intent.AccountInformation, false},
		{intent.ProductInquiry, true},
		{intent.CardBlockRequest, false},
		{intent.Intent("something_new"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			if got := ShouldRetrieve(tt.in); got != tt.want {
				t.Errorf("ShouldRetrieve(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name          string
		in            intent.Intent
		authenticated bool
		want          Decision
	}{
		{"greeting anonymous", intent.Greeting, false, Allow},
		{"general anonymous", intent.GeneralInquiry, false, Allow},
		{"product anonymous", intent.ProductInquiry, false, Allow},
		{"account anonymous", intent.AccountInformation, false, Deny},
		{"account authenticated", intent.AccountInformation, true, Allow},
		{"card block anonymous", intent.CardBlockRequest, false, Deny},
		{"card block authenticated", intent.CardBlockRequest, true, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.in, tt.authenticated); got != tt.want {
				t.Errorf("Authorize(%v, %v) = %v, want %v", tt.in, tt.authenticated, got, tt.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if got := Deny.String(); got != "deny" {
		t.Errorf("Deny.String() = %q", got)
	}
	if got := Decision(99).String(); got != "unknown" {
		t.Errorf("Decision(99).String() = %q", got)
	}
}
