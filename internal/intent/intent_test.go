package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/ugorjiizu/globus-assessment/internal/llm"
	"github.com/ugorjiizu/globus-assessment/internal/log"
	"github.com/ugorjiizu/globus-assessment/internal/testutil"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{"exact", "greeting", Greeting},
		{"uppercase", "ACCOUNT_INFORMATION", AccountInformation},
		{"trailing period", "product_inquiry.", ProductInquiry},
		{"quoted", `"card_block_request"`, CardBlockRequest},
		{"first token", "greeting because the user said hello", Greeting},
		{"embedded label", "the intent is product_inquiry here", ProductInquiry},
		{"surrounding whitespace", "  general_inquiry  ", GeneralInquiry},
		{"garbage", "not sure what this is", GeneralInquiry},
		{"empty", "", GeneralInquiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLabel(tt.raw); got != tt.want {
				t.Errorf("parseLabel(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	gen := testutil.NewMockGenerator("general_inquiry")
	gen.AddResponse("hello there", "greeting")
	gen.AddResponse("my balance", "account_information")

	c := NewClassifier(gen, 20, 0, log.NewNop())

	if got := c.Classify(context.Background(), "hello there", nil); got != Greeting {
		t.Errorf("got %v, want greeting", got)
	}
	if got := c.Classify(context.Background(), "what is my balance", nil); got != AccountInformation {
		t.Errorf("got %v, want account_information", got)
	}

	req := gen.LastCall()
	if req.MaxTokens != 20 {
		t.Errorf("MaxTokens = %d, want 20", req.MaxTokens)
	}
	if req.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", req.Temperature)
	}
	if len(req.Stop) == 0 {
		t.Error("expected a stop sequence")
	}
}

func TestClassifyFallbackOnError(t *testing.T) {
	gen := testutil.NewMockGenerator("greeting")
	gen.FailWith(errors.New("model unavailable"))

	c := NewClassifier(gen, 20, 0, log.NewNop())
	if got := c.Classify(context.Background(), "hello", nil); got != GeneralInquiry {
		t.Errorf("got %v, want general_inquiry fallback", got)
	}
}

func TestClassifyHistoryWindow(t *testing.T) {
	gen := testutil.NewMockGenerator("product_inquiry")
	c := NewClassifier(gen, 20, 0, log.NewNop())

	history := []llm.Message{
		{Role: llm.RoleUser, Text: "one"},
		{Role: llm.RoleAssistant, Text: "two"},
		{Role: llm.RoleUser, Text: "three"},
		{Role: llm.RoleAssistant, Text: "four"},
	}
	c.Classify(context.Background(), "and the second one?", history)

	req := gen.LastCall()
	if len(req.History) != 2 {
		t.Fatalf("history window = %d messages, want 2", len(req.History))
	}
	if req.History[0].Text != "three" {
		t.Errorf("window starts at %q, want the trailing turns", req.History[0].Text)
	}
}
