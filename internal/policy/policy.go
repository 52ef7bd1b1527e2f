// Package policy decides, per intent, whether retrieval runs and whether
// the caller may access account-bound functionality.
package policy

import "github.com/ugorjiizu/globus-assessment/internal/intent"

// Decision is the access-control outcome for a message.
type Decision int

const (
	// Allow grants the full response path for the intent.
	Allow Decision = iota
	// AllowRestricted grants a response but without account data, used
	// when an anonymous caller asks something that only partially needs
	// authentication.
	AllowRestricted
	// Deny refuses the operation and the handler substitutes a fixed
	// refusal message.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AllowRestricted:
		return "allow_restricted"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// retrievalGate controls which intents consult the product index.
// Greetings and account questions never benefit from product chunks, and
// card blocking is a direct action, not a knowledge question.
var retrievalGate = map[intent.Intent]bool{
	intent.Greeting:           false,
	intent.GeneralInquiry:     true,
	intent.AccountInformation: false,
	intent.ProductInquiry:     true,
	intent.CardBlockRequest:   false,
}

// ShouldRetrieve reports whether messages with the given intent trigger
// a knowledge-index search. Unknown intents retrieve, matching the
// general-inquiry fallback.
func ShouldRetrieve(in intent.Intent) bool {
	gate, ok := retrievalGate[in]
	if !ok {
		return true
	}
	return gate
}

// Authorize returns the access decision for the intent given the
// session's authentication state. Account data and card actions require
// an authenticated session; everything else is open.
func Authorize(in intent.Intent, authenticated bool) Decision {
	switch in {
	case intent.AccountInformation, intent.CardBlockRequest:
		if !authenticated {
			return Deny
		}
		return Allow
	default:
		return Allow
	}
}
