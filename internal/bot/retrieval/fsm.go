// Package retrieval models the two-step download conversation as a small
// finite-state machine: a code lookup moves the user to AwaitingConfirmation,
// and a yes/no reply moves them back to Idle.
package retrieval

import "strings"

// State is a conversation state.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	default:
		return "unknown"
	}
}

// Reply is the classification of a free-text answer.
type Reply int

const (
	Other Reply = iota
	Affirmative
	Negative
)

// Action tells the caller what to do after a transition.
type Action int

const (
	// None: the input was not meant for this conversation.
	None Action = iota
	// Forward: deliver the archived files of the pending code.
	Forward
	// Cancelled: the user declined.
	Cancelled
	// Reprompt: ask for yes/no again, state unchanged.
	Reprompt
)

var (
	affirmative = map[string]struct{}{"بله": {}, "yes": {}, "موافقم": {}, "y": {}}
	negative    = map[string]struct{}{"خیر": {}, "no": {}, "مخالفم": {}, "انصراف": {}, "n": {}}
)

// Classify matches text against the accepted synonyms, ignoring case and
// surrounding whitespace.
func Classify(text string) Reply {
	t := strings.ToLower(strings.TrimSpace(text))
	if _, ok := affirmative[t]; ok {
		return Affirmative
	}
	if _, ok := negative[t]; ok {
		return Negative
	}
	return Other
}

// Conversation is the per-user retrieval state. The zero value is Idle.
type Conversation struct {
	State       State
	PendingCode string
}

// Begin enters AwaitingConfirmation for code.
func Begin(code string) Conversation {
	return Conversation{State: AwaitingConfirmation, PendingCode: code}
}

// Transition applies reply to c. The returned conversation carries the
// pending code only while still awaiting confirmation; Forward actions read
// the code from the input conversation.
func Transition(c Conversation, reply Reply) (Conversation, Action) {
	if c.State != AwaitingConfirmation {
		return Conversation{}, None
	}
	switch reply {
	case Affirmative:
		return Conversation{}, Forward
	case Negative:
		return Conversation{}, Cancelled
	default:
		return c, Reprompt
	}
}
