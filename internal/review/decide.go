package review

import (
	"strings"

	"logonorm/internal/naming"
)

// State is the triage state of an item.
type State int

const (
	Pending State = iota
	Ignored
	Overridden
	Deferred
)

func (s State) String() string {
	switch s {
	case Ignored:
		return "ignored"
	case Overridden:
		return "overridden"
	case Deferred:
		return "deferred"
	default:
		return "pending"
	}
}

// Input tokens accepted at the triage prompt.
const (
	TokenIgnore = "1"
	TokenManual = "2"
	TokenAccept = "3"
	TokenSkip   = "s"
	TokenQuit   = "q"
)

// Input is what the user entered for one item. Name is only read for
// TokenManual.
type Input struct {
	Token string
	Name  string
}

// Decision is the result of applying an Input to an Item.
type Decision struct {
	State State
	// Name is the new file name recorded in the custom map when State is
	// Overridden.
	Name string
	// Quit ends the session after this item.
	Quit bool
}

// Decide maps an item and the user's input to a decision. Anything that
// cannot produce a usable name defers the item.
func Decide(item Item, in Input) Decision {
	switch normalizeToken(in.Token) {
	case TokenIgnore:
		return Decision{State: Ignored}
	case TokenManual:
		name := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(in.Name))
		if name == "" {
			return Decision{State: Deferred}
		}
		return Decision{State: Overridden, Name: name}
	case TokenAccept:
		suggested := strings.TrimSpace(item.Suggestion())
		if suggested == "" {
			return Decision{State: Deferred}
		}
		return Decision{State: Overridden, Name: suggested + naming.Ext(item.File)}
	case TokenQuit:
		return Decision{State: Deferred, Quit: true}
	default:
		return Decision{State: Deferred}
	}
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
