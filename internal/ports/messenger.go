package ports

import (
	"context"

	"github.com/bnema/fishbowl/internal/domain"
)

// Address names where a notice goes: a user's direct channel, a shared
// channel, or both.
type Address struct {
	User    domain.UserID
	Channel domain.ChannelID
}

// Notice is one outbound message. Entries carry scrap texts or names that the
// transport lays out as a list.
type Notice struct {
	To      Address
	Title   string
	Text    string
	Entries []string
}

type Confirmation int

const (
	ConfirmationTimedOut Confirmation = iota
	ConfirmationAccepted
	ConfirmationDenied
)

func (c Confirmation) String() string {
	switch c {
	case ConfirmationAccepted:
		return "accepted"
	case ConfirmationDenied:
		return "denied"
	default:
		return "timed out"
	}
}

// Messenger is the chat transport the game talks through.
//
// RequestConfirmation blocks until target answers or ctx is done. It must
// return ConfirmationTimedOut, not an error, when ctx expires.
type Messenger interface {
	ResolveUser(ctx context.Context, ref string) (domain.UserID, error)
	Notify(ctx context.Context, notice Notice) error
	RequestConfirmation(ctx context.Context, target domain.UserID, prompt Notice) (Confirmation, error)
}
