// Package message defines the chat transcript model and the inline editing
// mediator for user messages.
package message

import (
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/kelp/internal/version"
)

// Message is one row of a chat transcript.
//
// Active distinguishes messages on the currently displayed branch from
// messages deactivated by an upstream edit. Position orders messages within
// a chat.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	Role      version.Role
	Content   string
	Active    bool
	Position  int
	CreatedAt time.Time
}

// Chat is a conversation owning a transcript and its version sets.
type Chat struct {
	ID        uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
