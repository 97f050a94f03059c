// Package domain contains the core concepts of fintrack: users, budgets,
// transactions and chat messages. Values are immutable once created and
// carry no persistence concerns.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an immutable private message between two users.
// ReplyTo, when set, references another ChatMessage by id; the reference is
// not required to resolve (a dangling reply degrades at read time).
type ChatMessage struct {
	ID        uuid.UUID
	From      string
	To        string
	Body      string
	ReplyTo   *uuid.UUID
	CreatedAt time.Time
}

// IsReply reports whether the message references another message.
func (m ChatMessage) IsReply() bool {
	return m.ReplyTo != nil
}
