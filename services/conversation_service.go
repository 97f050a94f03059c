//go:generate go run go.uber.org/mock/mockgen -source=conversation_service.go -destination=../mocks/mock_conversation_service.go -package=mocks
package services

import (
	"context"
	"fintrack/domain"
	"fintrack/errors"
	"fintrack/repositories"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type IConversationService interface {
	Append(ctx context.Context, from, to, body string, replyTo *uuid.UUID) (domain.ChatMessage, error)
	GetConversation(ctx context.Context, userA, userB string) ([]ConversationMessage, error)
	ResolveReply(ctx context.Context, id uuid.UUID) *domain.ReplyContext
}

// Participant is a user reference with the display name resolved.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConversationMessage is a stored message enriched for clients: display
// names resolved, reply context attached when the target still exists.
type ConversationMessage struct {
	ID        string                `json:"id"`
	From      Participant           `json:"from"`
	To        Participant           `json:"to"`
	Body      string                `json:"message"`
	CreatedAt time.Time             `json:"createdAt"`
	Reply     *domain.ReplyContext `json:"replyMessage,omitempty"`
}

// ConversationService owns the durable chat history: it is the only writer
// of the message store, and the only component that reconstructs two-party
// conversations with reply context.
type ConversationService struct {
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
	log      *slog.Logger
}

func NewConversationService(messages repositories.IMessageRepository, users repositories.IUserRepository, log *slog.Logger) *ConversationService {
	return &ConversationService{messages: messages, users: users, log: log}
}

// Append validates the participants and persists a new immutable message.
// A replyTo id is stored as given: a dangling reference degrades at read
// time instead of failing the send.
func (s *ConversationService) Append(_ context.Context, from, to, body string, replyTo *uuid.UUID) (domain.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return domain.ChatMessage{}, fmt.Errorf("%w: empty message body", errors.ErrValidation)
	}
	if _, err := s.users.GetUserByID(from); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: sender: %v", errors.ErrValidation, err)
	}
	if _, err := s.users.GetUserByID(to); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: recipient: %v", errors.ErrValidation, err)
	}

	message := domain.ChatMessage{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Body:      body,
		ReplyTo:   replyTo,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.StoreMessage(message); err != nil {
		return domain.ChatMessage{}, err
	}
	return message, nil
}

// ResolveReply loads a reply target and resolves its participants' display
// names. Any failure yields nil: a missing reply target is a degraded
// annotation, never an error.
func (s *ConversationService) ResolveReply(_ context.Context, id uuid.UUID) *domain.ReplyContext {
	target, err := s.messages.GetByID(id)
	if err != nil {
		s.log.Debug("Reply target not resolvable, annotation omitted", "id", id.String())
		return nil
	}
	return &domain.ReplyContext{
		ID:       target.ID.String(),
		Body:     target.Body,
		From:     target.From,
		To:       target.To,
		FromName: s.displayName(target.From),
		ToName:   s.displayName(target.To),
	}
}

// GetConversation returns every message between the two users in either
// direction, ascending by creation time, with names and reply context
// resolved. Read-only and idempotent.
func (s *ConversationService) GetConversation(ctx context.Context, userA, userB string) ([]ConversationMessage, error) {
	stored, err := s.messages.GetConversation(userA, userB)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	resolve := func(id string) Participant {
		name, ok := names[id]
		if !ok {
			name = s.displayName(id)
			names[id] = name
		}
		return Participant{ID: id, Name: name}
	}

	enriched := make([]ConversationMessage, 0, len(stored))
	for _, message := range stored {
		cm := ConversationMessage{
			ID:        message.ID.String(),
			From:      resolve(message.From),
			To:        resolve(message.To),
			Body:      message.Body,
			CreatedAt: message.CreatedAt,
		}
		if message.IsReply() {
			cm.Reply = s.ResolveReply(ctx, *message.ReplyTo)
		}
		enriched = append(enriched, cm)
	}
	return enriched, nil
}

func (s *ConversationService) displayName(userID string) string {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return ""
	}
	return user.Username
}
