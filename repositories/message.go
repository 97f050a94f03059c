//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fintrack/domain"
	"fintrack/errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message domain.ChatMessage) error
	GetByID(id uuid.UUID) (domain.ChatMessage, error)
	GetConversation(userA, userB string) ([]domain.ChatMessage, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// storedMessage is the on-disk form of a chat message.
type storedMessage struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Body    string `json:"message"`
	ReplyTo string `json:"reply,omitempty"`
	At      int64  `json:"at"`
}

// pairKey normalizes a participant pair so that both directions of a
// conversation share one key prefix.
func pairKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// StoreMessage persists a message under two keys:
//
//	conv:{pair}:{timestamp_padded}:{uuid}  for the conversation scan
//	msg:{uuid}                             for reply resolution by id
//
// The 19-digit zero-padded timestamp makes the lexicographical iteration
// order chronological; the UUID suffix disambiguates same-nanosecond writes.
func (m MessageRepository) StoreMessage(message domain.ChatMessage) error {
	record := fromChatMessage(message)
	bytes, err := json.Marshal(record)
	if err != nil {
		return err
	}

	convKey := fmt.Sprintf("conv:%s:%019d:%s",
		pairKey(message.From, message.To),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
	idKey := "msg:" + message.ID.String()

	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(convKey), bytes); err != nil {
			return err
		}
		return txn.Set([]byte(idKey), bytes)
	})
}

// GetByID fetches a single message, typically a reply target.
func (m MessageRepository) GetByID(id uuid.UUID) (domain.ChatMessage, error) {
	var record storedMessage
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("msg:" + id.String()))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.ChatMessage{}, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return toChatMessage(record)
}

// GetConversation returns every message exchanged between the two users, in
// either direction, ascending by creation time.
func (m MessageRepository) GetConversation(userA, userB string) ([]domain.ChatMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("conv:" + pairKey(userA, userB) + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var record storedMessage
		if err = json.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		message, err := toChatMessage(record)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func fromChatMessage(message domain.ChatMessage) storedMessage {
	record := storedMessage{
		ID:   message.ID.String(),
		From: message.From,
		To:   message.To,
		Body: message.Body,
		At:   message.CreatedAt.UnixNano(),
	}
	if message.ReplyTo != nil {
		record.ReplyTo = message.ReplyTo.String()
	}
	return record
}

func toChatMessage(record storedMessage) (domain.ChatMessage, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	message := domain.ChatMessage{
		ID:        parsedID,
		From:      record.From,
		To:        record.To,
		Body:      record.Body,
		CreatedAt: time.Unix(0, record.At).UTC(),
	}
	if record.ReplyTo != "" {
		replyID, err := uuid.Parse(record.ReplyTo)
		if err != nil {
			return domain.ChatMessage{}, err
		}
		message.ReplyTo = &replyID
	}
	return message, nil
}
