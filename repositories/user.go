//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fintrack/domain"
	"fintrack/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

type storedUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"createdAt"`
}

// CreateUser persists a new account. The email is the primary key; a
// secondary userid key allows identity lookups by id (presence, messages).
func (u *UserRepository) CreateUser(username, email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	record := storedUser{
		ID:           newID,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         "user",
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte("user:" + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey, data); err != nil {
			return err
		}
		return txn.Set([]byte("userid:"+newID), []byte(email))
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (u *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var record storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUnknownUser, email)
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// GetUserByID resolves the userid index then loads the primary record.
func (u *UserRepository) GetUserByID(id string) (domain.User, error) {
	var record storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("userid:" + id))
		if err != nil {
			return err
		}
		var email []byte
		if err := item.Value(func(val []byte) error {
			email = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(append([]byte("user:"), email...))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, fmt.Errorf("%w: %s", errors.ErrUnknownUser, id)
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func toUser(record storedUser) domain.User {
	return domain.User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Role:         record.Role,
		CreatedAt:    time.Unix(record.CreatedAt, 0).UTC(),
	}
}
