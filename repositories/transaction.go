//go:generate go run go.uber.org/mock/mockgen -source=transaction.go -destination=../mocks/mock_transaction_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fintrack/domain"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
)

type ITransactionRepository interface {
	Add(transaction domain.Transaction) error
	ListByUser(userID string, from, to *time.Time) ([]domain.Transaction, error)
}

type TransactionRepository struct {
	db *badger.DB
}

func NewTransactionRepository(db *badger.DB) ITransactionRepository {
	return &TransactionRepository{db: db}
}

type storedTransaction struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	BudgetID      string `json:"budgetId"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Description   string `json:"description,omitempty"`
	Date          int64  `json:"date"`
	PaymentMethod string `json:"paymentMethod"`
	Category      string `json:"category,omitempty"`
	IsRecurring   bool   `json:"isRecurring"`
	CreatedAt     int64  `json:"createdAt"`
}

// Add stores the transaction under txn:{user}:{date_padded}:{id} so a prefix
// scan yields a user's entries in date order.
func (t *TransactionRepository) Add(transaction domain.Transaction) error {
	data, err := json.Marshal(fromTransaction(transaction))
	if err != nil {
		return err
	}
	key := fmt.Sprintf("txn:%s:%019d:%s",
		transaction.UserID,
		transaction.Date.UnixNano(),
		transaction.ID,
	)
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// ListByUser returns the user's transactions ascending by date, optionally
// bounded by an inclusive [from, to] range.
func (t *TransactionRepository) ListByUser(userID string, from, to *time.Time) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	err := t.db.View(func(txn *badger.Txn) error {
		prefix := []byte("txn:" + userID + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if from != nil {
			seekKey = []byte(fmt.Sprintf("txn:%s:%019d", userID, from.UnixNano()))
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			var record storedTransaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			if to != nil && record.Date > to.UnixNano() {
				break
			}
			transaction, err := toTransaction(record)
			if err != nil {
				return err
			}
			transactions = append(transactions, transaction)
		}
		return nil
	})
	return transactions, err
}

func fromTransaction(transaction domain.Transaction) storedTransaction {
	return storedTransaction{
		ID:            transaction.ID,
		UserID:        transaction.UserID,
		BudgetID:      transaction.BudgetID,
		Amount:        transaction.Amount.String(),
		Type:          string(transaction.Type),
		Description:   transaction.Description,
		Date:          transaction.Date.UnixNano(),
		PaymentMethod: string(transaction.PaymentMethod),
		Category:      transaction.Category,
		IsRecurring:   transaction.IsRecurring,
		CreatedAt:     transaction.CreatedAt.Unix(),
	}
}

func toTransaction(record storedTransaction) (domain.Transaction, error) {
	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:            record.ID,
		UserID:        record.UserID,
		BudgetID:      record.BudgetID,
		Amount:        amount,
		Type:          domain.TransactionType(record.Type),
		Description:   record.Description,
		Date:          time.Unix(0, record.Date).UTC(),
		PaymentMethod: domain.PaymentMethod(record.PaymentMethod),
		Category:      record.Category,
		IsRecurring:   record.IsRecurring,
		CreatedAt:     time.Unix(record.CreatedAt, 0).UTC(),
	}, nil
}
