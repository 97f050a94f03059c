//go:generate go run go.uber.org/mock/mockgen -source=budget.go -destination=../mocks/mock_budget_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fintrack/domain"
	"fintrack/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
)

type IBudgetRepository interface {
	Create(budget domain.Budget) error
	GetByID(id string) (domain.Budget, error)
	ListByOwner(userID string) ([]domain.Budget, error)
	Update(budget domain.Budget) error
	Delete(id string) error
}

type BudgetRepository struct {
	db *badger.DB
}

func NewBudgetRepository(db *badger.DB) IBudgetRepository {
	return &BudgetRepository{db: db}
}

type storedBudget struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Period    string `json:"period"`
	Category  string `json:"category"`
	Currency  string `json:"currency"`
	CreatedBy string `json:"createdBy"`
	CreatedAt int64  `json:"createdAt"`
}

// Keys: budget:{owner}:{id} for the per-owner scan, budgetid:{id} holding the
// owner for id-only lookups.
func ownerKey(owner, id string) []byte {
	return []byte("budget:" + owner + ":" + id)
}

func (b *BudgetRepository) Create(budget domain.Budget) error {
	data, err := json.Marshal(fromBudget(budget))
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(ownerKey(budget.CreatedBy, budget.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte("budgetid:"+budget.ID), []byte(budget.CreatedBy))
	})
}

func (b *BudgetRepository) GetByID(id string) (domain.Budget, error) {
	var record storedBudget
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("budgetid:" + id))
		if err != nil {
			return err
		}
		var owner []byte
		if err := item.Value(func(val []byte) error {
			owner = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(ownerKey(string(owner), id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Budget{}, fmt.Errorf("%w: %s", errors.ErrUnknownBudget, id)
	}
	if err != nil {
		return domain.Budget{}, err
	}
	return toBudget(record)
}

func (b *BudgetRepository) ListByOwner(userID string) ([]domain.Budget, error) {
	var budgets []domain.Budget
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte("budget:" + userID + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record storedBudget
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			budget, err := toBudget(record)
			if err != nil {
				return err
			}
			budgets = append(budgets, budget)
		}
		return nil
	})
	return budgets, err
}

func (b *BudgetRepository) Update(budget domain.Budget) error {
	data, err := json.Marshal(fromBudget(budget))
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		key := ownerKey(budget.CreatedBy, budget.ID)
		if _, err := txn.Get(key); err != nil {
			return fmt.Errorf("%w: %s", errors.ErrUnknownBudget, budget.ID)
		}
		return txn.Set(key, data)
	})
}

func (b *BudgetRepository) Delete(id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("budgetid:" + id))
		if err != nil {
			return fmt.Errorf("%w: %s", errors.ErrUnknownBudget, id)
		}
		var owner []byte
		if err := item.Value(func(val []byte) error {
			owner = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		if err := txn.Delete(ownerKey(string(owner), id)); err != nil {
			return err
		}
		return txn.Delete([]byte("budgetid:" + id))
	})
}

func fromBudget(budget domain.Budget) storedBudget {
	return storedBudget{
		ID:        budget.ID,
		Name:      budget.Name,
		Amount:    budget.Amount.String(),
		Period:    budget.Period,
		Category:  budget.Category,
		Currency:  string(budget.Currency),
		CreatedBy: budget.CreatedBy,
		CreatedAt: budget.CreatedAt.Unix(),
	}
}

func toBudget(record storedBudget) (domain.Budget, error) {
	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return domain.Budget{}, err
	}
	return domain.Budget{
		ID:        record.ID,
		Name:      record.Name,
		Amount:    amount,
		Period:    record.Period,
		Category:  record.Category,
		Currency:  domain.CurrencyCode(record.Currency),
		CreatedBy: record.CreatedBy,
		CreatedAt: time.Unix(record.CreatedAt, 0).UTC(),
	}, nil
}
