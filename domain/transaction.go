package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

// Transaction is a single income or expense entry logged against a budget.
type Transaction struct {
	ID            string
	UserID        string
	BudgetID      string
	Amount        decimal.Decimal
	Type          TransactionType
	Description   string
	Date          time.Time
	PaymentMethod PaymentMethod
	Category      string
	IsRecurring   bool
	CreatedAt     time.Time
}
