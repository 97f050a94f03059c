package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CurrencyCode string

const (
	CurrencyINR CurrencyCode = "INR"
	CurrencyUSD CurrencyCode = "USD"
	CurrencyGBP CurrencyCode = "GBP"
)

// Budget is a spending envelope owned by a single user.
type Budget struct {
	ID        string
	Name      string
	Amount    decimal.Decimal
	Period    string
	Category  string
	Currency  CurrencyCode
	CreatedBy string
	CreatedAt time.Time
}

// BudgetCategories and BudgetPeriods are the fixed catalogs offered to
// clients when creating a budget.
var (
	BudgetCategories = []string{"food", "transport", "healthcare", "education", "clothes", "entertainment", "miscellaneous"}
	BudgetPeriods    = []string{"weekly", "monthly", "quarterly", "yearly"}
)
