package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func incomeRequest(budgetID string, amount int64, date time.Time) TransactionRequest {
	return TransactionRequest{
		BudgetID:      budgetID,
		Amount:        decimal.NewFromInt(amount),
		Type:          "income",
		Description:   "salary",
		Date:          date,
		PaymentMethod: "online",
	}
}

func Test_Dashboard_Summary(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	budget, err := env.budgets.Create(alice, groceriesRequest())
	req.NoError(err)

	now := time.Now().UTC()
	_, err = env.transactions.Add(alice, incomeRequest(budget.ID, 3000, now))
	req.NoError(err)
	_, err = env.transactions.Add(alice, expenseRequest(budget.ID, 450, now))
	req.NoError(err)
	_, err = env.transactions.Add(alice, expenseRequest(budget.ID, 150, now))
	req.NoError(err)

	summary, err := env.dashboard.Summary(alice, nil, nil)
	req.NoError(err)
	req.Equal(3, summary.Count)
	req.True(summary.TotalIncome.Equal(decimal.NewFromInt(3000)))
	req.True(summary.TotalExpense.Equal(decimal.NewFromInt(600)))
	req.True(summary.Balance.Equal(decimal.NewFromInt(2400)))
	req.True(summary.Debt.IsZero())
}

func Test_Dashboard_Debt_Never_Negative(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	budget, err := env.budgets.Create(alice, groceriesRequest())
	req.NoError(err)

	now := time.Now().UTC()
	_, err = env.transactions.Add(alice, incomeRequest(budget.ID, 100, now))
	req.NoError(err)
	_, err = env.transactions.Add(alice, expenseRequest(budget.ID, 500, now))
	req.NoError(err)

	summary, err := env.dashboard.Summary(alice, nil, nil)
	req.NoError(err)
	req.True(summary.Balance.Equal(decimal.NewFromInt(-400)))
	req.True(summary.Debt.Equal(decimal.NewFromInt(400)))
}

func Test_Dashboard_Monthly_Series(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	budget, err := env.budgets.Create(alice, groceriesRequest())
	req.NoError(err)

	now := time.Now().UTC()
	_, err = env.transactions.Add(alice, incomeRequest(budget.ID, 2000, now))
	req.NoError(err)
	_, err = env.transactions.Add(alice, expenseRequest(budget.ID, 300, now))
	req.NoError(err)

	series, err := env.dashboard.MonthlySeries(alice, 3)
	req.NoError(err)
	req.Len(series, 3)

	current := series[len(series)-1]
	req.Equal(now.Format("2006-01"), current.Month)
	req.True(current.Income.Equal(decimal.NewFromInt(2000)))
	req.True(current.Expense.Equal(decimal.NewFromInt(300)))

	// Quiet months are present with zero totals.
	req.True(series[0].Income.IsZero())
	req.True(series[0].Expense.IsZero())
}

func Test_Dashboard_Category_Breakdown(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.registerUser(t, "alice", "alice@example.com")
	budget, err := env.budgets.Create(alice, groceriesRequest())
	req.NoError(err)

	now := time.Now().UTC()
	food := expenseRequest(budget.ID, 200, now)
	_, err = env.transactions.Add(alice, food)
	req.NoError(err)
	_, err = env.transactions.Add(alice, food)
	req.NoError(err)

	transport := expenseRequest(budget.ID, 50, now)
	transport.Category = "transport"
	_, err = env.transactions.Add(alice, transport)
	req.NoError(err)

	// Income never contributes to spending categories.
	_, err = env.transactions.Add(alice, incomeRequest(budget.ID, 5000, now))
	req.NoError(err)

	breakdown, err := env.dashboard.CategoryBreakdown(alice, nil, nil)
	req.NoError(err)
	req.Len(breakdown, 2)
	req.Equal("food", breakdown[0].Category)
	req.True(breakdown[0].Total.Equal(decimal.NewFromInt(400)))
	req.Equal(2, breakdown[0].Count)
	req.Equal("transport", breakdown[1].Category)
	req.True(breakdown[1].Total.Equal(decimal.NewFromInt(50)))
}
