package services

import (
	"fintrack/domain"
	"fintrack/repositories"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type IDashboardService interface {
	Summary(userID string, from, to *time.Time) (DashboardSummary, error)
	MonthlySeries(userID string, months int) ([]MonthlyPoint, error)
	CategoryBreakdown(userID string, from, to *time.Time) ([]CategoryTotal, error)
}

// DashboardSummary aggregates a user's transactions over a window.
// Debt is the amount by which spending exceeds income, never negative.
type DashboardSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
	Debt         decimal.Decimal `json:"debt"`
	Count        int             `json:"transactionCount"`
}

type MonthlyPoint struct {
	Month   string          `json:"month"` // formatted as 2006-01
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type DashboardService struct {
	transactions repositories.ITransactionRepository
}

func NewDashboardService(transactions repositories.ITransactionRepository) IDashboardService {
	return &DashboardService{transactions: transactions}
}

func (s *DashboardService) Summary(userID string, from, to *time.Time) (DashboardSummary, error) {
	transactions, err := s.transactions.ListByUser(userID, from, to)
	if err != nil {
		return DashboardSummary{}, err
	}
	summary := DashboardSummary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Count:        len(transactions),
	}
	for _, t := range transactions {
		switch t.Type {
		case domain.TransactionIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case domain.TransactionExpense:
			summary.TotalExpense = summary.TotalExpense.Add(t.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	summary.Debt = decimal.Max(decimal.Zero, summary.TotalExpense.Sub(summary.TotalIncome))
	return summary, nil
}

// MonthlySeries returns one point per calendar month for the trailing
// window, oldest first. Months without activity are included as zeros so
// charts keep a continuous axis.
func (s *DashboardService) MonthlySeries(userID string, months int) ([]MonthlyPoint, error) {
	if months <= 0 {
		months = 6
	}
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	transactions, err := s.transactions.ListByUser(userID, &start, nil)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyPoint, months)
	series := make([]MonthlyPoint, 0, months)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		series = append(series, MonthlyPoint{Month: month, Income: decimal.Zero, Expense: decimal.Zero})
		byMonth[month] = &series[len(series)-1]
	}
	for _, t := range transactions {
		point, ok := byMonth[t.Date.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		switch t.Type {
		case domain.TransactionIncome:
			point.Income = point.Income.Add(t.Amount)
		case domain.TransactionExpense:
			point.Expense = point.Expense.Add(t.Amount)
		}
	}
	return series, nil
}

// CategoryBreakdown totals expense transactions per category, largest first.
func (s *DashboardService) CategoryBreakdown(userID string, from, to *time.Time) ([]CategoryTotal, error) {
	transactions, err := s.transactions.ListByUser(userID, from, to)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]*CategoryTotal)
	for _, t := range transactions {
		if t.Type != domain.TransactionExpense {
			continue
		}
		category := t.Category
		if category == "" {
			category = "uncategorized"
		}
		entry, ok := totals[category]
		if !ok {
			entry = &CategoryTotal{Category: category, Total: decimal.Zero}
			totals[category] = entry
		}
		entry.Total = entry.Total.Add(t.Amount)
		entry.Count++
	}
	breakdown := make([]CategoryTotal, 0, len(totals))
	for _, entry := range totals {
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if !breakdown[i].Total.Equal(breakdown[j].Total) {
			return breakdown[i].Total.GreaterThan(breakdown[j].Total)
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown, nil
}
