package services

import (
	"fintrack/domain"
	"fintrack/errors"
	"fintrack/repositories"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ITransactionService interface {
	Add(userID string, req TransactionRequest) (domain.Transaction, error)
	List(userID string, from, to *time.Time) ([]domain.Transaction, error)
}

type TransactionRequest struct {
	BudgetID      string          `json:"budgetId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Type          string          `json:"type" validate:"required,oneof=income expense"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date" validate:"required"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=card cash online"`
	Category      string          `json:"category"`
	IsRecurring   bool            `json:"isRecurring"`
}

type TransactionService struct {
	transactions repositories.ITransactionRepository
	budgets      repositories.IBudgetRepository
}

func NewTransactionService(transactions repositories.ITransactionRepository, budgets repositories.IBudgetRepository) ITransactionService {
	return &TransactionService{transactions: transactions, budgets: budgets}
}

// Add validates the entry and records it. The referenced budget must exist
// and belong to the submitting user.
func (s *TransactionService) Add(userID string, req TransactionRequest) (domain.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if req.Amount.LessThan(decimal.NewFromInt(10)) {
		return domain.Transaction{}, fmt.Errorf("%w: minimum amount is 10", errors.ErrValidation)
	}

	budget, err := s.budgets.GetByID(req.BudgetID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if budget.CreatedBy != userID {
		return domain.Transaction{}, errors.ErrNotBudgetOwner
	}

	transaction := domain.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		BudgetID:      req.BudgetID,
		Amount:        req.Amount,
		Type:          domain.TransactionType(req.Type),
		Description:   req.Description,
		Date:          req.Date.UTC(),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Category:      req.Category,
		IsRecurring:   req.IsRecurring,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.transactions.Add(transaction); err != nil {
		return domain.Transaction{}, err
	}
	return transaction, nil
}

func (s *TransactionService) List(userID string, from, to *time.Time) ([]domain.Transaction, error) {
	return s.transactions.ListByUser(userID, from, to)
}
