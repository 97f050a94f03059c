package services

import (
	"fintrack/domain"
	"fintrack/errors"
	"fintrack/repositories"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type IBudgetService interface {
	Create(userID string, req BudgetRequest) (domain.Budget, error)
	GetAll(userID string) ([]domain.Budget, error)
	GetByID(userID, budgetID string) (domain.Budget, error)
	Edit(userID, budgetID string, req BudgetRequest) (domain.Budget, error)
	Delete(userID, budgetID string) error
}

// BudgetRequest carries the client-supplied fields of a budget. Bounds
// mirror the upstream schema: name 3-75 chars, amount at least 100.
type BudgetRequest struct {
	Name     string          `json:"name" validate:"required,min=3,max=75"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Period   string          `json:"period" validate:"required"`
	Category string          `json:"category" validate:"required"`
	Currency string          `json:"currency" validate:"required,oneof=INR USD GBP"`
}

type BudgetService struct {
	budgets repositories.IBudgetRepository
}

func NewBudgetService(budgets repositories.IBudgetRepository) IBudgetService {
	return &BudgetService{budgets: budgets}
}

func (s *BudgetService) validateRequest(req BudgetRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	if req.Amount.LessThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: budget amount must be at least 100", errors.ErrValidation)
	}
	if !slices.Contains(domain.BudgetPeriods, req.Period) {
		return fmt.Errorf("%w: %q is not a valid period", errors.ErrValidation, req.Period)
	}
	if !slices.Contains(domain.BudgetCategories, req.Category) {
		return fmt.Errorf("%w: %q is not a valid category", errors.ErrValidation, req.Category)
	}
	return nil
}

func (s *BudgetService) Create(userID string, req BudgetRequest) (domain.Budget, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.Budget{}, err
	}
	budget := domain.Budget{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Amount:    req.Amount,
		Period:    req.Period,
		Category:  req.Category,
		Currency:  domain.CurrencyCode(req.Currency),
		CreatedBy: userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.budgets.Create(budget); err != nil {
		return domain.Budget{}, err
	}
	return budget, nil
}

func (s *BudgetService) GetAll(userID string) ([]domain.Budget, error) {
	return s.budgets.ListByOwner(userID)
}

// GetByID returns the budget only to its owner.
func (s *BudgetService) GetByID(userID, budgetID string) (domain.Budget, error) {
	budget, err := s.budgets.GetByID(budgetID)
	if err != nil {
		return domain.Budget{}, err
	}
	if budget.CreatedBy != userID {
		return domain.Budget{}, errors.ErrNotBudgetOwner
	}
	return budget, nil
}

func (s *BudgetService) Edit(userID, budgetID string, req BudgetRequest) (domain.Budget, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.Budget{}, err
	}
	budget, err := s.GetByID(userID, budgetID)
	if err != nil {
		return domain.Budget{}, err
	}
	budget.Name = req.Name
	budget.Amount = req.Amount
	budget.Period = req.Period
	budget.Category = req.Category
	budget.Currency = domain.CurrencyCode(req.Currency)
	if err := s.budgets.Update(budget); err != nil {
		return domain.Budget{}, err
	}
	return budget, nil
}

func (s *BudgetService) Delete(userID, budgetID string) error {
	if _, err := s.GetByID(userID, budgetID); err != nil {
		return err
	}
	return s.budgets.Delete(budgetID)
}
