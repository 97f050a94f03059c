package httpapi

import (
	"fintrack/domain"
	"fintrack/services"
	"net/http"
	"strconv"
	"time"
)

type credentialsRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	token, err := s.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

type budgetResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    string    `json:"amount"`
	Period    string    `json:"period"`
	Category  string    `json:"category"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

func toBudgetResponse(budget domain.Budget) budgetResponse {
	return budgetResponse{
		ID:        budget.ID,
		Name:      budget.Name,
		Amount:    budget.Amount.String(),
		Period:    budget.Period,
		Category:  budget.Category,
		Currency:  string(budget.Currency),
		CreatedAt: budget.CreatedAt,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req services.BudgetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	budget, err := s.budgets.Create(claimsFrom(r).UserID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toBudgetResponse(budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	all, err := s.budgets.GetAll(claimsFrom(r).UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	responses := make([]budgetResponse, 0, len(all))
	for _, budget := range all {
		responses = append(responses, toBudgetResponse(budget))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.budgets.GetByID(claimsFrom(r).UserID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleEditBudget(w http.ResponseWriter, r *http.Request) {
	var req services.BudgetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	budget, err := s.budgets.Edit(claimsFrom(r).UserID, r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Delete(claimsFrom(r).UserID, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetCategories(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.BudgetCategories)
}

func (s *Server) handleBudgetPeriods(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.BudgetPeriods)
}

type transactionResponse struct {
	ID            string    `json:"id"`
	BudgetID      string    `json:"budgetId"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description,omitempty"`
	Date          time.Time `json:"date"`
	PaymentMethod string    `json:"paymentMethod"`
	Category      string    `json:"category,omitempty"`
	IsRecurring   bool      `json:"isRecurring"`
}

func toTransactionResponse(transaction domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            transaction.ID,
		BudgetID:      transaction.BudgetID,
		Amount:        transaction.Amount.String(),
		Type:          string(transaction.Type),
		Description:   transaction.Description,
		Date:          transaction.Date,
		PaymentMethod: string(transaction.PaymentMethod),
		Category:      transaction.Category,
		IsRecurring:   transaction.IsRecurring,
	}
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.TransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	transaction, err := s.transactions.Add(claimsFrom(r).UserID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toTransactionResponse(transaction))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	listed, err := s.transactions.List(claimsFrom(r).UserID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	responses := make([]transactionResponse, 0, len(listed))
	for _, transaction := range listed {
		responses = append(responses, toTransactionResponse(transaction))
	}
	s.writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	summary, err := s.dashboard.Summary(claimsFrom(r).UserID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	series, err := s.dashboard.MonthlySeries(claimsFrom(r).UserID, months)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	breakdown, err := s.dashboard.CategoryBreakdown(claimsFrom(r).UserID, from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, breakdown)
}

// handleConversation returns the full two-party history. Only a participant
// of the conversation may read it.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	user1, user2 := r.PathValue("user1"), r.PathValue("user2")
	caller := claimsFrom(r).UserID
	if caller != user1 && caller != user2 {
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: "not a participant of this conversation"})
		return
	}
	conversation, err := s.conversations.GetConversation(r.Context(), user1, user2)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, conversation)
}

// dateRange parses optional from/to query parameters, accepting RFC 3339 or
// a bare date.
func dateRange(r *http.Request) (*time.Time, *time.Time, error) {
	parse := func(name string) (*time.Time, error) {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return &parsed, nil
			}
		}
		return nil, errInvalidDate(name)
	}
	from, err := parse("from")
	if err != nil {
		return nil, nil, err
	}
	to, err := parse("to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

type errInvalidDate string

func (e errInvalidDate) Error() string {
	return "invalid " + string(e) + " date, expected RFC 3339 or YYYY-MM-DD"
}
