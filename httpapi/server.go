// Package httpapi exposes the REST surface: account registration and login,
// budget and transaction management, dashboard aggregates, conversation
// history, and the websocket mount point of the gateway.
package httpapi

import (
	"encoding/json"
	stderrors "errors"
	"fintrack/auth"
	"fintrack/errors"
	"fintrack/gateway"
	"fintrack/services"
	"log/slog"
	"net/http"
)

type Server struct {
	auth          services.IAuthService
	budgets       services.IBudgetService
	transactions  services.ITransactionService
	dashboard     services.IDashboardService
	conversations services.IConversationService
	gateway       *gateway.Gateway
	tokens        *auth.TokenManager
	log           *slog.Logger
}

func NewServer(
	authSvc services.IAuthService,
	budgets services.IBudgetService,
	transactions services.ITransactionService,
	dashboard services.IDashboardService,
	conversations services.IConversationService,
	gw *gateway.Gateway,
	tokens *auth.TokenManager,
	log *slog.Logger,
) *Server {
	return &Server{
		auth:          authSvc,
		budgets:       budgets,
		transactions:  transactions,
		dashboard:     dashboard,
		conversations: conversations,
		gateway:       gw,
		tokens:        tokens,
		log:           log,
	}
}

// Handler builds the route table. Everything under /api except auth requires
// a bearer token; /ws does its own credential check before upgrading.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("GET /api/budgets", s.authenticated(s.handleListBudgets))
	mux.Handle("POST /api/budgets", s.authenticated(s.handleCreateBudget))
	mux.Handle("GET /api/budgets/categories", s.authenticated(s.handleBudgetCategories))
	mux.Handle("GET /api/budgets/periods", s.authenticated(s.handleBudgetPeriods))
	mux.Handle("GET /api/budgets/{id}", s.authenticated(s.handleGetBudget))
	mux.Handle("PUT /api/budgets/{id}", s.authenticated(s.handleEditBudget))
	mux.Handle("DELETE /api/budgets/{id}", s.authenticated(s.handleDeleteBudget))

	mux.Handle("GET /api/transactions", s.authenticated(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.authenticated(s.handleAddTransaction))

	mux.Handle("GET /api/dashboard/summary", s.authenticated(s.handleDashboardSummary))
	mux.Handle("GET /api/dashboard/monthly", s.authenticated(s.handleDashboardMonthly))
	mux.Handle("GET /api/dashboard/categories", s.authenticated(s.handleDashboardCategories))

	mux.Handle("GET /api/messages/{user1}/{user2}", s.authenticated(s.handleConversation))

	if s.gateway != nil {
		mux.HandleFunc("GET /ws", s.gateway.ServeWS)
	}
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Response encoding failed", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		status = http.StatusBadRequest
	case stderrors.Is(err, errors.ErrInvalidCredentials),
		stderrors.Is(err, errors.ErrAuthentication):
		status = http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrNotBudgetOwner):
		status = http.StatusForbidden
	case stderrors.Is(err, errors.ErrUnknownBudget),
		stderrors.Is(err, errors.ErrUnknownUser),
		stderrors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		status = http.StatusConflict
	case stderrors.Is(err, errors.ErrConnectivity):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("Unhandled request error", "error", err)
		s.writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
