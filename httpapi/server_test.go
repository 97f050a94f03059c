package httpapi

import (
	"bytes"
	"encoding/json"
	"fintrack/auth"
	"fintrack/repositories"
	"fintrack/services"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	server *httptest.Server
	users  repositories.IUserRepository
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	messages := repositories.NewMessageRepository(db, slog.Default())
	tokens := auth.NewTokenManager("httpapi-test-secret", time.Hour)

	server := NewServer(
		services.NewAuthService(users, tokens),
		services.NewBudgetService(budgetRepo),
		services.NewTransactionService(transactionRepo, budgetRepo),
		services.NewDashboardService(transactionRepo),
		services.NewConversationService(messages, users, slog.Default()),
		nil, // no websocket gateway under test here
		tokens,
		slog.Default(),
	)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return &apiEnv{server: ts, users: users}
}

// do issues a JSON request and decodes the JSON response into out (when out
// is non-nil), returning the status code.
func (e *apiEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *apiEnv) register(t *testing.T, username, email string) string {
	t.Helper()
	var resp tokenResponse
	status := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "Long&Secure#Pass1",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func Test_Register_Login_Roundtrip(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	env.register(t, "alice", "alice@example.com")

	var resp tokenResponse
	status := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Long&Secure#Pass1",
	}, &resp)
	req.Equal(http.StatusOK, status)
	req.NotEmpty(resp.Token)

	status = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, nil)
	req.Equal(http.StatusUnauthorized, status)

	status = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "Long&Secure#Pass1",
	}, nil)
	req.Equal(http.StatusConflict, status)
}

func Test_Protected_Routes_Require_Token(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)

	req.Equal(http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/budgets", "", nil, nil))
	req.Equal(http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/budgets", "bogus-token", nil, nil))
}

func Test_Budget_CRUD_Over_HTTP(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	token := env.register(t, "alice", "alice@example.com")

	budget := map[string]any{
		"name": "groceries", "amount": 500, "period": "monthly",
		"category": "food", "currency": "USD",
	}
	var created budgetResponse
	req.Equal(http.StatusCreated, env.do(t, http.MethodPost, "/api/budgets", token, budget, &created))
	req.NotEmpty(created.ID)
	req.Equal("500", created.Amount)

	var listed []budgetResponse
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/budgets", token, nil, &listed))
	req.Len(listed, 1)

	budget["name"] = "food and snacks"
	var edited budgetResponse
	req.Equal(http.StatusOK, env.do(t, http.MethodPut, "/api/budgets/"+created.ID, token, budget, &edited))
	req.Equal("food and snacks", edited.Name)

	req.Equal(http.StatusNoContent, env.do(t, http.MethodDelete, "/api/budgets/"+created.ID, token, nil, nil))
	req.Equal(http.StatusNotFound, env.do(t, http.MethodGet, "/api/budgets/"+created.ID, token, nil, nil))
}

func Test_Budget_Access_Is_Owner_Scoped(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	aliceToken := env.register(t, "alice", "alice@example.com")
	bobToken := env.register(t, "bob", "bob@example.com")

	var created budgetResponse
	req.Equal(http.StatusCreated, env.do(t, http.MethodPost, "/api/budgets", aliceToken, map[string]any{
		"name": "groceries", "amount": 500, "period": "monthly",
		"category": "food", "currency": "USD",
	}, &created))

	req.Equal(http.StatusForbidden, env.do(t, http.MethodGet, "/api/budgets/"+created.ID, bobToken, nil, nil))

	var bobsList []budgetResponse
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/budgets", bobToken, nil, &bobsList))
	req.Empty(bobsList)
}

func Test_Transactions_And_Dashboard_Over_HTTP(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	token := env.register(t, "alice", "alice@example.com")

	var budget budgetResponse
	req.Equal(http.StatusCreated, env.do(t, http.MethodPost, "/api/budgets", token, map[string]any{
		"name": "groceries", "amount": 500, "period": "monthly",
		"category": "food", "currency": "USD",
	}, &budget))

	now := time.Now().UTC().Format(time.RFC3339)
	req.Equal(http.StatusCreated, env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"budgetId": budget.ID, "amount": 3000, "type": "income",
		"date": now, "paymentMethod": "online",
	}, nil))
	req.Equal(http.StatusCreated, env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"budgetId": budget.ID, "amount": 450, "type": "expense",
		"date": now, "paymentMethod": "card", "category": "food",
	}, nil))

	var listed []transactionResponse
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/transactions", token, nil, &listed))
	req.Len(listed, 2)

	var summary services.DashboardSummary
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil, &summary))
	req.Equal(2, summary.Count)
	req.Equal("3000", summary.TotalIncome.String())
	req.Equal("450", summary.TotalExpense.String())
	req.Equal("2550", summary.Balance.String())

	var breakdown []services.CategoryTotal
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/dashboard/categories", token, nil, &breakdown))
	req.Len(breakdown, 1)
	req.Equal("food", breakdown[0].Category)

	req.Equal(http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions?from=yesterday", token, nil, nil))
}

func Test_Budget_Catalogs(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	token := env.register(t, "alice", "alice@example.com")

	var categories []string
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/budgets/categories", token, nil, &categories))
	req.Contains(categories, "food")

	var periods []string
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, "/api/budgets/periods", token, nil, &periods))
	req.Contains(periods, "monthly")
}

func Test_Conversation_Endpoint_Is_Participant_Only(t *testing.T) {
	req := require.New(t)
	env := newAPIEnv(t)
	aliceToken := env.register(t, "alice", "alice@example.com")
	env.register(t, "bob", "bob@example.com")
	carolToken := env.register(t, "carol", "carol@example.com")

	alice, err := env.users.GetUserByEmail("alice@example.com")
	req.NoError(err)
	bob, err := env.users.GetUserByEmail("bob@example.com")
	req.NoError(err)

	path := "/api/messages/" + alice.ID + "/" + bob.ID
	var conversation []services.ConversationMessage
	req.Equal(http.StatusOK, env.do(t, http.MethodGet, path, aliceToken, nil, &conversation))
	req.Empty(conversation)

	req.Equal(http.StatusForbidden, env.do(t, http.MethodGet, path, carolToken, nil, nil))
}
