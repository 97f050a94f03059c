package services

import (
	"fintrack/auth"
	"fintrack/repositories"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services against a throwaway badger instance, the same
// storage the binary runs on.
type testEnv struct {
	db           *badger.DB
	users        repositories.IUserRepository
	auth         IAuthService
	budgets      IBudgetService
	transactions ITransactionService
	dashboard    IDashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	tokens := auth.NewTokenManager("test-secret-for-services", time.Hour)

	return &testEnv{
		db:           db,
		users:        users,
		auth:         NewAuthService(users, tokens),
		budgets:      NewBudgetService(budgetRepo),
		transactions: NewTransactionService(transactionRepo, budgetRepo),
		dashboard:    NewDashboardService(transactionRepo),
	}
}

// registerUser creates an account and returns its id.
func (e *testEnv) registerUser(t *testing.T, username, email string) string {
	t.Helper()
	_, err := e.auth.Register(username, email, "Long&Secure#Pass1")
	require.NoError(t, err)
	user, err := e.users.GetUserByEmail(email)
	require.NoError(t, err)
	return user.ID
}
