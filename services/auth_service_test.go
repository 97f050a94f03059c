package services

import (
	"fintrack/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Register_Then_Login(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	token, err := env.auth.Register("alice", "alice@example.com", "Long&Secure#Pass1")
	req.NoError(err)
	req.NotEmpty(token)

	token, err = env.auth.Login("alice@example.com", "Long&Secure#Pass1")
	req.NoError(err)
	req.NotEmpty(token)
}

func Test_Register_Duplicate_Email_Rejected(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	_, err := env.auth.Register("alice", "alice@example.com", "Long&Secure#Pass1")
	req.NoError(err)

	_, err = env.auth.Register("alice2", "alice@example.com", "Long&Secure#Pass1")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Register_Weak_Password_Rejected(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	_, err := env.auth.Register("alice", "alice@example.com", "short")
	req.ErrorIs(err, errors.ErrValidation)
}

func Test_Login_Wrong_Password(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	env.registerUser(t, "alice", "alice@example.com")

	_, err := env.auth.Login("alice@example.com", "Wrong&Password#999")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func Test_Login_Unknown_Email_Same_Error_As_Wrong_Password(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	// Both failure modes return the identical sentinel so the API cannot
	// be used to enumerate accounts.
	_, err := env.auth.Login("nobody@example.com", "Long&Secure#Pass1")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
