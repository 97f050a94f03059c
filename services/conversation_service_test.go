package services

import (
	"context"
	"fintrack/errors"
	"fintrack/repositories"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newConversationService(t *testing.T, env *testEnv) *ConversationService {
	t.Helper()
	messages := repositories.NewMessageRepository(env.db, slog.Default())
	return NewConversationService(messages, env.users, slog.Default())
}

func Test_Append_And_Read_Conversation(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	_, err := svc.Append(ctx, alice, bob, "hi bob", nil)
	req.NoError(err)
	_, err = svc.Append(ctx, bob, alice, "hi alice", nil)
	req.NoError(err)

	conversation, err := svc.GetConversation(ctx, alice, bob)
	req.NoError(err)
	req.Len(conversation, 2)
	req.Equal("hi bob", conversation[0].Body)
	req.Equal(Participant{ID: alice, Name: "alice"}, conversation[0].From)
	req.Equal(Participant{ID: bob, Name: "bob"}, conversation[0].To)
	req.Equal("hi alice", conversation[1].Body)
}

func Test_Conversation_Is_Direction_Agnostic(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	_, err := svc.Append(ctx, alice, bob, "one way", nil)
	req.NoError(err)

	forward, err := svc.GetConversation(ctx, alice, bob)
	req.NoError(err)
	backward, err := svc.GetConversation(ctx, bob, alice)
	req.NoError(err)
	req.Equal(forward, backward)
}

func Test_Append_Rejects_Empty_Body_And_Unknown_Users(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	_, err := svc.Append(ctx, alice, bob, "   ", nil)
	req.ErrorIs(err, errors.ErrValidation)

	_, err = svc.Append(ctx, "no-such-user", bob, "hello", nil)
	req.ErrorIs(err, errors.ErrValidation)

	_, err = svc.Append(ctx, alice, "no-such-user", "hello", nil)
	req.ErrorIs(err, errors.ErrValidation)
}

func Test_Reply_Context_Is_Resolved(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	original, err := svc.Append(ctx, alice, bob, "want lunch?", nil)
	req.NoError(err)
	_, err = svc.Append(ctx, bob, alice, "sure", &original.ID)
	req.NoError(err)

	conversation, err := svc.GetConversation(ctx, alice, bob)
	req.NoError(err)
	req.Len(conversation, 2)
	req.Nil(conversation[0].Reply)
	req.NotNil(conversation[1].Reply)
	req.Equal(original.ID.String(), conversation[1].Reply.ID)
	req.Equal("want lunch?", conversation[1].Reply.Body)
	req.Equal("alice", conversation[1].Reply.FromName)
	req.Equal("bob", conversation[1].Reply.ToName)
}

func Test_Dangling_Reply_Degrades_To_No_Annotation(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")

	ghost := uuid.New()
	_, err := svc.Append(ctx, alice, bob, "replying to nothing", &ghost)
	req.NoError(err)

	conversation, err := svc.GetConversation(ctx, alice, bob)
	req.NoError(err)
	req.Len(conversation, 1)
	req.Nil(conversation[0].Reply)

	req.Nil(svc.ResolveReply(ctx, ghost))
}

func Test_Conversation_Excludes_Third_Parties(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	svc := newConversationService(t, env)
	ctx := context.Background()

	alice := env.registerUser(t, "alice", "alice@example.com")
	bob := env.registerUser(t, "bob", "bob@example.com")
	carol := env.registerUser(t, "carol", "carol@example.com")

	_, err := svc.Append(ctx, alice, bob, "for bob", nil)
	req.NoError(err)
	_, err = svc.Append(ctx, alice, carol, "for carol", nil)
	req.NoError(err)

	conversation, err := svc.GetConversation(ctx, alice, bob)
	req.NoError(err)
	req.Len(conversation, 1)
	req.Equal("for bob", conversation[0].Body)
}
