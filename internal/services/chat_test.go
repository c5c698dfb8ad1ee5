package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/prompt"
	"github.com/clarity-app/clarity-backend/internal/repository"
	"github.com/clarity-app/clarity-backend/internal/repository/memory"
)

// stubEngine returns a fixed reply, or errors when failing is set.
type stubEngine struct {
	reply   string
	failing bool
}

func (e *stubEngine) Name() string          { return "stub" }
func (e *stubEngine) ValidateConfig() error { return nil }
func (e *stubEngine) Generate(ctx context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	if e.failing {
		return nil, &ai.UpstreamError{StatusCode: 400, Body: "bad request"}
	}
	return &ai.GenerateResponse{Text: e.reply}, nil
}

type emptyProvider struct{}

func (emptyProvider) LoadFragments(ctx context.Context, scope string) ([]prompt.Fragment, error) {
	return nil, nil
}

func newTestChatService(engine ai.Engine) (*ChatService, *memory.Store) {
	store := memory.NewStore()
	composer := prompt.NewComposer(emptyProvider{})
	client := ai.NewClientWithRetry(engine, ai.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		Retryable:   ai.IsTransient,
	})
	return NewChatService(store.Sessions(), store.Turns(), composer, client), store
}

func TestSendMessagePersistsBothTurnsInOrder(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{reply: "You're not alone."})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "chat")
	require.NoError(t, err)

	turn, err := svc.SendMessage(ctx, session.ID, "I feel overwhelmed")
	require.NoError(t, err)
	assert.Equal(t, repository.SenderAI, turn.Sender)
	assert.Equal(t, "You're not alone.", turn.Content)

	turns, err := svc.ListTurns(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, repository.SenderUser, turns[0].Sender)
	assert.Equal(t, "I feel overwhelmed", turns[0].Content)
	assert.Equal(t, repository.SenderAI, turns[1].Sender)
	assert.Equal(t, "You're not alone.", turns[1].Content)
}

func TestSendMessageUnknownSessionWritesNothing(t *testing.T) {
	svc, store := newTestChatService(&stubEngine{reply: "hi"})

	_, err := svc.SendMessage(context.Background(), "no-such-session", "hello")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	turns, err := store.Turns().ListBySession(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, turns, "appendTurn never silently creates a session")
}

func TestSendMessageDegradedStillPersistsReply(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{failing: true})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "chat")
	require.NoError(t, err)

	turn, err := svc.SendMessage(ctx, session.ID, "hello?")
	require.NoError(t, err, "AI failure never aborts the exchange")
	assert.Equal(t, repository.SenderAI, turn.Sender)
	assert.NotEmpty(t, turn.Content, "fallback reply is persisted like a real one")

	turns, err := svc.ListTurns(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestSendMessageSurvivesCallerCancellation(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{reply: "still here"})

	session, err := svc.CreateSession(context.Background(), "chat")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The user turn append sees the cancelled context via the memory
	// store (which ignores it), but the exchange itself must run
	// detached and complete.
	turn, err := svc.SendMessage(ctx, session.ID, "are you there")
	require.NoError(t, err)
	assert.Equal(t, "still here", turn.Content)
}

func TestListTurnsEmptySession(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "chat")
	require.NoError(t, err)

	turns, err := svc.ListTurns(ctx, session.ID)
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestListTurnsOrderedUnderConcurrentSends(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{reply: "ok"})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "chat")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendMessage(ctx, session.ID, "message")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	turns, err := svc.ListTurns(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, turns, 16)
	for i := 1; i < len(turns); i++ {
		assert.False(t, turns[i].CreatedAt.Before(turns[i-1].CreatedAt),
			"turns must be in non-decreasing creation-timestamp order")
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{})
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "chat")
	require.NoError(t, err)

	ended, err := svc.EndSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusEnded, ended.Status)
	require.True(t, ended.EndedAt.Valid)
	firstEndedAt := ended.EndedAt.Time

	again, err := svc.EndSession(ctx, session.ID)
	require.NoError(t, err, "re-ending an ended session is a no-op success")
	assert.Equal(t, repository.StatusEnded, again.Status)
	assert.Equal(t, firstEndedAt, again.EndedAt.Time, "original end timestamp is kept")
}

func TestEndSessionUnknownID(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{})

	_, err := svc.EndSession(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionIdentifiersAreUnique(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{})
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		session, err := svc.CreateSession(ctx, "chat")
		require.NoError(t, err)
		assert.False(t, seen[session.ID])
		seen[session.ID] = true
	}
}

func TestGetSessionNotFound(t *testing.T) {
	svc, _ := newTestChatService(&stubEngine{})

	_, err := svc.GetSession(context.Background(), "missing")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
