package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/prompt"
	"github.com/clarity-app/clarity-backend/internal/repository"
)

// ChatService orchestrates conversational sessions: persist the inbound
// turn, replay the history as context, invoke the AI client, persist
// the reply. AI failures are already absorbed into a fallback by the
// client, so a send always completes and persists an outbound turn.
type ChatService struct {
	sessions repository.SessionRepository
	turns    repository.TurnRepository
	composer *prompt.Composer
	ai       *ai.Client
	logger   *logrus.Entry
}

// NewChatService creates a new chat service
func NewChatService(
	sessions repository.SessionRepository,
	turns repository.TurnRepository,
	composer *prompt.Composer,
	client *ai.Client,
) *ChatService {
	return &ChatService{
		sessions: sessions,
		turns:    turns,
		composer: composer,
		ai:       client,
		logger:   logrus.WithField("component", "chat"),
	}
}

// CreateSession creates a new active session for a feature
func (s *ChatService) CreateSession(ctx context.Context, feature string) (*repository.Session, error) {
	return s.sessions.Create(ctx, feature)
}

// GetSession retrieves a session by ID
func (s *ChatService) GetSession(ctx context.Context, id string) (*repository.Session, error) {
	return s.sessions.Get(ctx, id)
}

// ListTurns returns a session's turns in creation order
func (s *ChatService) ListTurns(ctx context.Context, sessionID string) ([]repository.Turn, error) {
	return s.turns.ListBySession(ctx, sessionID)
}

// EndSession marks a session as ended; re-ending is a no-op success
func (s *ChatService) EndSession(ctx context.Context, id string) (*repository.Session, error) {
	return s.sessions.End(ctx, id)
}

// SendMessage runs one conversational exchange and returns the AI turn.
// An unknown session surfaces as repository.ErrNotFound before anything
// is written. Once the user turn is persisted the rest of the exchange
// runs detached from the caller's cancellation, so a dropped connection
// cannot orphan the turn pair.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, text string) (*repository.Turn, error) {
	if _, err := s.turns.Append(ctx, sessionID, repository.SenderUser, text); err != nil {
		return nil, fmt.Errorf("failed to persist user turn: %w", err)
	}

	detached := context.WithoutCancel(ctx)

	turns, err := s.turns.ListBySession(detached, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]ai.Message, len(turns))
	for i, turn := range turns {
		history[i] = ai.Message{Sender: turn.Sender, Text: turn.Content}
	}

	instruction := s.composer.Compose(detached, chatInstruction, ai.FeatureChat)
	result := s.ai.Generate(detached, ai.Features[ai.FeatureChat], instruction, history)
	if result.Degraded {
		s.logger.WithField("session_id", sessionID).Warn("Replying with fallback message")
	}

	aiTurn, err := s.turns.Append(detached, sessionID, repository.SenderAI, result.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to persist ai turn: %w", err)
	}

	return aiTurn, nil
}
