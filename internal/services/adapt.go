package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/prompt"
	"github.com/clarity-app/clarity-backend/internal/repository"
)

// AdaptService orchestrates the single-shot transforms: text
// simplification (adapt) and structured topic explanation (explain).
// Each call produces one immutable adapted-content record.
type AdaptService struct {
	adaptations repository.AdaptationRepository
	composer    *prompt.Composer
	ai          *ai.Client
	logger      *logrus.Entry
}

// NewAdaptService creates a new adapt service
func NewAdaptService(
	adaptations repository.AdaptationRepository,
	composer *prompt.Composer,
	client *ai.Client,
) *AdaptService {
	return &AdaptService{
		adaptations: adaptations,
		composer:    composer,
		ai:          client,
		logger:      logrus.WithField("component", "adapt"),
	}
}

// Adapt rewrites text for readability and persists the result. On AI
// degradation the output is the unmodified input, still persisted so
// the caller's response shape never changes.
func (s *AdaptService) Adapt(ctx context.Context, inputMethod, text string) (*repository.Adaptation, error) {
	detached := context.WithoutCancel(ctx)

	instruction := s.composer.Compose(detached, adaptInstruction, ai.FeatureAdapt)
	result := s.ai.Generate(detached, ai.Features[ai.FeatureAdapt], instruction, []ai.Message{
		{Sender: repository.SenderUser, Text: text},
	})
	if result.Degraded {
		s.logger.Warn("Adaptation degraded to original input")
	}

	record := &repository.Adaptation{
		Feature:     ai.FeatureAdapt,
		InputMethod: inputMethod,
		InputText:   text,
		OutputText:  result.Text,
	}
	if err := s.adaptations.Create(detached, record); err != nil {
		return nil, fmt.Errorf("failed to persist adaptation: %w", err)
	}

	return record, nil
}

// Explain produces a structured {title, body} explanation of a topic
// and persists it. A blank model title falls back to a truncated echo
// of the input.
func (s *AdaptService) Explain(ctx context.Context, text string) (*repository.Adaptation, error) {
	detached := context.WithoutCancel(ctx)

	instruction := s.composer.Compose(detached, explainInstruction, ai.FeatureExplain)
	result := s.ai.Generate(detached, ai.Features[ai.FeatureExplain], instruction, []ai.Message{
		{Sender: repository.SenderUser, Text: text},
	})
	if result.Degraded {
		s.logger.Warn("Explanation degraded to fallback")
	}

	title := result.Fields["title"]
	if title == "" {
		title = ai.TruncateTitle(text)
	}

	record := &repository.Adaptation{
		Feature:     ai.FeatureExplain,
		InputMethod: "text",
		InputText:   text,
		OutputText:  result.Fields["body"],
		Title:       sql.NullString{String: title, Valid: true},
	}
	if err := s.adaptations.Create(detached, record); err != nil {
		return nil, fmt.Errorf("failed to persist explanation: %w", err)
	}

	return record, nil
}

// Get retrieves an adapted-content record by ID
func (s *AdaptService) Get(ctx context.Context, id string) (*repository.Adaptation, error) {
	return s.adaptations.Get(ctx, id)
}
