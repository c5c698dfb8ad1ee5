package services

import (
	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/prompt"
	"github.com/clarity-app/clarity-backend/internal/repository"
)

// Services holds all service instances
type Services struct {
	Chat    *ChatService
	Adapt   *AdaptService
	Profile *prompt.ProfileStore
}

// NewServices creates all service instances
func NewServices(
	sessionRepo repository.SessionRepository,
	turnRepo repository.TurnRepository,
	adaptationRepo repository.AdaptationRepository,
	composer *prompt.Composer,
	client *ai.Client,
	profile *prompt.ProfileStore,
) *Services {
	return &Services{
		Chat:    NewChatService(sessionRepo, turnRepo, composer, client),
		Adapt:   NewAdaptService(adaptationRepo, composer, client),
		Profile: profile,
	}
}
