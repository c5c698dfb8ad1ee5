package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/repository"
	"github.com/clarity-app/clarity-backend/internal/services"
)

// CreateSession creates a new conversation session
func CreateSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Feature string `json:"feature"`
		}

		if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		if req.Feature == "" {
			req.Feature = ai.FeatureChat
		}

		session, err := svc.Chat.CreateSession(c.Context(), req.Feature)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to create session")
		}

		return c.JSON(fiber.Map{
			"session_id": session.ID,
			"feature":    session.Feature,
			"status":     session.Status,
			"created_at": session.CreatedAt,
			"turns":      []repository.Turn{},
		})
	}
}

// GetSession returns a session together with its ordered turn history
func GetSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		session, err := svc.Chat.GetSession(c.Context(), sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, fiber.StatusNotFound, "Session not found")
			}
			return fail(c, fiber.StatusInternalServerError, "Failed to load session")
		}

		turns, err := svc.Chat.ListTurns(c.Context(), sessionID)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to load turns")
		}

		resp := fiber.Map{
			"session_id": session.ID,
			"feature":    session.Feature,
			"status":     session.Status,
			"created_at": session.CreatedAt,
			"turns":      turns,
		}
		if session.EndedAt.Valid {
			resp["ended_at"] = session.EndedAt.Time
		}

		return c.JSON(resp)
	}
}

// GetSessionTurns returns a session's turns in creation order
func GetSessionTurns(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		if _, err := svc.Chat.GetSession(c.Context(), sessionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, fiber.StatusNotFound, "Session not found")
			}
			return fail(c, fiber.StatusInternalServerError, "Failed to load session")
		}

		turns, err := svc.Chat.ListTurns(c.Context(), sessionID)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to load turns")
		}

		return c.JSON(fiber.Map{"turns": turns})
	}
}

// EndSession marks a session as ended; ending twice is a no-op success
func EndSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		session, err := svc.Chat.EndSession(c.Context(), sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, fiber.StatusNotFound, "Session not found")
			}
			return fail(c, fiber.StatusInternalServerError, "Failed to end session")
		}

		resp := fiber.Map{
			"session_id": session.ID,
			"status":     session.Status,
		}
		if session.EndedAt.Valid {
			resp["ended_at"] = session.EndedAt.Time
		}

		return c.JSON(resp)
	}
}
