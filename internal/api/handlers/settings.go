package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clarity-app/clarity-backend/internal/services"
)

// GetProfile returns the saved "about you" text
func GetProfile(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aboutYou, err := svc.Profile.Get()
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to read profile")
		}

		return c.JSON(fiber.Map{"about_you": aboutYou})
	}
}

// UpdateProfile saves the profile and splices it into the common
// prompt fragment so every feature picks it up on the next call
func UpdateProfile(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			AboutYou string `json:"about_you"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		if err := svc.Profile.Update(req.AboutYou); err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to update profile")
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}
