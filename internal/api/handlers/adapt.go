package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clarity-app/clarity-backend/internal/repository"
	"github.com/clarity-app/clarity-backend/internal/services"
)

func adaptationResponse(a *repository.Adaptation) fiber.Map {
	resp := fiber.Map{
		"id":           a.ID,
		"feature":      a.Feature,
		"input_method": a.InputMethod,
		"input_text":   a.InputText,
		"output_text":  a.OutputText,
		"created_at":   a.CreatedAt,
	}
	if a.Title.Valid {
		resp["title"] = a.Title.String
	}
	return resp
}

// Adapt rewrites submitted text for readability and persists the result
func Adapt(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			InputMethod string `json:"input_method"`
			Text        string `json:"text"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.Text) == "" {
			return fail(c, fiber.StatusBadRequest, "text is required")
		}
		if req.InputMethod == "" {
			req.InputMethod = "text"
		}

		record, err := svc.Adapt.Adapt(c.Context(), req.InputMethod, req.Text)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to adapt text")
		}

		return c.JSON(adaptationResponse(record))
	}
}

// Explain produces a structured explanation of a topic and persists it
func Explain(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(req.Text) == "" {
			return fail(c, fiber.StatusBadRequest, "text is required")
		}

		record, err := svc.Adapt.Explain(c.Context(), req.Text)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to explain topic")
		}

		return c.JSON(adaptationResponse(record))
	}
}

// GetAdaptation returns an adapted-content record by ID
func GetAdaptation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		record, err := svc.Adapt.Get(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, fiber.StatusNotFound, "Adaptation not found")
			}
			return fail(c, fiber.StatusInternalServerError, "Failed to load adaptation")
		}

		return c.JSON(adaptationResponse(record))
	}
}
