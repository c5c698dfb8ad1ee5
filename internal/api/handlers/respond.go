package handlers

import "github.com/gofiber/fiber/v2"

// fail writes the standard error shape: a textual detail plus the
// HTTP status, mirrored in the body for clients that drop headers.
func fail(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"detail": detail,
		"status": status,
	})
}
