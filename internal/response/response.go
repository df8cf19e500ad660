// Package response writes the JSON envelope shared by every endpoint:
// {"success": true, "data"|"message": ...} or {"success": false, "error": ...}.
package response

import "github.com/gofiber/fiber/v2"

// Data writes a successful response carrying data.
func Data(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Message writes a successful response carrying a human-readable message.
func Message(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// Error writes a failed response.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
