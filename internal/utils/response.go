package utils

import "github.com/gofiber/fiber/v2"

// SendSuccess writes the uniform {success, message, ...payload} envelope with
// a 200 status. Payload keys are merged at the top level so endpoints keep
// their published shapes (submission, content, result, pagination, ...).
func SendSuccess(c *fiber.Ctx, message string, payload fiber.Map) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, payload)
}

// SendSuccessWithStatus sends a success envelope using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, payload fiber.Map) error {
	if status == 0 {
		status = fiber.StatusOK
	}

	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	for key, value := range payload {
		body[key] = value
	}

	return c.Status(status).JSON(body)
}

// SendError sends an error envelope with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
