package models

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response body used for success and failure alike.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
}

// Respond writes a success envelope with the given status, message and payload.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
	})
}
