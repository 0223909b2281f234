package server

import (
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// pageParams applies the shared pagination policy to the page/limit query
// parameters.
func pageParams(c *fiber.Ctx) pagination.Params {
	return pagination.Normalize(c.QueryInt("page", 1), c.QueryInt("limit", pagination.DefaultLimit))
}

// currentUser returns the authenticated user placed in locals by AuthRequired.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		_ = models.RespondWithError(c,
			models.NewUnauthorizedError("Authentication required"))
		return nil, errResponseWritten
	}
	return user, nil
}

// listPayload shapes a paginated collection for the response envelope.
func listPayload(name string, items any, meta pagination.Meta) fiber.Map {
	return fiber.Map{
		name:       items,
		"metadata": meta,
	}
}
