package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateApiKey handles POST /api/users/api-key. At most one ACTIVE key per
// user: a second request while one is live returns 409.
func (s *Server) CreateApiKey(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	apiKey, err := s.apiKeyService.CreateApiKey(c.UserContext(), service.CreateApiKeyInput{
		UserID: user.ID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "API key created", apiKey)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	return models.Respond(c, fiber.StatusOK, "Profile fetched", user)
}

// GetUserComments handles GET /api/users/:userId/comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if _, err := s.userService.GetUserByID(c.UserContext(), userID); err != nil {
		return models.RespondWithError(c, err)
	}

	params := pageParams(c)
	comments, meta, err := s.commentService.ListByUser(c.UserContext(), userID, params)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Comments fetched",
		listPayload("comments", comments, meta))
}
