package server

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPendingPosts handles GET /api/postReviews: the moderation queue.
func (s *Server) GetPendingPosts(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	params := pageParams(c)
	posts, meta, err := s.reviewService.ListPending(c.UserContext(), user.ID, params)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Pending posts fetched",
		listPayload("posts", posts, meta))
}

// ApprovePost handles PUT /api/postReviews/:id/approve. Approval must carry
// a review comment; rejection may omit it.
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	return s.reviewDecision(c, s.reviewService.Approve, "Post approved", true)
}

// RejectPost handles PUT /api/postReviews/:id/reject
func (s *Server) RejectPost(c *fiber.Ctx) error {
	return s.reviewDecision(c, s.reviewService.Reject, "Post rejected", false)
}

func (s *Server) reviewDecision(
	c *fiber.Ctx,
	decide func(ctx context.Context, in service.ReviewDecisionInput) (*models.PostReview, error),
	message string,
	commentRequired bool,
) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if commentRequired && strings.TrimSpace(req.Comment) == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Comment is required"))
	}

	review, err := decide(c.UserContext(), service.ReviewDecisionInput{
		PostID:     postID,
		ReviewerID: user.ID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, message, review)
}

// GetPostReviews handles GET /api/postReviews/:id
func (s *Server) GetPostReviews(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewService.ListReviews(c.UserContext(), user.ID, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, "Reviews fetched", reviews)
}
