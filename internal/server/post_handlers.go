package server

import (
	"io"
	"strconv"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Accepts a multipart form with an
// optional banner file; new posts always enter the queue as PENDING.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		CategoryID  string `json:"categoryId" form:"categoryId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostInput{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.CategoryID != "" {
		id, err := strconv.ParseUint(req.CategoryID, 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c,
				models.NewValidationError("Invalid categoryId"))
		}
		cid := uint(id)
		in.CategoryID = &cid
	}

	banner, err := s.readFormImage(c, "bannerImage", "banners")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	in.Banner = banner

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "Post submitted for review", post)
}

// GetApprovedPosts handles GET /api/posts: the public feed of approved posts.
func (s *Server) GetApprovedPosts(c *fiber.Ctx) error {
	params := pageParams(c)
	posts, meta, err := s.postService.ListApproved(c.UserContext(), params)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Posts fetched",
		listPayload("posts", posts, meta))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post fetched", post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid slug"))
	}
	post, err := s.postService.GetPostBySlug(c.UserContext(), slug)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post fetched", post)
}

// GetMyPosts handles GET /api/posts/me: the caller's posts in any status.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	params := pageParams(c)
	posts, meta, err := s.postService.ListByCreator(c.UserContext(), user.ID, params)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Posts fetched",
		listPayload("posts", posts, meta))
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title" form:"title"`
		Description string `json:"description" form:"description"`
		CategoryID  string `json:"categoryId" form:"categoryId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := service.UpdatePostInput{
		UserID:      user.ID,
		UserRole:    user.Role,
		PostID:      postID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.CategoryID != "" {
		id, err := strconv.ParseUint(req.CategoryID, 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithError(c,
				models.NewValidationError("Invalid categoryId"))
		}
		cid := uint(id)
		in.CategoryID = &cid
	}

	banner, err := s.readFormImage(c, "bannerImage", "banners")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	in.Banner = banner

	post, err := s.postService.UpdatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post updated", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID:   user.ID,
		UserRole: user.Role,
		PostID:   postID,
	}); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Post deleted", nil)
}

// readFormImage pulls an optional multipart file field into an upload input.
// A missing field returns (nil, nil).
func (s *Server) readFormImage(c *fiber.Ctx, field, prefix string) (*service.UploadImageInput, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return nil, nil
	}
	src, err := file.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.UploadImageInput{
		Prefix:   prefix,
		Filename: file.Filename,
		Content:  content,
	}, nil
}
