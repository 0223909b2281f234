package server

import (
	"io"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users/register. Accepts either a JSON body or a
// multipart form with an optional profileImage file.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
		FullName string `json:"fullName" form:"fullName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}

	if file, err := c.FormFile("profileImage"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return models.RespondWithError(c, models.NewInternalError(err))
		}
		in.ProfileImage = &service.UploadImageInput{
			Prefix:   "profiles",
			Filename: file.Filename,
			Content:  content,
		}
	}

	user, err := s.authService.Register(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusCreated, "User registered successfully", user)
}

// Login handles POST /api/users/login. The access token is set as an
// HTTP-only cookie; the refresh token is returned and persisted server side.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, pair, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.setSessionCookies(c, pair)

	return models.Respond(c, fiber.StatusOK, "Logged in successfully", fiber.Map{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Refresh handles POST /api/users/refresh using the refreshToken cookie.
func (s *Server) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refreshToken")
	if refreshToken == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	user, pair, err := s.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.setSessionCookies(c, pair)

	return models.Respond(c, fiber.StatusOK, "Token refreshed", fiber.Map{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Logout handles POST /api/users/logout: revokes the refresh token and clears
// the session cookies.
func (s *Server) Logout(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	if err := s.authService.Logout(c.UserContext(), user.ID); err != nil {
		return models.RespondWithError(c, err)
	}

	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "accessToken", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refreshToken", Value: "", Expires: expired, HTTPOnly: true})

	return models.Respond(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (s *Server) setSessionCookies(c *fiber.Ctx, pair *service.TokenPair) {
	secure := s.config.Env == "production" || s.config.Env == "prod"
	c.Cookie(&fiber.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		Expires:  time.Now().Add(s.config.AccessTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		Expires:  time.Now().Add(s.config.RefreshTokenExpiry),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Lax",
	})
}
