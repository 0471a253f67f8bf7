package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		auth: auth,
	}
}

type loginFunc func(c *fiber.Ctx, req models.LoginRequest) (*service.LoginResult, error)

// login parses the shared credential body. Malformed input never counts as a failed attempt.
func (h *AuthHandler) login(c *fiber.Ctx, idField string, fn loginFunc) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := fn(c, req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		idField:      res.SubjectID,
		"token":      res.Token,
		"expires_in": res.ExpiresIn,
	})
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	return h.login(c, "admin_id", func(c *fiber.Ctx, req models.LoginRequest) (*service.LoginResult, error) {
		return h.auth.LoginAdmin(c.UserContext(), req.Email, req.Password, c.IP())
	})
}

func (h *AuthHandler) LessorLogin(c *fiber.Ctx) error {
	return h.login(c, "lessor_id", func(c *fiber.Ctx, req models.LoginRequest) (*service.LoginResult, error) {
		return h.auth.LoginLessor(c.UserContext(), req.Email, req.Password, c.IP())
	})
}

func (h *AuthHandler) UserLogin(c *fiber.Ctx) error {
	return h.login(c, "user_id", func(c *fiber.Ctx, req models.LoginRequest) (*service.LoginResult, error) {
		return h.auth.LoginUser(c.UserContext(), req.Email, req.Password, c.IP())
	})
}

// AdminMe is the landing check of the admin pages.
func (h *AuthHandler) AdminMe(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	admin, err := h.auth.Admin(c.UserContext(), claims.SubjectID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"admin_id": admin.ID,
		"email":    admin.Email,
	})
}
