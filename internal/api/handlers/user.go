package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{
		users: users,
	}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, token, err := h.users.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	user, err := h.users.Profile(c.UserContext(), claims.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req models.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.UserContext(), claims.SubjectID, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
