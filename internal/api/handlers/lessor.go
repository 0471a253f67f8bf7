package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/service"
)

const HeaderPasswordToken = "X-Password-Token"

type LessorHandler struct {
	lessors *service.LessorService
}

func NewLessorHandler(lessors *service.LessorService) *LessorHandler {
	return &LessorHandler{
		lessors: lessors,
	}
}

// lessorID returns :lessor_id once it matches the token subject.
// Any Current-User header the page still sends is ignored.
func lessorID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("lessor_id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid lessor ID")
	}

	claims, ok := middleware.Claims(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	if claims.SubjectID != uint(id) {
		return 0, service.ErrForbidden
	}
	return uint(id), nil
}

func (h *LessorHandler) GetLessor(c *fiber.Ctx) error {
	id, err := lessorID(c)
	if err != nil {
		return err
	}

	lessor, err := h.lessors.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"lessorDetails": lessor,
	})
}

func (h *LessorHandler) VerifyPassword(c *fiber.Ctx) error {
	id, err := lessorID(c)
	if err != nil {
		return err
	}

	var req models.VerifyPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	grant, err := h.lessors.VerifyPassword(c.UserContext(), id, req.CurrentPassword, c.IP())
	if err != nil {
		var failure *service.LoginFailure
		if errors.As(err, &failure) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":              "Current password is incorrect",
				"attempts_remaining": failure.AttemptsRemaining,
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"verified":       true,
		"password_token": grant,
	})
}

func (h *LessorHandler) UpdateLessor(c *fiber.Ctx) error {
	id, err := lessorID(c)
	if err != nil {
		return err
	}

	var req models.UpdateLessorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	lessor, err := h.lessors.Update(c.UserContext(), id, req, c.Get(HeaderPasswordToken))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":       "Profile updated successfully",
		"lessorDetails": lessor,
	})
}

func (h *LessorHandler) DeleteLessor(c *fiber.Ctx) error {
	id, err := lessorID(c)
	if err != nil {
		return err
	}

	if err := h.lessors.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}
