package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/service"
	"github.com/tajious/parkify/internal/storage"
	"github.com/tajious/parkify/internal/validation"
)

const (
	msgInvalidBody        = "Invalid request body"
	msgInvalidCredentials = "Invalid email or password."
	msgPhoneExists        = "Phone number already exists. Please use a different phone number."
)

// NewErrorHandler renders every error returned by a handler as {"error": msg}.
// Known errors get their status; anything else is logged and hidden behind a 500.
func NewErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var locked *lockout.LockedError
		if errors.As(err, &locked) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(locked.RetryAfterSeconds()))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":        locked.Error(),
				"retry_after":  locked.RetryAfterSeconds(),
				"locked_until": locked.Until.UTC(),
			})
		}

		var failure *service.LoginFailure
		if errors.As(err, &failure) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":              msgInvalidCredentials,
				"attempts_remaining": failure.AttemptsRemaining,
			})
		}

		code, msg := resolveError(err)
		if code >= fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("unhandled error")
		}
		return c.Status(code).JSON(fiber.Map{
			"error": msg,
		})
	}
}

func resolveError(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var ve *validation.Error
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Error()
	}

	switch {
	case errors.Is(err, service.ErrBucketNotAllowed):
		return fiber.StatusBadRequest, "Unknown storage bucket"
	case errors.Is(err, service.ErrUploadFailed):
		return fiber.StatusInternalServerError, "Error uploading file"
	case errors.Is(err, service.ErrPublicURLFailed):
		return fiber.StatusInternalServerError, "Failed to generate public URL"
	case errors.Is(err, service.ErrMetadataFailed):
		return fiber.StatusInternalServerError, "Error uploading file or saving metadata"

	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "Access denied"
	case errors.Is(err, service.ErrPasswordNotVerified):
		return fiber.StatusForbidden, "Verify your current password before changing it"

	case errors.Is(err, storage.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found"
	case errors.Is(err, storage.ErrLessorNotFound):
		return fiber.StatusNotFound, "Lessor not found"
	case errors.Is(err, storage.ErrAdminNotFound):
		return fiber.StatusNotFound, "Admin not found"
	case errors.Is(err, storage.ErrParkingLotNotFound):
		return fiber.StatusNotFound, "Parking lot not found"

	case errors.Is(err, storage.ErrPhoneExists):
		return fiber.StatusConflict, msgPhoneExists
	case errors.Is(err, storage.ErrEmailExists):
		return fiber.StatusConflict, "Email already exists. Please use a different email."
	case errors.Is(err, storage.ErrLessorHasParkingLots):
		return fiber.StatusConflict, "Lessor still owns parking lots"
	case errors.Is(err, storage.ErrConflict):
		return fiber.StatusConflict, "Record already exists"
	}

	return fiber.StatusInternalServerError, "internal server error"
}

// parseBody decodes and validates a JSON body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}
	return validation.ValidateStruct(out)
}
