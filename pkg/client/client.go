// Package client drives the Parkify HTTP API the way the web pages do.
//
// Client is a thin typed wrapper over the routes. The flow types (AdminLogin,
// LessorProfile, Registration) hold page state on top of it and keep what the
// browser would keep in session or local Storage.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/parkify/internal/models"
)

const headerPasswordToken = "X-Password-Token"

// ErrRetry is reported for transport and decoding failures.
var ErrRetry = errors.New("An error occurred. Please try again.")

// APIError is a non-2xx answer carrying the server's error envelope.
type APIError struct {
	Status            int
	Message           string
	AttemptsRemaining int
	RetryAfter        time.Duration
	LockedUntil       time.Time
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	timeout time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type LoginResponse struct {
	AdminID   uint   `json:"admin_id,omitempty"`
	LessorID  uint   `json:"lessor_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type RegisterResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type ComplaintResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type UploadImage struct {
	Bucket       string
	ParkingLotID uint
	FileName     string
	Content      []byte
	OldImagePath string
}

func credentials(email, password string) fiber.Map {
	return fiber.Map{"email": email, "password": password}
}

func (c *Client) AdminLogin(ctx context.Context, email, password string) (*LoginResponse, error) {
	return call[LoginResponse](ctx, c, fiber.Post(c.baseURL+"/api/v1/admin/login").JSON(credentials(email, password)), "")
}

func (c *Client) LessorLogin(ctx context.Context, email, password string) (*LoginResponse, error) {
	return call[LoginResponse](ctx, c, fiber.Post(c.baseURL+"/api/v1/lessors/login").JSON(credentials(email, password)), "")
}

func (c *Client) UserLogin(ctx context.Context, email, password string) (*LoginResponse, error) {
	return call[LoginResponse](ctx, c, fiber.Post(c.baseURL+"/api/v1/users/login").JSON(credentials(email, password)), "")
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*RegisterResponse, error) {
	return call[RegisterResponse](ctx, c, fiber.Post(c.baseURL+"/api/v1/users/register").JSON(req), "")
}

func (c *Client) lessorURL(id uint) string {
	return c.baseURL + "/api/v1/lessors/" + strconv.FormatUint(uint64(id), 10)
}

func (c *Client) GetLessor(ctx context.Context, token string, id uint) (*models.Lessor, error) {
	var out struct {
		LessorDetails models.Lessor `json:"lessorDetails"`
	}
	if err := c.do(ctx, fiber.Get(c.lessorURL(id)), token, &out); err != nil {
		return nil, err
	}
	return &out.LessorDetails, nil
}

// VerifyLessorPassword returns the grant UpdateLessor needs to change the password.
func (c *Client) VerifyLessorPassword(ctx context.Context, token string, id uint, current string) (string, error) {
	var out struct {
		Verified      bool   `json:"verified"`
		PasswordToken string `json:"password_token"`
	}
	a := fiber.Post(c.lessorURL(id) + "/verify-password").JSON(models.VerifyPasswordRequest{CurrentPassword: current})
	if err := c.do(ctx, a, token, &out); err != nil {
		return "", err
	}
	return out.PasswordToken, nil
}

func (c *Client) UpdateLessor(ctx context.Context, token string, id uint, req models.UpdateLessorRequest, passwordToken string) (*models.Lessor, error) {
	var out struct {
		LessorDetails models.Lessor `json:"lessorDetails"`
	}
	a := fiber.Put(c.lessorURL(id)).JSON(req)
	if passwordToken != "" {
		a.Set(headerPasswordToken, passwordToken)
	}
	if err := c.do(ctx, a, token, &out); err != nil {
		return nil, err
	}
	return &out.LessorDetails, nil
}

func (c *Client) DeleteLessor(ctx context.Context, token string, id uint) error {
	return c.do(ctx, fiber.Delete(c.lessorURL(id)), token, nil)
}

func (c *Client) SubmitComplaint(ctx context.Context, token string, req models.SubmitComplaintRequest) (*ComplaintResponse, error) {
	return call[ComplaintResponse](ctx, c, fiber.Post(c.baseURL+"/api/v1/complaints").JSON(req), token)
}

func (c *Client) UploadParkingLotImage(ctx context.Context, token string, img UploadImage) (*models.UploadImageResponse, error) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("storageBucket", img.Bucket)
	args.Set("parkingLotId", strconv.FormatUint(uint64(img.ParkingLotID), 10))
	if img.OldImagePath != "" {
		args.Set("oldImagePath", img.OldImagePath)
	}

	a := fiber.Post(c.baseURL + "/api/v1/parking-lots/upload").
		FileData(&fiber.FormFile{Fieldname: "file", Name: img.FileName, Content: img.Content}).
		MultipartForm(args)

	return call[models.UploadImageResponse](ctx, c, a, token)
}

func call[T any](ctx context.Context, c *Client, a *fiber.Agent, token string) (*T, error) {
	var out T
	if err := c.do(ctx, a, token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, a *fiber.Agent, token string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	a.Timeout(timeout)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	if err := a.Parse(); err != nil {
		return fmt.Errorf("%w: %w", ErrRetry, err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrRetry, errors.Join(errs...))
	}

	if code < 200 || code >= 300 {
		return decodeError(code, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrRetry, err)
	}
	return nil
}

func decodeError(code int, body []byte) error {
	var envelope struct {
		Error             string    `json:"error"`
		AttemptsRemaining int       `json:"attempts_remaining"`
		RetryAfter        int       `json:"retry_after"`
		LockedUntil       time.Time `json:"locked_until"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == "" {
		return &APIError{Status: code, Message: ErrRetry.Error()}
	}
	return &APIError{
		Status:            code,
		Message:           envelope.Error,
		AttemptsRemaining: envelope.AttemptsRemaining,
		RetryAfter:        time.Duration(envelope.RetryAfter) * time.Second,
		LockedUntil:       envelope.LockedUntil,
	}
}
