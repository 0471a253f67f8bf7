package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SupabaseStore speaks the Supabase Storage REST API.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	timeout    time.Duration
}

func NewSupabaseStore(baseURL, serviceKey string, timeout time.Duration) (*SupabaseStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storage: unsupported url scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		timeout:    timeout,
	}, nil
}

func (s *SupabaseStore) objectURL(bucket, path string) string {
	return s.baseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

func (s *SupabaseStore) Upload(ctx context.Context, bucket, path, contentType string, body []byte) error {
	if err := validateLocation(bucket, path); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a := fiber.Post(s.objectURL(bucket, path)).
		ContentType(contentType).
		Set("x-upsert", "false").
		Body(body)
	return s.do(ctx, a)
}

func (s *SupabaseStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	for _, p := range paths {
		if err := validateLocation(bucket, p); err != nil {
			return err
		}
	}

	a := fiber.Delete(s.baseURL + "/storage/v1/object/" + url.PathEscape(bucket)).
		JSON(fiber.Map{"prefixes": paths})
	return s.do(ctx, a)
}

func (s *SupabaseStore) PublicURL(bucket, path string) (string, error) {
	if err := validateLocation(bucket, path); err != nil {
		return "", err
	}
	return s.baseURL + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + escapePath(path), nil
}

func (s *SupabaseStore) do(ctx context.Context, a *fiber.Agent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	a.Set(fiber.HeaderAuthorization, "Bearer "+s.serviceKey).
		Set("apikey", s.serviceKey).
		Timeout(timeout)

	if err := a.Parse(); err != nil {
		return fmt.Errorf("storage: build request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("storage: request failed: %w", errors.Join(errs...))
	}
	if code >= 200 && code < 300 {
		return nil
	}

	var payload struct {
		StatusCode string `json:"statusCode"`
		Error      string `json:"error"`
		Message    string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}
	if code == fiber.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, msg)
	}
	return &StorageError{Status: code, Message: msg}
}

func escapePath(p string) string {
	parts := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
