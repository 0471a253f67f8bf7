package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrForbidden           = errors.New("forbidden")
	ErrPasswordNotVerified = errors.New("current password must be verified before changing it")

	ErrBucketNotAllowed = errors.New("storage bucket is not allowed")
	ErrUploadFailed     = errors.New("error uploading file")
	ErrPublicURLFailed  = errors.New("failed to generate public URL")
	ErrMetadataFailed   = errors.New("error uploading file or saving metadata")
)

// LoginFailure is a rejected password that did not trigger a lock.
type LoginFailure struct {
	AttemptsRemaining int
}

func (e *LoginFailure) Error() string {
	return fmt.Sprintf("invalid credentials (%d attempts remaining)", e.AttemptsRemaining)
}

func (e *LoginFailure) Is(target error) bool {
	return target == ErrInvalidCredentials
}
