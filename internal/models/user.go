package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifies which table a session subject lives in.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLessor Role = "lessor"
	RoleUser   Role = "user"
)

// Purpose narrows what a token may be used for.
type Purpose string

const (
	PurposeSession        Purpose = "session"
	PurposePasswordChange Purpose = "password_change"
)

type Claims struct {
	SubjectID uint    `json:"sub_id"`
	Email     string  `json:"email"`
	Role      Role    `json:"role"`
	Purpose   Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

type User struct {
	ID          uint      `json:"user_id" gorm:"column:user_id;primaryKey"`
	FirstName   string    `json:"first_name" gorm:"not null"`
	LastName    string    `json:"last_name" gorm:"not null"`
	Email       string    `json:"email" gorm:"not null;uniqueIndex"`
	PhoneNumber string    `json:"phone_number" gorm:"not null;uniqueIndex"`
	Password    string    `json:"-" gorm:"not null"` // bcrypt hash
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "user_info"
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
}

type UpdateUserRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
}
