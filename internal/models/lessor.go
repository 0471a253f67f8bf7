package models

import "time"

type Lessor struct {
	ID          uint      `json:"lessor_id" gorm:"column:lessor_id;primaryKey"`
	FirstName   string    `json:"lessor_firstname" gorm:"column:lessor_firstname;not null"`
	LastName    string    `json:"lessor_lastname" gorm:"column:lessor_lastname;not null"`
	PhoneNumber string    `json:"lessor_phone_number" gorm:"column:lessor_phone_number;not null;uniqueIndex"`
	Email       string    `json:"lessor_email" gorm:"column:lessor_email;not null;uniqueIndex"`
	Password    string    `json:"-" gorm:"column:lessor_password;not null"` // bcrypt hash
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Lessor) TableName() string {
	return "lessor"
}

// UpdateLessorRequest carries the full editable field set of the profile page.
// An empty Password leaves the stored hash alone.
type UpdateLessorRequest struct {
	FirstName   string `json:"lessor_firstname" validate:"required,max=100"`
	LastName    string `json:"lessor_lastname" validate:"required,max=100"`
	PhoneNumber string `json:"lessor_phone_number" validate:"required,max=32"`
	Email       string `json:"lessor_email" validate:"required,email"`
	Password    string `json:"lessor_password" validate:"omitempty,min=6"`
}

type VerifyPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
}
