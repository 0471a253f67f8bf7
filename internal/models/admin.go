package models

import "time"

type Admin struct {
	ID        uint      `json:"admin_id" gorm:"column:admin_id;primaryKey"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Admin) TableName() string {
	return "admin"
}
