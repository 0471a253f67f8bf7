package models

import "time"

type Complaint struct {
	ID        uint      `json:"complain_id" gorm:"column:complain_id;primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Complain  string    `json:"complain" gorm:"not null"`
	Detail    string    `json:"detail" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Complaint) TableName() string {
	return "complain"
}

type SubmitComplaintRequest struct {
	UserID   uint   `json:"userId" validate:"required"`
	Complain string `json:"complain" validate:"required,max=100"`
	Detail   string `json:"detail" validate:"required,max=2000"`
}
