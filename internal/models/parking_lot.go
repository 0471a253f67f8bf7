package models

import "time"

type ParkingLot struct {
	ID                  uint      `json:"parking_lot_id" gorm:"column:parking_lot_id;primaryKey"`
	LessorID            uint      `json:"lessor_id" gorm:"not null;index"`
	Lessor              *Lessor   `json:"-" gorm:"foreignKey:LessorID;references:ID;constraint:OnDelete:RESTRICT"`
	Name                string    `json:"name"`
	Address             string    `json:"address,omitempty"`
	LocationImage       string    `json:"location_image,omitempty"`
	LocationImageBucket string    `json:"location_image_bucket,omitempty"`
	LocationImagePath   string    `json:"location_image_path,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (ParkingLot) TableName() string {
	return "parking_lot"
}

type UploadImageResponse struct {
	PublicURL    string `json:"publicUrl"`
	ParkingLotID uint   `json:"parkingLotId"`
}
