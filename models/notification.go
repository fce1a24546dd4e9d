package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	UserID    uint  `gorm:"index;column:user_id" json:"user_id"`
	BookingID *uint `gorm:"column:booking_id" json:"booking_id,omitempty"`

	Type    string         `gorm:"size:64" json:"type"`
	Message string         `gorm:"type:text" json:"message"`
	Payload datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	Read    bool           `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
