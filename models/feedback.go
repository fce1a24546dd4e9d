package models

import (
	"time"

	"gorm.io/gorm"
)

type Feedback struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index;column:booking_id" json:"booking_id"`
	UserID    uint `gorm:"index;column:user_id" json:"user_id"`

	Rating   int    `gorm:"column:rating" json:"rating"` // 1-5
	Comment  string `gorm:"type:text" json:"comment,omitempty"`
	ImageURL string `gorm:"column:image_url;size:500" json:"image_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID;references:ID" json:"booking,omitempty"`
	User    User    `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}
