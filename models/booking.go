package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title  string `gorm:"size:255" json:"title"`
	RoomID uint   `gorm:"index;column:room_id" json:"room_id"`
	UserID uint   `gorm:"index;column:user_id" json:"user_id"`

	StartTime time.Time `gorm:"column:start_time;index" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time;index" json:"end_time"`

	Status      string `gorm:"column:status;size:32;default:pending" json:"status"`
	ConfirmedBy *uint  `gorm:"column:confirmed_by" json:"confirmed_by,omitempty"`
	CancelledBy *uint  `gorm:"column:cancelled_by" json:"cancelled_by,omitempty"`

	Attendees int    `gorm:"column:attendees;default:1" json:"attendees"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}
