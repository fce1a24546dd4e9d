package models

import (
	"gorm.io/gorm"
)

const (
	RoomStatusActive   = "active"
	RoomStatusInactive = "inactive"
)

type Room struct {
	gorm.Model

	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(150)"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Capacity   int    `json:"capacity"`
	Status     string `json:"status" gorm:"size:32;default:active"`

	Floor       string `json:"floor" gorm:"type:varchar(10)"`
	Description string `json:"description" gorm:"type:text"`

	Schedules []RoomSchedule `gorm:"foreignKey:RoomID" json:"schedules,omitempty"`
}
