package models

import "time"

// RoomSchedule is a fixed recurring class slot. StartTime/EndTime are
// minutes-of-day stored as "HH:MM"; DayOfWeek follows time.Weekday
// (0 = Sunday).
type RoomSchedule struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	RoomID uint `gorm:"index;column:room_id" json:"room_id"`

	DayOfWeek  int    `gorm:"column:day_of_week" json:"day_of_week"`
	StartTime  string `gorm:"column:start_time;size:5" json:"start_time"`
	EndTime    string `gorm:"column:end_time;size:5" json:"end_time"`
	Subject    string `gorm:"size:255" json:"subject"`
	Instructor string `gorm:"size:255" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
