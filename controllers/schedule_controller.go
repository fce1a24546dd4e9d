package controllers

import (
	"net/http"
	"time"

	"meeting-backend/config"
	"meeting-backend/models"

	"github.com/gin-gonic/gin"
)

type schedulePayload struct {
	RoomID     uint   `json:"room_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Subject    string `json:"subject"`
	Instructor string `json:"instructor"`
}

func validTimeOfDay(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (p *schedulePayload) validate(c *gin.Context) bool {
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day_of_week must be 0-6 (Sunday=0)"})
		return false
	}
	if !validTimeOfDay(p.StartTime) || !validTimeOfDay(p.EndTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time must be HH:MM"})
		return false
	}
	if p.StartTime >= p.EndTime {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be before end_time"})
		return false
	}
	if p.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject is required"})
		return false
	}
	return true
}

// GET /api/rooms/:id/schedules
func GetRoomSchedules(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var schedules []models.RoomSchedule
	if err := config.DB.Where("room_id = ?", id).
		Order("day_of_week ASC, start_time ASC").
		Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load schedules"})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// POST /api/admin/schedules
func CreateSchedule(c *gin.Context) {
	var payload schedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if !payload.validate(c) {
		return
	}

	var room models.Room
	if err := config.DB.First(&room, payload.RoomID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	schedule := models.RoomSchedule{
		RoomID:     room.ID,
		DayOfWeek:  payload.DayOfWeek,
		StartTime:  payload.StartTime,
		EndTime:    payload.EndTime,
		Subject:    payload.Subject,
		Instructor: payload.Instructor,
	}
	if err := config.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create schedule"})
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// PUT /api/admin/schedules/:id
func UpdateSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var schedule models.RoomSchedule
	if err := config.DB.First(&schedule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}

	var payload schedulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if !payload.validate(c) {
		return
	}

	schedule.DayOfWeek = payload.DayOfWeek
	schedule.StartTime = payload.StartTime
	schedule.EndTime = payload.EndTime
	schedule.Subject = payload.Subject
	schedule.Instructor = payload.Instructor
	if err := config.DB.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update schedule"})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// DELETE /api/admin/schedules/:id
func DeleteSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(&models.RoomSchedule{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule deleted"})
}
