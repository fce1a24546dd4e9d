package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"meeting-backend/config"
	"meeting-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

// isDuplicateKeyError detects a unique-index violation. MySQL reports
// error 1062; the SQLite driver used in tests only gives message text.
func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ----------------------------------------------------
// GET /api/rooms
// ----------------------------------------------------

func GetRooms(c *gin.Context) {
	var rooms []models.Room
	if err := config.DB.Order("id ASC").Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------

func GetRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var room models.Room
	if err := config.DB.Preload("Schedules").First(&room, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/admin/rooms
// ----------------------------------------------------

func CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		log.Printf("❌ JSON BINDING ERROR (400): %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	room.Name = strings.TrimSpace(room.Name)
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.Name == "" || room.RoomNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and roomNumber are required"})
		return
	}
	if room.Capacity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "capacity must be at least 1"})
		return
	}
	if room.Status == "" {
		room.Status = models.RoomStatusActive
	}
	if room.Status != models.RoomStatusActive && room.Status != models.RoomStatusInactive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
		return
	}

	if err := config.DB.Create(&room).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("room name '%s' or number '%s' already exists", room.Name, room.RoomNumber),
			})
			return
		}
		log.Printf("❌ DB ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ----------------------------------------------------
// PUT /api/admin/rooms/:id
// ----------------------------------------------------

func UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var room models.Room
	if err := config.DB.First(&room, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	var payload models.Room
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(payload.Name); name != "" {
		updates["name"] = name
	}
	if number := strings.TrimSpace(payload.RoomNumber); number != "" {
		updates["room_number"] = number
	}
	if payload.Capacity > 0 {
		updates["capacity"] = payload.Capacity
	}
	if payload.Status != "" {
		if payload.Status != models.RoomStatusActive && payload.Status != models.RoomStatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or inactive"})
			return
		}
		updates["status"] = payload.Status
	}
	if payload.Floor != "" {
		updates["floor"] = payload.Floor
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}

	if err := config.DB.Model(&room).Updates(updates).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "room name or number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// ----------------------------------------------------
// DELETE /api/admin/rooms/:id
// ----------------------------------------------------

func DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var room models.Room
	if err := config.DB.First(&room, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	// Schedules go with the room; bookings keep their room_id for history.
	if err := config.DB.Where("room_id = ?", room.ID).Delete(&models.RoomSchedule{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room schedules"})
		return
	}
	if err := config.DB.Delete(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}
