package controllers

import (
	"net/http"

	"meeting-backend/config"
	"meeting-backend/middleware"
	"meeting-backend/models"
	"meeting-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/notifications
func GetNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var notifications []models.Notification
	if err := config.DB.Where("user_id = ?", user.ID).
		Order("id DESC").Limit(50).
		Find(&notifications).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load notifications")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, notifications)
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var notification models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", id, user.ID).
		First(&notification).Error; err != nil {
		utils.JSONError(c, http.StatusNotFound, "notification not found")
		return
	}

	if err := config.DB.Model(&notification).Update("read", true).Error; err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update notification")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, notification)
}
