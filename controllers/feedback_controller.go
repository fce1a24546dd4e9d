package controllers

import (
	"net/http"
	"strings"

	"meeting-backend/config"
	"meeting-backend/middleware"
	"meeting-backend/models"

	"github.com/gin-gonic/gin"
)

type feedbackPayload struct {
	BookingID uint   `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	ImageURL  string `json:"image_url"`
}

// POST /api/feedbacks — owner of a confirmed booking leaves a rating.
func CreateFeedback(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var payload feedbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var booking models.Booking
	if err := config.DB.First(&booking, payload.BookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if booking.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	if booking.Status != models.BookingConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback is only allowed on confirmed bookings"})
		return
	}

	feedback := models.Feedback{
		BookingID: booking.ID,
		UserID:    user.ID,
		Rating:    payload.Rating,
		Comment:   strings.TrimSpace(payload.Comment),
		ImageURL:  strings.TrimSpace(payload.ImageURL),
	}
	if err := config.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

// GET /api/admin/feedbacks
func GetFeedbacks(c *gin.Context) {
	var feedbacks []models.Feedback
	if err := config.DB.Preload("Booking").Preload("User").
		Order("id DESC").Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feedbacks"})
		return
	}
	c.JSON(http.StatusOK, feedbacks)
}
