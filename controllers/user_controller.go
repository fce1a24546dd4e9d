package controllers

import (
	"net/http"
	"strings"

	"meeting-backend/config"
	"meeting-backend/middleware"
	"meeting-backend/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GET /api/admin/users
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

type profilePayload struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// PUT /api/users/me — self-edit of contact fields and password.
func UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var payload profilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(payload.FullName); name != "" {
		updates["full_name"] = name
	}
	if phone := strings.TrimSpace(payload.Phone); phone != "" {
		updates["phone"] = phone
	}
	if dept := strings.TrimSpace(payload.Department); dept != "" {
		updates["department"] = dept
	}
	if payload.Password != "" {
		if len(payload.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		updates["password"] = string(hash)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	if err := config.DB.Model(user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type verificationPayload struct {
	Status string `json:"status"` // approved | rejected
	Role   string `json:"role"`   // optional role change
}

// PUT /api/admin/users/:id/verification
func UpdateUserVerification(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload verificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if payload.Status != models.VerificationApproved && payload.Status != models.VerificationRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	updates := map[string]interface{}{"verification_status": payload.Status}
	if payload.Role != "" {
		switch payload.Role {
		case models.RoleUser, models.RoleStudent, models.RoleTeacher, models.RoleStaff, models.RoleAdmin:
			updates["role"] = payload.Role
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/admin/users/:id
func DeleteUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if id == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err := config.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
