package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"meeting-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// SessionCookie is the name of the HTTP-only session cookie.
	SessionCookie = "session_id"

	// contextUserKey is where RequireAuth stores the resolved user.
	contextUserKey = "currentUser"

	// SessionTTL is how long a session stays valid after login.
	SessionTTL = 7 * 24 * time.Hour
)

// GenerateSessionID returns a random hex token for the session cookie.
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession persists a new session row for the user.
func CreateSession(db *gorm.DB, userID uint) (models.Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return models.Session{}, err
	}
	session := models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	if err := db.Create(&session).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// RequireAuth resolves the session cookie to a user once per request and
// stores the user in the gin context. Handlers read it via CurrentUser.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		var session models.Session
		if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		if time.Now().After(session.ExpiresAt) {
			db.Delete(&session)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		var user models.User
		if err := db.First(&user, session.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			return
		}

		c.Set(contextUserKey, &user)
		c.Next()
	}
}

// RequireRoles gates a route group to the given roles. Must run after
// RequireAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
