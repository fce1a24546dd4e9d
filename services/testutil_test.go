package services

import (
	"fmt"
	"testing"

	"meeting-backend/config"
	"meeting-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

var testUserSeq int

func newTestUser(t *testing.T, db *gorm.DB, role string, verified bool) *models.User {
	t.Helper()
	testUserSeq++

	status := models.VerificationPending
	if verified {
		status = models.VerificationApproved
	}
	user := models.User{
		FullName:           fmt.Sprintf("Test User %d", testUserSeq),
		Username:           fmt.Sprintf("user%d", testUserSeq),
		Email:              fmt.Sprintf("user%d@example.com", testUserSeq),
		Password:           "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Role:               role,
		VerificationStatus: &status,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newTestRoom(t *testing.T, db *gorm.DB, name, number string, capacity int) *models.Room {
	t.Helper()
	room := models.Room{
		Name:       name,
		RoomNumber: number,
		Capacity:   capacity,
		Status:     models.RoomStatusActive,
	}
	require.NoError(t, db.Create(&room).Error)
	return &room
}
