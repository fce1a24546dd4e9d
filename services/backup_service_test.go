package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"meeting-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedBackupFixture(t *testing.T, svc *BackupService) (*models.User, *models.Room) {
	t.Helper()
	db := svc.DB

	admin := newTestUser(t, db, models.RoleAdmin, true)
	member := newTestUser(t, db, models.RoleStudent, true)
	room := newTestRoom(t, db, "Backup Room", "BK1", 10)

	require.NoError(t, db.Create(&models.RoomSchedule{
		RoomID: room.ID, DayOfWeek: 2, StartTime: "08:00", EndTime: "10:00", Subject: "Physics",
	}).Error)

	booking := models.Booking{
		Title:     "Quarterly Review",
		RoomID:    room.ID,
		UserID:    member.ID,
		StartTime: time.Date(2030, 2, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2030, 2, 1, 11, 0, 0, 0, time.UTC),
		Status:    models.BookingConfirmed,
	}
	require.NoError(t, db.Create(&booking).Error)

	require.NoError(t, db.Create(&models.Feedback{
		BookingID: booking.ID, UserID: member.ID, Rating: 5, Comment: "ห้องสะอาดมาก",
	}).Error)

	return admin, room
}

func TestExportDatabaseExcludesPasswords(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin, _ := seedBackupFixture(t, svc)

	doc, fileName, fileSize, err := svc.Export(BackupTypeDatabase, admin)
	require.NoError(t, err)
	require.NotNil(t, doc.Database)
	assert.Nil(t, doc.System)
	assert.Equal(t, BackupTypeDatabase, doc.Metadata.Type)
	assert.Equal(t, admin.ID, doc.Metadata.GeneratedBy)
	assert.Contains(t, fileName, "backup-database-")
	assert.NotEmpty(t, fileSize)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"password"`)

	// Users are present and ordered by primary key ascending.
	require.Len(t, doc.Database.Users, 2)
	assert.Less(t, doc.Database.Users[0].ID, doc.Database.Users[1].ID)

	assert.Equal(t, int64(2), doc.Metadata.RecordCounts["users"])
	assert.Equal(t, int64(1), doc.Metadata.RecordCounts["rooms"])
	assert.Equal(t, int64(1), doc.Metadata.RecordCounts["bookings"])
}

func TestExportWritesAuditLog(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin, _ := seedBackupFixture(t, svc)

	_, fileName, fileSize, err := svc.Export(BackupTypeFull, admin)
	require.NoError(t, err)

	var logs []models.BackupLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, fileName, logs[0].FileName)
	assert.Equal(t, fileSize, logs[0].FileSize)
	assert.Equal(t, "backup", logs[0].Action)
	assert.Equal(t, "success", logs[0].Status)
	assert.Equal(t, admin.ID, logs[0].CreatedBy)
}

func TestExportInvalidType(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin := newTestUser(t, db, models.RoleAdmin, true)

	_, _, _, err := svc.Export("everything", admin)
	assert.ErrorIs(t, err, ErrInvalidBackupType)
}

func TestExportSystemPayload(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin, room := seedBackupFixture(t, svc)

	doc, _, _, err := svc.Export(BackupTypeSystem, admin)
	require.NoError(t, err)
	assert.Nil(t, doc.Database)
	require.NotNil(t, doc.System)

	assert.Equal(t, int64(1), doc.System.RecordCounts["rooms"])
	require.Len(t, doc.System.Rooms, 1)
	assert.Equal(t, room.ID, doc.System.Rooms[0].ID)
	require.Len(t, doc.System.Rooms[0].Schedules, 1)
	assert.NotEmpty(t, doc.System.Server.GoVersion)
}

func restoreRaw(t *testing.T, doc *BackupDocument) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func allTables() []string {
	return []string{"rooms", "users", "room_schedules", "bookings", "feedbacks"}
}

func TestRestoreRoundTrip(t *testing.T) {
	source := newTestDB(t)
	sourceSvc := NewBackupService(source)
	admin, _ := seedBackupFixture(t, sourceSvc)

	doc, _, _, err := sourceSvc.Export(BackupTypeFull, admin)
	require.NoError(t, err)

	// Restore into an empty but schema-identical database. The acting
	// admin exists there already, as it does in any live system.
	target := newTestDB(t)
	targetSvc := NewBackupService(target)
	targetAdmin := models.User{
		ID:       admin.ID,
		FullName: admin.FullName,
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Role:     models.RoleAdmin,
	}
	require.NoError(t, target.Create(&targetAdmin).Error)

	result, err := targetSvc.Restore(restoreRaw(t, doc), allTables(), &targetAdmin)
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)

	// Post-restore row counts match the export's record_counts.
	for table, model := range map[string]interface{}{
		"users":          &models.User{},
		"rooms":          &models.Room{},
		"room_schedules": &models.RoomSchedule{},
		"bookings":       &models.Booking{},
		"feedbacks":      &models.Feedback{},
	} {
		var n int64
		require.NoError(t, target.Model(model).Count(&n).Error)
		assert.Equal(t, doc.Metadata.RecordCounts[table], n, "count mismatch for %s", table)
	}
}

func TestRestoreEmptyTableSkipped(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin := newTestUser(t, db, models.RoleAdmin, true)
	room := newTestRoom(t, db, "Keep Me", "K1", 5)

	doc := &BackupDocument{
		Metadata: BackupMetadata{Type: BackupTypeDatabase, Version: "1.0", GeneratedBy: admin.ID},
		Database: &DatabasePayload{},
	}

	result, err := svc.Restore(restoreRaw(t, doc), []string{"rooms"}, admin)
	require.NoError(t, err)
	assert.Empty(t, result.Restored)
	assert.Contains(t, result.Skipped, "rooms")

	// Skipped means untouched: the existing room survives.
	var n int64
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRestorePreservesActingAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin := newTestUser(t, db, models.RoleAdmin, true)

	// The payload includes a row for the admin's own id with different
	// data. It must be ignored, not applied over the acting admin.
	doc := &BackupDocument{
		Metadata: BackupMetadata{Type: BackupTypeDatabase, Version: "1.0"},
		Database: &DatabasePayload{
			Users: []UserExport{
				{ID: admin.ID, Username: "impostor", Email: "impostor@example.com", Role: models.RoleUser},
				{ID: admin.ID + 100, Username: "colleague", Email: "colleague@example.com", Role: models.RoleUser},
			},
		},
	}

	result, err := svc.Restore(restoreRaw(t, doc), []string{"users"}, admin)
	require.NoError(t, err)
	require.Len(t, result.Restored, 1)
	assert.Equal(t, 1, result.Restored[0].Count)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, admin.ID).Error)
	assert.Equal(t, admin.Username, reloaded.Username)
	assert.Equal(t, admin.Email, reloaded.Email)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
}

func TestRestorePlaceholderPasswordCannotAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin := newTestUser(t, db, models.RoleAdmin, true)

	doc := &BackupDocument{
		Metadata: BackupMetadata{Type: BackupTypeDatabase, Version: "1.0"},
		Database: &DatabasePayload{
			Users: []UserExport{
				{ID: 500, Username: "legacy", Email: "legacy@example.com"},
			},
		},
	}

	result, err := svc.Restore(restoreRaw(t, doc), []string{"users"}, admin)
	require.NoError(t, err)
	require.Len(t, result.Restored, 1)
	assert.Contains(t, result.Restored[0].Note, "password reset required")

	var restored models.User
	require.NoError(t, db.First(&restored, 500).Error)
	assert.Equal(t, placeholderPasswordHash, restored.Password)

	// The placeholder is not a valid bcrypt hash for any input.
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(restored.Password), []byte("")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(restored.Password), []byte(placeholderPasswordHash)))
}

func TestRestoreRollsBackEverythingOnFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin, room := seedBackupFixture(t, svc)

	var preUsers, preRooms, preBookings int64
	require.NoError(t, db.Model(&models.User{}).Count(&preUsers).Error)
	require.NoError(t, db.Model(&models.Room{}).Count(&preRooms).Error)
	require.NoError(t, db.Model(&models.Booking{}).Count(&preBookings).Error)

	// Two user rows with distinct ids but the same username: the second
	// insert violates the unique index after the rooms table has already
	// been rewritten inside the same transaction.
	doc := &BackupDocument{
		Metadata: BackupMetadata{Type: BackupTypeDatabase, Version: "1.0"},
		Database: &DatabasePayload{
			Rooms: []models.Room{
				{Name: "Replacement Room", RoomNumber: "R1", Capacity: 3, Status: models.RoomStatusActive},
			},
			Users: []UserExport{
				{ID: 700, Username: "dup", Email: "dup1@example.com"},
				{ID: 701, Username: "dup", Email: "dup2@example.com"},
			},
		},
	}

	_, err := svc.Restore(restoreRaw(t, doc), []string{"rooms", "users"}, admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users")

	// Every table is exactly as before, including rooms, whose delete and
	// re-insert happened earlier in the failed transaction.
	var postUsers, postRooms, postBookings int64
	require.NoError(t, db.Model(&models.User{}).Count(&postUsers).Error)
	require.NoError(t, db.Model(&models.Room{}).Count(&postRooms).Error)
	require.NoError(t, db.Model(&models.Booking{}).Count(&postBookings).Error)
	assert.Equal(t, preUsers, postUsers)
	assert.Equal(t, preRooms, postRooms)
	assert.Equal(t, preBookings, postBookings)

	var originalRoom models.Room
	require.NoError(t, db.First(&originalRoom, room.ID).Error)
	assert.Equal(t, "Backup Room", originalRoom.Name)

	// The failed attempt still leaves an audit row.
	var logs []models.BackupLog
	require.NoError(t, db.Where("action = ?", "restore").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "failed", logs[0].Status)
}

func TestRestorePreconditions(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackupService(db)
	admin := newTestUser(t, db, models.RoleAdmin, true)

	t.Run("missing metadata", func(t *testing.T) {
		_, err := svc.Restore(json.RawMessage(`{"database": {}}`), allTables(), admin)
		assert.ErrorIs(t, err, ErrMissingMetadata)
	})

	t.Run("missing database payload", func(t *testing.T) {
		_, err := svc.Restore(json.RawMessage(`{"metadata": {"version": "1.0"}}`), allTables(), admin)
		assert.ErrorIs(t, err, ErrMissingDatabase)
	})

	t.Run("no tables selected", func(t *testing.T) {
		_, err := svc.Restore(json.RawMessage(`{"metadata": {"version": "1.0"}, "database": {}}`), nil, admin)
		assert.ErrorIs(t, err, ErrNoTablesSelected)
	})

	t.Run("incompatible version rejected", func(t *testing.T) {
		_, err := svc.Restore(json.RawMessage(`{"metadata": {"version": "2.0"}, "database": {}}`), allTables(), admin)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unsupported backup version"))
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := svc.Restore(json.RawMessage(`{not json`), allTables(), admin)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed backup document")
	})
}
