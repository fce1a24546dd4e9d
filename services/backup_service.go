// services/backup_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"meeting-backend/models"
	"meeting-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// backupSchemaVersion is written into every export. Restore rejects a
// document whose major version differs instead of guessing at its shape.
const backupSchemaVersion = "1.0"

// placeholderPasswordHash is substituted for user rows restored from an
// export that carries no password hash. It is bcrypt-shaped but can never
// verify, so restored accounts need an out-of-band password reset.
const placeholderPasswordHash = "$2a$10$RESTORED.ACCOUNT.REQUIRES.PASSWORD.RESET0000000000000"

const (
	BackupTypeDatabase = "database"
	BackupTypeSystem   = "system"
	BackupTypeFull     = "full"
)

// restoreTableOrder is the fixed foreign-key dependency order. Restore
// always processes requested tables in this order, never in request order.
var restoreTableOrder = []string{"rooms", "users", "room_schedules", "bookings", "feedbacks"}

var (
	ErrInvalidBackupType = errors.New("invalid_backup_type")
	ErrMissingMetadata   = errors.New("backup document missing metadata")
	ErrMissingDatabase   = errors.New("backup document missing database payload")
	ErrNoTablesSelected  = errors.New("no tables selected for restore")
)

type BackupMetadata struct {
	Type         string           `json:"type"`
	Version      string           `json:"version"`
	GeneratedAt  time.Time        `json:"generated_at"`
	GeneratedBy  uint             `json:"generated_by"`
	RecordCounts map[string]int64 `json:"record_counts,omitempty"`
}

// UserExport mirrors models.User minus the password hash. Exports must
// never contain credentials.
type UserExport struct {
	ID                 uint      `json:"id"`
	FullName           string    `json:"full_name"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	Role               string    `json:"role"`
	VerificationStatus *string   `json:"verification_status,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Department         string    `json:"department,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type DatabasePayload struct {
	Users         []UserExport          `json:"users"`
	Rooms         []models.Room         `json:"rooms"`
	RoomSchedules []models.RoomSchedule `json:"room_schedules"`
	Bookings      []models.Booking      `json:"bookings"`
	Feedbacks     []models.Feedback     `json:"feedbacks"`
}

type ServerInfo struct {
	GoVersion   string    `json:"go_version"`
	AppVersion  string    `json:"app_version"`
	GeneratedAt time.Time `json:"generated_at"`
}

type SystemPayload struct {
	RecordCounts map[string]int64 `json:"record_counts"`
	Rooms        []models.Room    `json:"rooms"`
	Server       ServerInfo       `json:"server"`
}

type BackupDocument struct {
	Metadata BackupMetadata   `json:"metadata"`
	Database *DatabasePayload `json:"database,omitempty"`
	System   *SystemPayload   `json:"system,omitempty"`
}

type RestoredTable struct {
	Table string `json:"table"`
	Count int    `json:"count"`
	Note  string `json:"note,omitempty"`
}

// RestoreResult reports what a successful restore did. There is no errors
// list: any failure rolls back the whole transaction and the call returns
// a plain error instead, so partial success cannot be implied.
type RestoreResult struct {
	Restored []RestoredTable `json:"restored"`
	Skipped  []string        `json:"skipped"`
}

type BackupService struct {
	DB *gorm.DB

	// Serializes restores. Concurrent restores against the same data would
	// otherwise race with last-commit-wins semantics.
	restoreMu sync.Mutex
}

func NewBackupService(db *gorm.DB) *BackupService {
	return &BackupService{DB: db}
}

func (s *BackupService) tableCounts() (map[string]int64, error) {
	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"users":          &models.User{},
		"rooms":          &models.Room{},
		"room_schedules": &models.RoomSchedule{},
		"bookings":       &models.Booking{},
		"feedbacks":      &models.Feedback{},
	} {
		var n int64
		if err := s.DB.Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

func (s *BackupService) databasePayload() (*DatabasePayload, error) {
	payload := &DatabasePayload{}

	var users []models.User
	if err := s.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	payload.Users = make([]UserExport, 0, len(users))
	for _, u := range users {
		payload.Users = append(payload.Users, UserExport{
			ID:                 u.ID,
			FullName:           u.FullName,
			Username:           u.Username,
			Email:              u.Email,
			Role:               u.Role,
			VerificationStatus: u.VerificationStatus,
			Phone:              u.Phone,
			Department:         u.Department,
			CreatedAt:          u.CreatedAt,
			UpdatedAt:          u.UpdatedAt,
		})
	}

	if err := s.DB.Order("id ASC").Find(&payload.Rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to export rooms: %w", err)
	}
	if err := s.DB.Order("id ASC").Find(&payload.RoomSchedules).Error; err != nil {
		return nil, fmt.Errorf("failed to export room schedules: %w", err)
	}
	if err := s.DB.Order("id ASC").Find(&payload.Bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to export bookings: %w", err)
	}
	if err := s.DB.Order("id ASC").Find(&payload.Feedbacks).Error; err != nil {
		return nil, fmt.Errorf("failed to export feedbacks: %w", err)
	}
	return payload, nil
}

func (s *BackupService) systemPayload(now time.Time) (*SystemPayload, error) {
	counts, err := s.tableCounts()
	if err != nil {
		return nil, err
	}

	var rooms []models.Room
	if err := s.DB.Preload("Schedules").Order("id ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to export room configuration: %w", err)
	}

	return &SystemPayload{
		RecordCounts: counts,
		Rooms:        rooms,
		Server: ServerInfo{
			GoVersion:   runtime.Version(),
			AppVersion:  backupSchemaVersion,
			GeneratedAt: now,
		},
	}, nil
}

// logOperation writes one BackupLog row. Best effort: a logging failure is
// printed and never surfaces to the caller.
func (s *BackupService) logOperation(entry models.BackupLog) {
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("warning: failed to write backup log: %v", err)
	}
}

// Export produces a backup document of the requested kind and audits it.
// Returns the document plus the generated file name and its human-readable
// size.
func (s *BackupService) Export(kind string, actor *models.User) (*BackupDocument, string, string, error) {
	now := time.Now().UTC()
	fileName := fmt.Sprintf("backup-%s-%s-%s.json",
		kind, now.Format("20060102-150405"), uuid.NewString()[:8])

	doc, err := s.buildDocument(kind, actor, now)
	if err != nil {
		s.logOperation(models.BackupLog{
			FileName:   fmt.Sprintf("backup-failed-%s", now.Format("20060102-150405")),
			BackupType: kind,
			Action:     "backup",
			Status:     "failed",
			CreatedBy:  actor.ID,
		})
		return nil, "", "", err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to encode backup: %w", err)
	}
	fileSize := utils.HumanFileSize(len(raw))

	s.logOperation(models.BackupLog{
		FileName:   fileName,
		FileSize:   fileSize,
		BackupType: kind,
		Action:     "backup",
		Status:     "success",
		CreatedBy:  actor.ID,
	})

	return doc, fileName, fileSize, nil
}

func (s *BackupService) buildDocument(kind string, actor *models.User, now time.Time) (*BackupDocument, error) {
	if kind != BackupTypeDatabase && kind != BackupTypeSystem && kind != BackupTypeFull {
		return nil, ErrInvalidBackupType
	}

	counts, err := s.tableCounts()
	if err != nil {
		return nil, err
	}

	doc := &BackupDocument{
		Metadata: BackupMetadata{
			Type:         kind,
			Version:      backupSchemaVersion,
			GeneratedAt:  now,
			GeneratedBy:  actor.ID,
			RecordCounts: counts,
		},
	}

	if kind == BackupTypeDatabase || kind == BackupTypeFull {
		payload, err := s.databasePayload()
		if err != nil {
			return nil, err
		}
		doc.Database = payload
	}
	if kind == BackupTypeSystem || kind == BackupTypeFull {
		payload, err := s.systemPayload(now)
		if err != nil {
			return nil, err
		}
		doc.System = payload
	}
	return doc, nil
}

// restoreUser is the import-side row shape. Unlike UserExport it accepts a
// password hash, because older exports from other tools may carry one.
type restoreUser struct {
	ID                 uint    `json:"id"`
	FullName           string  `json:"full_name"`
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	Password           string  `json:"password"`
	Role               string  `json:"role"`
	VerificationStatus *string `json:"verification_status"`
	Phone              string  `json:"phone"`
	Department         string  `json:"department"`
}

type restorePayload struct {
	Users         []restoreUser         `json:"users"`
	Rooms         []models.Room         `json:"rooms"`
	RoomSchedules []models.RoomSchedule `json:"room_schedules"`
	Bookings      []models.Booking      `json:"bookings"`
	Feedbacks     []models.Feedback     `json:"feedbacks"`
}

type restoreDocument struct {
	Metadata *BackupMetadata `json:"metadata"`
	Database *restorePayload `json:"database"`
}

func checkSchemaVersion(version string) error {
	major := strings.SplitN(strings.TrimSpace(version), ".", 2)[0]
	currentMajor := strings.SplitN(backupSchemaVersion, ".", 2)[0]
	if major == "" || major != currentMajor {
		return fmt.Errorf("unsupported backup version %q (current %s)", version, backupSchemaVersion)
	}
	return nil
}

// Restore applies an exported document back into the database. Everything
// runs inside one transaction: any row failure rolls back every table, so
// the database is left exactly as it was. The returned result only exists
// on success.
func (s *BackupService) Restore(raw json.RawMessage, tables []string, actor *models.User) (*RestoreResult, error) {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()

	var doc restoreDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("malformed backup document: %w", err)
	}
	if doc.Metadata == nil {
		return nil, ErrMissingMetadata
	}
	if err := checkSchemaVersion(doc.Metadata.Version); err != nil {
		return nil, err
	}
	if doc.Database == nil {
		return nil, ErrMissingDatabase
	}
	if len(tables) == 0 {
		return nil, ErrNoTablesSelected
	}

	requested := make(map[string]bool, len(tables))
	for _, t := range tables {
		requested[strings.TrimSpace(strings.ToLower(t))] = true
	}

	result := &RestoreResult{Restored: []RestoredTable{}, Skipped: []string{}}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, table := range restoreTableOrder {
			if !requested[table] {
				result.Skipped = append(result.Skipped, table)
				continue
			}
			restored, err := s.restoreTable(tx, table, doc.Database, actor)
			if err != nil {
				return fmt.Errorf("restore %s: %w", table, err)
			}
			if restored == nil {
				result.Skipped = append(result.Skipped, table)
				continue
			}
			result.Restored = append(result.Restored, *restored)
		}
		return nil
	})

	now := time.Now().UTC()
	logStatus := "success"
	if err != nil {
		logStatus = "failed"
	}
	s.logOperation(models.BackupLog{
		FileName:   fmt.Sprintf("restore-%s", now.Format("20060102-150405")),
		BackupType: "restore",
		Action:     "restore",
		Status:     logStatus,
		CreatedBy:  actor.ID,
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// restoreTable handles one table inside the transaction. Returns nil when
// the payload for the table is empty (recorded as skipped by the caller).
func (s *BackupService) restoreTable(tx *gorm.DB, table string, payload *restorePayload, actor *models.User) (*RestoredTable, error) {
	upsert := clause.OnConflict{UpdateAll: true}

	switch table {
	case "rooms":
		if len(payload.Rooms) == 0 {
			return nil, nil
		}
		// Children first so room deletion does not violate foreign keys.
		for _, model := range []interface{}{
			&models.RoomSchedule{}, &models.Feedback{}, &models.Booking{}, &models.Room{},
		} {
			if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return nil, err
			}
		}
		rooms := payload.Rooms
		if err := tx.Clauses(upsert).Omit(clause.Associations).Create(&rooms).Error; err != nil {
			return nil, err
		}
		return &RestoredTable{
			Table: "rooms",
			Count: len(rooms),
			Note:  "dependent bookings, schedules and feedbacks were cleared",
		}, nil

	case "users":
		if len(payload.Users) == 0 {
			return nil, nil
		}
		// Never delete the acting admin, matched by id, username or email,
		// to avoid self-lockout.
		if err := tx.Unscoped().
			Where("id <> ? AND username <> ? AND email <> ?", actor.ID, actor.Username, actor.Email).
			Delete(&models.User{}).Error; err != nil {
			return nil, err
		}

		placeholders := 0
		users := make([]models.User, 0, len(payload.Users))
		for _, row := range payload.Users {
			if row.ID == actor.ID || row.Username == actor.Username || row.Email == actor.Email {
				continue
			}
			hash := row.Password
			if strings.TrimSpace(hash) == "" {
				hash = placeholderPasswordHash
				placeholders++
			}
			role := row.Role
			if role == "" {
				role = models.RoleUser
			}
			users = append(users, models.User{
				ID:                 row.ID,
				FullName:           row.FullName,
				Username:           row.Username,
				Email:              row.Email,
				Password:           hash,
				Role:               role,
				VerificationStatus: row.VerificationStatus,
				Phone:              row.Phone,
				Department:         row.Department,
			})
		}
		if len(users) == 0 {
			return nil, nil
		}
		if err := tx.Clauses(upsert).Create(&users).Error; err != nil {
			return nil, err
		}
		note := ""
		if placeholders > 0 {
			note = fmt.Sprintf("%d accounts restored without password hashes; password reset required", placeholders)
		}
		return &RestoredTable{Table: "users", Count: len(users), Note: note}, nil

	case "room_schedules":
		if len(payload.RoomSchedules) == 0 {
			return nil, nil
		}
		if err := tx.Where("1 = 1").Delete(&models.RoomSchedule{}).Error; err != nil {
			return nil, err
		}
		schedules := payload.RoomSchedules
		if err := tx.Clauses(upsert).Create(&schedules).Error; err != nil {
			return nil, err
		}
		return &RestoredTable{Table: "room_schedules", Count: len(schedules)}, nil

	case "bookings":
		if len(payload.Bookings) == 0 {
			return nil, nil
		}
		// Feedbacks reference bookings, so they go first.
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Feedback{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Booking{}).Error; err != nil {
			return nil, err
		}
		bookings := payload.Bookings
		if err := tx.Clauses(upsert).Omit(clause.Associations).Create(&bookings).Error; err != nil {
			return nil, err
		}
		return &RestoredTable{Table: "bookings", Count: len(bookings)}, nil

	case "feedbacks":
		if len(payload.Feedbacks) == 0 {
			return nil, nil
		}
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.Feedback{}).Error; err != nil {
			return nil, err
		}
		feedbacks := payload.Feedbacks
		if err := tx.Clauses(upsert).Omit(clause.Associations).Create(&feedbacks).Error; err != nil {
			return nil, err
		}
		return &RestoredTable{Table: "feedbacks", Count: len(feedbacks)}, nil
	}

	return nil, fmt.Errorf("unknown table %q", table)
}

// StatusSummary is the GET /api/admin/backup response body.
type StatusSummary struct {
	Summary     map[string]int64   `json:"summary"`
	BackupLogs  []models.BackupLog `json:"backupLogs"`
	LastChecked time.Time          `json:"lastChecked"`
}

// Status returns current table counts and the most recent audit rows.
func (s *BackupService) Status() (*StatusSummary, error) {
	counts, err := s.tableCounts()
	if err != nil {
		return nil, err
	}

	var logs []models.BackupLog
	if err := s.DB.Order("id DESC").Limit(20).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load backup logs: %w", err)
	}

	return &StatusSummary{
		Summary:     counts,
		BackupLogs:  logs,
		LastChecked: time.Now().UTC(),
	}, nil
}
